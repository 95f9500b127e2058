package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-user-auth/internal/service"
)

// Тесты конверта ответов и таблицы маппинга доменных ошибок на статусы.

func decode(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestJSON_SuccessEnvelope(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]string{"id": "42"}, "created")

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	env := decode(t, rr)
	require.True(t, env.Success)
	require.Equal(t, http.StatusCreated, env.StatusCode)
	require.Equal(t, "created", env.Message)
	require.NotNil(t, env.Data)
}

func TestFail_ErrorEnvelope_OmitsData(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Fail(rr, http.StatusBadRequest, "bad input")

	require.Equal(t, http.StatusBadRequest, rr.Code)

	env := decode(t, rr)
	require.False(t, env.Success)
	require.Equal(t, http.StatusBadRequest, env.StatusCode)
	require.Equal(t, "bad input", env.Message)
	require.Nil(t, env.Data)

	// data отсутствует в сыром JSON, а не сериализуется как null.
	require.NotContains(t, rr.Body.String(), `"data"`)
}

func TestError_StatusTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"empty_fields", service.ErrEmptyFields, http.StatusBadRequest, "all fields are required"},
		{"invalid_email", service.ErrInvalidEmail, http.StatusBadRequest, "invalid email format"},
		{"avatar_required", service.ErrAvatarRequired, http.StatusBadRequest, "avatar file is required"},
		{"cover_upload_failed", service.ErrCoverUploadFailed, http.StatusBadRequest, "cover image upload failed"},
		{"invalid_credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid user credentials"},
		{"invalid_token", service.ErrInvalidToken, http.StatusUnauthorized, "invalid token"},
		{"token_expired", service.ErrTokenExpired, http.StatusUnauthorized, "token expired"},
		{"token_reused", service.ErrTokenReused, http.StatusUnauthorized, "refresh token is expired or used"},
		{"user_not_found", service.ErrUserNotFound, http.StatusNotFound, "user does not exist"},
		{"user_exists", service.ErrUserExists, http.StatusConflict, "user with email or username already exists"},
		{"internal", service.ErrInternal, http.StatusInternalServerError, service.ErrInternal.Error()},
		{"unknown", errors.New("pg: connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			Error(rr, req, tt.err)

			require.Equal(t, tt.wantStatus, rr.Code)

			env := decode(t, rr)
			require.False(t, env.Success)
			require.Equal(t, tt.wantStatus, env.StatusCode)
			require.Equal(t, tt.wantMsg, env.Message)
		})
	}
}

// TestError_WrappedSentinel_StripsOpPrefix — обёртки вида "op: err" не
// протекают в сообщение клиенту: наружу уходит текст сентинела.
func TestError_WrappedSentinel_StripsOpPrefix(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("service/auth/LoginUser: %w", service.ErrInvalidCredentials)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	Error(rr, req, wrapped)

	env := decode(t, rr)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "invalid user credentials", env.Message)
	require.NotContains(t, env.Message, "LoginUser")
}
