package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-user-auth/internal/transport/http/response"
)

type ctxKeyUserID struct{}

// CtxUserID — ключ контекста с ID аутентифицированного пользователя.
var CtxUserID = ctxKeyUserID{}

// AccessTokenParser валидирует access-токен и возвращает ID пользователя.
// Реализуется сервисным слоем (service.Service.ParseAccessToken).
type AccessTokenParser interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

// Auth охраняет маршруты, требующие аутентификации.
// Access-токен берётся из cookie accessToken, при его отсутствии —
// из заголовка Authorization: Bearer. Невалидный/отсутствующий токен -> 401.
func Auth(parser AccessTokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				response.Fail(w, http.StatusUnauthorized, "unauthorized request")
				return
			}

			userID, err := parser.ParseAccessToken(token)
			if err != nil {
				response.Error(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom достаёт ID аутентифицированного пользователя из контекста.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(CtxUserID)
	if v == nil {
		return uuid.Nil, false
	}

	id, ok := v.(uuid.UUID)
	return id, ok
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie("accessToken"); err == nil && c.Value != "" {
		return c.Value
	}

	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) && len(auth) > len(prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}

	return ""
}
