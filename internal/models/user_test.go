package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestUser_Public_OmitsSecrets — Public отдаёт только безопасные поля;
// сериализованное представление не содержит секретов даже по именам.
func TestUser_Public_OmitsSecrets(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	u := &User{
		ID:            uuid.New(),
		Username:      "chaiaurcode",
		Email:         "one@example.com",
		FullName:      "Chai Aur Code",
		PasswordHash:  "bcrypt-hash",
		AvatarURL:     "http://media/a.png",
		CoverImageURL: "http://media/c.png",
		RefreshToken:  "raw-refresh-jwt",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	p := u.Public()
	require.Equal(t, u.ID, p.ID)
	require.Equal(t, u.Username, p.Username)
	require.Equal(t, u.Email, p.Email)
	require.Equal(t, u.FullName, p.FullName)
	require.Equal(t, u.AvatarURL, p.AvatarURL)
	require.Equal(t, u.CoverImageURL, p.CoverImageURL)
	require.Equal(t, u.CreatedAt, p.CreatedAt)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	body := string(raw)
	require.NotContains(t, body, "bcrypt-hash")
	require.NotContains(t, body, "raw-refresh-jwt")
	require.NotContains(t, strings.ToLower(body), "password")
	require.NotContains(t, strings.ToLower(body), "refresh")
}

// TestPublicUser_JSONFieldNames — контракт на имена полей для фронта.
func TestPublicUser_JSONFieldNames(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(&PublicUser{})
	require.NoError(t, err)

	for _, field := range []string{
		`"id"`, `"username"`, `"email"`, `"fullName"`,
		`"avatar"`, `"coverImage"`, `"createdAt"`,
	} {
		require.Contains(t, string(raw), field)
	}
}
