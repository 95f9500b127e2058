package http

import (
	"net/http"

	"github.com/pribylovaa/go-user-auth/internal/models"
)

const (
	cookieAccessToken  = "accessToken"
	cookieRefreshToken = "refreshToken"
)

// setAuthCookies ставит пару сессионных cookie.
// Оба cookie HttpOnly; Secure управляется конфигом (выключается только
// для локальной разработки без TLS).
func (h *Handlers) setAuthCookies(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieAccessToken,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.cfg.Auth.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.HTTP.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     cookieRefreshToken,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.cfg.Auth.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.HTTP.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookies снимает сессионные cookie.
func (h *Handlers) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{cookieAccessToken, cookieRefreshToken} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cfg.HTTP.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
