// transport/http содержит REST-эндпоинты сервиса аутентификации.
// Здесь выполняется только приём/разбор запросов, работа с cookie и
// маппинг данных; вся валидация и бизнес-логика — в пакете service.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pribylovaa/go-user-auth/internal/config"
	"github.com/pribylovaa/go-user-auth/internal/models"
	"github.com/pribylovaa/go-user-auth/internal/service"
	"github.com/pribylovaa/go-user-auth/internal/transport/http/middleware"
	"github.com/pribylovaa/go-user-auth/internal/transport/http/response"
)

// Handlers агрегирует зависимости эндпоинтов.
type Handlers struct {
	svc *service.Service
	cfg *config.Config
}

func NewHandlers(svc *service.Service, cfg *config.Config) *Handlers {
	return &Handlers{svc: svc, cfg: cfg}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type loginResponse struct {
	User         *models.PublicUser `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

// Register принимает multipart-форму с полями fullName/email/username/password
// и файлами avatar (обязателен) и coverImage (опционален).
// Файлы складываются во временный каталог; копии, дошедшие до загрузки,
// удаляет медиа-адаптер, остальные убираются здесь при ошибке сервиса.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.Upload.MaxSizeBytes + 1<<20); err != nil {
		response.Fail(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	avatarPath, err := h.saveUpload(r, "avatar")
	if err != nil {
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	coverPath, err := h.saveUpload(r, "coverImage")
	if err != nil {
		// Принятый аватар уже на диске — убираем за собой.
		if avatarPath != "" {
			_ = os.Remove(avatarPath)
		}
		response.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.RegisterUser(r.Context(), service.RegisterInput{
		FullName:   r.FormValue("fullName"),
		Email:      r.FormValue("email"),
		Username:   r.FormValue("username"),
		Password:   r.FormValue("password"),
		AvatarPath: avatarPath,
		CoverPath:  coverPath,
	})
	if err != nil {
		// Сервис мог отказать до загрузки (пустые поля, конфликт):
		// адаптер удаляет только те локальные копии, что до него дошли.
		if avatarPath != "" {
			_ = os.Remove(avatarPath)
		}
		if coverPath != "" {
			_ = os.Remove(coverPath)
		}
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, user, "user registered successfully")
}

// Login аутентифицирует пользователя, ставит сессионные cookie и
// возвращает безопасное представление пользователя вместе с токенами.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		response.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, pair, err := h.svc.LoginUser(r.Context(), service.LoginInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.setAuthCookies(w, pair)
	response.JSON(w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "user logged in successfully")
}

// Logout очищает слот refresh-токена и снимает сессионные cookie.
// Маршрут охраняется middleware.Auth.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.svc.LogoutUser(r.Context(), userID); err != nil {
		response.Error(w, r, err)
		return
	}

	h.clearAuthCookies(w)
	response.JSON(w, http.StatusOK, struct{}{}, "user logged out successfully")
}

// Refresh выпускает новую пару токенов по refresh-токену из cookie
// (fallback — поле refreshToken в JSON-теле) и ротирует слот.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	incoming := ""
	if c, err := r.Cookie("refreshToken"); err == nil {
		incoming = c.Value
	}

	if incoming == "" {
		var in refreshRequest
		// Тело опционально: его отсутствие равносильно пустому токену.
		if err := json.NewDecoder(r.Body).Decode(&in); err == nil {
			incoming = in.RefreshToken
		}
	}

	if incoming == "" {
		response.Fail(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	pair, err := h.svc.RefreshTokens(r.Context(), incoming)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.setAuthCookies(w, pair)
	response.JSON(w, http.StatusOK, pair, "access token refreshed")
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// saveUpload сохраняет файл из multipart-поля во временный каталог и
// возвращает локальный путь. Отсутствие поля — не ошибка (пустой путь).
func (h *Handlers) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}

		return "", fmt.Errorf("malformed file field %q", field)
	}
	defer file.Close()

	if header.Size > h.cfg.Upload.MaxSizeBytes {
		return "", fmt.Errorf("file %q is too large", field)
	}

	dir := h.cfg.Upload.TmpDir
	if dir == "" {
		dir = os.TempDir()
	}

	tmp, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", fmt.Errorf("failed to buffer file %q", field)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())

		return "", fmt.Errorf("failed to buffer file %q", field)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return "", fmt.Errorf("failed to buffer file %q", field)
	}

	return tmp.Name(), nil
}
