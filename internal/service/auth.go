package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-user-auth/internal/models"
	"github.com/pribylovaa/go-user-auth/internal/pkg/log"
	"github.com/pribylovaa/go-user-auth/internal/pkg/redact"
	"github.com/pribylovaa/go-user-auth/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput — входные данные регистрации.
// AvatarPath/CoverPath — локальные пути принятых multipart-файлов;
// пустой CoverPath означает, что обложка не передавалась.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// LoginInput — входные данные входа: достаточно одного из Username/Email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// RegisterUser регистрирует нового пользователя.
//
// Порядок шагов фиксирован: проверка полей -> проверка занятости
// username/email -> загрузка медиа -> создание записи. Проверка занятости
// выполняется ДО загрузки, чтобы конфликт не оставлял объектов в бакете.
// Токены при регистрации не выпускаются.
func (s *Service) RegisterUser(ctx context.Context, input RegisterInput) (*models.PublicUser, error) {
	const op = "service/auth/RegisterUser"

	lg := log.From(ctx).With("op", op)

	fullName := strings.TrimSpace(input.FullName)
	email := strings.TrimSpace(input.Email)
	username := strings.ToLower(strings.TrimSpace(input.Username))
	password := strings.TrimSpace(input.Password)

	if fullName == "" || email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyFields)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	_, err := s.users.UserByUsernameOrEmail(ctx, username, email)
	if err == nil {
		lg.Warn("registration conflict", "email", redact.Email(email))

		return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("storage error on existence check", "err", err)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if input.AvatarPath == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrAvatarRequired)
	}

	avatarURL, err := s.media.UploadFile(ctx, input.AvatarPath)
	if err != nil || avatarURL == "" {
		lg.Warn("avatar upload failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrAvatarRequired)
	}

	coverURL := ""
	if input.CoverPath != "" {
		coverURL, err = s.media.UploadFile(ctx, input.CoverPath)
		if err != nil {
			if s.upload.CoverRequired {
				lg.Warn("cover upload failed", "err", err)

				return nil, fmt.Errorf("%s: %w", op, ErrCoverUploadFailed)
			}

			// Деградация до пустого значения: обложка не обязательна.
			lg.Warn("cover upload failed, degrading to empty", "err", err)
			coverURL = ""
		}
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:            uuid.New(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  hashedPassword,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		lg.Error("storage error on SaveUser", "err", err)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Контрольное перечитывание: создание отработало, но подтвердить его
	// можно только безопасной проекцией.
	created, err := s.users.PublicUserByID(ctx, user.ID)
	if err != nil {
		lg.Error("created user re-fetch failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("user registered", "user_id", user.ID.String(), "email", redact.Email(email))

	return created, nil
}

// LoginUser выполняет вход по username/email + паролю и выпускает пару токенов.
func (s *Service) LoginUser(ctx context.Context, input LoginInput) (*models.PublicUser, *models.TokenPair, error) {
	const op = "service/auth/LoginUser"

	lg := log.From(ctx).With("op", op)

	login := strings.ToLower(strings.TrimSpace(input.Username))
	if login == "" {
		login = strings.TrimSpace(input.Email)
	}

	if login == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrEmptyFields)
	}

	user, err := s.users.UserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		lg.Error("storage error on UserByLogin", "err", err)

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, input.Password) {
		lg.Warn("password mismatch", "user_id", user.ID.String())

		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	public, err := s.users.PublicUserByID(ctx, user.ID)
	if err != nil {
		lg.Error("logged-in user re-fetch failed", "err", err)

		return nil, nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("user logged in", "user_id", user.ID.String())

	return public, pair, nil
}

// LogoutUser очищает слот refresh-токена аккаунта.
// Аутентификацию вызывающего обеспечивает транспортный middleware.
func (s *Service) LogoutUser(ctx context.Context, userID uuid.UUID) error {
	const op = "service/auth/LogoutUser"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if err := s.users.UpdateRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		lg.Error("refresh slot clear failed", "err", err)

		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if s.rcache != nil {
		if err := s.rcache.Del(ctx, userID); err != nil {
			lg.Warn("refresh cache del failed", "err", err)
		}
	}

	lg.Info("user logged out")

	return nil
}

// RefreshTokens проверяет предъявленный refresh-токен, выполняет ротацию
// и возвращает новую пару токенов.
//
// Ротация: предъявленное значение должно в точности совпадать с текущим
// слотом аккаунта. Несовпадение означает, что токен устарел или уже был
// использован (replay) — попытка отклоняется как неавторизованная.
func (s *Service) RefreshTokens(ctx context.Context, incoming string) (*models.TokenPair, error) {
	const op = "service/auth/RefreshTokens"

	lg := log.From(ctx).With("op", op)

	if incoming == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	userID, err := s.parseRefreshToken(incoming)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("refresh for unknown user", "user_id", userID.String())

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		lg.Error("storage error on UserByID", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	// Авторитетен слот аккаунта: кэш пишется после БД и может только
	// отставать (неудачный Del при logout, неудачный Set при ротации).
	// Расхождение зеркала лечим удалением записи.
	if s.rcache != nil {
		if v, ok, cerr := s.rcache.Get(ctx, user.ID); cerr == nil && ok && v != user.RefreshToken {
			lg.Warn("refresh cache out of sync, dropping entry", "user_id", user.ID.String())

			if derr := s.rcache.Del(ctx, user.ID); derr != nil {
				lg.Warn("refresh cache del failed", "err", derr)
			}
		}
	}

	if incoming != user.RefreshToken {
		lg.Warn("refresh token reuse detected", "user_id", user.ID.String())

		return nil, fmt.Errorf("%s: %w", op, ErrTokenReused)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("tokens refreshed", "user_id", user.ID.String())

	return pair, nil
}

// issueTokenPair выпускает пару токенов и перезаписывает слот аккаунта
// новым refresh-значением (старое при этом инвалидируется).
func (s *Service) issueTokenPair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service/auth/issueTokenPair"

	lg := log.From(ctx).With("op", op, "user_id", user.ID.String())

	now := time.Now().UTC()

	access, err := s.issueAccessToken(user, now)
	if err != nil {
		lg.Error("access token sign failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	refresh, err := s.issueRefreshToken(user.ID, now)
	if err != nil {
		lg.Error("refresh token sign failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		lg.Error("refresh slot persist failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if s.rcache != nil {
		if err := s.rcache.Set(ctx, user.ID, refresh, s.cfg.RefreshTokenTTL); err != nil {
			// Кэш — не источник истины; промах переживаем.
			lg.Warn("refresh cache set failed", "err", err)
		}
	}

	return &models.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service/auth/hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
