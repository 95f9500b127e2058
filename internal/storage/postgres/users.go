package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pribylovaa/go-user-auth/internal/models"
	"github.com/pribylovaa/go-user-auth/internal/storage"
)

// SaveUser создает нового пользователя в БД.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage/postgres/SaveUser"

	query := `
		INSERT INTO users(id, username, email, full_name, password_hash,
			avatar_url, cover_image_url, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.AvatarURL,
		user.CoverImageURL,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UserByLogin находит пользователя по username или email.
func (s *Storage) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	const op = "storage/postgres/UserByLogin"

	query := `
		SELECT id, username, email, full_name, password_hash,
			avatar_url, cover_image_url, refresh_token, created_at, updated_at
		FROM users
		WHERE username = $1 OR email = $1
	`

	return s.scanUser(ctx, op, query, login)
}

// UserByUsernameOrEmail находит пользователя, у которого занят username ИЛИ email.
func (s *Storage) UserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	const op = "storage/postgres/UserByUsernameOrEmail"

	query := `
		SELECT id, username, email, full_name, password_hash,
			avatar_url, cover_image_url, refresh_token, created_at, updated_at
		FROM users
		WHERE username = $1 OR email = $2
	`

	return s.scanUser(ctx, op, query, username, email)
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage/postgres/UserByID"

	query := `
		SELECT id, username, email, full_name, password_hash,
			avatar_url, cover_image_url, refresh_token, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return s.scanUser(ctx, op, query, id)
}

// PublicUserByID возвращает проекцию пользователя без секретных колонок.
// password_hash и refresh_token не попадают даже в резалт-сет запроса.
func (s *Storage) PublicUserByID(ctx context.Context, id uuid.UUID) (*models.PublicUser, error) {
	const op = "storage/postgres/PublicUserByID"

	query := `
		SELECT id, username, email, full_name, avatar_url, cover_image_url, created_at
		FROM users
		WHERE id = $1
	`

	var user models.PublicUser
	err := s.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

// UpdateRefreshToken перезаписывает слот refresh-токена аккаунта.
// Точечный UPDATE: никакие другие поля записи не затрагиваются,
// поэтому ротация не зависит от валидности остальных данных.
func (s *Storage) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	const op = "storage/postgres/UpdateRefreshToken"

	query := `
		UPDATE users
		SET refresh_token = $2, updated_at = now()
		WHERE id = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// scanUser — общий скан полной записи пользователя.
func (s *Storage) scanUser(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}
