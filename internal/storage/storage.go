package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-user-auth/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username/email).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByLogin находит пользователя по username или email
	// (один аргумент сверяется с обеими колонками).
	UserByLogin(ctx context.Context, login string) (*models.User, error)
	// UserByUsernameOrEmail находит пользователя, у которого занят
	// username ИЛИ email. Используется проверкой существования при регистрации.
	UserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// PublicUserByID возвращает безопасную проекцию пользователя:
	// SQL-запрос не выбирает password_hash и refresh_token вовсе.
	PublicUserByID(ctx context.Context, id uuid.UUID) (*models.PublicUser, error)
	// UpdateRefreshToken перезаписывает слот refresh-токена аккаунта.
	// Точечный UPDATE одной колонки: остальные поля записи не
	// перечитываются и не валидируются, чтобы ротация токена не могла
	// упасть из-за постороннего поля. Пустая строка очищает слот.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	// Close закрывает пул соединений.
	Close()
}
