// service содержит бизнес-логику сервиса аутентификации:
// регистрацию пользователей с приёмом медиафайлов, вход, выход,
// выпуск и ротацию пары access/refresh-токенов.
//
// Основные аспекты:
//   - Экземпляр Service не хранит состояние запроса и безопасен для
//     конкурентного использования из разных горутин при условии, что
//     переданные хранилища потокобезопасны.
//   - Сессия аккаунта — это один слот refresh-токена в записи
//     пользователя; login/refresh перезаписывают слот (last-writer-wins),
//     logout очищает его. Предъявление значения, не равного текущему
//     слоту, трактуется как replay и отклоняется.
//   - Ошибки возвращаются сентинелами ниже и маппятся транспортом
//     на HTTP-статусы (см. комментарии к переменным).
package service

import (
	"errors"

	"github.com/pribylovaa/go-user-auth/internal/cache"
	"github.com/pribylovaa/go-user-auth/internal/config"
	"github.com/pribylovaa/go-user-auth/internal/storage"
)

var (
	// ErrEmptyFields — обязательное поле пустое после trim. HTTP 400.
	ErrEmptyFields = errors.New("all fields are required")

	// ErrInvalidEmail — e-mail имеет некорректный формат. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrAvatarRequired — файл аватара отсутствует или его загрузка
	// не дала URL; регистрация без аватара невозможна. HTTP 400.
	ErrAvatarRequired = errors.New("avatar file is required")

	// ErrCoverUploadFailed — загрузка cover-изображения не удалась при
	// включённом upload.cover_required. HTTP 400.
	ErrCoverUploadFailed = errors.New("cover image upload failed")

	// ErrUserExists — username или email уже занят. HTTP 409.
	ErrUserExists = errors.New("user with email or username already exists")

	// ErrUserNotFound — пользователь не найден при входе. HTTP 404.
	ErrUserNotFound = errors.New("user does not exist")

	// ErrInvalidCredentials — пароль не подошёл. HTTP 401.
	ErrInvalidCredentials = errors.New("invalid user credentials")

	// ErrInvalidToken — токен некорректен по формату/подписи,
	// отсутствует или аккаунт из токена не найден. HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenReused — предъявленный refresh-токен не равен текущему
	// слоту аккаунта: значение устарело или уже использовано. HTTP 401.
	ErrTokenReused = errors.New("refresh token is expired or used")

	// ErrInternal — неожиданная ошибка генерации токенов или
	// персистентного слоя. HTTP 500.
	ErrInternal = errors.New("something went wrong while generating refresh and access token")
)

// Service описывает бизнес-логику сервиса аутентификации.
type Service struct {
	users  storage.UserStorage
	media  storage.MediaStorage
	cfg    config.AuthConfig
	upload config.UploadConfig
	rcache cache.RefreshCache // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(users storage.UserStorage, media storage.MediaStorage, cfg config.AuthConfig, upload config.UploadConfig) *Service {
	return &Service{
		users:  users,
		media:  media,
		cfg:    cfg,
		upload: upload,
	}
}

// SetRefreshCache устанавливает кэш refresh-слотов (опционально).
func (s *Service) SetRefreshCache(c cache.RefreshCache) {
	s.rcache = c
}
