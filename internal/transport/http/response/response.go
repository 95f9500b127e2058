// response стандартизирует формат ответов HTTP-слоя.
//
// Единый конверт для фронта:
//   - успех:  {statusCode, data, message, success:true};
//   - ошибка: {statusCode, message, success:false} — без data и без
//     каких-либо секретных полей.
//
// Маппинг доменных ошибок сервиса на HTTP-статусы централизован здесь;
// внутрь service знание о статус-кодах не протекает.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-user-auth/internal/service"
)

// Envelope — единый формат ответа для фронта.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// JSON пишет успешный ответ в конверте.
func JSON(w http.ResponseWriter, status int, data any, message string) {
	write(w, status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Fail пишет ответ-ошибку с заданным статусом и безопасным сообщением.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{
		StatusCode: status,
		Message:    message,
		Success:    false,
	})
}

// Error конвертирует доменную ошибку сервиса в HTTP-ответ.
//
// Поведение:
//   - известные сентинелы маппятся по таблице ниже, наружу уходит их
//     человекочитаемое сообщение;
//   - всё прочее -> 500 с единым безопасным сообщением (детали — в логи
//     через middleware, не на клиент).
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFromError(err)
	Fail(w, status, msg)
}

// statusFromError — таблица маппинга доменных ошибок на статусы:
//   - ErrEmptyFields/ErrInvalidEmail/ErrAvatarRequired/ErrCoverUploadFailed -> 400;
//   - ErrInvalidCredentials/ErrInvalidToken/ErrTokenExpired/ErrTokenReused -> 401;
//   - ErrUserNotFound -> 404;
//   - ErrUserExists -> 409;
//   - ErrInternal и неизвестные ошибки -> 500.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyFields),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrAvatarRequired),
		errors.Is(err, service.ErrCoverUploadFailed):
		return http.StatusBadRequest, unwrapMessage(err)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenReused):
		return http.StatusUnauthorized, unwrapMessage(err)
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, unwrapMessage(err)
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, unwrapMessage(err)
	case errors.Is(err, service.ErrInternal):
		return http.StatusInternalServerError, service.ErrInternal.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// unwrapMessage возвращает текст сентинела без op-префиксов обёрток.
func unwrapMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrEmptyFields,
		service.ErrInvalidEmail,
		service.ErrAvatarRequired,
		service.ErrCoverUploadFailed,
		service.ErrInvalidCredentials,
		service.ErrInvalidToken,
		service.ErrTokenExpired,
		service.ErrTokenReused,
		service.ErrUserNotFound,
		service.ErrUserExists,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return err.Error()
}

func write(w http.ResponseWriter, status int, v Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
