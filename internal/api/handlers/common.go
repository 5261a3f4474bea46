// common.go — общие помощники HTTP-обработчиков: сериализация ответов
// и трансляция ошибок сервисного слоя в коды API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/arturkryukov/workbase/internal/api/errors"
	"github.com/arturkryukov/workbase/internal/service"
)

// writeJSON сериализует ответ с указанным статус-кодом.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError транслирует ошибку сервисного слоя
// в стандартный ответ ошибки API.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	default:
		apierrors.InternalError(w, err.Error())
	}
}

// decodeJSON разбирает тело запроса в v. Неизвестные поля игнорируются,
// некорректный JSON — ошибка валидации.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
