// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт (дублирующийся идентификатор).
	ErrConflict = errors.New("конфликт — запись уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
)

// ReferenceError — внешний ключ не разрешается в существующую запись,
// либо удаление заблокировано зависимыми записями.
// errors.Is(err, ErrValidation) для ReferenceError истинно.
type ReferenceError struct {
	// Field — имя поля внешнего ключа (например, "sector_id")
	Field string
	// ID — значение ключа, которое не удалось разрешить
	ID string
	// Collection — имя целевой (или зависимой) коллекции
	Collection string
	// Dependent — true, если ошибка о зависимых записях при удалении
	Dependent bool
}

func (e *ReferenceError) Error() string {
	if e.Dependent {
		return fmt.Sprintf("запись %s используется записями коллекции %s, удаление заблокировано", e.ID, e.Collection)
	}
	return fmt.Sprintf("поле %s: запись %s не найдена в коллекции %s", e.Field, e.ID, e.Collection)
}

// Is сопоставляет ReferenceError с ErrValidation.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrValidation
}

// validationErrorf возвращает ошибку валидации с пояснением.
func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
