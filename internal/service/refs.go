// refs.go — проверка ссылочной целостности между коллекциями.
//
// Каждая проверка перечитывает целевую коллекцию с диска — кэширования нет,
// результат отражает фактическое состояние файла на момент вызова.
package service

import (
	"errors"

	"github.com/arturkryukov/workbase/internal/storage/collection"
)

// checkReference проверяет, что запись с идентификатором id существует
// в коллекции store. Пустой id считается отсутствием ссылки и не проверяется.
func checkReference[T collection.Entity](store *collection.Store[T], field, id string) error {
	if id == "" {
		return nil
	}
	if _, err := store.Get(id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return &ReferenceError{Field: field, ID: id, Collection: store.Name()}
		}
		return err
	}
	return nil
}

// checkNoDependents проверяет, что в коллекции store нет записей,
// ссылающихся на удаляемую запись id. Предикат refersTo сообщает,
// ссылается ли запись на id.
func checkNoDependents[T collection.Entity](store *collection.Store[T], id string, refersTo func(T) bool) error {
	records, err := store.LoadAll()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if refersTo(rec) {
			return &ReferenceError{ID: id, Collection: store.Name(), Dependent: true}
		}
	}
	return nil
}
