// docstore.go — хранилище одиночного JSON-документа.
// Используется для файла trainings.json, который хранит не массив,
// а объект с тремя именованными списками.
package collection

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DocStore — файловое хранилище одного документа типа T.
// Семантика та же, что у Store: полный цикл load → mutate → save
// под мьютексом, атомарная запись.
type DocStore[T any] struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewDoc создаёт хранилище документа name в директории dir.
// Отсутствующий файл инициализируется сериализованным нулевым
// значением T.
func NewDoc[T any](dir, name string, logger *slog.Logger) (*DocStore[T], error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dir, err)
	}

	path := filepath.Join(dir, name+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		var zero T
		data, err := json.MarshalIndent(zero, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации начального документа: %w", err)
		}
		if err := writeAtomic(path, append(data, '\n')); err != nil {
			return nil, fmt.Errorf("не удалось инициализировать документ %s: %w", name, err)
		}
	}

	return &DocStore[T]{
		path:   path,
		logger: logger.With(slog.String("collection", name)),
	}, nil
}

// Path возвращает путь к файлу документа.
func (s *DocStore[T]) Path() string { return s.path }

// Load читает документ. Отсутствующий или повреждённый файл
// читается как нулевое значение T.
func (s *DocStore[T]) Load() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Mutate применяет apply к документу и атомарно сохраняет результат.
// Ошибка apply отменяет сохранение и возвращается вызывающему.
func (s *DocStore[T]) Mutate(apply func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked()
	if err != nil {
		return doc, err
	}
	if err := apply(&doc); err != nil {
		return doc, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return doc, fmt.Errorf("ошибка сериализации документа: %w", err)
	}
	if err := writeAtomic(s.path, append(data, '\n')); err != nil {
		return doc, fmt.Errorf("ошибка записи документа %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *DocStore[T]) loadLocked() (T, error) {
	var doc T

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("ошибка чтения документа %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("Файл документа повреждён, читается как пустой",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		var zero T
		return zero, nil
	}
	return doc, nil
}
