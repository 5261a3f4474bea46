// Пакет collection — файловое хранилище коллекций записей.
// Одна коллекция — один JSON-файл с массивом записей; каждая мутация
// выполняется как полный цикл load → изменение в памяти → save.
// Цикл защищён per-collection мьютексом, запись на диск атомарна:
// temp → fsync → rename.
//
// Политика частичного успеха при чтении: запись, которую не удалось
// декодировать, пропускается с записью в лог; остальная коллекция
// загружается. Отсутствующий или целиком повреждённый файл читается
// как пустая коллекция.
package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Ошибки хранилища коллекций.
var (
	// ErrNotFound — запись с указанным id отсутствует в коллекции.
	ErrNotFound = errors.New("запись не найдена")
	// ErrDuplicateID — запись с таким id уже существует.
	// Политика коллизий явная: создание отклоняется, перезаписи нет.
	ErrDuplicateID = errors.New("запись с таким id уже существует")
)

// Entity — запись коллекции. Идентификатор назначается при создании
// и далее неизменен.
type Entity interface {
	EntityID() string
}

// DecodeError — ошибка декодирования одной записи коллекции.
// На границе загрузки не фатальна: запись пропускается.
type DecodeError struct {
	// File — путь к файлу коллекции
	File string
	// Index — позиция записи в массиве
	Index int
	// Err — исходная ошибка декодирования
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("запись %d в %s не декодируется: %v", e.Index, e.File, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Store — хранилище одной коллекции записей типа T.
// Все операции потокобезопасны в пределах процесса; доступ из
// нескольких процессов к одному файлу не защищён.
type Store[T Entity] struct {
	mu     sync.Mutex
	name   string
	path   string
	logger *slog.Logger
}

// New создаёт хранилище коллекции name в директории dir.
// Файл коллекции: {dir}/{name}.json. Директория создаётся при
// необходимости; отсутствующий файл инициализируется пустым массивом.
func New[T Entity](dir, name string, logger *slog.Logger) (*Store[T], error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dir, err)
	}

	path := filepath.Join(dir, name+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeAtomic(path, []byte("[]\n")); err != nil {
			return nil, fmt.Errorf("не удалось инициализировать коллекцию %s: %w", name, err)
		}
	}

	return &Store[T]{
		name:   name,
		path:   path,
		logger: logger.With(slog.String("collection", name)),
	}, nil
}

// Name возвращает имя коллекции.
func (s *Store[T]) Name() string { return s.name }

// Path возвращает путь к файлу коллекции.
func (s *Store[T]) Path() string { return s.path }

// LoadAll возвращает все записи коллекции в порядке хранения.
func (s *Store[T]) LoadAll() ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Get возвращает запись по id. ErrNotFound, если записи нет.
func (s *Store[T]) Get(id string) (T, error) {
	var zero T

	records, err := s.LoadAll()
	if err != nil {
		return zero, err
	}
	for _, rec := range records {
		if rec.EntityID() == id {
			return rec, nil
		}
	}
	return zero, ErrNotFound
}

// Create добавляет запись в конец коллекции.
// Коллизия id отклоняется с ErrDuplicateID, коллекция не изменяется.
func (s *Store[T]) Create(rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		return err
	}
	for _, existing := range records {
		if existing.EntityID() == rec.EntityID() {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.EntityID())
		}
	}

	return s.saveLocked(append(records, rec))
}

// Update находит запись по id, применяет к ней apply и сохраняет
// коллекцию. Возвращает изменённую запись.
func (s *Store[T]) Update(id string, apply func(*T)) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		return zero, err
	}
	for i := range records {
		if records[i].EntityID() == id {
			apply(&records[i])
			if err := s.saveLocked(records); err != nil {
				return zero, err
			}
			return records[i], nil
		}
	}
	return zero, ErrNotFound
}

// Delete удаляет запись по id. Запись удаляется насовсем, без
// пометок: последующий LoadAll её не содержит.
// ErrNotFound, если записи нет; коллекция при этом не изменяется.
func (s *Store[T]) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadLocked()
	if err != nil {
		return err
	}
	for i, rec := range records {
		if rec.EntityID() == id {
			return s.saveLocked(append(records[:i], records[i+1:]...))
		}
	}
	return ErrNotFound
}

// ReplaceAll заменяет содержимое коллекции целиком.
func (s *Store[T]) ReplaceAll(records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(records)
}

// Count возвращает количество записей в коллекции.
func (s *Store[T]) Count() (int, error) {
	records, err := s.LoadAll()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// loadLocked читает файл коллекции. Вызывается под мьютексом.
func (s *Store[T]) loadLocked() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения коллекции %s: %w", s.path, err)
	}

	// Повреждённый файл целиком — пустая коллекция, не ошибка
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("Файл коллекции повреждён, читается как пустой",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	records := make([]T, 0, len(raw))
	for i, entry := range raw {
		var rec T
		if err := json.Unmarshal(entry, &rec); err != nil {
			s.logDecodeError(&DecodeError{File: s.path, Index: i, Err: err})
			continue
		}
		if rec.EntityID() == "" {
			s.logDecodeError(&DecodeError{
				File: s.path, Index: i,
				Err: errors.New("отсутствует обязательное поле id"),
			})
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// saveLocked сериализует и атомарно записывает коллекцию целиком.
// Вызывается под мьютексом.
func (s *Store[T]) saveLocked(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации коллекции: %w", err)
	}
	if err := writeAtomic(s.path, append(data, '\n')); err != nil {
		return fmt.Errorf("ошибка записи коллекции %s: %w", s.path, err)
	}
	return nil
}

// logDecodeError фиксирует пропуск нечитаемой записи.
func (s *Store[T]) logDecodeError(decErr *DecodeError) {
	s.logger.Warn("Запись пропущена при загрузке коллекции",
		slog.Int("index", decErr.Index),
		slog.String("error", decErr.Err.Error()),
	)
}

// writeAtomic записывает данные атомарно: temp → fsync → rename.
// При ошибке temp-файл удаляется; целевой файл остаётся либо старым,
// либо новым, но никогда частично записанным.
func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}
