// Пакет filestore — физическое хранение файлов вложений на диске.
// Имена файлов защищены от коллизий uuid-префиксом; запись атомарна
// (temp → fsync → rename), удаление терпимо к уже отсутствующему файлу.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore — управление файлами одной директории загрузок.
type FileStore struct {
	// dir — корневая директория хранения файлов
	dir string
}

// SaveResult — результат сохранения файла на диск.
type SaveResult struct {
	// StoredName — имя файла на диске ({uuid}_{очищенное имя})
	StoredName string
	// FullPath — абсолютный путь файла
	FullPath string
	// Size — фактический размер записанных данных в байтах
	Size int64
}

// New создаёт FileStore, при необходимости создавая директорию.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию загрузок %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Save записывает данные из reader на диск под уникальным именем.
// Формат имени: {uuid}_{очищенное оригинальное имя}.
// Возвращает имя, путь и фактический размер записанного файла.
//
// Паттерн записи: temp файл → fsync → atomic rename.
// При ошибке temp-файл удаляется.
func (fs *FileStore) Save(reader io.Reader, originalFilename string) (*SaveResult, error) {
	storedName := generateStoredName(originalFilename)
	fullPath := filepath.Join(fs.dir, storedName)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		StoredName: storedName,
		FullPath:   fullPath,
		Size:       size,
	}, nil
}

// Delete удаляет файл с диска. Возвращает nil, если файла уже нет:
// удаление метаданных не должно блокироваться ручной чисткой диска.
func (fs *FileStore) Delete(storedName string) error {
	err := os.Remove(filepath.Join(fs.dir, storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", storedName, err)
	}
	return nil
}

// Exists проверяет наличие файла на диске.
func (fs *FileStore) Exists(storedName string) bool {
	_, err := os.Stat(filepath.Join(fs.dir, storedName))
	return err == nil
}

// Size возвращает размер файла на диске.
func (fs *FileStore) Size(storedName string) (int64, error) {
	info, err := os.Stat(filepath.Join(fs.dir, storedName))
	if err != nil {
		return 0, fmt.Errorf("ошибка получения информации о файле %s: %w", storedName, err)
	}
	return info.Size(), nil
}

// TotalSize возвращает суммарный размер файлов директории в байтах.
func (fs *FileStore) TotalSize() (int64, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения директории %s: %w", fs.dir, err)
	}

	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// FullPath возвращает абсолютный путь к файлу.
func (fs *FileStore) FullPath(storedName string) string {
	return filepath.Join(fs.dir, storedName)
}

// Dir возвращает директорию хранения.
func (fs *FileStore) Dir() string { return fs.dir }

// Extension возвращает расширение файла без точки в нижнем регистре.
// Пустая строка, если расширения нет.
func Extension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// generateStoredName генерирует имя файла для хранения на диске.
// Формат: {uuid}_{очищенное имя}. UUID-префикс исключает коллизии
// без блокировок.
func generateStoredName(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	name := strings.TrimSuffix(filepath.Base(originalFilename), ext)

	name = sanitize(name)
	if len(name) > 60 {
		name = name[:60]
	}

	if ext != "" {
		return fmt.Sprintf("%s_%s%s", uuid.New().String(), name, strings.ToLower(ext))
	}
	return fmt.Sprintf("%s_%s", uuid.New().String(), name)
}

// sanitize убирает небезопасные символы из имени файла.
// Остаются буквы, цифры, дефис и подчёркивание.
func sanitize(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "file"
	}
	return result.String()
}
