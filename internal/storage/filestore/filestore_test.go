package filestore

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Ошибка создания FileStore: %v", err)
	}
	return fs
}

func TestFileStore_SaveReportsRealSize(t *testing.T) {
	fs := newTestFileStore(t)

	content := "содержимое файла для проверки размера"
	res, err := fs.Save(strings.NewReader(content), "report.pdf")
	if err != nil {
		t.Fatalf("Ошибка сохранения файла: %v", err)
	}

	if res.Size != int64(len(content)) {
		t.Errorf("Size = %d, ожидалось %d", res.Size, len(content))
	}

	// Размер на диске совпадает с заявленным
	diskSize, err := fs.Size(res.StoredName)
	if err != nil {
		t.Fatalf("Ошибка получения размера: %v", err)
	}
	if diskSize != res.Size {
		t.Errorf("Размер на диске %d не совпадает с результатом %d", diskSize, res.Size)
	}
}

func TestFileStore_StoredNameFormat(t *testing.T) {
	fs := newTestFileStore(t)

	res, err := fs.Save(strings.NewReader("data"), "Годовой отчёт (v2).PDF")
	if err != nil {
		t.Fatalf("Ошибка сохранения файла: %v", err)
	}

	// {uuid}_{имя}{ext}
	idx := strings.Index(res.StoredName, "_")
	if idx < 0 {
		t.Fatalf("Имя %q не содержит uuid-префикса", res.StoredName)
	}
	if _, err := uuid.Parse(res.StoredName[:idx]); err != nil {
		t.Errorf("Префикс %q не является UUID: %v", res.StoredName[:idx], err)
	}
	if !strings.HasSuffix(res.StoredName, ".pdf") {
		t.Errorf("Расширение не приведено к нижнему регистру: %q", res.StoredName)
	}
	if strings.ContainsAny(res.StoredName, "() ") {
		t.Errorf("Небезопасные символы не вычищены: %q", res.StoredName)
	}
}

func TestFileStore_UniqueNamesForSameFilename(t *testing.T) {
	fs := newTestFileStore(t)

	first, err := fs.Save(strings.NewReader("один"), "photo.jpg")
	if err != nil {
		t.Fatalf("Ошибка сохранения файла: %v", err)
	}
	second, err := fs.Save(strings.NewReader("два"), "photo.jpg")
	if err != nil {
		t.Fatalf("Ошибка сохранения файла: %v", err)
	}

	if first.StoredName == second.StoredName {
		t.Errorf("Повторная загрузка перезаписала файл: %q", first.StoredName)
	}
	if !fs.Exists(first.StoredName) || !fs.Exists(second.StoredName) {
		t.Error("Оба файла должны существовать на диске")
	}
}

func TestFileStore_DeleteTolerant(t *testing.T) {
	fs := newTestFileStore(t)

	res, err := fs.Save(strings.NewReader("data"), "doc.txt")
	if err != nil {
		t.Fatalf("Ошибка сохранения файла: %v", err)
	}

	if err := fs.Delete(res.StoredName); err != nil {
		t.Fatalf("Ошибка удаления файла: %v", err)
	}
	if fs.Exists(res.StoredName) {
		t.Error("Файл существует после удаления")
	}

	// Повторное удаление несуществующего файла — не ошибка
	if err := fs.Delete(res.StoredName); err != nil {
		t.Errorf("Удаление отсутствующего файла вернуло ошибку: %v", err)
	}
}

func TestFileStore_TotalSize(t *testing.T) {
	fs := newTestFileStore(t)

	if _, err := fs.Save(strings.NewReader("12345"), "a.txt"); err != nil {
		t.Fatalf("Ошибка сохранения файла: %v", err)
	}
	if _, err := fs.Save(strings.NewReader("1234567890"), "b.txt"); err != nil {
		t.Fatalf("Ошибка сохранения файла: %v", err)
	}

	total, err := fs.TotalSize()
	if err != nil {
		t.Fatalf("Ошибка подсчёта объёма: %v", err)
	}
	if total != 15 {
		t.Errorf("TotalSize = %d, ожидалось 15", total)
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "pdf"},
		{"scan.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{".hidden", "hidden"},
		{"photo.JPeG", "jpeg"},
	}

	for _, tt := range tests {
		if got := Extension(tt.filename); got != tt.want {
			t.Errorf("Extension(%q) = %q, ожидалось %q", tt.filename, got, tt.want)
		}
	}
}
