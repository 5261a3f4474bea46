package collection

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (r testRecord) EntityID() string { return r.ID }

func newTestStore(t *testing.T) *Store[testRecord] {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := New[testRecord](t.TempDir(), "records", logger)
	if err != nil {
		t.Fatalf("Ошибка создания хранилища: %v", err)
	}
	return store
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord{ID: "r1", Title: "первая запись"}
	if err := store.Create(rec); err != nil {
		t.Fatalf("Ошибка создания записи: %v", err)
	}

	got, err := store.Get("r1")
	if err != nil {
		t.Fatalf("Ошибка получения записи: %v", err)
	}
	if got.Title != "первая запись" {
		t.Errorf("Title = %q, ожидалось %q", got.Title, "первая запись")
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Ожидалась ErrNotFound, получено: %v", err)
	}
}

func TestStore_CreateDuplicateID(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(testRecord{ID: "dup"}); err != nil {
		t.Fatalf("Ошибка создания записи: %v", err)
	}

	err := store.Create(testRecord{ID: "dup", Title: "вторая"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Ожидалась ErrDuplicateID, получено: %v", err)
	}

	// Коллекция не изменилась
	n, err := store.Count()
	if err != nil {
		t.Fatalf("Ошибка подсчёта записей: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, ожидалось 1", n)
	}
}

func TestStore_Update(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(testRecord{ID: "r1", Title: "до"}); err != nil {
		t.Fatalf("Ошибка создания записи: %v", err)
	}

	updated, err := store.Update("r1", func(r *testRecord) {
		r.Title = "после"
	})
	if err != nil {
		t.Fatalf("Ошибка обновления записи: %v", err)
	}
	if updated.Title != "после" {
		t.Errorf("Title = %q, ожидалось %q", updated.Title, "после")
	}

	// Изменение сохранено на диске
	got, err := store.Get("r1")
	if err != nil {
		t.Fatalf("Ошибка получения записи: %v", err)
	}
	if got.Title != "после" {
		t.Errorf("Title после перечтения = %q, ожидалось %q", got.Title, "после")
	}
}

func TestStore_UpdateNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update("missing", func(r *testRecord) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Ожидалась ErrNotFound, получено: %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(testRecord{ID: "r1"}); err != nil {
		t.Fatalf("Ошибка создания записи: %v", err)
	}
	if err := store.Create(testRecord{ID: "r2"}); err != nil {
		t.Fatalf("Ошибка создания записи: %v", err)
	}

	if err := store.Delete("r1"); err != nil {
		t.Fatalf("Ошибка удаления записи: %v", err)
	}

	if _, err := store.Get("r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Удалённая запись всё ещё читается, err = %v", err)
	}
	if _, err := store.Get("r2"); err != nil {
		t.Errorf("Запись r2 потеряна при удалении r1: %v", err)
	}
}

func TestStore_DeleteNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Ожидалась ErrNotFound, получено: %v", err)
	}
}

func TestStore_LoadAllPreservesOrder(t *testing.T) {
	store := newTestStore(t)

	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		if err := store.Create(testRecord{ID: id}); err != nil {
			t.Fatalf("Ошибка создания записи %s: %v", id, err)
		}
	}

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("Ошибка загрузки коллекции: %v", err)
	}
	if len(records) != len(ids) {
		t.Fatalf("Загружено %d записей, ожидалось %d", len(records), len(ids))
	}
	for i, id := range ids {
		if records[i].ID != id {
			t.Errorf("records[%d].ID = %q, ожидалось %q", i, records[i].ID, id)
		}
	}
}

func TestStore_SkipsCorruptRecord(t *testing.T) {
	store := newTestStore(t)

	// Две валидные записи и одна с невалидным типом поля между ними
	data := `[
  {"id": "r1", "title": "первая"},
  {"id": "r2", "title": 12345},
  {"id": "r3", "title": "третья"}
]`
	if err := os.WriteFile(store.Path(), []byte(data), 0o600); err != nil {
		t.Fatalf("Ошибка подготовки файла: %v", err)
	}

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("Ошибка загрузки коллекции: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Загружено %d записей, ожидалось 2 (повреждённая пропущена)", len(records))
	}
	if records[0].ID != "r1" || records[1].ID != "r3" {
		t.Errorf("Загружены записи %q и %q, ожидались r1 и r3", records[0].ID, records[1].ID)
	}
}

func TestStore_SkipsRecordWithoutID(t *testing.T) {
	store := newTestStore(t)

	data := `[
  {"title": "без идентификатора"},
  {"id": "r1", "title": "валидная"}
]`
	if err := os.WriteFile(store.Path(), []byte(data), 0o600); err != nil {
		t.Fatalf("Ошибка подготовки файла: %v", err)
	}

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("Ошибка загрузки коллекции: %v", err)
	}
	if len(records) != 1 || records[0].ID != "r1" {
		t.Errorf("Загружено %d записей, ожидалась одна запись r1", len(records))
	}
}

func TestStore_CorruptFileReadsAsEmpty(t *testing.T) {
	store := newTestStore(t)

	if err := os.WriteFile(store.Path(), []byte("{не json"), 0o600); err != nil {
		t.Fatalf("Ошибка подготовки файла: %v", err)
	}

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("Повреждённый файл должен читаться как пустая коллекция, получено: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Загружено %d записей, ожидалось 0", len(records))
	}
}

func TestStore_MissingFileReadsAsEmpty(t *testing.T) {
	store := newTestStore(t)

	if err := os.Remove(store.Path()); err != nil {
		t.Fatalf("Ошибка удаления файла: %v", err)
	}

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("Отсутствующий файл должен читаться как пустая коллекция, получено: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Загружено %d записей, ожидалось 0", len(records))
	}
}

func TestStore_NoTempFileAfterSave(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(testRecord{ID: "r1"}); err != nil {
		t.Fatalf("Ошибка создания записи: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatalf("Ошибка чтения директории: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("После записи остался временный файл: %s", e.Name())
		}
	}
}

func TestStore_ReplaceAll(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(testRecord{ID: "old"}); err != nil {
		t.Fatalf("Ошибка создания записи: %v", err)
	}

	if err := store.ReplaceAll([]testRecord{{ID: "n1"}, {ID: "n2"}}); err != nil {
		t.Fatalf("Ошибка замены коллекции: %v", err)
	}

	records, err := store.LoadAll()
	if err != nil {
		t.Fatalf("Ошибка загрузки коллекции: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Загружено %d записей, ожидалось 2", len(records))
	}
	if _, err := store.Get("old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Старая запись пережила ReplaceAll, err = %v", err)
	}
}
