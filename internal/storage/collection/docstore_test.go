package collection

import (
	"errors"
	"log/slog"
	"os"
	"testing"
)

type testDoc struct {
	Items []string `json:"items"`
	Note  string   `json:"note"`
}

func newTestDocStore(t *testing.T) *DocStore[testDoc] {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewDoc[testDoc](t.TempDir(), "doc", logger)
	if err != nil {
		t.Fatalf("Ошибка создания хранилища документа: %v", err)
	}
	return store
}

func TestDocStore_LoadEmpty(t *testing.T) {
	store := newTestDocStore(t)

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Ошибка чтения документа: %v", err)
	}
	if len(doc.Items) != 0 || doc.Note != "" {
		t.Errorf("Новый документ не нулевой: %+v", doc)
	}
}

func TestDocStore_MutateAndReload(t *testing.T) {
	store := newTestDocStore(t)

	_, err := store.Mutate(func(d *testDoc) error {
		d.Items = append(d.Items, "a", "b")
		d.Note = "изменён"
		return nil
	})
	if err != nil {
		t.Fatalf("Ошибка мутации документа: %v", err)
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Ошибка перечтения документа: %v", err)
	}
	if len(doc.Items) != 2 || doc.Note != "изменён" {
		t.Errorf("Мутация не сохранилась: %+v", doc)
	}
}

func TestDocStore_MutateErrorCancelsSave(t *testing.T) {
	store := newTestDocStore(t)

	if _, err := store.Mutate(func(d *testDoc) error {
		d.Note = "первая"
		return nil
	}); err != nil {
		t.Fatalf("Ошибка мутации документа: %v", err)
	}

	wantErr := errors.New("отказ")
	_, err := store.Mutate(func(d *testDoc) error {
		d.Note = "вторая"
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Ожидалась ошибка apply, получено: %v", err)
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Ошибка перечтения документа: %v", err)
	}
	if doc.Note != "первая" {
		t.Errorf("Note = %q, отменённая мутация попала на диск", doc.Note)
	}
}

func TestDocStore_CorruptFileReadsAsZero(t *testing.T) {
	store := newTestDocStore(t)

	if err := os.WriteFile(store.Path(), []byte("{оборванный"), 0o600); err != nil {
		t.Fatalf("Ошибка подготовки файла: %v", err)
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Повреждённый документ должен читаться как нулевой, получено: %v", err)
	}
	if len(doc.Items) != 0 || doc.Note != "" {
		t.Errorf("Повреждённый документ прочитан не нулевым: %+v", doc)
	}
}
