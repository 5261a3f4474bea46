package service

import (
	"errors"
	"testing"
	"time"
)

func TestCollaborators_CreateChecksSector(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.collaborators.Create(CollaboratorCreate{Name: "Иван", SectorID: "ghost"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Ссылка на несуществующее подразделение должна отклоняться, получено: %v", err)
	}

	var refErr *ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("Ожидалась ReferenceError, получено: %T", err)
	}
	if refErr.Field != "sector_id" || refErr.ID != "ghost" {
		t.Errorf("ReferenceError{Field: %q, ID: %q}, ожидалось sector_id/ghost", refErr.Field, refErr.ID)
	}
}

func TestCollaborators_GetViewJoinsSector(t *testing.T) {
	env := newTestEnv(t)
	env.mustSector(t, "s1", "Коммерческий отдел")
	env.mustCollaborator(t, "c1", "Иван Петров", "s1")

	view, err := env.collaborators.GetView("c1")
	if err != nil {
		t.Fatalf("Ошибка получения: %v", err)
	}
	if view.Sector == nil || view.Sector.Name != "Коммерческий отдел" {
		t.Errorf("Подразделение не присоединено: %+v", view.Sector)
	}
}

func TestCollaborators_ViewToleratesDanglingSector(t *testing.T) {
	env := newTestEnv(t)
	env.mustSector(t, "s1", "Отдел")
	env.mustCollaborator(t, "c1", "Иван", "s1")

	// Подразделение удаляется напрямую из хранилища, минуя блокировку
	if err := env.sectors.store.Delete("s1"); err != nil {
		t.Fatalf("Ошибка подготовки: %v", err)
	}

	view, err := env.collaborators.GetView("c1")
	if err != nil {
		t.Fatalf("Висячая ссылка на чтении не должна быть ошибкой: %v", err)
	}
	if view.Sector != nil {
		t.Errorf("Sector должен быть nil для висячей ссылки, получено: %+v", view.Sector)
	}
}

func TestCollaborators_UpdateChecksNewSector(t *testing.T) {
	env := newTestEnv(t)
	env.mustSector(t, "s1", "Отдел")
	env.mustCollaborator(t, "c1", "Иван", "s1")

	ghost := "ghost"
	_, err := env.collaborators.Update("c1", CollaboratorUpdate{SectorID: &ghost})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Перевод в несуществующее подразделение должен отклоняться, получено: %v", err)
	}
}

func TestCollaborators_DeleteBlockedByGoals(t *testing.T) {
	env := newTestEnv(t)
	env.mustSector(t, "s1", "Отдел")
	env.mustCollaborator(t, "c1", "Иван", "s1")

	_, err := env.goals.Create(GoalCreate{
		Title:          "Закрыть квартал",
		CollaboratorID: "c1",
		SectorID:       "s1",
		DueDate:        time.Now().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Ошибка создания цели: %v", err)
	}

	err = env.collaborators.Delete("c1")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Удаление исполнителя с целями должно быть заблокировано, получено: %v", err)
	}
}

func TestCollaborators_ListBySector(t *testing.T) {
	env := newTestEnv(t)
	env.mustSector(t, "s1", "Первый")
	env.mustSector(t, "s2", "Второй")
	env.mustCollaborator(t, "c1", "Иван", "s1")
	env.mustCollaborator(t, "c2", "Мария", "s2")

	list, err := env.collaborators.ListBySector("s2")
	if err != nil {
		t.Fatalf("Ошибка получения списка: %v", err)
	}
	if len(list) != 1 || list[0].ID != "c2" {
		t.Errorf("Фильтр по подразделению вернул %d записей, ожидалась одна запись c2", len(list))
	}
}

func TestCollaborators_SearchByNameAndEmail(t *testing.T) {
	env := newTestEnv(t)
	env.mustSector(t, "s1", "Отдел")
	if _, err := env.collaborators.Create(CollaboratorCreate{ID: "c1", Name: "Иван Петров", SectorID: "s1", Email: "ivan@example.com"}); err != nil {
		t.Fatalf("Ошибка создания сотрудника: %v", err)
	}
	env.mustCollaborator(t, "c2", "Мария Сидорова", "s1")

	found, err := env.collaborators.Search("IVAN@")
	if err != nil {
		t.Fatalf("Ошибка поиска: %v", err)
	}
	if len(found) != 1 || found[0].ID != "c1" {
		t.Errorf("Поиск по email вернул %d записей, ожидалась одна запись c1", len(found))
	}
}
