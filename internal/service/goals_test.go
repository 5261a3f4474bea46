package service

import (
	"errors"
	"testing"
	"time"

	"github.com/arturkryukov/workbase/internal/domain/model"
)

// setupGoalFixtures создаёт подразделение и исполнителя для целей.
func setupGoalFixtures(t *testing.T, env *testEnv) {
	t.Helper()
	env.mustSector(t, "s1", "Коммерческий отдел")
	env.mustCollaborator(t, "c1", "Иван Петров", "s1")
}

func TestGoals_CreateDefaultsToActive(t *testing.T) {
	env := newTestEnv(t)
	setupGoalFixtures(t, env)

	g, err := env.goals.Create(GoalCreate{
		Title:          "Закрыть квартал",
		CollaboratorID: "c1",
		SectorID:       "s1",
		DueDate:        time.Now().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Ошибка создания цели: %v", err)
	}
	if g.Status != model.GoalActive {
		t.Errorf("Status = %q, ожидалось active", g.Status)
	}
}

func TestGoals_CreateChecksReferences(t *testing.T) {
	env := newTestEnv(t)
	setupGoalFixtures(t, env)

	_, err := env.goals.Create(GoalCreate{
		Title:          "Цель",
		CollaboratorID: "ghost",
		SectorID:       "s1",
		DueDate:        time.Now().Add(time.Hour),
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Ссылка на несуществующего исполнителя должна отклоняться, получено: %v", err)
	}
}

func TestGoals_OverdueDerivedOnRead(t *testing.T) {
	env := newTestEnv(t)
	setupGoalFixtures(t, env)

	g, err := env.goals.Create(GoalCreate{
		Title:          "Просроченная цель",
		CollaboratorID: "c1",
		SectorID:       "s1",
		DueDate:        time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Ошибка создания цели: %v", err)
	}

	// Сдвигаем часы сервиса за срок цели
	env.goals.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	got, err := env.goals.Get(g.ID)
	if err != nil {
		t.Fatalf("Ошибка получения цели: %v", err)
	}
	if got.Status != model.GoalOverdue {
		t.Errorf("Status = %q, ожидалось overdue", got.Status)
	}

	// Хранимое значение не перезаписано производным
	stored, err := env.goals.store.Get(g.ID)
	if err != nil {
		t.Fatalf("Ошибка чтения хранилища: %v", err)
	}
	if stored.Status != model.GoalActive {
		t.Errorf("Хранимый статус = %q, производный статус не должен записываться", stored.Status)
	}
}

func TestGoals_CompletedIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	setupGoalFixtures(t, env)

	g, err := env.goals.Create(GoalCreate{
		Title:          "Выполненная цель",
		CollaboratorID: "c1",
		SectorID:       "s1",
		DueDate:        time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Ошибка создания цели: %v", err)
	}
	if _, err := env.goals.Complete(g.ID); err != nil {
		t.Fatalf("Ошибка завершения цели: %v", err)
	}

	env.goals.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	got, err := env.goals.Get(g.ID)
	if err != nil {
		t.Fatalf("Ошибка получения цели: %v", err)
	}
	if got.Status != model.GoalCompleted {
		t.Errorf("Status = %q, выполненная цель не переклассифицируется", got.Status)
	}
}

func TestGoals_UpdateRejectsOverdueStatus(t *testing.T) {
	env := newTestEnv(t)
	setupGoalFixtures(t, env)

	g, err := env.goals.Create(GoalCreate{
		Title:          "Цель",
		CollaboratorID: "c1",
		SectorID:       "s1",
		DueDate:        time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Ошибка создания цели: %v", err)
	}

	overdue := model.GoalOverdue
	_, err = env.goals.Update(g.ID, GoalUpdate{Status: &overdue})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Прямое выставление overdue должно отклоняться, получено: %v", err)
	}
}

func TestGoals_ListFiltersByDerivedStatus(t *testing.T) {
	env := newTestEnv(t)
	setupGoalFixtures(t, env)

	mk := func(title string, due time.Time) model.Goal {
		t.Helper()
		g, err := env.goals.Create(GoalCreate{Title: title, CollaboratorID: "c1", SectorID: "s1", DueDate: due})
		if err != nil {
			t.Fatalf("Ошибка создания цели %q: %v", title, err)
		}
		return g
	}

	now := time.Now()
	expired := mk("истёкшая", now.Add(time.Minute))
	mk("будущая", now.Add(72*time.Hour))
	done := mk("закрытая", now.Add(time.Minute))
	if _, err := env.goals.Complete(done.ID); err != nil {
		t.Fatalf("Ошибка завершения цели: %v", err)
	}

	env.goals.now = func() time.Time { return now.Add(24 * time.Hour) }

	overdue, err := env.goals.List(GoalFilter{Status: model.GoalOverdue})
	if err != nil {
		t.Fatalf("Ошибка получения списка: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != expired.ID {
		t.Errorf("Фильтр overdue вернул %d записей, ожидалась одна истёкшая цель", len(overdue))
	}

	active, err := env.goals.List(GoalFilter{Status: model.GoalActive})
	if err != nil {
		t.Fatalf("Ошибка получения списка: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("Фильтр active вернул %d записей, ожидалась одна", len(active))
	}
}

func TestGoals_Stats(t *testing.T) {
	env := newTestEnv(t)
	setupGoalFixtures(t, env)

	now := time.Now()
	due := now.Add(time.Minute)
	future := now.Add(72 * time.Hour)

	for _, in := range []GoalCreate{
		{Title: "активная", CollaboratorID: "c1", SectorID: "s1", DueDate: future},
		{Title: "истёкшая", CollaboratorID: "c1", SectorID: "s1", DueDate: due},
		{Title: "закрытая 1", CollaboratorID: "c1", SectorID: "s1", DueDate: due},
		{Title: "закрытая 2", CollaboratorID: "c1", SectorID: "s1", DueDate: future},
	} {
		if _, err := env.goals.Create(in); err != nil {
			t.Fatalf("Ошибка создания цели %q: %v", in.Title, err)
		}
	}
	for _, title := range []string{"закрытая 1", "закрытая 2"} {
		found, err := env.goals.Search(title)
		if err != nil || len(found) != 1 {
			t.Fatalf("Не найдена цель %q: %v", title, err)
		}
		if _, err := env.goals.Complete(found[0].ID); err != nil {
			t.Fatalf("Ошибка завершения цели: %v", err)
		}
	}

	env.goals.now = func() time.Time { return now.Add(24 * time.Hour) }

	stats, err := env.goals.Stats()
	if err != nil {
		t.Fatalf("Ошибка получения статистики: %v", err)
	}
	if stats.Total != 4 || stats.Active != 1 || stats.Completed != 2 || stats.Overdue != 1 {
		t.Errorf("Статистика %+v, ожидалось Total=4 Active=1 Completed=2 Overdue=1", stats)
	}
	if stats.PerformanceRate != 50 {
		t.Errorf("PerformanceRate = %v, ожидалось 50", stats.PerformanceRate)
	}
}
