// goals.go — сервис целей.
//
// Статус overdue — производный: при каждом чтении активная цель с истёкшим
// сроком возвращается как просроченная. На диск производный статус
// не записывается, хранимое значение может отставать от возвращаемого.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arturkryukov/workbase/internal/domain/model"
	"github.com/arturkryukov/workbase/internal/storage/collection"
)

// GoalCreate — данные для создания цели.
type GoalCreate struct {
	ID             string
	Title          string
	CollaboratorID string
	SectorID       string
	DueDate        time.Time
	Description    string
}

// GoalUpdate — частичное обновление цели.
type GoalUpdate struct {
	Title       *string
	SectorID    *string
	DueDate     *time.Time
	Description *string
	Status      *model.GoalStatus
}

// GoalFilter — фильтры списка целей. Пустое поле — фильтр не применяется.
// Status сопоставляется с производным статусом, не с хранимым.
type GoalFilter struct {
	CollaboratorID string
	SectorID       string
	Status         model.GoalStatus
}

// GoalStats — сводная статистика по целям.
// Производный статус учитывается: активная цель с истёкшим сроком
// попадает в Overdue, не в Active.
type GoalStats struct {
	Total           int     `json:"total_goals"`
	Active          int     `json:"active_goals"`
	Completed       int     `json:"completed_goals"`
	Overdue         int     `json:"overdue_goals"`
	PerformanceRate float64 `json:"performance_rate"`
}

// Goals — сервис целей.
type Goals struct {
	store         *collection.Store[model.Goal]
	collaborators *collection.Store[model.Collaborator]
	sectors       *collection.Store[model.Sector]
	logger        *slog.Logger
	now           func() time.Time
}

// NewGoals создаёт сервис целей.
func NewGoals(store *collection.Store[model.Goal], collaborators *collection.Store[model.Collaborator], sectors *collection.Store[model.Sector], logger *slog.Logger) *Goals {
	return &Goals{
		store:         store,
		collaborators: collaborators,
		sectors:       sectors,
		logger:        logger.With(slog.String("component", "goals")),
		now:           time.Now,
	}
}

// List возвращает цели, прошедшие фильтр, с производным статусом.
func (s *Goals) List(filter GoalFilter) ([]model.Goal, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make([]model.Goal, 0, len(all))
	for _, g := range all {
		g = g.Derived(now)
		if filter.CollaboratorID != "" && g.CollaboratorID != filter.CollaboratorID {
			continue
		}
		if filter.SectorID != "" && g.SectorID != filter.SectorID {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		result = append(result, g)
	}
	return result, nil
}

// Get возвращает цель по id с производным статусом.
func (s *Goals) Get(id string) (model.Goal, error) {
	g, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return model.Goal{}, fmt.Errorf("%w: цель %s", ErrNotFound, id)
		}
		return model.Goal{}, err
	}
	return g.Derived(s.now()), nil
}

// Create создаёт цель в статусе active.
// Сотрудник и подразделение проверяются на существование в момент записи.
func (s *Goals) Create(in GoalCreate) (model.Goal, error) {
	if in.Title == "" {
		return model.Goal{}, validationErrorf("название цели обязательно")
	}
	if in.CollaboratorID == "" {
		return model.Goal{}, validationErrorf("исполнитель цели обязателен")
	}
	if in.DueDate.IsZero() {
		return model.Goal{}, validationErrorf("срок цели обязателен")
	}
	if err := checkReference(s.collaborators, "collaborator_id", in.CollaboratorID); err != nil {
		return model.Goal{}, err
	}
	if err := checkReference(s.sectors, "sector_id", in.SectorID); err != nil {
		return model.Goal{}, err
	}

	now := s.now().UTC()
	g := model.Goal{
		ID:             in.ID,
		Title:          in.Title,
		CollaboratorID: in.CollaboratorID,
		SectorID:       in.SectorID,
		DueDate:        in.DueDate,
		Description:    in.Description,
		Status:         model.GoalActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}

	if err := s.store.Create(g); err != nil {
		if errors.Is(err, collection.ErrDuplicateID) {
			return model.Goal{}, fmt.Errorf("%w: цель %s", ErrConflict, g.ID)
		}
		return model.Goal{}, err
	}

	s.logger.Info("цель создана",
		slog.String("id", g.ID),
		slog.String("collaborator_id", g.CollaboratorID),
		slog.Time("due_date", g.DueDate))
	return g.Derived(s.now()), nil
}

// Update частично обновляет цель.
// Разрешённые значения статуса — active и completed: overdue производный
// и напрямую не выставляется.
func (s *Goals) Update(id string, in GoalUpdate) (model.Goal, error) {
	if in.Title != nil && *in.Title == "" {
		return model.Goal{}, validationErrorf("название цели не может быть пустым")
	}
	if in.Status != nil && *in.Status != model.GoalActive && *in.Status != model.GoalCompleted {
		return model.Goal{}, validationErrorf("недопустимый статус цели: %s", *in.Status)
	}
	if in.SectorID != nil {
		if err := checkReference(s.sectors, "sector_id", *in.SectorID); err != nil {
			return model.Goal{}, err
		}
	}

	g, err := s.store.Update(id, func(goal *model.Goal) {
		if in.Title != nil {
			goal.Title = *in.Title
		}
		if in.SectorID != nil {
			goal.SectorID = *in.SectorID
		}
		if in.DueDate != nil {
			goal.DueDate = *in.DueDate
		}
		if in.Description != nil {
			goal.Description = *in.Description
		}
		if in.Status != nil {
			goal.Status = *in.Status
		}
		goal.UpdatedAt = s.now().UTC()
	})
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return model.Goal{}, fmt.Errorf("%w: цель %s", ErrNotFound, id)
		}
		return model.Goal{}, err
	}
	return g.Derived(s.now()), nil
}

// Complete переводит цель в терминальный статус completed.
// Выполненная цель не переклассифицируется в просроченную.
func (s *Goals) Complete(id string) (model.Goal, error) {
	status := model.GoalCompleted
	return s.Update(id, GoalUpdate{Status: &status})
}

// Delete удаляет цель.
func (s *Goals) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return fmt.Errorf("%w: цель %s", ErrNotFound, id)
		}
		return err
	}
	s.logger.Info("цель удалена", slog.String("id", id))
	return nil
}

// Search ищет цели по названию и описанию с производным статусом.
func (s *Goals) Search(term string) ([]model.Goal, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make([]model.Goal, 0, len(all))
	for _, g := range all {
		if anyContainsFold(term, g.Title, g.Description) {
			result = append(result, g.Derived(now))
		}
	}
	return result, nil
}

// Stats возвращает сводную статистику по целям.
func (s *Goals) Stats() (GoalStats, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return GoalStats{}, err
	}

	now := s.now()
	stats := GoalStats{Total: len(all)}
	for _, g := range all {
		switch g.Derived(now).Status {
		case model.GoalActive:
			stats.Active++
		case model.GoalCompleted:
			stats.Completed++
		case model.GoalOverdue:
			stats.Overdue++
		}
	}
	if stats.Total > 0 {
		stats.PerformanceRate = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return stats, nil
}
