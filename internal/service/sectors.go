// sectors.go — сервис подразделений.
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

// SectorCreate — данные для создания подразделения.
type SectorCreate struct {
	ID          string
	Name        string
	Description string
	Color       string
	Icon        string
}

// SectorUpdate — частичное обновление подразделения.
// nil-поле — значение не меняется.
type SectorUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}

// Sectors — сервис подразделений.
type Sectors struct {
	store         *collection.Store[model.Sector]
	collaborators *collection.Store[model.Collaborator]
	logger        *slog.Logger
	now           func() time.Time
}

// NewSectors создаёт сервис подразделений.
// Хранилище collaborators нужно для блокировки удаления занятых подразделений.
func NewSectors(store *collection.Store[model.Sector], collaborators *collection.Store[model.Collaborator], logger *slog.Logger) *Sectors {
	return &Sectors{
		store:         store,
		collaborators: collaborators,
		logger:        logger.With(slog.String("component", "sectors")),
		now:           time.Now,
	}
}

// List возвращает все подразделения.
func (s *Sectors) List() ([]model.Sector, error) {
	return s.store.LoadAll()
}

// Get возвращает подразделение по id.
func (s *Sectors) Get(id string) (model.Sector, error) {
	sector, err := s.store.Get(id)
	if errors.Is(err, collection.ErrNotFound) {
		return model.Sector{}, fmt.Errorf("%w: подразделение %s", ErrNotFound, id)
	}
	return sector, err
}

// Create создаёт подразделение. Пустой ID генерируется автоматически.
func (s *Sectors) Create(in SectorCreate) (model.Sector, error) {
	if in.Name == "" {
		return model.Sector{}, validationErrorf("имя подразделения обязательно")
	}

	sector := model.Sector{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
		CreatedAt:   s.now().UTC(),
	}
	if sector.ID == "" {
		sector.ID = uuid.NewString()
	}

	if err := s.store.Create(sector); err != nil {
		if errors.Is(err, collection.ErrDuplicateID) {
			return model.Sector{}, fmt.Errorf("%w: подразделение %s", ErrConflict, sector.ID)
		}
		return model.Sector{}, err
	}

	s.logger.Info("подразделение создано", slog.String("id", sector.ID), slog.String("name", sector.Name))
	return sector, nil
}

// Update частично обновляет подразделение.
func (s *Sectors) Update(id string, in SectorUpdate) (model.Sector, error) {
	if in.Name != nil && *in.Name == "" {
		return model.Sector{}, validationErrorf("имя подразделения не может быть пустым")
	}

	sector, err := s.store.Update(id, func(sec *model.Sector) {
		if in.Name != nil {
			sec.Name = *in.Name
		}
		if in.Description != nil {
			sec.Description = *in.Description
		}
		if in.Color != nil {
			sec.Color = *in.Color
		}
		if in.Icon != nil {
			sec.Icon = *in.Icon
		}
	})
	if errors.Is(err, collection.ErrNotFound) {
		return model.Sector{}, fmt.Errorf("%w: подразделение %s", ErrNotFound, id)
	}
	return sector, err
}

// Delete удаляет подразделение.
// Удаление заблокировано, пока в подразделении числятся сотрудники.
func (s *Sectors) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	err := checkNoDependents(s.collaborators, id, func(c model.Collaborator) bool {
		return c.SectorID == id
	})
	if err != nil {
		return err
	}

	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return fmt.Errorf("%w: подразделение %s", ErrNotFound, id)
		}
		return err
	}

	s.logger.Info("подразделение удалено", slog.String("id", id))
	return nil
}

// Search ищет подразделения по имени и описанию.
func (s *Sectors) Search(term string) ([]model.Sector, error) {
	sectors, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}

	result := make([]model.Sector, 0, len(sectors))
	for _, sec := range sectors {
		if anyContainsFold(term, sec.Name, sec.Description) {
			result = append(result, sec)
		}
	}
	return result, nil
}

// SeedDefaults создаёт стандартный набор подразделений,
// если коллекция пуста. Повторные вызовы — no-op.
func (s *Sectors) SeedDefaults() error {
	count, err := s.store.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []SectorCreate{
		{ID: "commercial", Name: "Коммерческий отдел", Description: "Продажи и работа с клиентами", Color: "blue", Icon: "fas fa-handshake"},
		{ID: "technical", Name: "Технический отдел", Description: "Монтаж и техническое обслуживание", Color: "green", Icon: "fas fa-tools"},
		{ID: "finance", Name: "Финансовый отдел", Description: "Бухгалтерия и финансы", Color: "yellow", Icon: "fas fa-calculator"},
		{ID: "hr", Name: "Отдел кадров", Description: "Управление персоналом", Color: "purple", Icon: "fas fa-users"},
		{ID: "it", Name: "Информационные технологии", Description: "Системы и инфраструктура", Color: "indigo", Icon: "fas fa-laptop-code"},
		{ID: "marketing", Name: "Маркетинг", Description: "Маркетинг и коммуникации", Color: "pink", Icon: "fas fa-bullhorn"},
	}
	for _, d := range defaults {
		if _, err := s.Create(d); err != nil {
			return fmt.Errorf("не удалось создать стандартное подразделение %s: %w", d.ID, err)
		}
	}

	s.logger.Info("созданы стандартные подразделения", slog.Int("count", len(defaults)))
	return nil
}
