// collaborators.go — сервис сотрудников-исполнителей.
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

// CollaboratorCreate — данные для создания сотрудника-исполнителя.
type CollaboratorCreate struct {
	ID       string
	Name     string
	SectorID string
	Email    string
	Phone    string
}

// CollaboratorUpdate — частичное обновление сотрудника-исполнителя.
type CollaboratorUpdate struct {
	Name     *string
	SectorID *string
	Email    *string
	Phone    *string
}

// CollaboratorView — сотрудник с присоединённым подразделением.
// Sector — nil, если подразделение не найдено (висячая ссылка).
type CollaboratorView struct {
	model.Collaborator
	Sector *model.Sector `json:"sector,omitempty"`
}

// Collaborators — сервис сотрудников-исполнителей.
type Collaborators struct {
	store   *collection.Store[model.Collaborator]
	sectors *collection.Store[model.Sector]
	goals   *collection.Store[model.Goal]
	logger  *slog.Logger
	now     func() time.Time
}

// NewCollaborators создаёт сервис сотрудников-исполнителей.
func NewCollaborators(store *collection.Store[model.Collaborator], sectors *collection.Store[model.Sector], goals *collection.Store[model.Goal], logger *slog.Logger) *Collaborators {
	return &Collaborators{
		store:   store,
		sectors: sectors,
		goals:   goals,
		logger:  logger.With(slog.String("component", "collaborators")),
		now:     time.Now,
	}
}

// List возвращает всех сотрудников-исполнителей.
func (s *Collaborators) List() ([]model.Collaborator, error) {
	return s.store.LoadAll()
}

// ListBySector возвращает сотрудников указанного подразделения.
func (s *Collaborators) ListBySector(sectorID string) ([]model.Collaborator, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.Collaborator, 0, len(all))
	for _, c := range all {
		if c.SectorID == sectorID {
			result = append(result, c)
		}
	}
	return result, nil
}

// Get возвращает сотрудника-исполнителя по id.
func (s *Collaborators) Get(id string) (model.Collaborator, error) {
	c, err := s.store.Get(id)
	if errors.Is(err, collection.ErrNotFound) {
		return model.Collaborator{}, fmt.Errorf("%w: сотрудник %s", ErrNotFound, id)
	}
	return c, err
}

// GetView возвращает сотрудника с присоединённым подразделением.
func (s *Collaborators) GetView(id string) (CollaboratorView, error) {
	c, err := s.Get(id)
	if err != nil {
		return CollaboratorView{}, err
	}
	return s.enrich(c), nil
}

// ListViews возвращает всех сотрудников с присоединёнными подразделениями.
func (s *Collaborators) ListViews() ([]CollaboratorView, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	views := make([]CollaboratorView, 0, len(all))
	for _, c := range all {
		views = append(views, s.enrich(c))
	}
	return views, nil
}

// enrich присоединяет подразделение к записи сотрудника.
// Висячая ссылка не считается ошибкой: подразделение остаётся nil.
func (s *Collaborators) enrich(c model.Collaborator) CollaboratorView {
	view := CollaboratorView{Collaborator: c}
	if c.SectorID == "" {
		return view
	}
	sector, err := s.sectors.Get(c.SectorID)
	if err == nil {
		view.Sector = &sector
	}
	return view
}

// Create создаёт сотрудника-исполнителя.
// Подразделение проверяется на существование в момент записи.
func (s *Collaborators) Create(in CollaboratorCreate) (model.Collaborator, error) {
	if in.Name == "" {
		return model.Collaborator{}, validationErrorf("имя сотрудника обязательно")
	}
	if in.SectorID == "" {
		return model.Collaborator{}, validationErrorf("подразделение обязательно")
	}
	if err := checkReference(s.sectors, "sector_id", in.SectorID); err != nil {
		return model.Collaborator{}, err
	}

	c := model.Collaborator{
		ID:        in.ID,
		Name:      in.Name,
		SectorID:  in.SectorID,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: s.now().UTC(),
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if err := s.store.Create(c); err != nil {
		if errors.Is(err, collection.ErrDuplicateID) {
			return model.Collaborator{}, fmt.Errorf("%w: сотрудник %s", ErrConflict, c.ID)
		}
		return model.Collaborator{}, err
	}

	s.logger.Info("сотрудник создан", slog.String("id", c.ID), slog.String("sector_id", c.SectorID))
	return c, nil
}

// Update частично обновляет сотрудника-исполнителя.
// Новое подразделение проверяется на существование до записи.
func (s *Collaborators) Update(id string, in CollaboratorUpdate) (model.Collaborator, error) {
	if in.Name != nil && *in.Name == "" {
		return model.Collaborator{}, validationErrorf("имя сотрудника не может быть пустым")
	}
	if in.SectorID != nil {
		if *in.SectorID == "" {
			return model.Collaborator{}, validationErrorf("подразделение не может быть пустым")
		}
		if err := checkReference(s.sectors, "sector_id", *in.SectorID); err != nil {
			return model.Collaborator{}, err
		}
	}

	c, err := s.store.Update(id, func(col *model.Collaborator) {
		if in.Name != nil {
			col.Name = *in.Name
		}
		if in.SectorID != nil {
			col.SectorID = *in.SectorID
		}
		if in.Email != nil {
			col.Email = *in.Email
		}
		if in.Phone != nil {
			col.Phone = *in.Phone
		}
	})
	if errors.Is(err, collection.ErrNotFound) {
		return model.Collaborator{}, fmt.Errorf("%w: сотрудник %s", ErrNotFound, id)
	}
	return c, err
}

// Delete удаляет сотрудника-исполнителя.
// Удаление заблокировано, пока за сотрудником числятся цели.
func (s *Collaborators) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	err := checkNoDependents(s.goals, id, func(g model.Goal) bool {
		return g.CollaboratorID == id
	})
	if err != nil {
		return err
	}

	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return fmt.Errorf("%w: сотрудник %s", ErrNotFound, id)
		}
		return err
	}

	s.logger.Info("сотрудник удалён", slog.String("id", id))
	return nil
}

// Search ищет сотрудников по имени и адресу почты.
func (s *Collaborators) Search(term string) ([]model.Collaborator, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.Collaborator, 0, len(all))
	for _, c := range all {
		if anyContainsFold(term, c.Name, c.Email) {
			result = append(result, c)
		}
	}
	return result, nil
}
