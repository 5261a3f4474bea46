// equipment.go — сервис учёта оборудования.
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

// EquipmentCreate — данные для создания единицы оборудования.
type EquipmentCreate struct {
	ID             string
	Name           string
	Type           string
	SerialNumber   string
	Brand          string
	Model          string
	AssignedTo     string
	PurchaseDate   time.Time
	WarrantyExpiry time.Time
	Status         string
	Notes          string
}

// EquipmentUpdate — частичное обновление единицы оборудования.
type EquipmentUpdate struct {
	Name           *string
	Type           *string
	SerialNumber   *string
	Brand          *string
	Model          *string
	AssignedTo     *string
	PurchaseDate   *time.Time
	WarrantyExpiry *time.Time
	Status         *string
	Notes          *string
}

// EquipmentFilter — фильтры списка оборудования.
type EquipmentFilter struct {
	Type       string
	Status     string
	AssignedTo string
}

// Equipment — сервис учёта оборудования.
type Equipment struct {
	store     *collection.Store[model.Equipment]
	employees *collection.Store[model.Employee]
	logger    *slog.Logger
	now       func() time.Time
}

// NewEquipment создаёт сервис учёта оборудования.
func NewEquipment(store *collection.Store[model.Equipment], employees *collection.Store[model.Employee], logger *slog.Logger) *Equipment {
	return &Equipment{
		store:     store,
		employees: employees,
		logger:    logger.With(slog.String("component", "equipment")),
		now:       time.Now,
	}
}

// List возвращает оборудование, прошедшее фильтр.
func (s *Equipment) List(filter EquipmentFilter) ([]model.Equipment, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.Equipment, 0, len(all))
	for _, eq := range all {
		if filter.Type != "" && !containsFold(eq.Type, filter.Type) {
			continue
		}
		if filter.Status != "" && eq.Status != filter.Status {
			continue
		}
		if filter.AssignedTo != "" && eq.AssignedTo != filter.AssignedTo {
			continue
		}
		result = append(result, eq)
	}
	return result, nil
}

// Get возвращает единицу оборудования по id.
func (s *Equipment) Get(id string) (model.Equipment, error) {
	eq, err := s.store.Get(id)
	if errors.Is(err, collection.ErrNotFound) {
		return model.Equipment{}, fmt.Errorf("%w: оборудование %s", ErrNotFound, id)
	}
	return eq, err
}

// Create создаёт единицу оборудования.
// AssignedTo — опциональная ссылка на сотрудника, проверяется при записи.
func (s *Equipment) Create(in EquipmentCreate) (model.Equipment, error) {
	if in.Name == "" {
		return model.Equipment{}, validationErrorf("название оборудования обязательно")
	}
	if in.Type == "" {
		return model.Equipment{}, validationErrorf("тип оборудования обязателен")
	}
	if err := checkReference(s.employees, "assigned_to", in.AssignedTo); err != nil {
		return model.Equipment{}, err
	}

	now := s.now().UTC()
	eq := model.Equipment{
		ID:             in.ID,
		Name:           in.Name,
		Type:           in.Type,
		SerialNumber:   in.SerialNumber,
		Brand:          in.Brand,
		Model:          in.Model,
		AssignedTo:     in.AssignedTo,
		PurchaseDate:   in.PurchaseDate,
		WarrantyExpiry: in.WarrantyExpiry,
		Status:         in.Status,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if eq.ID == "" {
		eq.ID = uuid.NewString()
	}
	if eq.Status == "" {
		eq.Status = "available"
	}

	if err := s.store.Create(eq); err != nil {
		if errors.Is(err, collection.ErrDuplicateID) {
			return model.Equipment{}, fmt.Errorf("%w: оборудование %s", ErrConflict, eq.ID)
		}
		return model.Equipment{}, err
	}

	s.logger.Info("оборудование создано", slog.String("id", eq.ID), slog.String("type", eq.Type))
	return eq, nil
}

// Update частично обновляет единицу оборудования.
// Новый AssignedTo проверяется до записи; пустое значение снимает привязку.
func (s *Equipment) Update(id string, in EquipmentUpdate) (model.Equipment, error) {
	if in.Name != nil && *in.Name == "" {
		return model.Equipment{}, validationErrorf("название оборудования не может быть пустым")
	}
	if in.AssignedTo != nil {
		if err := checkReference(s.employees, "assigned_to", *in.AssignedTo); err != nil {
			return model.Equipment{}, err
		}
	}

	eq, err := s.store.Update(id, func(e *model.Equipment) {
		if in.Name != nil {
			e.Name = *in.Name
		}
		if in.Type != nil {
			e.Type = *in.Type
		}
		if in.SerialNumber != nil {
			e.SerialNumber = *in.SerialNumber
		}
		if in.Brand != nil {
			e.Brand = *in.Brand
		}
		if in.Model != nil {
			e.Model = *in.Model
		}
		if in.AssignedTo != nil {
			e.AssignedTo = *in.AssignedTo
		}
		if in.PurchaseDate != nil {
			e.PurchaseDate = *in.PurchaseDate
		}
		if in.WarrantyExpiry != nil {
			e.WarrantyExpiry = *in.WarrantyExpiry
		}
		if in.Status != nil {
			e.Status = *in.Status
		}
		if in.Notes != nil {
			e.Notes = *in.Notes
		}
		e.UpdatedAt = s.now().UTC()
	})
	if errors.Is(err, collection.ErrNotFound) {
		return model.Equipment{}, fmt.Errorf("%w: оборудование %s", ErrNotFound, id)
	}
	return eq, err
}

// Assign выдаёт оборудование сотруднику.
func (s *Equipment) Assign(id, employeeID string) (model.Equipment, error) {
	if employeeID == "" {
		return model.Equipment{}, validationErrorf("не указан сотрудник")
	}
	status := "assigned"
	return s.Update(id, EquipmentUpdate{AssignedTo: &employeeID, Status: &status})
}

// Unassign снимает привязку оборудования к сотруднику.
func (s *Equipment) Unassign(id string) (model.Equipment, error) {
	empty := ""
	status := "available"
	return s.Update(id, EquipmentUpdate{AssignedTo: &empty, Status: &status})
}

// Delete удаляет единицу оборудования.
func (s *Equipment) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return fmt.Errorf("%w: оборудование %s", ErrNotFound, id)
		}
		return err
	}
	s.logger.Info("оборудование удалено", slog.String("id", id))
	return nil
}

// Search ищет оборудование по названию, серийному номеру, бренду и модели.
func (s *Equipment) Search(term string) ([]model.Equipment, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.Equipment, 0, len(all))
	for _, eq := range all {
		if anyContainsFold(term, eq.Name, eq.SerialNumber, eq.Brand, eq.Model) {
			result = append(result, eq)
		}
	}
	return result, nil
}

// WarrantyExpiring возвращает оборудование, гарантия которого
// истекает в ближайшие days дней.
func (s *Equipment) WarrantyExpiring(days int) ([]model.Equipment, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	now := s.now()
	result := make([]model.Equipment, 0)
	for _, eq := range all {
		if eq.WarrantyExpiresWithin(now, days) {
			result = append(result, eq)
		}
	}
	return result, nil
}
