// employees.go — сервис сотрудников HR-модуля.
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

// EmployeeCreate — данные для создания сотрудника.
type EmployeeCreate struct {
	ID         string
	Name       string
	Position   string
	Department string
	Email      string
	Phone      string
	HireDate   time.Time
	Status     model.EmployeeStatus
	Notes      string
}

// EmployeeUpdate — частичное обновление сотрудника.
type EmployeeUpdate struct {
	Name       *string
	Position   *string
	Department *string
	Email      *string
	Phone      *string
	HireDate   *time.Time
	Status     *model.EmployeeStatus
	Notes      *string
}

// EmployeeFilter — фильтры списка сотрудников.
type EmployeeFilter struct {
	Department string
	Status     model.EmployeeStatus
}

// Employees — сервис сотрудников.
type Employees struct {
	store     *collection.Store[model.Employee]
	equipment *collection.Store[model.Equipment]
	documents *collection.Store[model.CorporateDocument]
	logger    *slog.Logger
	now       func() time.Time
}

// NewEmployees создаёт сервис сотрудников.
// Хранилища equipment и documents нужны для блокировки удаления
// сотрудников с привязанными записями.
func NewEmployees(store *collection.Store[model.Employee], equipment *collection.Store[model.Equipment], documents *collection.Store[model.CorporateDocument], logger *slog.Logger) *Employees {
	return &Employees{
		store:     store,
		equipment: equipment,
		documents: documents,
		logger:    logger.With(slog.String("component", "employees")),
		now:       time.Now,
	}
}

// List возвращает сотрудников, прошедших фильтр.
func (s *Employees) List(filter EmployeeFilter) ([]model.Employee, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.Employee, 0, len(all))
	for _, e := range all {
		if filter.Department != "" && !containsFold(e.Department, filter.Department) {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// Get возвращает сотрудника по id.
func (s *Employees) Get(id string) (model.Employee, error) {
	e, err := s.store.Get(id)
	if errors.Is(err, collection.ErrNotFound) {
		return model.Employee{}, fmt.Errorf("%w: сотрудник %s", ErrNotFound, id)
	}
	return e, err
}

// Create создаёт сотрудника. Пустой статус — active.
func (s *Employees) Create(in EmployeeCreate) (model.Employee, error) {
	if in.Name == "" {
		return model.Employee{}, validationErrorf("имя сотрудника обязательно")
	}
	if in.Position == "" {
		return model.Employee{}, validationErrorf("должность сотрудника обязательна")
	}
	if in.Status == "" {
		in.Status = model.EmployeeActive
	}
	if !model.ValidEmployeeStatus(in.Status) {
		return model.Employee{}, validationErrorf("недопустимый статус сотрудника: %s", in.Status)
	}

	now := s.now().UTC()
	e := model.Employee{
		ID:         in.ID,
		Name:       in.Name,
		Position:   in.Position,
		Department: in.Department,
		Email:      in.Email,
		Phone:      in.Phone,
		HireDate:   in.HireDate,
		Status:     in.Status,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	if err := s.store.Create(e); err != nil {
		if errors.Is(err, collection.ErrDuplicateID) {
			return model.Employee{}, fmt.Errorf("%w: сотрудник %s", ErrConflict, e.ID)
		}
		return model.Employee{}, err
	}

	s.logger.Info("сотрудник создан", slog.String("id", e.ID), slog.String("position", e.Position))
	return e, nil
}

// Update частично обновляет сотрудника.
func (s *Employees) Update(id string, in EmployeeUpdate) (model.Employee, error) {
	if in.Name != nil && *in.Name == "" {
		return model.Employee{}, validationErrorf("имя сотрудника не может быть пустым")
	}
	if in.Status != nil && !model.ValidEmployeeStatus(*in.Status) {
		return model.Employee{}, validationErrorf("недопустимый статус сотрудника: %s", *in.Status)
	}

	e, err := s.store.Update(id, func(emp *model.Employee) {
		if in.Name != nil {
			emp.Name = *in.Name
		}
		if in.Position != nil {
			emp.Position = *in.Position
		}
		if in.Department != nil {
			emp.Department = *in.Department
		}
		if in.Email != nil {
			emp.Email = *in.Email
		}
		if in.Phone != nil {
			emp.Phone = *in.Phone
		}
		if in.HireDate != nil {
			emp.HireDate = *in.HireDate
		}
		if in.Status != nil {
			emp.Status = *in.Status
		}
		if in.Notes != nil {
			emp.Notes = *in.Notes
		}
		emp.UpdatedAt = s.now().UTC()
	})
	if errors.Is(err, collection.ErrNotFound) {
		return model.Employee{}, fmt.Errorf("%w: сотрудник %s", ErrNotFound, id)
	}
	return e, err
}

// Delete удаляет сотрудника.
// Удаление заблокировано, пока за сотрудником числится оборудование
// или документы.
func (s *Employees) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	err := checkNoDependents(s.equipment, id, func(eq model.Equipment) bool {
		return eq.AssignedTo == id
	})
	if err != nil {
		return err
	}
	err = checkNoDependents(s.documents, id, func(d model.CorporateDocument) bool {
		return d.EmployeeID == id
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

// Search ищет сотрудников по имени, должности, отделу и почте.
func (s *Employees) Search(term string) ([]model.Employee, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.Employee, 0, len(all))
	for _, e := range all {
		if anyContainsFold(term, e.Name, e.Position, e.Department, e.Email) {
			result = append(result, e)
		}
	}
	return result, nil
}
