// employees.go — HTTP handlers сотрудников HR-модуля.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/workbase/internal/api/errors"
	"github.com/arturkryukov/workbase/internal/domain/model"
	"github.com/arturkryukov/workbase/internal/service"
)

// EmployeesHandler — обработчик endpoints сотрудников.
type EmployeesHandler struct {
	svc *service.Employees
}

// NewEmployeesHandler создаёт обработчик endpoints сотрудников.
func NewEmployeesHandler(svc *service.Employees) *EmployeesHandler {
	return &EmployeesHandler{svc: svc}
}

type employeeRequest struct {
	ID         string  `json:"id"`
	Name       *string `json:"name"`
	Position   *string `json:"position"`
	Department *string `json:"department"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	HireDate   *string `json:"hire_date"`
	Status     *string `json:"status"`
	Notes      *string `json:"notes"`
}

// List обрабатывает GET /api/v1/employees.
// Параметры: search, department, status.
func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if term := q.Get("search"); term != "" {
		found, err := h.svc.Search(term)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, found)
		return
	}

	employees, err := h.svc.List(service.EmployeeFilter{
		Department: q.Get("department"),
		Status:     model.EmployeeStatus(q.Get("status")),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

// Get обрабатывает GET /api/v1/employees/{id}.
func (h *EmployeesHandler) Get(w http.ResponseWriter, r *http.Request) {
	employee, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, employee)
}

// Create обрабатывает POST /api/v1/employees.
func (h *EmployeesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.EmployeeCreate{ID: req.ID}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Position != nil {
		in.Position = *req.Position
	}
	if req.Department != nil {
		in.Department = *req.Department
	}
	if req.Email != nil {
		in.Email = *req.Email
	}
	if req.Phone != nil {
		in.Phone = *req.Phone
	}
	if req.Status != nil {
		in.Status = model.EmployeeStatus(*req.Status)
	}
	if req.Notes != nil {
		in.Notes = *req.Notes
	}
	if req.HireDate != nil {
		hired, err := parseDate(*req.HireDate)
		if err != nil {
			apierrors.ValidationError(w, "Некорректный формат hire_date: "+*req.HireDate)
			return
		}
		in.HireDate = hired
	}

	employee, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, employee)
}

// Update обрабатывает PUT /api/v1/employees/{id}.
func (h *EmployeesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.EmployeeUpdate{
		Name:       req.Name,
		Position:   req.Position,
		Department: req.Department,
		Email:      req.Email,
		Phone:      req.Phone,
		Notes:      req.Notes,
	}
	if req.Status != nil {
		status := model.EmployeeStatus(*req.Status)
		in.Status = &status
	}
	if req.HireDate != nil {
		hired, err := parseDate(*req.HireDate)
		if err != nil {
			apierrors.ValidationError(w, "Некорректный формат hire_date: "+*req.HireDate)
			return
		}
		in.HireDate = &hired
	}

	employee, err := h.svc.Update(chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, employee)
}

// Delete обрабатывает DELETE /api/v1/employees/{id}.
func (h *EmployeesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseDate разбирает дату: RFC 3339 либо дата без времени.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
