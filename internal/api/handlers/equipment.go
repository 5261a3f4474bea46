// equipment.go — HTTP handlers учёта оборудования.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/workbase/internal/api/errors"
	"github.com/arturkryukov/workbase/internal/service"
)

// EquipmentHandler — обработчик endpoints оборудования.
type EquipmentHandler struct {
	svc *service.Equipment
}

// NewEquipmentHandler создаёт обработчик endpoints оборудования.
func NewEquipmentHandler(svc *service.Equipment) *EquipmentHandler {
	return &EquipmentHandler{svc: svc}
}

type equipmentRequest struct {
	ID             string  `json:"id"`
	Name           *string `json:"name"`
	Type           *string `json:"type"`
	SerialNumber   *string `json:"serial_number"`
	Brand          *string `json:"brand"`
	Model          *string `json:"model"`
	AssignedTo     *string `json:"assigned_to"`
	PurchaseDate   *string `json:"purchase_date"`
	WarrantyExpiry *string `json:"warranty_expiry"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
}

// List обрабатывает GET /api/v1/equipment.
// Параметры: search, type, status, assigned_to.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
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

	equipment, err := h.svc.List(service.EquipmentFilter{
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		AssignedTo: q.Get("assigned_to"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

// Get обрабатывает GET /api/v1/equipment/{id}.
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

// WarrantyExpiring обрабатывает GET /api/v1/equipment/warranty-expiring.
// Параметр days — горизонт в днях (по умолчанию 30).
func (h *EquipmentHandler) WarrantyExpiring(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			apierrors.ValidationError(w, "Параметр days должен быть положительным числом")
			return
		}
		days = parsed
	}

	equipment, err := h.svc.WarrantyExpiring(days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

// Create обрабатывает POST /api/v1/equipment.
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.EquipmentCreate{ID: req.ID}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Type != nil {
		in.Type = *req.Type
	}
	if req.SerialNumber != nil {
		in.SerialNumber = *req.SerialNumber
	}
	if req.Brand != nil {
		in.Brand = *req.Brand
	}
	if req.Model != nil {
		in.Model = *req.Model
	}
	if req.AssignedTo != nil {
		in.AssignedTo = *req.AssignedTo
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Notes != nil {
		in.Notes = *req.Notes
	}
	if req.PurchaseDate != nil {
		purchased, err := parseDate(*req.PurchaseDate)
		if err != nil {
			apierrors.ValidationError(w, "Некорректный формат purchase_date: "+*req.PurchaseDate)
			return
		}
		in.PurchaseDate = purchased
	}
	if req.WarrantyExpiry != nil {
		expiry, err := parseDate(*req.WarrantyExpiry)
		if err != nil {
			apierrors.ValidationError(w, "Некорректный формат warranty_expiry: "+*req.WarrantyExpiry)
			return
		}
		in.WarrantyExpiry = expiry
	}

	equipment, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, equipment)
}

// Update обрабатывает PUT /api/v1/equipment/{id}.
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req equipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.EquipmentUpdate{
		Name:         req.Name,
		Type:         req.Type,
		SerialNumber: req.SerialNumber,
		Brand:        req.Brand,
		Model:        req.Model,
		AssignedTo:   req.AssignedTo,
		Status:       req.Status,
		Notes:        req.Notes,
	}
	if req.PurchaseDate != nil {
		purchased, err := parseDate(*req.PurchaseDate)
		if err != nil {
			apierrors.ValidationError(w, "Некорректный формат purchase_date: "+*req.PurchaseDate)
			return
		}
		in.PurchaseDate = &purchased
	}
	if req.WarrantyExpiry != nil {
		expiry, err := parseDate(*req.WarrantyExpiry)
		if err != nil {
			apierrors.ValidationError(w, "Некорректный формат warranty_expiry: "+*req.WarrantyExpiry)
			return
		}
		in.WarrantyExpiry = &expiry
	}

	equipment, err := h.svc.Update(chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

// Assign обрабатывает POST /api/v1/equipment/{id}/assign.
// Тело: {"employee_id": "..."}.
func (h *EquipmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	equipment, err := h.svc.Assign(chi.URLParam(r, "id"), req.EmployeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

// Unassign обрабатывает POST /api/v1/equipment/{id}/unassign.
func (h *EquipmentHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.svc.Unassign(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

// Delete обрабатывает DELETE /api/v1/equipment/{id}.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
