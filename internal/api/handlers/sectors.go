// sectors.go — HTTP handlers подразделений.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/workbase/internal/api/errors"
	"github.com/arturkryukov/workbase/internal/service"
)

// SectorsHandler — обработчик endpoints подразделений.
type SectorsHandler struct {
	svc *service.Sectors
}

// NewSectorsHandler создаёт обработчик endpoints подразделений.
func NewSectorsHandler(svc *service.Sectors) *SectorsHandler {
	return &SectorsHandler{svc: svc}
}

type sectorRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

// List обрабатывает GET /api/v1/sectors.
// Параметр search — поиск по имени и описанию.
func (h *SectorsHandler) List(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.svc.Search(r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sectors)
}

// Get обрабатывает GET /api/v1/sectors/{id}.
func (h *SectorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sector, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sector)
}

// Create обрабатывает POST /api/v1/sectors.
func (h *SectorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sectorRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.SectorCreate{ID: req.ID}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Color != nil {
		in.Color = *req.Color
	}
	if req.Icon != nil {
		in.Icon = *req.Icon
	}

	sector, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sector)
}

// Update обрабатывает PUT /api/v1/sectors/{id}.
// Отсутствующие в теле поля не изменяются.
func (h *SectorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req sectorRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	sector, err := h.svc.Update(chi.URLParam(r, "id"), service.SectorUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sector)
}

// Delete обрабатывает DELETE /api/v1/sectors/{id}.
func (h *SectorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
