// collaborators.go — HTTP handlers сотрудников-исполнителей.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/workbase/internal/api/errors"
	"github.com/arturkryukov/workbase/internal/service"
)

// CollaboratorsHandler — обработчик endpoints сотрудников-исполнителей.
type CollaboratorsHandler struct {
	svc *service.Collaborators
}

// NewCollaboratorsHandler создаёт обработчик endpoints сотрудников-исполнителей.
func NewCollaboratorsHandler(svc *service.Collaborators) *CollaboratorsHandler {
	return &CollaboratorsHandler{svc: svc}
}

type collaboratorRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name"`
	SectorID *string `json:"sector_id"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
}

// List обрабатывает GET /api/v1/collaborators.
// Параметры: search — поиск по имени и почте, sector_id — фильтр
// по подразделению. Ответ включает присоединённое подразделение.
func (h *CollaboratorsHandler) List(w http.ResponseWriter, r *http.Request) {
	if term := r.URL.Query().Get("search"); term != "" {
		found, err := h.svc.Search(term)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, found)
		return
	}
	if sectorID := r.URL.Query().Get("sector_id"); sectorID != "" {
		found, err := h.svc.ListBySector(sectorID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, found)
		return
	}

	views, err := h.svc.ListViews()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Get обрабатывает GET /api/v1/collaborators/{id}.
func (h *CollaboratorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetView(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Create обрабатывает POST /api/v1/collaborators.
func (h *CollaboratorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req collaboratorRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.CollaboratorCreate{ID: req.ID}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.SectorID != nil {
		in.SectorID = *req.SectorID
	}
	if req.Email != nil {
		in.Email = *req.Email
	}
	if req.Phone != nil {
		in.Phone = *req.Phone
	}

	collaborator, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collaborator)
}

// Update обрабатывает PUT /api/v1/collaborators/{id}.
func (h *CollaboratorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req collaboratorRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	collaborator, err := h.svc.Update(chi.URLParam(r, "id"), service.CollaboratorUpdate{
		Name:     req.Name,
		SectorID: req.SectorID,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collaborator)
}

// Delete обрабатывает DELETE /api/v1/collaborators/{id}.
func (h *CollaboratorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
