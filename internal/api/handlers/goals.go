// goals.go — HTTP handlers целей.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/workbase/internal/api/errors"
	"github.com/arturkryukov/workbase/internal/domain/model"
	"github.com/arturkryukov/workbase/internal/service"
)

// GoalsHandler — обработчик endpoints целей.
type GoalsHandler struct {
	svc *service.Goals
}

// NewGoalsHandler создаёт обработчик endpoints целей.
func NewGoalsHandler(svc *service.Goals) *GoalsHandler {
	return &GoalsHandler{svc: svc}
}

type goalRequest struct {
	ID             string  `json:"id"`
	Title          *string `json:"title"`
	CollaboratorID *string `json:"collaborator_id"`
	SectorID       *string `json:"sector_id"`
	DueDate        *string `json:"due_date"`
	Description    *string `json:"description"`
	Status         *string `json:"status"`
}

// List обрабатывает GET /api/v1/goals.
// Параметры: search, collaborator_id, sector_id, status.
// Статус каждой цели — производный на момент запроса.
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
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

	goals, err := h.svc.List(service.GoalFilter{
		CollaboratorID: q.Get("collaborator_id"),
		SectorID:       q.Get("sector_id"),
		Status:         model.GoalStatus(q.Get("status")),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// Get обрабатывает GET /api/v1/goals/{id}.
func (h *GoalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	goal, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// Stats обрабатывает GET /api/v1/goals/stats.
func (h *GoalsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Create обрабатывает POST /api/v1/goals.
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.GoalCreate{ID: req.ID}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.CollaboratorID != nil {
		in.CollaboratorID = *req.CollaboratorID
	}
	if req.SectorID != nil {
		in.SectorID = *req.SectorID
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			apierrors.ValidationError(w, "Некорректный формат due_date: "+*req.DueDate)
			return
		}
		in.DueDate = due
	}

	goal, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// Update обрабатывает PUT /api/v1/goals/{id}.
func (h *GoalsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.GoalUpdate{
		Title:       req.Title,
		SectorID:    req.SectorID,
		Description: req.Description,
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			apierrors.ValidationError(w, "Некорректный формат due_date: "+*req.DueDate)
			return
		}
		in.DueDate = &due
	}
	if req.Status != nil {
		status := model.GoalStatus(*req.Status)
		in.Status = &status
	}

	goal, err := h.svc.Update(chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// Complete обрабатывает POST /api/v1/goals/{id}/complete.
func (h *GoalsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	goal, err := h.svc.Complete(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// Delete обрабатывает DELETE /api/v1/goals/{id}.
func (h *GoalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
