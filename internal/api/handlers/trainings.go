// trainings.go — HTTP handlers модуля внутренних обучений.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/workbase/internal/api/errors"
	"github.com/arturkryukov/workbase/internal/api/middleware"
	"github.com/arturkryukov/workbase/internal/service"
)

// TrainingsHandler — обработчик endpoints обучений.
type TrainingsHandler struct {
	svc           *service.Trainings
	maxUploadSize int64
}

// NewTrainingsHandler создаёт обработчик endpoints обучений.
func NewTrainingsHandler(svc *service.Trainings, maxUploadSize int64) *TrainingsHandler {
	return &TrainingsHandler{svc: svc, maxUploadSize: maxUploadSize}
}

type trainingRequest struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
	Duration    *int    `json:"duration"`
	Difficulty  *string `json:"difficulty"`
	Instructor  *string `json:"instructor"`
	VideoURL    *string `json:"video_url"`
	IsActive    *bool   `json:"is_active"`
}

type categoryRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

type progressRequest struct {
	UserID             string   `json:"user_id"`
	TrainingID         string   `json:"training_id"`
	ProgressPercentage float64  `json:"progress_percentage"`
	CompletedModules   []string `json:"completed_modules"`
	CertificateURL     string   `json:"certificate_url"`
}

// --- Категории ---

// ListCategories обрабатывает GET /api/v1/trainings/categories.
func (h *TrainingsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory обрабатывает POST /api/v1/trainings/categories.
func (h *TrainingsHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	category, err := h.svc.CreateCategory(service.TrainingCategoryCreate{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// DeleteCategory обрабатывает DELETE /api/v1/trainings/categories/{id}.
func (h *TrainingsHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Обучения ---

// List обрабатывает GET /api/v1/trainings.
// Параметры: search, category_id.
func (h *TrainingsHandler) List(w http.ResponseWriter, r *http.Request) {
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

	trainings, err := h.svc.List(q.Get("category_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trainings)
}

// Get обрабатывает GET /api/v1/trainings/{id}.
func (h *TrainingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	training, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, training)
}

// Stats обрабатывает GET /api/v1/trainings/stats.
func (h *TrainingsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Create обрабатывает POST /api/v1/trainings.
func (h *TrainingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req trainingRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.TrainingCreate{ID: req.ID}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.CategoryID != nil {
		in.CategoryID = *req.CategoryID
	}
	if req.Duration != nil {
		in.Duration = *req.Duration
	}
	if req.Difficulty != nil {
		in.Difficulty = *req.Difficulty
	}
	if req.Instructor != nil {
		in.Instructor = *req.Instructor
	}
	if req.VideoURL != nil {
		in.VideoURL = *req.VideoURL
	}

	training, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, training)
}

// Update обрабатывает PUT /api/v1/trainings/{id}.
func (h *TrainingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req trainingRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	training, err := h.svc.Update(chi.URLParam(r, "id"), service.TrainingUpdate{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Duration:    req.Duration,
		Difficulty:  req.Difficulty,
		Instructor:  req.Instructor,
		VideoURL:    req.VideoURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, training)
}

// Delete обрабатывает DELETE /api/v1/trainings/{id}.
// Удаляются файлы материалов и записи прогресса обучения.
func (h *TrainingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Материалы ---

// UploadMaterial обрабатывает POST /api/v1/trainings/{id}/materials.
// Multipart form: file (обязательно).
func (h *TrainingsHandler) UploadMaterial(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		apierrors.ValidationError(w, "Ошибка парсинга multipart: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле 'file' обязательно")
		return
	}
	defer file.Close()

	storedName, err := h.svc.UploadMaterial(chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"filename": storedName})
}

// DownloadMaterial обрабатывает GET /api/v1/trainings/{id}/materials/{filename}.
func (h *TrainingsHandler) DownloadMaterial(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.MaterialPath(chi.URLParam(r, "id"), chi.URLParam(r, "filename"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

// --- Прогресс ---

// ListProgress обрабатывает GET /api/v1/trainings/progress.
// Параметр user_id — фильтр по пользователю; без него — прогресс всех.
func (h *TrainingsHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.svc.Progress(r.URL.Query().Get("user_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// UpsertProgress обрабатывает POST /api/v1/trainings/progress.
// Пустой user_id в теле заменяется sub из токена.
func (h *TrainingsHandler) UpsertProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = middleware.SubjectFromContext(r.Context())
	}

	progress, err := h.svc.UpsertProgress(service.ProgressUpsert{
		UserID:             req.UserID,
		TrainingID:         req.TrainingID,
		ProgressPercentage: req.ProgressPercentage,
		CompletedModules:   req.CompletedModules,
		CertificateURL:     req.CertificateURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
