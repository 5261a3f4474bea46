// documents.go — HTTP handlers корпоративных документов и вложений.
// Загрузка вложений — multipart/form-data, отдача — http.ServeFile.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/workbase/internal/api/errors"
	"github.com/arturkryukov/workbase/internal/api/middleware"
	"github.com/arturkryukov/workbase/internal/service"
)

// DocumentsHandler — обработчик endpoints документов.
type DocumentsHandler struct {
	svc           *service.Documents
	maxUploadSize int64
}

// NewDocumentsHandler создаёт обработчик endpoints документов.
// maxUploadSize — лимит размера загружаемого вложения в байтах.
func NewDocumentsHandler(svc *service.Documents, maxUploadSize int64) *DocumentsHandler {
	return &DocumentsHandler{svc: svc, maxUploadSize: maxUploadSize}
}

type documentRequest struct {
	ID         string    `json:"id"`
	Title      *string   `json:"title"`
	Type       *string   `json:"type"`
	Content    *string   `json:"content"`
	EmployeeID *string   `json:"employee_id"`
	Department *string   `json:"department"`
	Status     *string   `json:"status"`
	Tags       *[]string `json:"tags"`
}

// List обрабатывает GET /api/v1/documents.
// Параметры: search, type, status, employee_id, department.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
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

	documents, err := h.svc.List(service.DocumentFilter{
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		EmployeeID: q.Get("employee_id"),
		Department: q.Get("department"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documents)
}

// Recent обрабатывает GET /api/v1/documents/recent.
// Параметр limit — максимум записей (по умолчанию 10).
func (h *DocumentsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			apierrors.ValidationError(w, "Параметр limit должен быть положительным числом")
			return
		}
		limit = parsed
	}

	documents, err := h.svc.Recent(limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documents)
}

// Stats обрабатывает GET /api/v1/documents/stats.
func (h *DocumentsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Get обрабатывает GET /api/v1/documents/{id}.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	document, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

// Create обрабатывает POST /api/v1/documents.
// Автор берётся из sub токена, если аутентификация включена.
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	in := service.DocumentCreate{
		ID:        req.ID,
		CreatedBy: middleware.SubjectFromContext(r.Context()),
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Type != nil {
		in.Type = *req.Type
	}
	if req.Content != nil {
		in.Content = *req.Content
	}
	if req.EmployeeID != nil {
		in.EmployeeID = *req.EmployeeID
	}
	if req.Department != nil {
		in.Department = *req.Department
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}

	document, err := h.svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, document)
}

// Update обрабатывает PUT /api/v1/documents/{id}.
func (h *DocumentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	document, err := h.svc.Update(chi.URLParam(r, "id"), service.DocumentUpdate{
		Title:      req.Title,
		Type:       req.Type,
		Content:    req.Content,
		EmployeeID: req.EmployeeID,
		Department: req.Department,
		Status:     req.Status,
		Tags:       req.Tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

// Delete обрабатывает DELETE /api/v1/documents/{id}.
// Вместе с документом удаляются файлы всех вложений.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAttachment обрабатывает POST /api/v1/documents/{id}/attachments.
// Multipart form: file (обязательно).
func (h *DocumentsHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.FileTooLarge(w, fmt.Sprintf("Файл превышает лимит %d байт", h.maxUploadSize))
			return
		}
		apierrors.ValidationError(w, "Ошибка парсинга multipart: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле 'file' обязательно")
		return
	}
	defer file.Close()

	attachment, err := h.svc.AddAttachment(
		chi.URLParam(r, "id"),
		header.Filename,
		middleware.SubjectFromContext(r.Context()),
		file,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachment)
}

// DownloadAttachment обрабатывает GET /api/v1/documents/{id}/attachments/{attachment_id}.
// Отдаёт файл с оригинальным именем в Content-Disposition.
func (h *DocumentsHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	attachment, path, err := h.svc.AttachmentPath(
		chi.URLParam(r, "id"),
		chi.URLParam(r, "attachment_id"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", attachment.OriginalFilename))
	http.ServeFile(w, r, path)
}

// DeleteAttachment обрабатывает DELETE /api/v1/documents/{id}/attachments/{attachment_id}.
func (h *DocumentsHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveAttachment(
		chi.URLParam(r, "id"),
		chi.URLParam(r, "attachment_id"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
