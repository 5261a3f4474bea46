// documents.go — сервис корпоративных документов и вложений.
//
// Жизненный цикл вложения: файл сначала сохраняется на диск, затем
// метаданные добавляются в запись документа. При ошибке обновления
// метаданных сохранённый файл удаляется — осиротевших файлов не остаётся.
// Удаление документа каскадно удаляет физические файлы всех вложений.
package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/arturkryukov/workbase/internal/domain/model"
	"github.com/arturkryukov/workbase/internal/storage/collection"
	"github.com/arturkryukov/workbase/internal/storage/filestore"
)

// DocumentCreate — данные для создания документа.
type DocumentCreate struct {
	ID         string
	Title      string
	Type       string
	Content    string
	EmployeeID string
	Department string
	Status     string
	Tags       []string
	CreatedBy  string
}

// DocumentUpdate — частичное обновление документа.
// Вложения обновляются только операциями AddAttachment/RemoveAttachment.
type DocumentUpdate struct {
	Title      *string
	Type       *string
	Content    *string
	EmployeeID *string
	Department *string
	Status     *string
	Tags       *[]string
}

// DocumentFilter — фильтры списка документов.
type DocumentFilter struct {
	Type       string
	Status     string
	EmployeeID string
	Department string
}

// DocumentStats — сводная статистика по документам.
type DocumentStats struct {
	Total            int            `json:"total_documents"`
	TotalAttachments int            `json:"total_attachments"`
	ByType           map[string]int `json:"by_type"`
	ByStatus         map[string]int `json:"by_status"`
	ByDepartment     map[string]int `json:"by_department"`
}

// Documents — сервис корпоративных документов.
type Documents struct {
	store      *collection.Store[model.CorporateDocument]
	employees  *collection.Store[model.Employee]
	files      *filestore.FileStore
	allowedExt map[string]struct{}
	logger     *slog.Logger
	now        func() time.Time
}

// NewDocuments создаёт сервис документов.
// allowedExtensions — разрешённые расширения вложений без точки,
// в нижнем регистре.
func NewDocuments(store *collection.Store[model.CorporateDocument], employees *collection.Store[model.Employee], files *filestore.FileStore, allowedExtensions []string, logger *slog.Logger) *Documents {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[ext] = struct{}{}
	}
	return &Documents{
		store:      store,
		employees:  employees,
		files:      files,
		allowedExt: allowed,
		logger:     logger.With(slog.String("component", "documents")),
		now:        time.Now,
	}
}

// List возвращает документы, прошедшие фильтр.
func (s *Documents) List(filter DocumentFilter) ([]model.CorporateDocument, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.CorporateDocument, 0, len(all))
	for _, d := range all {
		if filter.Type != "" && d.Type != filter.Type {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.EmployeeID != "" && d.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Department != "" && !containsFold(d.Department, filter.Department) {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

// Get возвращает документ по id.
func (s *Documents) Get(id string) (model.CorporateDocument, error) {
	d, err := s.store.Get(id)
	if errors.Is(err, collection.ErrNotFound) {
		return model.CorporateDocument{}, fmt.Errorf("%w: документ %s", ErrNotFound, id)
	}
	return d, err
}

// Create создаёт документ без вложений.
// EmployeeID — опциональная ссылка на сотрудника, проверяется при записи.
func (s *Documents) Create(in DocumentCreate) (model.CorporateDocument, error) {
	if in.Title == "" {
		return model.CorporateDocument{}, validationErrorf("название документа обязательно")
	}
	if in.Type == "" {
		return model.CorporateDocument{}, validationErrorf("тип документа обязателен")
	}
	if err := checkReference(s.employees, "employee_id", in.EmployeeID); err != nil {
		return model.CorporateDocument{}, err
	}

	now := s.now().UTC()
	d := model.CorporateDocument{
		ID:         in.ID,
		Title:      in.Title,
		Type:       in.Type,
		Content:    in.Content,
		EmployeeID: in.EmployeeID,
		Department: in.Department,
		Status:     in.Status,
		Tags:       in.Tags,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = "active"
	}

	if err := s.store.Create(d); err != nil {
		if errors.Is(err, collection.ErrDuplicateID) {
			return model.CorporateDocument{}, fmt.Errorf("%w: документ %s", ErrConflict, d.ID)
		}
		return model.CorporateDocument{}, err
	}

	s.logger.Info("документ создан", slog.String("id", d.ID), slog.String("type", d.Type))
	return d, nil
}

// Update частично обновляет документ.
func (s *Documents) Update(id string, in DocumentUpdate) (model.CorporateDocument, error) {
	if in.Title != nil && *in.Title == "" {
		return model.CorporateDocument{}, validationErrorf("название документа не может быть пустым")
	}
	if in.EmployeeID != nil {
		if err := checkReference(s.employees, "employee_id", *in.EmployeeID); err != nil {
			return model.CorporateDocument{}, err
		}
	}

	d, err := s.store.Update(id, func(doc *model.CorporateDocument) {
		if in.Title != nil {
			doc.Title = *in.Title
		}
		if in.Type != nil {
			doc.Type = *in.Type
		}
		if in.Content != nil {
			doc.Content = *in.Content
		}
		if in.EmployeeID != nil {
			doc.EmployeeID = *in.EmployeeID
		}
		if in.Department != nil {
			doc.Department = *in.Department
		}
		if in.Status != nil {
			doc.Status = *in.Status
		}
		if in.Tags != nil {
			doc.Tags = *in.Tags
		}
		doc.UpdatedAt = s.now().UTC()
	})
	if errors.Is(err, collection.ErrNotFound) {
		return model.CorporateDocument{}, fmt.Errorf("%w: документ %s", ErrNotFound, id)
	}
	return d, err
}

// Delete удаляет документ и физические файлы всех его вложений.
// Файлы удаляются до записи метаданных; отсутствующий на диске файл
// не прерывает удаление.
func (s *Documents) Delete(id string) error {
	d, err := s.Get(id)
	if err != nil {
		return err
	}

	for _, att := range d.Attachments {
		if err := s.files.Delete(att.Filename); err != nil {
			s.logger.Warn("не удалось удалить файл вложения",
				slog.String("document_id", id),
				slog.String("filename", att.Filename),
				slog.Any("error", err))
		}
	}

	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return fmt.Errorf("%w: документ %s", ErrNotFound, id)
		}
		return err
	}

	s.logger.Info("документ удалён",
		slog.String("id", id),
		slog.Int("attachments", len(d.Attachments)))
	return nil
}

// AddAttachment сохраняет файл вложения и добавляет метаданные к документу.
// Расширение проверяется по списку разрешённых; размер в метаданных —
// фактический размер записанного файла.
func (s *Documents) AddAttachment(documentID, originalFilename, uploadedBy string, reader io.Reader) (model.Attachment, error) {
	if originalFilename == "" {
		return model.Attachment{}, validationErrorf("не указано имя файла")
	}
	ext := filestore.Extension(originalFilename)
	if _, ok := s.allowedExt[ext]; !ok {
		return model.Attachment{}, validationErrorf("недопустимый тип файла: %s", originalFilename)
	}
	if _, err := s.Get(documentID); err != nil {
		return model.Attachment{}, err
	}

	saved, err := s.files.Save(reader, originalFilename)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("не удалось сохранить файл вложения: %w", err)
	}

	att := model.Attachment{
		ID:               uuid.NewString(),
		DocumentID:       documentID,
		Filename:         saved.StoredName,
		OriginalFilename: originalFilename,
		FilePath:         saved.FullPath,
		FileSize:         saved.Size,
		FileType:         ext,
		UploadedBy:       uploadedBy,
		UploadedAt:       s.now().UTC(),
	}

	_, err = s.store.Update(documentID, func(doc *model.CorporateDocument) {
		doc.Attachments = append(doc.Attachments, att)
		doc.UpdatedAt = s.now().UTC()
	})
	if err != nil {
		// файл уже на диске — откатываем, чтобы не оставить сироту
		if delErr := s.files.Delete(saved.StoredName); delErr != nil {
			s.logger.Warn("не удалось откатить сохранённый файл",
				slog.String("filename", saved.StoredName),
				slog.Any("error", delErr))
		}
		if errors.Is(err, collection.ErrNotFound) {
			return model.Attachment{}, fmt.Errorf("%w: документ %s", ErrNotFound, documentID)
		}
		return model.Attachment{}, err
	}

	s.logger.Info("вложение добавлено",
		slog.String("document_id", documentID),
		slog.String("attachment_id", att.ID),
		slog.Int64("size", att.FileSize))
	return att, nil
}

// GetAttachment возвращает метаданные вложения документа.
func (s *Documents) GetAttachment(documentID, attachmentID string) (model.Attachment, error) {
	d, err := s.Get(documentID)
	if err != nil {
		return model.Attachment{}, err
	}
	for _, att := range d.Attachments {
		if att.ID == attachmentID {
			return att, nil
		}
	}
	return model.Attachment{}, fmt.Errorf("%w: вложение %s", ErrNotFound, attachmentID)
}

// AttachmentPath возвращает путь к файлу вложения для отдачи клиенту.
func (s *Documents) AttachmentPath(documentID, attachmentID string) (model.Attachment, string, error) {
	att, err := s.GetAttachment(documentID, attachmentID)
	if err != nil {
		return model.Attachment{}, "", err
	}
	if !s.files.Exists(att.Filename) {
		return model.Attachment{}, "", fmt.Errorf("%w: файл вложения %s", ErrNotFound, att.Filename)
	}
	return att, s.files.FullPath(att.Filename), nil
}

// RemoveAttachment удаляет вложение: метаданные из записи документа
// и физический файл с диска. Отсутствующий файл не считается ошибкой.
func (s *Documents) RemoveAttachment(documentID, attachmentID string) error {
	var removed *model.Attachment
	_, err := s.store.Update(documentID, func(doc *model.CorporateDocument) {
		for i, att := range doc.Attachments {
			if att.ID == attachmentID {
				removed = &att
				doc.Attachments = append(doc.Attachments[:i], doc.Attachments[i+1:]...)
				doc.UpdatedAt = s.now().UTC()
				return
			}
		}
	})
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return fmt.Errorf("%w: документ %s", ErrNotFound, documentID)
		}
		return err
	}
	if removed == nil {
		return fmt.Errorf("%w: вложение %s", ErrNotFound, attachmentID)
	}

	if err := s.files.Delete(removed.Filename); err != nil {
		s.logger.Warn("не удалось удалить файл вложения",
			slog.String("filename", removed.Filename),
			slog.Any("error", err))
	}

	s.logger.Info("вложение удалено",
		slog.String("document_id", documentID),
		slog.String("attachment_id", attachmentID))
	return nil
}

// Search ищет документы по названию, содержимому и тегам.
func (s *Documents) Search(term string) ([]model.CorporateDocument, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	result := make([]model.CorporateDocument, 0, len(all))
	for _, d := range all {
		if anyContainsFold(term, d.Title, d.Content) || tagsContainFold(d.Tags, term) {
			result = append(result, d)
		}
	}
	return result, nil
}

func tagsContainFold(tags []string, term string) bool {
	if term == "" {
		return true
	}
	for _, t := range tags {
		if containsFold(t, term) {
			return true
		}
	}
	return false
}

// Recent возвращает не более limit последних по времени обновления документов.
func (s *Documents) Recent(limit int) ([]model.CorporateDocument, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Stats возвращает сводную статистику по документам.
func (s *Documents) Stats() (DocumentStats, error) {
	all, err := s.store.LoadAll()
	if err != nil {
		return DocumentStats{}, err
	}
	stats := DocumentStats{
		Total:        len(all),
		ByType:       make(map[string]int),
		ByStatus:     make(map[string]int),
		ByDepartment: make(map[string]int),
	}
	for _, d := range all {
		stats.ByType[d.Type]++
		stats.ByStatus[d.Status]++
		if d.Department != "" {
			stats.ByDepartment[d.Department]++
		}
		stats.TotalAttachments += len(d.Attachments)
	}
	return stats, nil
}
