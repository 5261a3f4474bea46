// trainings.go — сервис внутренних обучений.
//
// Категории, обучения и прогресс хранятся в одном файле trainings.json;
// каждая мутация перечитывает и перезаписывает файл целиком под общим
// замком документа.
package service

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arturkryukov/workbase/internal/domain/model"
	"github.com/arturkryukov/workbase/internal/storage/collection"
	"github.com/arturkryukov/workbase/internal/storage/filestore"
)

// TrainingCategoryCreate — данные для создания категории обучений.
type TrainingCategoryCreate struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Color       string
}

// TrainingCreate — данные для создания обучения.
type TrainingCreate struct {
	ID          string
	Title       string
	Description string
	CategoryID  string
	Duration    int
	Difficulty  string
	Instructor  string
	VideoURL    string
}

// TrainingUpdate — частичное обновление обучения.
type TrainingUpdate struct {
	Title       *string
	Description *string
	CategoryID  *string
	Duration    *int
	Difficulty  *string
	Instructor  *string
	VideoURL    *string
	IsActive    *bool
}

// ProgressUpsert — запись прогресса пользователя по обучению.
// На пару (user_id, training_id) хранится одна запись: повторная
// запись заменяет существующую.
type ProgressUpsert struct {
	UserID             string
	TrainingID         string
	ProgressPercentage float64
	CompletedModules   []string
	CertificateURL     string
}

// TrainingStats — сводная статистика модуля обучений.
type TrainingStats struct {
	TotalTrainings    int     `json:"total_trainings"`
	ActiveTrainings   int     `json:"active_trainings"`
	Categories        int     `json:"total_categories"`
	ProgressRecords   int     `json:"progress_records"`
	Completions       int     `json:"completions"`
	TotalParticipants int     `json:"total_participants"`
	AvgCompletionRate float64 `json:"avg_completion_rate"`
}

// Trainings — сервис внутренних обучений.
type Trainings struct {
	store      *collection.DocStore[model.TrainingData]
	files      *filestore.FileStore
	allowedExt map[string]struct{}
	logger     *slog.Logger
	now        func() time.Time
}

// NewTrainings создаёт сервис обучений.
// files — хранилище файлов учебных материалов; allowedExtensions —
// разрешённые расширения материалов без точки, в нижнем регистре.
func NewTrainings(store *collection.DocStore[model.TrainingData], files *filestore.FileStore, allowedExtensions []string, logger *slog.Logger) *Trainings {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[ext] = struct{}{}
	}
	return &Trainings{
		store:      store,
		files:      files,
		allowedExt: allowed,
		logger:     logger.With(slog.String("component", "trainings")),
		now:        time.Now,
	}
}

// --- Категории ---

// Categories возвращает все категории обучений.
func (s *Trainings) Categories() ([]model.TrainingCategory, error) {
	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return data.Categories, nil
}

// CreateCategory создаёт категорию обучений.
func (s *Trainings) CreateCategory(in TrainingCategoryCreate) (model.TrainingCategory, error) {
	if in.Name == "" {
		return model.TrainingCategory{}, validationErrorf("имя категории обязательно")
	}

	cat := model.TrainingCategory{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
		Color:       in.Color,
	}
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}

	_, err := s.store.Mutate(func(data *model.TrainingData) error {
		for _, c := range data.Categories {
			if c.ID == cat.ID {
				return fmt.Errorf("%w: категория %s", ErrConflict, cat.ID)
			}
		}
		data.Categories = append(data.Categories, cat)
		return nil
	})
	if err != nil {
		return model.TrainingCategory{}, err
	}

	s.logger.Info("категория создана", slog.String("id", cat.ID), slog.String("name", cat.Name))
	return cat, nil
}

// DeleteCategory удаляет категорию.
// Удаление заблокировано, пока в категории есть обучения.
func (s *Trainings) DeleteCategory(id string) error {
	_, err := s.store.Mutate(func(data *model.TrainingData) error {
		for _, t := range data.Trainings {
			if t.CategoryID == id {
				return &ReferenceError{ID: id, Collection: "trainings", Dependent: true}
			}
		}
		for i, c := range data.Categories {
			if c.ID == id {
				data.Categories = append(data.Categories[:i], data.Categories[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: категория %s", ErrNotFound, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("категория удалена", slog.String("id", id))
	return nil
}

// --- Обучения ---

// List возвращает обучения, опционально отфильтрованные по категории.
func (s *Trainings) List(categoryID string) ([]model.Training, error) {
	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if categoryID == "" {
		return data.Trainings, nil
	}
	result := make([]model.Training, 0, len(data.Trainings))
	for _, t := range data.Trainings {
		if t.CategoryID == categoryID {
			result = append(result, t)
		}
	}
	return result, nil
}

// Get возвращает обучение по id.
func (s *Trainings) Get(id string) (model.Training, error) {
	data, err := s.store.Load()
	if err != nil {
		return model.Training{}, err
	}
	for _, t := range data.Trainings {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Training{}, fmt.Errorf("%w: обучение %s", ErrNotFound, id)
}

// Create создаёт обучение. Категория проверяется на существование
// в той же мутации, что и запись.
func (s *Trainings) Create(in TrainingCreate) (model.Training, error) {
	if in.Title == "" {
		return model.Training{}, validationErrorf("название обучения обязательно")
	}
	if in.CategoryID == "" {
		return model.Training{}, validationErrorf("категория обучения обязательна")
	}

	now := s.now().UTC()
	tr := model.Training{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Duration:    in.Duration,
		Difficulty:  in.Difficulty,
		Instructor:  in.Instructor,
		VideoURL:    in.VideoURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}

	_, err := s.store.Mutate(func(data *model.TrainingData) error {
		if !categoryExists(data, tr.CategoryID) {
			return &ReferenceError{Field: "category_id", ID: tr.CategoryID, Collection: "training_categories"}
		}
		for _, t := range data.Trainings {
			if t.ID == tr.ID {
				return fmt.Errorf("%w: обучение %s", ErrConflict, tr.ID)
			}
		}
		data.Trainings = append(data.Trainings, tr)
		return nil
	})
	if err != nil {
		return model.Training{}, err
	}

	s.logger.Info("обучение создано", slog.String("id", tr.ID), slog.String("category_id", tr.CategoryID))
	return tr, nil
}

// Update частично обновляет обучение.
func (s *Trainings) Update(id string, in TrainingUpdate) (model.Training, error) {
	if in.Title != nil && *in.Title == "" {
		return model.Training{}, validationErrorf("название обучения не может быть пустым")
	}

	var updated model.Training
	_, err := s.store.Mutate(func(data *model.TrainingData) error {
		if in.CategoryID != nil && !categoryExists(data, *in.CategoryID) {
			return &ReferenceError{Field: "category_id", ID: *in.CategoryID, Collection: "training_categories"}
		}
		for i := range data.Trainings {
			if data.Trainings[i].ID != id {
				continue
			}
			t := &data.Trainings[i]
			if in.Title != nil {
				t.Title = *in.Title
			}
			if in.Description != nil {
				t.Description = *in.Description
			}
			if in.CategoryID != nil {
				t.CategoryID = *in.CategoryID
			}
			if in.Duration != nil {
				t.Duration = *in.Duration
			}
			if in.Difficulty != nil {
				t.Difficulty = *in.Difficulty
			}
			if in.Instructor != nil {
				t.Instructor = *in.Instructor
			}
			if in.VideoURL != nil {
				t.VideoURL = *in.VideoURL
			}
			if in.IsActive != nil {
				t.IsActive = *in.IsActive
			}
			t.UpdatedAt = s.now().UTC()
			updated = *t
			return nil
		}
		return fmt.Errorf("%w: обучение %s", ErrNotFound, id)
	})
	if err != nil {
		return model.Training{}, err
	}
	return updated, nil
}

// Delete удаляет обучение вместе с файлами материалов
// и записями прогресса по нему.
func (s *Trainings) Delete(id string) error {
	var materials []string
	_, err := s.store.Mutate(func(data *model.TrainingData) error {
		idx := -1
		for i, t := range data.Trainings {
			if t.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: обучение %s", ErrNotFound, id)
		}
		materials = data.Trainings[idx].Materials
		data.Trainings = append(data.Trainings[:idx], data.Trainings[idx+1:]...)

		progress := data.Progress[:0]
		for _, p := range data.Progress {
			if p.TrainingID != id {
				progress = append(progress, p)
			}
		}
		data.Progress = progress
		return nil
	})
	if err != nil {
		return err
	}

	for _, name := range materials {
		if err := s.files.Delete(name); err != nil {
			s.logger.Warn("не удалось удалить файл материала",
				slog.String("training_id", id),
				slog.String("filename", name),
				slog.Any("error", err))
		}
	}

	s.logger.Info("обучение удалено", slog.String("id", id), slog.Int("materials", len(materials)))
	return nil
}

// Search ищет обучения по названию, описанию и преподавателю.
func (s *Trainings) Search(term string) ([]model.Training, error) {
	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	result := make([]model.Training, 0, len(data.Trainings))
	for _, t := range data.Trainings {
		if anyContainsFold(term, t.Title, t.Description, t.Instructor) {
			result = append(result, t)
		}
	}
	return result, nil
}

// --- Материалы ---

// UploadMaterial сохраняет файл учебного материала и привязывает
// его к обучению. Расширение проверяется по списку разрешённых;
// при ошибке привязки файл удаляется.
func (s *Trainings) UploadMaterial(trainingID, originalFilename string, reader io.Reader) (string, error) {
	if originalFilename == "" {
		return "", validationErrorf("не указано имя файла")
	}
	ext := filestore.Extension(originalFilename)
	if _, ok := s.allowedExt[ext]; !ok {
		return "", validationErrorf("недопустимый тип файла: %s", originalFilename)
	}

	saved, err := s.files.Save(reader, originalFilename)
	if err != nil {
		return "", fmt.Errorf("не удалось сохранить файл материала: %w", err)
	}

	_, err = s.store.Mutate(func(data *model.TrainingData) error {
		for i := range data.Trainings {
			if data.Trainings[i].ID == trainingID {
				data.Trainings[i].Materials = append(data.Trainings[i].Materials, saved.StoredName)
				data.Trainings[i].UpdatedAt = s.now().UTC()
				return nil
			}
		}
		return fmt.Errorf("%w: обучение %s", ErrNotFound, trainingID)
	})
	if err != nil {
		if delErr := s.files.Delete(saved.StoredName); delErr != nil {
			s.logger.Warn("не удалось откатить сохранённый файл",
				slog.String("filename", saved.StoredName),
				slog.Any("error", delErr))
		}
		return "", err
	}

	s.logger.Info("материал загружен",
		slog.String("training_id", trainingID),
		slog.String("filename", saved.StoredName))
	return saved.StoredName, nil
}

// MaterialPath возвращает путь к файлу материала обучения.
func (s *Trainings) MaterialPath(trainingID, storedName string) (string, error) {
	tr, err := s.Get(trainingID)
	if err != nil {
		return "", err
	}
	for _, name := range tr.Materials {
		if name == storedName {
			if !s.files.Exists(name) {
				return "", fmt.Errorf("%w: файл материала %s", ErrNotFound, name)
			}
			return s.files.FullPath(name), nil
		}
	}
	return "", fmt.Errorf("%w: материал %s", ErrNotFound, storedName)
}

// --- Прогресс ---

// Progress возвращает записи прогресса пользователя.
// Пустой userID — прогресс всех пользователей.
func (s *Trainings) Progress(userID string) ([]model.TrainingProgress, error) {
	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return data.Progress, nil
	}
	result := make([]model.TrainingProgress, 0, len(data.Progress))
	for _, p := range data.Progress {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

// UpsertProgress записывает прогресс пользователя по обучению.
// Существующая запись пары (user_id, training_id) заменяется; при
// достижении 100% проставляется CompletedAt, StartedAt сохраняется
// от первой записи.
func (s *Trainings) UpsertProgress(in ProgressUpsert) (model.TrainingProgress, error) {
	if in.UserID == "" {
		return model.TrainingProgress{}, validationErrorf("не указан пользователь")
	}
	if in.TrainingID == "" {
		return model.TrainingProgress{}, validationErrorf("не указано обучение")
	}
	if in.ProgressPercentage < 0 || in.ProgressPercentage > 100 {
		return model.TrainingProgress{}, validationErrorf("прогресс должен быть в диапазоне 0..100")
	}

	now := s.now().UTC()
	rec := model.TrainingProgress{
		UserID:             in.UserID,
		TrainingID:         in.TrainingID,
		ProgressPercentage: in.ProgressPercentage,
		CompletedModules:   in.CompletedModules,
		StartedAt:          now,
		CertificateURL:     in.CertificateURL,
	}
	if in.ProgressPercentage >= 100 {
		rec.CompletedAt = &now
	}

	_, err := s.store.Mutate(func(data *model.TrainingData) error {
		if !trainingExists(data, in.TrainingID) {
			return &ReferenceError{Field: "training_id", ID: in.TrainingID, Collection: "trainings"}
		}
		for i, p := range data.Progress {
			if p.UserID == in.UserID && p.TrainingID == in.TrainingID {
				rec.StartedAt = p.StartedAt
				data.Progress[i] = rec
				return nil
			}
		}
		data.Progress = append(data.Progress, rec)
		return nil
	})
	if err != nil {
		return model.TrainingProgress{}, err
	}

	s.logger.Info("прогресс записан",
		slog.String("user_id", in.UserID),
		slog.String("training_id", in.TrainingID),
		slog.Float64("progress", in.ProgressPercentage))
	return rec, nil
}

// Stats возвращает сводную статистику модуля обучений.
func (s *Trainings) Stats() (TrainingStats, error) {
	data, err := s.store.Load()
	if err != nil {
		return TrainingStats{}, err
	}
	stats := TrainingStats{
		TotalTrainings:  len(data.Trainings),
		Categories:      len(data.Categories),
		ProgressRecords: len(data.Progress),
	}
	for _, t := range data.Trainings {
		if t.IsActive {
			stats.ActiveTrainings++
		}
	}
	users := make(map[string]struct{})
	var sum float64
	for _, p := range data.Progress {
		if p.CompletedAt != nil {
			stats.Completions++
		}
		users[p.UserID] = struct{}{}
		sum += p.ProgressPercentage
	}
	stats.TotalParticipants = len(users)
	if len(data.Progress) > 0 {
		stats.AvgCompletionRate = sum / float64(len(data.Progress))
	}
	return stats, nil
}

func categoryExists(data *model.TrainingData, id string) bool {
	for _, c := range data.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func trainingExists(data *model.TrainingData, id string) bool {
	for _, t := range data.Trainings {
		if t.ID == id {
			return true
		}
	}
	return false
}
