// trainings.go — модели модуля внутренних обучений.
// Все три коллекции (категории, обучения, прогресс) хранятся
// в одном файле trainings.json как объект с тремя списками.
package model

import "time"

// TrainingCategory — категория обучений.
type TrainingCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Training — внутреннее обучение.
// Materials — имена файлов материалов в директории загрузок обучений.
type Training struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CategoryID  string    `json:"category_id"`
	Duration    int       `json:"duration"`
	Difficulty  string    `json:"difficulty"`
	Instructor  string    `json:"instructor,omitempty"`
	Materials   []string  `json:"materials,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TrainingProgress — прогресс пользователя по обучению.
// Ключ записи — пара (user_id, training_id): на пару хранится
// не более одной записи, повторная запись заменяет существующую.
type TrainingProgress struct {
	UserID             string     `json:"user_id"`
	TrainingID         string     `json:"training_id"`
	ProgressPercentage float64    `json:"progress_percentage"`
	CompletedModules   []string   `json:"completed_modules,omitempty"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CertificateURL     string     `json:"certificate_url,omitempty"`
}

// TrainingData — содержимое файла trainings.json целиком.
type TrainingData struct {
	Categories []TrainingCategory `json:"categories"`
	Trainings  []Training         `json:"trainings"`
	Progress   []TrainingProgress `json:"progress"`
}
