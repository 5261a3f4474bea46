// hr.go — модели HR-модуля: сотрудники, оборудование,
// корпоративные документы и их вложения.
package model

import "time"

// EmployeeStatus — статус сотрудника.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
	EmployeeOnLeave  EmployeeStatus = "on_leave"
)

// ValidEmployeeStatus проверяет допустимость статуса сотрудника.
func ValidEmployeeStatus(s EmployeeStatus) bool {
	switch s {
	case EmployeeActive, EmployeeInactive, EmployeeOnLeave:
		return true
	}
	return false
}

// Employee — сотрудник компании.
type Employee struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Position   string         `json:"position"`
	Department string         `json:"department"`
	Email      string         `json:"email,omitempty"`
	Phone      string         `json:"phone,omitempty"`
	HireDate   time.Time      `json:"hire_date"`
	Status     EmployeeStatus `json:"status"`
	Notes      string         `json:"notes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// EntityID возвращает идентификатор записи.
func (e Employee) EntityID() string { return e.ID }

// Equipment — единица оборудования.
// AssignedTo — опциональный внешний ключ на Employee: пустая строка
// означает, что оборудование никому не выдано.
type Equipment struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	SerialNumber   string    `json:"serial_number"`
	Brand          string    `json:"brand,omitempty"`
	Model          string    `json:"model,omitempty"`
	AssignedTo     string    `json:"assigned_to,omitempty"`
	PurchaseDate   time.Time `json:"purchase_date"`
	WarrantyExpiry time.Time `json:"warranty_expiry"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EntityID возвращает идентификатор записи.
func (e Equipment) EntityID() string { return e.ID }

// WarrantyExpiresWithin проверяет, истекает ли гарантия в ближайшие days дней.
func (e Equipment) WarrantyExpiresWithin(now time.Time, days int) bool {
	if e.WarrantyExpiry.IsZero() {
		return false
	}
	deadline := now.AddDate(0, 0, days)
	return e.WarrantyExpiry.After(now) && !e.WarrantyExpiry.After(deadline)
}

// CorporateDocument — корпоративный документ.
// Вложения встроены в запись документа и принадлежат только ему:
// удаление документа удаляет физические файлы всех вложений.
type CorporateDocument struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        string       `json:"type"`
	Content     string       `json:"content,omitempty"`
	EmployeeID  string       `json:"employee_id,omitempty"`
	Department  string       `json:"department,omitempty"`
	Status      string       `json:"status"`
	Tags        []string     `json:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedBy   string       `json:"created_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// EntityID возвращает идентификатор записи.
func (d CorporateDocument) EntityID() string { return d.ID }

// Attachment — метаданные вложения документа.
// Filename — имя файла на диске ({uuid}_{очищенное имя}),
// OriginalFilename — имя при загрузке.
type Attachment struct {
	ID               string    `json:"id"`
	DocumentID       string    `json:"document_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	FileType         string    `json:"file_type"`
	UploadedBy       string    `json:"uploaded_by,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}
