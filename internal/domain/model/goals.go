// Пакет model — доменные модели Workbase.
// Записи сериализуются в JSON-файлы коллекций напрямую: теги json
// определяют формат хранения на диске и формат API-ответов.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// GoalStatus — статус цели.
type GoalStatus string

const (
	// GoalActive — цель в работе
	GoalActive GoalStatus = "active"
	// GoalCompleted — цель выполнена (терминальный статус)
	GoalCompleted GoalStatus = "completed"
	// GoalOverdue — срок цели истёк
	GoalOverdue GoalStatus = "overdue"
)

// UnmarshalJSON валидирует статус при декодировании.
// Неизвестное значение — ошибка декодирования записи (запись пропускается
// при загрузке коллекции).
func (s *GoalStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch GoalStatus(raw) {
	case GoalActive, GoalCompleted, GoalOverdue:
		*s = GoalStatus(raw)
		return nil
	default:
		return fmt.Errorf("неизвестный статус цели: %q", raw)
	}
}

// Sector — подразделение компании.
type Sector struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntityID возвращает идентификатор записи.
func (s Sector) EntityID() string { return s.ID }

// Collaborator — сотрудник-исполнитель целей.
// SectorID — внешний ключ на Sector, проверяется при записи.
type Collaborator struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SectorID  string    `json:"sector_id"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EntityID возвращает идентификатор записи.
func (c Collaborator) EntityID() string { return c.ID }

// Goal — цель сотрудника.
// Поле Status в файле может отставать: признак overdue вычисляется
// при каждом чтении через Derived, на диск не записывается.
type Goal struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	CollaboratorID string     `json:"collaborator_id"`
	SectorID       string     `json:"sector_id"`
	DueDate        time.Time  `json:"due_date"`
	Description    string     `json:"description,omitempty"`
	Status         GoalStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// EntityID возвращает идентификатор записи.
func (g Goal) EntityID() string { return g.ID }

// IsOverdue проверяет, просрочена ли активная цель на момент now.
func (g Goal) IsOverdue(now time.Time) bool {
	return g.Status == GoalActive && now.After(g.DueDate)
}

// Derived возвращает копию цели с пересчитанным статусом на момент now.
// Чистая функция: исходная запись не изменяется, результат не сохраняется.
// Статус completed терминален и не переклассифицируется независимо
// от due_date.
func (g Goal) Derived(now time.Time) Goal {
	if g.IsOverdue(now) {
		g.Status = GoalOverdue
	}
	return g
}
