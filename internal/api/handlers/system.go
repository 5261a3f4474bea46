// system.go — обработчик GET /api/v1/info (информация об экземпляре Workbase).
// Публичный endpoint (без аутентификации) для service discovery и мониторинга.
package handlers

import (
	"net/http"

	"github.com/arturkryukov/workbase/internal/config"
)

// RecordCounter — источник количества записей одной коллекции.
type RecordCounter interface {
	Name() string
	Count() (int, error)
}

// SystemHandler — обработчик системных endpoints.
type SystemHandler struct {
	instanceID string
	counters   []RecordCounter
}

// NewSystemHandler создаёт обработчик системных endpoints.
func NewSystemHandler(instanceID string, counters ...RecordCounter) *SystemHandler {
	return &SystemHandler{
		instanceID: instanceID,
		counters:   counters,
	}
}

// systemInfo — ответ GET /api/v1/info.
type systemInfo struct {
	InstanceID  string         `json:"instance_id"`
	Version     string         `json:"version"`
	Status      string         `json:"status"`
	Collections map[string]int `json:"collections"`
}

// GetInfo обрабатывает GET /api/v1/info.
// Без аутентификации. Возвращает версию и размеры коллекций.
func (h *SystemHandler) GetInfo(w http.ResponseWriter, _ *http.Request) {
	info := systemInfo{
		InstanceID:  h.instanceID,
		Version:     config.Version,
		Status:      "online",
		Collections: make(map[string]int, len(h.counters)),
	}

	for _, c := range h.counters {
		n, err := c.Count()
		if err != nil {
			// Нечитаемая коллекция переводит экземпляр в degraded
			info.Status = "degraded"
			continue
		}
		info.Collections[c.Name()] = n
	}

	writeJSON(w, http.StatusOK, info)
}
