package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/arturkryukov/workbase/internal/domain/model"
	"github.com/arturkryukov/workbase/internal/storage/collection"
	"github.com/arturkryukov/workbase/internal/storage/filestore"
)

// testEnv — полный набор хранилищ и сервисов в temp-директории.
type testEnv struct {
	sectors       *Sectors
	collaborators *Collaborators
	goals         *Goals
	employees     *Employees
	equipment     *Equipment
	documents     *Documents
	trainings     *Trainings

	documentFiles *filestore.FileStore
	trainingFiles *filestore.FileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	sectorsStore, err := collection.New[model.Sector](dir, "sectors", logger)
	if err != nil {
		t.Fatalf("Ошибка создания коллекции sectors: %v", err)
	}
	collaboratorsStore, err := collection.New[model.Collaborator](dir, "collaborators", logger)
	if err != nil {
		t.Fatalf("Ошибка создания коллекции collaborators: %v", err)
	}
	goalsStore, err := collection.New[model.Goal](dir, "goals", logger)
	if err != nil {
		t.Fatalf("Ошибка создания коллекции goals: %v", err)
	}
	employeesStore, err := collection.New[model.Employee](dir, "employees", logger)
	if err != nil {
		t.Fatalf("Ошибка создания коллекции employees: %v", err)
	}
	equipmentStore, err := collection.New[model.Equipment](dir, "equipment", logger)
	if err != nil {
		t.Fatalf("Ошибка создания коллекции equipment: %v", err)
	}
	documentsStore, err := collection.New[model.CorporateDocument](dir, "documents", logger)
	if err != nil {
		t.Fatalf("Ошибка создания коллекции documents: %v", err)
	}
	trainingsStore, err := collection.NewDoc[model.TrainingData](dir, "trainings", logger)
	if err != nil {
		t.Fatalf("Ошибка создания хранилища trainings: %v", err)
	}

	documentFiles, err := filestore.New(filepath.Join(dir, "uploads", "documents"))
	if err != nil {
		t.Fatalf("Ошибка создания хранилища файлов документов: %v", err)
	}
	trainingFiles, err := filestore.New(filepath.Join(dir, "uploads", "trainings"))
	if err != nil {
		t.Fatalf("Ошибка создания хранилища материалов: %v", err)
	}

	return &testEnv{
		sectors:       NewSectors(sectorsStore, collaboratorsStore, logger),
		collaborators: NewCollaborators(collaboratorsStore, sectorsStore, goalsStore, logger),
		goals:         NewGoals(goalsStore, collaboratorsStore, sectorsStore, logger),
		employees:     NewEmployees(employeesStore, equipmentStore, documentsStore, logger),
		equipment:     NewEquipment(equipmentStore, employeesStore, logger),
		documents:     NewDocuments(documentsStore, employeesStore, documentFiles, []string{"pdf", "doc", "docx", "txt", "jpg", "jpeg", "png", "gif"}, logger),
		trainings:     NewTrainings(trainingsStore, trainingFiles, []string{"pdf", "doc", "docx", "txt", "mp4", "avi", "mov", "jpg", "jpeg", "png"}, logger),
		documentFiles: documentFiles,
		trainingFiles: trainingFiles,
	}
}

// mustSector создаёт подразделение или прерывает тест.
func (e *testEnv) mustSector(t *testing.T, id, name string) model.Sector {
	t.Helper()
	sec, err := e.sectors.Create(SectorCreate{ID: id, Name: name})
	if err != nil {
		t.Fatalf("Ошибка создания подразделения %s: %v", id, err)
	}
	return sec
}

// mustCollaborator создаёт сотрудника-исполнителя или прерывает тест.
func (e *testEnv) mustCollaborator(t *testing.T, id, name, sectorID string) model.Collaborator {
	t.Helper()
	c, err := e.collaborators.Create(CollaboratorCreate{ID: id, Name: name, SectorID: sectorID})
	if err != nil {
		t.Fatalf("Ошибка создания сотрудника %s: %v", id, err)
	}
	return c
}

// mustEmployee создаёт сотрудника HR-модуля или прерывает тест.
func (e *testEnv) mustEmployee(t *testing.T, id, name string) model.Employee {
	t.Helper()
	emp, err := e.employees.Create(EmployeeCreate{ID: id, Name: name, Position: "инженер", Department: "Технический отдел"})
	if err != nil {
		t.Fatalf("Ошибка создания сотрудника %s: %v", id, err)
	}
	return emp
}
