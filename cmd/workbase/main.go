// Точка входа Workbase — сервиса учёта целей, сотрудников и обучений.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/arturkryukov/workbase/internal/api/handlers"
	"github.com/arturkryukov/workbase/internal/api/middleware"
	"github.com/arturkryukov/workbase/internal/config"
	"github.com/arturkryukov/workbase/internal/domain/model"
	"github.com/arturkryukov/workbase/internal/server"
	"github.com/arturkryukov/workbase/internal/service"
	"github.com/arturkryukov/workbase/internal/storage/collection"
	"github.com/arturkryukov/workbase/internal/storage/filestore"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Workbase запускается",
		slog.String("instance_id", cfg.InstanceID),
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
	)

	// --- Инициализация компонентов ---

	// 1. Коллекции данных
	sectorsStore, err := collection.New[model.Sector](cfg.DataDir, "sectors", logger)
	if err != nil {
		fatal(logger, "Ошибка инициализации коллекции sectors", err)
	}
	collaboratorsStore, err := collection.New[model.Collaborator](cfg.DataDir, "collaborators", logger)
	if err != nil {
		fatal(logger, "Ошибка инициализации коллекции collaborators", err)
	}
	goalsStore, err := collection.New[model.Goal](cfg.DataDir, "goals", logger)
	if err != nil {
		fatal(logger, "Ошибка инициализации коллекции goals", err)
	}
	employeesStore, err := collection.New[model.Employee](cfg.DataDir, "employees", logger)
	if err != nil {
		fatal(logger, "Ошибка инициализации коллекции employees", err)
	}
	equipmentStore, err := collection.New[model.Equipment](cfg.DataDir, "equipment", logger)
	if err != nil {
		fatal(logger, "Ошибка инициализации коллекции equipment", err)
	}
	documentsStore, err := collection.New[model.CorporateDocument](cfg.DataDir, "documents", logger)
	if err != nil {
		fatal(logger, "Ошибка инициализации коллекции documents", err)
	}
	trainingsStore, err := collection.NewDoc[model.TrainingData](cfg.DataDir, "trainings", logger)
	if err != nil {
		fatal(logger, "Ошибка инициализации хранилища trainings", err)
	}

	// 2. Файловые хранилища вложений
	documentFiles, err := filestore.New(filepath.Join(cfg.UploadsDir, "documents"))
	if err != nil {
		fatal(logger, "Ошибка инициализации хранилища файлов документов", err)
	}
	trainingFiles, err := filestore.New(filepath.Join(cfg.UploadsDir, "trainings"))
	if err != nil {
		fatal(logger, "Ошибка инициализации хранилища материалов обучений", err)
	}

	// 3. Сервисы
	sectorsSvc := service.NewSectors(sectorsStore, collaboratorsStore, logger)
	collaboratorsSvc := service.NewCollaborators(collaboratorsStore, sectorsStore, goalsStore, logger)
	goalsSvc := service.NewGoals(goalsStore, collaboratorsStore, sectorsStore, logger)
	employeesSvc := service.NewEmployees(employeesStore, equipmentStore, documentsStore, logger)
	equipmentSvc := service.NewEquipment(equipmentStore, employeesStore, logger)
	documentsSvc := service.NewDocuments(documentsStore, employeesStore, documentFiles, cfg.AllowedExtensions, logger)
	trainingsSvc := service.NewTrainings(trainingsStore, trainingFiles, cfg.MaterialExtensions, logger)

	// Сектора по умолчанию при первом запуске
	if err := sectorsSvc.SeedDefaults(); err != nil {
		fatal(logger, "Ошибка инициализации секторов по умолчанию", err)
	}

	// Метрики количества записей и объёма вложений на старте
	updateRecordMetrics(logger,
		sectorsStore, collaboratorsStore, goalsStore,
		employeesStore, equipmentStore, documentsStore,
	)
	updateAttachmentMetrics(logger, documentFiles, trainingFiles)

	ctx := context.Background()

	// 4. JWT middleware
	var jwtAuth *middleware.JWTAuth
	if cfg.AuthEnabled() {
		jwtAuth, err = middleware.NewJWTAuth(middleware.JWTAuthConfig{
			JWKSURL:         cfg.JWKSUrl,
			CACertPath:      cfg.JWKSCACert,
			TLSSkipVerify:   cfg.JWKSTLSSkipVerify,
			ClientTimeout:   10 * time.Second,
			RefreshInterval: cfg.JWKSRefreshInterval,
			JWTLeeway:       cfg.JWTLeeway,
		}, logger)
		if err != nil {
			// JWKS недоступен — запускаем без аутентификации (для разработки)
			logger.Warn("JWT JWKS недоступен, запуск без аутентификации",
				slog.String("jwks_url", cfg.JWKSUrl),
				slog.String("error", err.Error()),
			)
			jwtAuth = nil
		} else {
			defer jwtAuth.Close()
			logger.Info("JWT аутентификация настроена",
				slog.String("jwks_url", cfg.JWKSUrl),
			)
		}
	} else {
		logger.Warn("WB_JWKS_URL не задан, запуск без аутентификации")
	}

	// 5. topologymetrics — мониторинг зависимостей
	var dephealthSvc *service.DephealthService
	if cfg.AuthEnabled() {
		dephealthSvc, err = service.NewDephealthService(
			resolveDephealthName(cfg),
			cfg.DephealthGroup,
			cfg.DephealthDepName,
			cfg.JWKSUrl,
			cfg.DephealthCheckInterval,
			logger,
		)
		if err != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", err.Error()),
			)
			dephealthSvc = nil
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
			dephealthSvc = nil
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("jwks_url", cfg.JWKSUrl),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 6. Handlers
	h := server.Handlers{
		Sectors:       handlers.NewSectorsHandler(sectorsSvc),
		Collaborators: handlers.NewCollaboratorsHandler(collaboratorsSvc),
		Goals:         handlers.NewGoalsHandler(goalsSvc),
		Employees:     handlers.NewEmployeesHandler(employeesSvc),
		Equipment:     handlers.NewEquipmentHandler(equipmentSvc),
		Documents:     handlers.NewDocumentsHandler(documentsSvc, cfg.MaxUploadSize),
		Trainings:     handlers.NewTrainingsHandler(trainingsSvc, cfg.MaxUploadSize),
		Health:        handlers.NewHealthHandlerFull(cfg.DataDir, cfg.UploadsDir),
		System: handlers.NewSystemHandler(cfg.InstanceID,
			sectorsStore, collaboratorsStore, goalsStore,
			employeesStore, equipmentStore, documentsStore,
		),
	}

	// 7. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h, jwtAuth)

	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// --- Graceful shutdown фоновых процессов ---
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Workbase остановлен")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}

// updateRecordMetrics выставляет gauge количества записей по коллекциям.
func updateRecordMetrics(logger *slog.Logger, stores ...handlers.RecordCounter) {
	for _, s := range stores {
		n, err := s.Count()
		if err != nil {
			logger.Warn("Не удалось посчитать записи коллекции",
				slog.String("collection", s.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		middleware.RecordsTotal.WithLabelValues(s.Name()).Set(float64(n))
	}
}

// updateAttachmentMetrics выставляет gauge суммарного объёма вложений.
func updateAttachmentMetrics(logger *slog.Logger, stores ...*filestore.FileStore) {
	var total int64
	for _, fs := range stores {
		size, err := fs.TotalSize()
		if err != nil {
			logger.Warn("Не удалось посчитать объём вложений",
				slog.String("dir", fs.Dir()),
				slog.String("error", err.Error()),
			)
			continue
		}
		total += size
	}
	middleware.AttachmentBytes.Set(float64(total))
}
