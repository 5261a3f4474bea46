// Пакет server — HTTP-сервер Workbase с TLS и graceful shutdown.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arturkryukov/workbase/internal/api/handlers"
	"github.com/arturkryukov/workbase/internal/api/middleware"
	"github.com/arturkryukov/workbase/internal/config"
)

// ScopeRead и ScopeWrite — scope'ы доступа к API.
const (
	ScopeRead  = "workbase:read"
	ScopeWrite = "workbase:write"
)

// Handlers — набор доменных обработчиков, монтируемых в роутер.
type Handlers struct {
	Sectors       *handlers.SectorsHandler
	Collaborators *handlers.CollaboratorsHandler
	Goals         *handlers.GoalsHandler
	Employees     *handlers.EmployeesHandler
	Equipment     *handlers.EquipmentHandler
	Documents     *handlers.DocumentsHandler
	Trainings     *handlers.TrainingsHandler
	Health        *handlers.HealthHandler
	System        *handlers.SystemHandler
}

// Server — HTTP-сервер Workbase.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// auth — JWT middleware; nil, если аутентификация выключена.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, auth *middleware.JWTAuth) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.MetricsMiddleware())

	// Публичные endpoints: probes и метрики без аутентификации
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/api/v1/info", h.System.GetInfo)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if auth != nil {
			r.Use(auth.Middleware())
		}

		r.Route("/sectors", func(r chi.Router) {
			r.Get("/", h.Sectors.List)
			r.Get("/{id}", h.Sectors.Get)
			r.Group(func(r chi.Router) {
				if auth != nil {
					r.Use(middleware.RequireScope(ScopeWrite))
				}
				r.Post("/", h.Sectors.Create)
				r.Put("/{id}", h.Sectors.Update)
				r.Delete("/{id}", h.Sectors.Delete)
			})
		})

		r.Route("/collaborators", func(r chi.Router) {
			r.Get("/", h.Collaborators.List)
			r.Get("/{id}", h.Collaborators.Get)
			r.Group(func(r chi.Router) {
				if auth != nil {
					r.Use(middleware.RequireScope(ScopeWrite))
				}
				r.Post("/", h.Collaborators.Create)
				r.Put("/{id}", h.Collaborators.Update)
				r.Delete("/{id}", h.Collaborators.Delete)
			})
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", h.Goals.List)
			r.Get("/stats", h.Goals.Stats)
			r.Get("/{id}", h.Goals.Get)
			r.Group(func(r chi.Router) {
				if auth != nil {
					r.Use(middleware.RequireScope(ScopeWrite))
				}
				r.Post("/", h.Goals.Create)
				r.Put("/{id}", h.Goals.Update)
				r.Post("/{id}/complete", h.Goals.Complete)
				r.Delete("/{id}", h.Goals.Delete)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.Employees.List)
			r.Get("/{id}", h.Employees.Get)
			r.Group(func(r chi.Router) {
				if auth != nil {
					r.Use(middleware.RequireScope(ScopeWrite))
				}
				r.Post("/", h.Employees.Create)
				r.Put("/{id}", h.Employees.Update)
				r.Delete("/{id}", h.Employees.Delete)
			})
		})

		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", h.Equipment.List)
			r.Get("/warranty-expiring", h.Equipment.WarrantyExpiring)
			r.Get("/{id}", h.Equipment.Get)
			r.Group(func(r chi.Router) {
				if auth != nil {
					r.Use(middleware.RequireScope(ScopeWrite))
				}
				r.Post("/", h.Equipment.Create)
				r.Put("/{id}", h.Equipment.Update)
				r.Post("/{id}/assign", h.Equipment.Assign)
				r.Post("/{id}/unassign", h.Equipment.Unassign)
				r.Delete("/{id}", h.Equipment.Delete)
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", h.Documents.List)
			r.Get("/recent", h.Documents.Recent)
			r.Get("/stats", h.Documents.Stats)
			r.Get("/{id}", h.Documents.Get)
			r.Get("/{id}/attachments/{attachment_id}", h.Documents.DownloadAttachment)
			r.Group(func(r chi.Router) {
				if auth != nil {
					r.Use(middleware.RequireScope(ScopeWrite))
				}
				r.Post("/", h.Documents.Create)
				r.Put("/{id}", h.Documents.Update)
				r.Delete("/{id}", h.Documents.Delete)
				r.Post("/{id}/attachments", h.Documents.UploadAttachment)
				r.Delete("/{id}/attachments/{attachment_id}", h.Documents.DeleteAttachment)
			})
		})

		r.Route("/trainings", func(r chi.Router) {
			r.Get("/", h.Trainings.List)
			r.Get("/stats", h.Trainings.Stats)
			r.Get("/categories", h.Trainings.ListCategories)
			r.Get("/progress", h.Trainings.ListProgress)
			r.Get("/{id}", h.Trainings.Get)
			r.Get("/{id}/materials/{filename}", h.Trainings.DownloadMaterial)
			r.Group(func(r chi.Router) {
				if auth != nil {
					r.Use(middleware.RequireScope(ScopeWrite))
				}
				r.Post("/", h.Trainings.Create)
				r.Put("/{id}", h.Trainings.Update)
				r.Delete("/{id}", h.Trainings.Delete)
				r.Post("/categories", h.Trainings.CreateCategory)
				r.Delete("/categories/{id}", h.Trainings.DeleteCategory)
				r.Post("/{id}/materials", h.Trainings.UploadMaterial)
			})
			// Прогресс пишет любой аутентифицированный пользователь
			r.Post("/progress", h.Trainings.UpsertProgress)
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if cfg.TLSEnabled() {
		srv.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown с таймаутом
// из конфигурации.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
			slog.Bool("tls", s.cfg.TLSEnabled()),
		)

		var err error
		if s.cfg.TLSEnabled() {
			err = s.httpServer.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
