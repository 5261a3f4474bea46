// Пакет config — загрузка и валидация конфигурации Workbase
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Workbase.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Уникальный идентификатор инстанса (например, "workbase-01")
	InstanceID string
	// Путь к директории JSON-коллекций
	DataDir string
	// Путь к директории загружаемых файлов
	UploadsDir string
	// Максимальный размер загружаемого файла в байтах
	MaxUploadSize int64
	// Разрешённые расширения вложений (без точки, в нижнем регистре)
	AllowedExtensions []string
	// Разрешённые расширения учебных материалов (без точки, в нижнем регистре)
	MaterialExtensions []string
	// URL JWKS endpoint провайдера аутентификации (пусто — аутентификация выключена)
	JWKSUrl string
	// Путь к CA-сертификату для проверки TLS JWKS endpoint (опционально)
	JWKSCACert string
	// Пропускать проверку TLS-сертификата JWKS endpoint (только для dev-окружений)
	JWKSTLSSkipVerify bool
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Путь к TLS сертификату (пусто — сервер работает по HTTP)
	TLSCert string
	// Путь к TLS приватному ключу
	TLSKey string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics (WB_DEPHEALTH_GROUP)
	DephealthGroup string
	// Имя зависимости (целевого сервиса) в метриках topologymetrics (WB_DEPHEALTH_DEP_NAME)
	DephealthDepName string
	// Имя владельца пода для метки name в topologymetrics (DEPHEALTH_NAME)
	DephealthName string
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// AuthEnabled сообщает, включена ли проверка JWT.
func (c *Config) AuthEnabled() bool { return c.JWKSUrl != "" }

// TLSEnabled сообщает, работает ли сервер по HTTPS.
func (c *Config) TLSEnabled() bool { return c.TLSCert != "" && c.TLSKey != "" }

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}

	// WB_PORT — порт HTTP-сервера (по умолчанию 8080)
	port, err := getEnvInt("WB_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("WB_PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("WB_PORT: значение %d вне допустимого диапазона 1-65535", port)
	}
	cfg.Port = port

	// WB_INSTANCE_ID — идентификатор инстанса (по умолчанию "workbase")
	cfg.InstanceID = getEnvDefault("WB_INSTANCE_ID", "workbase")

	// WB_DATA_DIR — обязательный
	cfg.DataDir, err = getEnvRequired("WB_DATA_DIR")
	if err != nil {
		return nil, err
	}

	// WB_UPLOADS_DIR — обязательный
	cfg.UploadsDir, err = getEnvRequired("WB_UPLOADS_DIR")
	if err != nil {
		return nil, err
	}

	// WB_MAX_UPLOAD_SIZE — максимальный размер загружаемого файла (по умолчанию 16 MB)
	maxUpload, err := getEnvInt64("WB_MAX_UPLOAD_SIZE", 16*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("WB_MAX_UPLOAD_SIZE: %w", err)
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("WB_MAX_UPLOAD_SIZE: значение должно быть положительным")
	}
	cfg.MaxUploadSize = maxUpload

	// WB_ALLOWED_EXTENSIONS — разрешённые расширения вложений через запятую
	cfg.AllowedExtensions = parseExtensions(
		getEnvDefault("WB_ALLOWED_EXTENSIONS", "pdf,doc,docx,txt,jpg,jpeg,png,gif"))
	if len(cfg.AllowedExtensions) == 0 {
		return nil, fmt.Errorf("WB_ALLOWED_EXTENSIONS: список расширений пуст")
	}

	// WB_MATERIAL_EXTENSIONS — разрешённые расширения учебных материалов через запятую
	cfg.MaterialExtensions = parseExtensions(
		getEnvDefault("WB_MATERIAL_EXTENSIONS", "pdf,doc,docx,txt,mp4,avi,mov,jpg,jpeg,png"))
	if len(cfg.MaterialExtensions) == 0 {
		return nil, fmt.Errorf("WB_MATERIAL_EXTENSIONS: список расширений пуст")
	}

	// WB_JWKS_URL — URL JWKS endpoint (опционально; пусто — аутентификация выключена)
	cfg.JWKSUrl = getEnvDefault("WB_JWKS_URL", "")

	// WB_JWKS_CA_CERT — путь к CA-сертификату для JWKS endpoint (опционально)
	cfg.JWKSCACert = getEnvDefault("WB_JWKS_CA_CERT", "")

	// WB_JWKS_TLS_SKIP_VERIFY — пропускать проверку TLS JWKS endpoint (по умолчанию false)
	cfg.JWKSTLSSkipVerify, err = getEnvBool("WB_JWKS_TLS_SKIP_VERIFY", false)
	if err != nil {
		return nil, fmt.Errorf("WB_JWKS_TLS_SKIP_VERIFY: %w", err)
	}

	// WB_JWKS_REFRESH_INTERVAL — интервал обновления JWKS-ключей (по умолчанию 5m)
	cfg.JWKSRefreshInterval, err = getEnvDuration("WB_JWKS_REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("WB_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// WB_JWT_LEEWAY — допустимое отклонение времени при проверке JWT (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("WB_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("WB_JWT_LEEWAY: %w", err)
	}

	// WB_TLS_CERT / WB_TLS_KEY — опциональная пара; задаются только вместе
	cfg.TLSCert = getEnvDefault("WB_TLS_CERT", "")
	cfg.TLSKey = getEnvDefault("WB_TLS_KEY", "")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("WB_TLS_CERT и WB_TLS_KEY должны задаваться вместе")
	}

	// WB_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("WB_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("WB_LOG_LEVEL: %w", err)
	}

	// WB_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("WB_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("WB_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// WB_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("WB_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("WB_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// WB_DEPHEALTH_GROUP — имя группы в метриках topologymetrics (по умолчанию "workbase")
	cfg.DephealthGroup = getEnvDefault("WB_DEPHEALTH_GROUP", "workbase")

	// WB_DEPHEALTH_DEP_NAME — имя зависимости в метриках topologymetrics (по умолчанию "auth-jwks")
	cfg.DephealthDepName = getEnvDefault("WB_DEPHEALTH_DEP_NAME", "auth-jwks")

	// DEPHEALTH_NAME — имя владельца пода для метки name в topologymetrics (без префикса модуля)
	cfg.DephealthName = getEnvDefault("DEPHEALTH_NAME", "")

	// WB_SHUTDOWN_TIMEOUT — таймаут graceful shutdown HTTP-сервера (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("WB_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("WB_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// parseExtensions разбирает список расширений через запятую,
// нормализуя к нижнему регистру без точек.
func parseExtensions(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(p), "."))
		if ext != "" {
			result = append(result, ext)
		}
	}
	return result
}

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (используйте true или false)", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 6h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
