package main

import (
	"os"
	"strings"

	"github.com/arturkryukov/workbase/internal/config"
)

// resolveDephealthName определяет имя вершины графа для topologymetrics.
// Приоритет: DEPHEALTH_NAME из окружения, затем имя владельца пода из
// hostname, затем WB_INSTANCE_ID.
func resolveDephealthName(cfg *config.Config) string {
	if cfg.DephealthName != "" {
		return cfg.DephealthName
	}
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return cfg.InstanceID
	}
	return parseOwnerName(hostname)
}

// parseOwnerName извлекает имя владельца пода из hostname.
// Для Deployment отбрасывает pod-template-hash и случайный суффикс,
// для StatefulSet — порядковый номер. Если формат не распознан,
// возвращает hostname как есть.
func parseOwnerName(hostname string) string {
	parts := strings.Split(hostname, "-")
	if len(parts) < 2 {
		return hostname
	}

	last := parts[len(parts)-1]

	// StatefulSet: <name>-<ordinal>
	if isDigits(last) {
		return strings.Join(parts[:len(parts)-1], "-")
	}

	// Deployment: <name>-<pod-template-hash>-<random>
	if len(parts) >= 3 && looksLikePodSuffix(last) && looksLikeTemplateHash(parts[len(parts)-2]) {
		return strings.Join(parts[:len(parts)-2], "-")
	}

	return hostname
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// looksLikePodSuffix — случайный суффикс пода: 5 строчных букв и цифр.
func looksLikePodSuffix(s string) bool {
	return len(s) == 5 && isLowerAlnum(s)
}

// looksLikeTemplateHash — pod-template-hash: 8-10 строчных букв и цифр,
// хотя бы одна цифра.
func looksLikeTemplateHash(s string) bool {
	if len(s) < 8 || len(s) > 10 || !isLowerAlnum(s) {
		return false
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func isLowerAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return s != ""
}
