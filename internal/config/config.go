// Package config reads application settings from env/.env and maps workspace modes to API endpoints
package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	wbfconfig "github.com/wb-go/wbf/config"
)

const (
	PrecisionPath       = "/api/remove-bg-premium"
	OriginalQualityPath = "/api/remove-bg-lossless"
)

const (
	defaultRequestTimeout = 2 * time.Minute
	defaultSessionTTL     = 30 * time.Minute
	defaultMaxUploadMB    = 25
)

type AppConfig struct {
	APIBaseURL     string
	Endpoints      map[model.Mode]string
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	MaxUploadSize  int64
	Port           string
	GinMode        string
	LogLevel       string
}

// Load - собирает AppConfig из wbf-конфига, пустые/кривые значения заменяются дефолтами
func Load(cfg *wbfconfig.Config) *AppConfig {
	base := cfg.GetString("API_BASE_URL")
	endpoints := Endpoints(base)
	overrideEndpoint(endpoints, model.ModePrecision, cfg.GetString("PRECISION_ENDPOINT"))
	overrideEndpoint(endpoints, model.ModeOriginalQuality, cfg.GetString("ORIGINAL_QUALITY_ENDPOINT"))

	if len(endpoints) == 0 {
		log.Println("API_BASE_URL is empty: image processing will be unavailable")
	}

	return &AppConfig{
		APIBaseURL:     base,
		Endpoints:      endpoints,
		RequestTimeout: parseDuration(cfg.GetString("REQUEST_TIMEOUT"), defaultRequestTimeout),
		SessionTTL:     parseDuration(cfg.GetString("SESSION_TTL"), defaultSessionTTL),
		MaxUploadSize:  int64(parseInt(cfg.GetString("MAX_UPLOAD_MB"), defaultMaxUploadMB)) << 20,
		Port:           withDefault(cfg.GetString("APP_PORT"), "8080"),
		GinMode:        withDefault(cfg.GetString("GIN_MODE"), "release"),
		LogLevel:       withDefault(cfg.GetString("LOG_LEVEL"), "info"),
	}
}

// Endpoints - маппинг режима в адрес API. Пустая база - пустой маппинг
func Endpoints(base string) map[model.Mode]string {
	endpoints := make(map[model.Mode]string, len(model.ModesMap))
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return endpoints
	}

	endpoints[model.ModePrecision] = base + PrecisionPath
	endpoints[model.ModeOriginalQuality] = base + OriginalQualityPath
	return endpoints
}

func overrideEndpoint(endpoints map[model.Mode]string, mode model.Mode, url string) {
	if url = strings.TrimSpace(url); url != "" {
		endpoints[mode] = url
	}
}

func parseDuration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Incorrect duration %q, using default %v", raw, def)
		return def
	}
	return d
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("Incorrect number %q, using default %d", raw, def)
		return def
	}
	return v
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
