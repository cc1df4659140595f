package config

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"ghcnd-server/internal/ghcn"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// GHCN-Daily sources
	StationsURL  string
	InventoryURL string
	ByStationURL string
	FetchTimeout time.Duration

	DefaultRadiusKm float64

	// QueryLogPath is the sqlite file backing the query log. Empty disables it.
	QueryLogPath   string
	DBMaxOpenConns int

	// MQTTBroker is the broker host for result events. Empty disables them.
	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string
}

func (c Config) QueryLogEnabled() bool { return c.QueryLogPath != "" }

func (c Config) MQTTEnabled() bool { return c.MQTTBroker != "" }

func LoadFromEnv() (Config, error) {
	appEnv := getenv("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	stationsURL, err := parseSourceURL("GHCN_STATIONS_URL", ghcn.DefaultStationsURL)
	if err != nil {
		return Config{}, err
	}
	inventoryURL, err := parseSourceURL("GHCN_INVENTORY_URL", ghcn.DefaultInventoryURL)
	if err != nil {
		return Config{}, err
	}
	byStationURL, err := parseSourceURL("GHCN_BY_STATION_URL", ghcn.DefaultByStationURL)
	if err != nil {
		return Config{}, err
	}

	fetchTimeoutStr := getenv("GHCN_FETCH_TIMEOUT", "60s")
	fetchTimeout, err := time.ParseDuration(fetchTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid GHCN_FETCH_TIMEOUT %q: %w", fetchTimeoutStr, err)
	}
	if fetchTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid GHCN_FETCH_TIMEOUT %q: must be > 0", fetchTimeoutStr)
	}

	radiusStr := getenv("DEFAULT_RADIUS_KM", "10")
	radius, err := strconv.ParseFloat(radiusStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DEFAULT_RADIUS_KM %q: %w", radiusStr, err)
	}
	if radius <= 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
		return Config{}, fmt.Errorf("invalid DEFAULT_RADIUS_KM %q: must be a positive number", radiusStr)
	}

	maxOpenConnsStr := getenv("DB_MAX_OPEN_CONNS", "1")
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	mqttPortStr := getenv("MQTT_PORT", "1883")
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort < 1 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: must be 1-65535", mqttPortStr)
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		StationsURL:     stationsURL,
		InventoryURL:    inventoryURL,
		ByStationURL:    byStationURL,
		FetchTimeout:    fetchTimeout,
		DefaultRadiusKm: radius,
		QueryLogPath:    getenv("QUERY_LOG_PATH", ""),
		DBMaxOpenConns:  maxOpenConns,
		MQTTBroker:      getenv("MQTT_BROKER", ""),
		MQTTPort:        mqttPort,
		MQTTClientID:    getenv("MQTT_CLIENT_ID", "ghcnd-server"),
		MQTTTopicPrefix: strings.Trim(getenv("MQTT_TOPIC_PREFIX", "ghcnd"), "/"),
	}, nil
}

// getenv returns the trimmed value of key, or def when it is unset or blank.
func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func parseSourceURL(key, def string) (string, error) {
	raw := getenv(key, def)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid %s %q: expected an absolute http(s) URL", key, raw)
	}
	return raw, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
