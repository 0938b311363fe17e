package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr string

	Env string // "dev" | "prod"

	// Document + audit persistence.
	StoreBackend  string // "file" | "sqlite" | "redis" | "memory"
	DataPath      string // file backend: JSON document path
	AccessLogPath string // text audit log path (file + redis backends)
	DBPath        string // sqlite backend
	RedisAddr     string // redis backend
	RedisKey      string // redis backend: key holding the document

	// Optional shared secret for POST /status. Empty disables the check.
	WriteToken string

	MetricsEnabled bool
}

func FromEnv() Config {
	env := strings.ToLower(getenvDefault("CALLBOARD_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	backend := strings.ToLower(getenvDefault("CALLBOARD_STORE_BACKEND", "file"))
	switch backend {
	case "file", "sqlite", "redis", "memory":
	default:
		backend = "file"
	}

	return Config{
		HTTPAddr: getenvDefault("CALLBOARD_HTTP_ADDR", ":8080"),
		Env:      env,

		StoreBackend:  backend,
		DataPath:      getenvDefault("CALLBOARD_DATA_PATH", "./data/call_status.json"),
		AccessLogPath: getenvDefault("CALLBOARD_ACCESS_LOG_PATH", "./data/access.log"),
		DBPath:        getenvDefault("CALLBOARD_DB_PATH", "./data/callboard.db"),
		RedisAddr:     getenvDefault("CALLBOARD_REDIS_ADDR", "localhost:6379"),
		RedisKey:      getenvDefault("CALLBOARD_REDIS_KEY", "callboard:status"),

		WriteToken: os.Getenv("CALLBOARD_WRITE_TOKEN"),

		MetricsEnabled: !isFalse(os.Getenv("CALLBOARD_METRICS_ENABLED")),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func isFalse(v string) bool {
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, "false") || v == "0"
}
