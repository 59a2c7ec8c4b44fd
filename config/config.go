package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds the runtime configuration read from the environment.
type Settings struct {
	Environment string
	GinMode     string
	ServerPort  string
	UploadPath  string
	LogDir      string
	JWTSecret   string

	OllamaURL        string
	OllamaModel      string
	EmbeddingTimeout time.Duration

	LedgerURL     string
	LedgerTimeout time.Duration

	RedisAddr      string
	RedisPassword  string
	ReportCacheTTL time.Duration

	// BlockingPlagiarismThreshold is the plagiarism score at or above which a
	// reviewer upload is refused before it enters the approval workflow.
	BlockingPlagiarismThreshold float64

	RequestTimeout time.Duration
}

var current *Settings

// Load reads Settings from the process environment. Call after godotenv.Load.
func Load() *Settings {
	s := &Settings{
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),
		GinMode:     getEnv("GIN_MODE", ""),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
		LogDir:      getEnv("LOG_DIR", "logs"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "nomic-embed-text"),
		EmbeddingTimeout: getDuration("EMBEDDING_TIMEOUT", 30*time.Second),

		LedgerURL:     strings.TrimRight(os.Getenv("LEDGER_URL"), "/"),
		LedgerTimeout: getDuration("LEDGER_TIMEOUT", 15*time.Second),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		ReportCacheTTL: getDuration("REPORT_CACHE_TTL", 10*time.Minute),

		BlockingPlagiarismThreshold: getFloat("BLOCKING_PLAGIARISM_THRESHOLD", 70),

		RequestTimeout: getDuration("REQUEST_TIMEOUT", 2*time.Minute),
	}
	current = s
	return s
}

// Current returns the last loaded Settings, loading them on first use.
func Current() *Settings {
	if current == nil {
		return Load()
	}
	return current
}

// IsProduction reports whether ENVIRONMENT=production.
func (s *Settings) IsProduction() bool {
	return s.Environment == "production" || s.Environment == "prod"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		Logger().Warnw("invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		Logger().Warnw("invalid number, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return f
}
