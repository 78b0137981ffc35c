package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/resilience"
)

type Config struct {
	APIPort  string
	LogLevel string

	SeedPath string

	AnalyzerBackend      string
	OllamaURL            string
	OllamaGenModel       string
	OllamaTimeoutSeconds int
	MockAnalyzerDelayMS  int

	AnalysisTimeoutSeconds int
	DefaultUploader        string
	StorageBaseURL         string
	ArchivePath            string
	MaxFileSizeMB          int
	MaxInFlightUploads     int
	LogFailedUploads       bool

	NATSURL     string
	NATSSubject string
	LedgerPath  string

	APIRateLimitRPS          float64
	APIRateLimitBurst        int
	APIMaxConcurrentRequests int
	APIBackpressureWaitMS    int
	CORSAllowedOrigins       []string
	MCPEnabled               bool

	RetryMaxAttempts        int
	RetryInitialBackoffMS   int
	RetryMaxBackoffMS       int
	RetryMultiplier         float64
	BreakerEnabled          bool
	BreakerMinRequests      int
	BreakerFailureRatio     float64
	BreakerOpenTimeoutMS    int
	BreakerHalfOpenMaxCalls int

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		SeedPath: mustEnv("SEED_PATH", ""),

		AnalyzerBackend:      strings.ToLower(mustEnv("ANALYZER_BACKEND", "")),
		OllamaURL:            mustEnv("OLLAMA_URL", ""),
		OllamaGenModel:       mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		OllamaTimeoutSeconds: mustEnvInt("OLLAMA_TIMEOUT_SECONDS", 120),
		MockAnalyzerDelayMS:  mustEnvInt("MOCK_ANALYZER_DELAY_MS", 1500),

		AnalysisTimeoutSeconds: mustEnvInt("ANALYSIS_TIMEOUT_SECONDS", 60),
		DefaultUploader:        mustEnv("DEFAULT_UPLOADER", "Admin User"),
		StorageBaseURL:         mustEnv("STORAGE_BASE_URL", "https://mock-drive.com"),
		ArchivePath:            mustEnv("ARCHIVE_PATH", ""),
		MaxFileSizeMB:          mustEnvInt("MAX_FILE_SIZE_MB", 8),
		MaxInFlightUploads:     mustEnvInt("MAX_IN_FLIGHT_UPLOADS", 1),
		LogFailedUploads:       mustEnvBool("LOG_FAILED_UPLOADS", false),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "shipdocs.uploads"),
		LedgerPath:  mustEnv("LEDGER_PATH", "./data/ledger/uploads.xlsx"),

		APIRateLimitRPS:          mustEnvFloat("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst:        mustEnvInt("API_RATE_LIMIT_BURST", 40),
		APIMaxConcurrentRequests: mustEnvInt("API_MAX_CONCURRENT_REQUESTS", 64),
		APIBackpressureWaitMS:    mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),
		CORSAllowedOrigins:       mustEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		MCPEnabled:               mustEnvBool("MCP_ENABLED", true),

		RetryMaxAttempts:        mustEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialBackoffMS:   mustEnvInt("RETRY_INITIAL_BACKOFF_MS", 200),
		RetryMaxBackoffMS:       mustEnvInt("RETRY_MAX_BACKOFF_MS", 1000),
		RetryMultiplier:         mustEnvFloat("RETRY_MULTIPLIER", 2),
		BreakerEnabled:          mustEnvBool("BREAKER_ENABLED", true),
		BreakerMinRequests:      mustEnvInt("BREAKER_MIN_REQUESTS", 5),
		BreakerFailureRatio:     mustEnvFloat("BREAKER_FAILURE_RATIO", 0.5),
		BreakerOpenTimeoutMS:    mustEnvInt("BREAKER_OPEN_TIMEOUT_MS", 30000),
		BreakerHalfOpenMaxCalls: mustEnvInt("BREAKER_HALF_OPEN_MAX_CALLS", 1),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func (c Config) ResilienceConfig() resilience.Config {
	return resilience.Config{
		RetryMaxAttempts:        c.RetryMaxAttempts,
		RetryInitialBackoff:     time.Duration(c.RetryInitialBackoffMS) * time.Millisecond,
		RetryMaxBackoff:         time.Duration(c.RetryMaxBackoffMS) * time.Millisecond,
		RetryMultiplier:         c.RetryMultiplier,
		BreakerEnabled:          c.BreakerEnabled,
		BreakerMinRequests:      uint32(max(c.BreakerMinRequests, 0)),
		BreakerFailureRatio:     c.BreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(c.BreakerOpenTimeoutMS) * time.Millisecond,
		BreakerHalfOpenMaxCalls: uint32(max(c.BreakerHalfOpenMaxCalls, 0)),
	}
}

// Analyzer resolves the backend: an explicit ANALYZER_BACKEND wins, otherwise
// a configured OLLAMA_URL selects ollama and everything else falls back to mock.
func (c Config) Analyzer() string {
	switch c.AnalyzerBackend {
	case "ollama", "mock":
		return c.AnalyzerBackend
	}
	if strings.TrimSpace(c.OllamaURL) != "" {
		return "ollama"
	}
	return "mock"
}

func (c Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

func mustEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
