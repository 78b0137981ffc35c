package config

import (
	"testing"
	"time"
)

func TestLoadUploadDefaults(t *testing.T) {
	t.Setenv("DEFAULT_UPLOADER", "")
	t.Setenv("MAX_FILE_SIZE_MB", "")
	t.Setenv("MAX_IN_FLIGHT_UPLOADS", "")
	t.Setenv("ANALYSIS_TIMEOUT_SECONDS", "")
	t.Setenv("LOG_FAILED_UPLOADS", "")

	cfg := Load()
	if cfg.DefaultUploader != "Admin User" {
		t.Fatalf("expected default uploader Admin User, got %q", cfg.DefaultUploader)
	}
	if cfg.MaxFileSizeBytes() != 8<<20 {
		t.Fatalf("expected 8MB limit, got %d", cfg.MaxFileSizeBytes())
	}
	if cfg.MaxInFlightUploads != 1 {
		t.Fatalf("expected one upload in flight, got %d", cfg.MaxInFlightUploads)
	}
	if cfg.AnalysisTimeoutSeconds != 60 {
		t.Fatalf("expected 60s analysis timeout, got %d", cfg.AnalysisTimeoutSeconds)
	}
	if cfg.LogFailedUploads {
		t.Fatalf("expected failed uploads to stay out of the log by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("MAX_IN_FLIGHT_UPLOADS", "4")
	t.Setenv("LOG_FAILED_UPLOADS", "true")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ops.example.com, ,https://admin.example.com")
	t.Setenv("MAX_FILE_SIZE_MB", "not-a-number")

	cfg := Load()
	if cfg.MaxInFlightUploads != 4 || !cfg.LogFailedUploads {
		t.Fatalf("unexpected upload overrides: %+v", cfg)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.MaxFileSizeMB != 8 {
		t.Fatalf("expected fallback on malformed int, got %d", cfg.MaxFileSizeMB)
	}
}

func TestAnalyzerSelection(t *testing.T) {
	cases := []struct {
		backend string
		url     string
		want    string
	}{
		{"", "", "mock"},
		{"", "http://localhost:11434", "ollama"},
		{"mock", "http://localhost:11434", "mock"},
		{"ollama", "", "ollama"},
		{"gemini", "", "mock"},
	}
	for _, tc := range cases {
		cfg := Config{AnalyzerBackend: tc.backend, OllamaURL: tc.url}
		if got := cfg.Analyzer(); got != tc.want {
			t.Fatalf("Analyzer() with backend=%q url=%q = %s, want %s", tc.backend, tc.url, got, tc.want)
		}
	}
}

func TestResilienceConfig(t *testing.T) {
	t.Setenv("RETRY_INITIAL_BACKOFF_MS", "50")
	t.Setenv("BREAKER_OPEN_TIMEOUT_MS", "1500")

	rc := Load().ResilienceConfig()
	if rc.RetryInitialBackoff != 50*time.Millisecond {
		t.Fatalf("expected 50ms backoff, got %v", rc.RetryInitialBackoff)
	}
	if rc.BreakerOpenTimeout != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s open timeout, got %v", rc.BreakerOpenTimeout)
	}
	if !rc.BreakerEnabled {
		t.Fatalf("expected breaker enabled by default")
	}
}
