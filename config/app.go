package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// App is the process configuration read from the environment.
type App struct {
	Port string

	STTProvider       string // google|assemblyai
	AssemblyAIKey     string
	STTRatePerMin     int
	PollTimeout       time.Duration
	MaxUploadBytes    int64
	TranscribeTimeout time.Duration

	GCSBucket   string
	GCPProject  string
	GCPLocation string
	LLMModel    string

	Workers   int
	ClaimIdle time.Duration
	CacheTTL  time.Duration
	JobTTL    time.Duration
}

func LoadApp() App {
	return App{
		Port:              getenv("PORT", "8080"),
		STTProvider:       strings.ToLower(getenv("STT_PROVIDER", "google")),
		AssemblyAIKey:     os.Getenv("ASSEMBLYAI_API_KEY"),
		STTRatePerMin:     getenvInt("STT_RATE_PER_MIN", 60),
		PollTimeout:       getenvDuration("POLL_TIMEOUT", 5*time.Minute),
		MaxUploadBytes:    int64(getenvInt("MAX_UPLOAD_MB", 25)) << 20,
		TranscribeTimeout: getenvDuration("TRANSCRIBE_TIMEOUT", 3*time.Minute),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		GCPProject:        os.Getenv("GCP_PROJECT"),
		GCPLocation:       getenv("GCP_LOCATION", "us-central1"),
		LLMModel:          os.Getenv("LLM_MODEL"),
		Workers:           getenvInt("WORKERS", 4),
		ClaimIdle:         getenvDuration("CLAIM_IDLE", 10*time.Minute),
		CacheTTL:          getenvDuration("CACHE_TTL", 24*time.Hour),
		JobTTL:            getenvDuration("JOB_TTL", 24*time.Hour),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
