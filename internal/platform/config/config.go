package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// VerifyBaseURL is the public verification page URL embedded in QR codes.
	// The full link is <VerifyBaseURL>?certId=<uniqueId>.
	VerifyBaseURL string

	// DatabaseURL selects the postgres-backed stores when set; in-memory
	// stores are used otherwise.
	DatabaseURL string

	Redis RedisConfig

	// HistoryLimit caps the redis verification history. The memory and
	// postgres logs are unbounded.
	HistoryLimit int
}

// RedisConfig holds connection settings for the optional redis-backed
// verification log.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("SECUREVAULT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	verifyBaseURL := os.Getenv("VERIFY_BASE_URL")
	if verifyBaseURL == "" {
		verifyBaseURL = "https://securevault.verifier/verify"
	}

	historyLimit := 100
	if v := os.Getenv("VERIFICATION_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			historyLimit = n
		}
	}

	return Server{
		Addr:          addr,
		VerifyBaseURL: verifyBaseURL,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		HistoryLimit: historyLimit,
	}
}
