package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Store drivers
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string

	StoreDriver string
	DSN         string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string

	AutoConfirmThreshold int
	IngestWorkers        int
	IngestBatchSize      int

	ArchiveBucket string
	ArchivePrefix string

	// AuthTokens is "token=user:companyA|companyB;token2=..."
	AuthTokens      string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", k, v)
	}
	return n, nil
}

func getenvDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", k, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	cfg := Config{
		Addr:          getenv("ADDR", ":8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "console"),
		StoreDriver:   getenv("STORE_DRIVER", StoreMySQL),
		DSN:           os.Getenv("DB_DSN"),
		DBUser:        getenv("DB_USER", "root"),
		DBPass:        getenv("DB_PASS", ""),
		DBHost:        getenv("DB_HOST", "127.0.0.1"),
		DBPort:        getenv("DB_PORT", "3306"),
		DBName:        getenv("DB_NAME", "bpo_reconciliation"),
		ArchiveBucket: os.Getenv("ARCHIVE_BUCKET"),
		ArchivePrefix: getenv("ARCHIVE_PREFIX", "statements"),
		AuthTokens:    os.Getenv("AUTH_TOKENS"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
	}

	var err error
	if cfg.AutoConfirmThreshold, err = getenvInt("AUTO_CONFIRM_THRESHOLD", 90); err != nil {
		return Config{}, err
	}
	if cfg.IngestWorkers, err = getenvInt("INGEST_WORKERS", 1); err != nil {
		return Config{}, err
	}
	if cfg.IngestBatchSize, err = getenvInt("INGEST_BATCH_SIZE", 500); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.AutoConfirmThreshold < 1 || c.AutoConfirmThreshold > 100 {
		return fmt.Errorf("AUTO_CONFIRM_THRESHOLD: %d outside 1..100", c.AutoConfirmThreshold)
	}
	if c.IngestWorkers < 1 {
		return fmt.Errorf("INGEST_WORKERS: must be at least 1, got %d", c.IngestWorkers)
	}
	if c.IngestBatchSize < 1 {
		return fmt.Errorf("INGEST_BATCH_SIZE: must be at least 1, got %d", c.IngestBatchSize)
	}
	if c.StoreDriver != StoreMySQL && c.StoreDriver != StoreMemory {
		return fmt.Errorf("STORE_DRIVER: unknown driver %q", c.StoreDriver)
	}
	return nil
}

// MySQLDSN returns DB_DSN when set, otherwise a DSN assembled from the
// DB_* settings
func (c Config) MySQLDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	m := mysql.NewConfig()
	m.User = c.DBUser
	m.Passwd = c.DBPass
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	m.DBName = c.DBName
	m.ParseTime = true
	m.Loc = time.UTC
	m.Params = map[string]string{"charset": "utf8mb4"}
	return m.FormatDSN()
}
