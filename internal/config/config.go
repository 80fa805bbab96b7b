package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	// Server
	Port string
	Host string

	// Logging
	LogLevel  string
	LogPretty bool

	// Storage
	DataDir        string
	UniverseDBPath string
	ReportsDBPath  string
	ReportsDir     string

	// External services
	MarketAPIBaseURL string
	FilingAPIBaseURL string
	FilingAPIKey     string
	BrokerAPIBaseURL string
	BrokerAPIKey     string
	HTTPTimeoutSecs  int

	// Analysis
	FiscalYear        string
	HistoryDays       int
	BatchConcurrency  int
	StalenessWarnDays int
	StalenessMaxDays  int

	// Scheduler
	AnalysisCron string
	BackupCron   string

	// Backup
	BackupEnabled   bool
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	BackupRetention int
}

// Load reads configuration from the environment, with a .env file as an
// optional source for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Host: getEnv("HOST", "0.0.0.0"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),

		DataDir:    getEnv("DATA_DIR", "./data"),
		ReportsDir: getEnv("REPORTS_DIR", "./data/reports"),

		MarketAPIBaseURL: getEnv("MARKET_API_BASE_URL", "https://data.krx.co.kr"),
		FilingAPIBaseURL: getEnv("FILING_API_BASE_URL", "https://opendart.fss.or.kr/api"),
		FilingAPIKey:     getEnv("FILING_API_KEY", ""),
		BrokerAPIBaseURL: getEnv("BROKER_API_BASE_URL", "https://openapi.ebestsec.co.kr"),
		BrokerAPIKey:     getEnv("BROKER_API_KEY", ""),
		HTTPTimeoutSecs:  getEnvAsInt("HTTP_TIMEOUT_SECS", 10),

		FiscalYear:        getEnv("FISCAL_YEAR", "2025"),
		HistoryDays:       getEnvAsInt("HISTORY_DAYS", 1100), // ~3 trading years of calendar days
		BatchConcurrency:  getEnvAsInt("BATCH_CONCURRENCY", 4),
		StalenessWarnDays: getEnvAsInt("STALENESS_WARN_DAYS", 1),
		StalenessMaxDays:  getEnvAsInt("STALENESS_MAX_DAYS", 3),

		AnalysisCron: getEnv("ANALYSIS_CRON", "0 30 18 * * 1-5"),
		BackupCron:   getEnv("BACKUP_CRON", "0 0 3 * * 6"),

		BackupEnabled:   getEnvAsBool("BACKUP_ENABLED", false),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "auto"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		BackupRetention: getEnvAsInt("BACKUP_RETENTION", 8),
	}

	cfg.UniverseDBPath = getEnv("UNIVERSE_DB_PATH", cfg.DataDir+"/universe.db")
	cfg.ReportsDBPath = getEnv("REPORTS_DB_PATH", cfg.DataDir+"/reports.db")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StalenessMaxDays < c.StalenessWarnDays {
		return fmt.Errorf("STALENESS_MAX_DAYS (%d) below STALENESS_WARN_DAYS (%d)", c.StalenessMaxDays, c.StalenessWarnDays)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1, got %d", c.BatchConcurrency)
	}
	if c.BackupEnabled && c.S3Bucket == "" {
		return fmt.Errorf("BACKUP_ENABLED requires S3_BUCKET")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
