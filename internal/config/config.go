package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"phonefinder/internal/engine"
)

// Catalog sources
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Catalog   CatalogConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Recommend RecommendConfig
	Ladder    LadderConfig
	Extractor ExtractorConfig
	Logging   LoggingConfig
}

// CatalogConfig selects where the phone snapshot is loaded from
type CatalogConfig struct {
	Source         string
	CSVPath        string
	EstimatePrices bool
}

// DatabaseConfig holds SQL database configuration
type DatabaseConfig struct {
	Driver             string // explicit driver for recommendation logs when the catalog is a CSV
	DSN                string // full postgres connection string, preferred over the parts below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	SQLitePath         string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// RecommendConfig holds request-level recommendation settings
type RecommendConfig struct {
	DefaultTopN        int
	MaxTopN            int
	LogRecommendations bool
}

// LadderConfig holds the relaxation ladder tuning
type LadderConfig struct {
	MinResults         int
	BudgetRelaxFactor  float64
	BatteryRelaxFactor float64
	RAMRelaxStep       float64
	StorageRelaxStep   float64
	CameraRelaxFactor  float64
	FallbackLimit      int
}

// ExtractorConfig holds the LLM intent extractor configuration
type ExtractorConfig struct {
	UseLLM          bool
	APIBase         string
	APIKey          string
	Model           string
	Temperature     float64
	MaxTokens       int
	Timeout         int // seconds
	RatePerSec      float64
	Burst           int
	BreakerFailures int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	defaults := engine.DefaultParams()

	cfg := &Config{
		Catalog: CatalogConfig{
			Source:         strings.ToLower(getEnv("CATALOG_SOURCE", SourceCSV)),
			CSVPath:        getEnv("PHONES_CSV", "data/phones_clean.csv"),
			EstimatePrices: getEnvAsBool("CATALOG_ESTIMATE_PRICES", true),
		},
		Database: DatabaseConfig{
			Driver:             strings.ToLower(getEnv("DB_DRIVER", "")),
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "phonefinder"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			SQLitePath:         getEnv("SQLITE_PATH", ""),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Recommend: RecommendConfig{
			DefaultTopN:        getEnvAsInt("RECOMMEND_TOP_N", 3),
			MaxTopN:            getEnvAsInt("RECOMMEND_MAX_TOP_N", 10),
			LogRecommendations: getEnvAsBool("LOG_RECOMMENDATIONS", true),
		},
		Ladder: LadderConfig{
			MinResults:         getEnvAsInt("LADDER_MIN_RESULTS", defaults.MinResults),
			BudgetRelaxFactor:  getEnvAsFloat("LADDER_BUDGET_RELAX", defaults.BudgetRelaxFactor),
			BatteryRelaxFactor: getEnvAsFloat("LADDER_BATTERY_RELAX", defaults.BatteryRelaxFactor),
			RAMRelaxStep:       getEnvAsFloat("LADDER_RAM_STEP", defaults.RAMRelaxStep),
			StorageRelaxStep:   getEnvAsFloat("LADDER_STORAGE_STEP", defaults.StorageRelaxStep),
			CameraRelaxFactor:  getEnvAsFloat("LADDER_CAMERA_RELAX", defaults.CameraRelaxFactor),
			FallbackLimit:      getEnvAsInt("LADDER_FALLBACK_LIMIT", defaults.FallbackLimit),
		},
		Extractor: ExtractorConfig{
			UseLLM:          getEnvAsBool("USE_LLM", false),
			APIBase:         getEnv("LLM_API_BASE", "https://api.openai.com/v1"),
			APIKey:          getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			Model:           getEnv("LLM_MODEL", "gpt-4o-mini"),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.2),
			MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 512),
			Timeout:         getEnvAsInt("LLM_TIMEOUT", 15),
			RatePerSec:      getEnvAsFloat("LLM_RATE_PER_SEC", 2),
			Burst:           getEnvAsInt("LLM_BURST", 4),
			BreakerFailures: getEnvAsInt("LLM_BREAKER_FAILURES", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that would otherwise fail later at startup
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceCSV, SourcePostgres, SourceSQLite:
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	if c.Catalog.Source == SourceSQLite && c.Database.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite catalog source")
	}
	switch c.Database.Driver {
	case "", SourcePostgres, SourceSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Recommend.DefaultTopN < 1 || c.Recommend.MaxTopN < c.Recommend.DefaultTopN {
		return fmt.Errorf("invalid top-n settings: default %d, max %d", c.Recommend.DefaultTopN, c.Recommend.MaxTopN)
	}
	if err := c.LadderParams().Validate(); err != nil {
		return fmt.Errorf("invalid ladder settings: %w", err)
	}
	return nil
}

// LadderParams converts the ladder settings into engine parameters
func (c *Config) LadderParams() engine.Params {
	p := engine.DefaultParams()
	p.MinResults = c.Ladder.MinResults
	p.BudgetRelaxFactor = c.Ladder.BudgetRelaxFactor
	p.BatteryRelaxFactor = c.Ladder.BatteryRelaxFactor
	p.RAMRelaxStep = c.Ladder.RAMRelaxStep
	p.StorageRelaxStep = c.Ladder.StorageRelaxStep
	p.CameraRelaxFactor = c.Ladder.CameraRelaxFactor
	p.FallbackLimit = c.Ladder.FallbackLimit
	return p
}

// DatabaseDriver returns the SQL driver to use, or "" when no database is configured.
// A database catalog source implies its driver.
func (c *Config) DatabaseDriver() string {
	switch {
	case c.Catalog.Source == SourcePostgres || c.Catalog.Source == SourceSQLite:
		return c.Catalog.Source
	case c.Database.Driver != "":
		return c.Database.Driver
	case c.Database.DSN != "":
		return SourcePostgres
	case c.Database.SQLitePath != "":
		return SourceSQLite
	}
	return ""
}

// DatabaseDSN returns the connection string for DatabaseDriver
func (c *Config) DatabaseDSN() string {
	if c.DatabaseDriver() == SourceSQLite {
		return c.Database.SQLitePath
	}
	return c.GetPostgreSQLDSN()
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warn().Str("key", key).Float64("default", defaultValue).Msg("Invalid float value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Bool("default", defaultValue).Msg("Invalid boolean value, using default")
		return defaultValue
	}
	return value
}
