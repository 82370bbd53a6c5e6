package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Store driver names.
const (
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	MongoDB  MongoDBConfig
	Identity IdentityConfig
	Sheets   SheetsConfig
	Jobs     JobsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// IdentityConfig contains credentials for the external authentication service.
type IdentityConfig struct {
	BaseURL string
	APIKey  string
}

// SheetsConfig contains configuration for the snapshot spreadsheet export.
// Both fields empty disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// JobsConfig holds scheduler-related settings.
type JobsConfig struct {
	SweepSchedule    string
	SnapshotSchedule string
	Timezone         string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			Driver: getenvWithDefault("STORE_DRIVER", DriverMongoDB),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "shopkeeper"),
		},
		Identity: IdentityConfig{
			BaseURL: getenvWithDefault("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com"),
			APIKey:  os.Getenv("IDENTITY_API_KEY"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_REPORT_ID"),
		},
		Jobs: JobsConfig{
			SweepSchedule:    getenvWithDefault("EXPIRY_SWEEP_SCHEDULE", "30 0 * * *"),
			SnapshotSchedule: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:         getenvWithDefault("TIMEZONE", "UTC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Driver {
	case DriverMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case DriverMemory:
		// Nothing to validate; data lives for the process lifetime only.
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Identity.BaseURL == "" {
		return errors.New("IDENTITY_BASE_URL must not be empty")
	}
	if c.Identity.APIKey == "" {
		return errors.New("IDENTITY_API_KEY must be provided")
	}

	// The sheets export is optional, but a half-configured one is a mistake.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_REPORT_ID must be provided together")
	}

	if c.Jobs.SweepSchedule == "" {
		return errors.New("EXPIRY_SWEEP_SCHEDULE must be provided")
	}
	if c.Jobs.SnapshotSchedule == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE must be provided")
	}
	if c.Jobs.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

// SheetsEnabled reports whether the snapshot spreadsheet export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
