package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string
	// CORSOrigins is a comma-separated list of allowed dashboard origins.
	CORSOrigins string

	// DataDir contains the CSV exports and the optional policy file.
	DataDir           string
	IncidentsFile     string
	ConsultationsFile string
	PolicyFile        string
	WebDir            string

	// SLA thresholds in business minutes.
	SLAGoalMinutes     int
	SLABaselineMinutes int

	LogDir string
}

// IncidentsPath returns the absolute-ish path of the incident export.
func (c *AppConfig) IncidentsPath() string {
	return filepath.Join(c.DataDir, c.IncidentsFile)
}

// ConsultationsPath returns the path of the consultation export.
func (c *AppConfig) ConsultationsPath() string {
	return filepath.Join(c.DataDir, c.ConsultationsFile)
}

// PolicyPath returns the path of the site policy file.
func (c *AppConfig) PolicyPath() string {
	return filepath.Join(c.DataDir, c.PolicyFile)
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data directory
	dataDir := getEnv("OPSDASH_DATA_DIR", "")
	if dataDir == "" {
		if exeDir != "" {
			dataDir = filepath.Join(exeDir, "data")
		} else {
			dataDir = "data"
		}
	}

	logDir := getEnv("OPSDASH_LOG_DIR", "")
	if logDir == "" {
		if exeDir != "" {
			logDir = filepath.Join(exeDir, "logs")
		} else {
			logDir = "logs"
		}
	}

	cfg := &AppConfig{
		Addr:               getEnv("OPSDASH_ADDR", ":8080"),
		CORSOrigins:        getEnv("OPSDASH_CORS_ORIGINS", ""),
		DataDir:            dataDir,
		IncidentsFile:      getEnv("OPSDASH_INCIDENTS_FILE", "incidents.csv"),
		ConsultationsFile:  getEnv("OPSDASH_CONSULTATIONS_FILE", "consultations.csv"),
		PolicyFile:         getEnv("OPSDASH_POLICY_FILE", "policy.yaml"),
		WebDir:             getEnv("OPSDASH_WEB_DIR", "./web"),
		SLAGoalMinutes:     getEnvInt("OPSDASH_SLA_GOAL_MINUTES", 192),
		SLABaselineMinutes: getEnvInt("OPSDASH_SLA_BASELINE_MINUTES", 240),
		LogDir:             logDir,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects configurations the metric engine cannot honor.
func (c *AppConfig) validate() error {
	if c.SLAGoalMinutes <= 0 || c.SLABaselineMinutes <= 0 {
		return fmt.Errorf("sla thresholds must be positive (goal=%d, baseline=%d)", c.SLAGoalMinutes, c.SLABaselineMinutes)
	}
	if c.SLAGoalMinutes > c.SLABaselineMinutes {
		return fmt.Errorf("sla goal threshold %d exceeds baseline threshold %d", c.SLAGoalMinutes, c.SLABaselineMinutes)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
