package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/subworks/subflow/pkg/log"
)

// Config holds all application configuration.
// Values come from environment variables with sensible defaults; a .env
// file in the working directory is honored when present.
//
// Environment Variables:
// Translate Configuration:
// - GEMINI_API_KEY: API key passed to the gst CLI (required to run jobs)
// - GST_MODEL: model name (default: gemini-2.5-flash)
// - TARGET_LANGUAGE: target language name or code (default: Polish)
// - TARGET_LANGUAGE_CODE: output filename code (default: derived from TARGET_LANGUAGE)
// - EXTRACT_AUDIO: pass --extract-audio for video inputs (default: false)
// - ADD_TRANSLATOR_INFO: prepend a translator credit cue (default: true)
//
// Metadata Configuration:
// - TMDB_API_KEY: TMDB API key or bearer token (optional)
// - AUTO_FETCH_METADATA: query TMDB per group (default: true)
//
// Intake Configuration:
// - DROP_DIRS: colon-separated drop directories to watch (default: /drop)
// - CRON_EXPR: catch-up rescan schedule (default: "0 * * * *")
//
// System Configuration:
// - HTTP_ADDR: API listen address (default: :8722)
// - DB_PATH: sqlite job store path (default: <config dir>/subflow.db)
// - WORKER_COUNT: parallel translation jobs (default: 1)
// - METADATA_CONCURRENCY: parallel TMDB group lookups (default: 4)
// - LOG_LEVEL: debug|info|warn|error (default: info)

type Config struct {
	Translate TranslateConfig `json:"translate"`
	Metadata  MetadataConfig  `json:"metadata"`
	Intake    IntakeConfig    `json:"intake"`
	System    SystemConfig    `json:"system"`
}

// TranslateConfig configures the external gst translation runs.
type TranslateConfig struct {
	GeminiAPIKey      string `json:"gemini_api_key"`
	Model             string `json:"model"`
	Language          string `json:"language"`
	LanguageCode      string `json:"language_code"`
	ExtractAudio      bool   `json:"extract_audio"`
	AddTranslatorInfo bool   `json:"add_translator_info"`
}

// MetadataConfig configures the TMDB metadata lookups.
type MetadataConfig struct {
	TMDBAPIKey  string `json:"tmdb_api_key"`
	AutoFetch   bool   `json:"auto_fetch"`
	Concurrency int    `json:"concurrency"`
}

// IntakeConfig configures the drop directories and the rescan schedule.
type IntakeConfig struct {
	DropDirs []string `json:"drop_dirs"`
	CronExpr string   `json:"cron_expr"`
}

// SystemConfig holds process-level settings.
type SystemConfig struct {
	HTTPAddr    string `json:"http_addr"`
	DBPath      string `json:"db_path"`
	WorkerCount int    `json:"worker_count"`
	LogLevel    string `json:"log_level"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment
// variables and options. A .env file is loaded first when present.
func NewFromEnv(opts ...Option) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded .env file")
	}

	config := &Config{
		Translate: TranslateConfig{
			GeminiAPIKey:      getEnvString("GEMINI_API_KEY", ""),
			Model:             getEnvString("GST_MODEL", "gemini-2.5-flash"),
			Language:          getEnvString("TARGET_LANGUAGE", "Polish"),
			LanguageCode:      getEnvString("TARGET_LANGUAGE_CODE", ""),
			ExtractAudio:      getEnvBool("EXTRACT_AUDIO", false),
			AddTranslatorInfo: getEnvBool("ADD_TRANSLATOR_INFO", true),
		},
		Metadata: MetadataConfig{
			TMDBAPIKey:  getEnvString("TMDB_API_KEY", ""),
			AutoFetch:   getEnvBool("AUTO_FETCH_METADATA", true),
			Concurrency: getEnvInt("METADATA_CONCURRENCY", 4),
		},
		Intake: IntakeConfig{
			DropDirs: filepath.SplitList(getEnvString("DROP_DIRS", "/drop")),
			CronExpr: getEnvString("CRON_EXPR", "0 * * * *"),
		},
		System: SystemConfig{
			HTTPAddr:    getEnvString("HTTP_ADDR", ":8722"),
			DBPath:      getEnvString("DB_PATH", filepath.Join(DefaultConfigDir(), "subflow.db")),
			WorkerCount: getEnvInt("WORKER_COUNT", 1),
			LogLevel:    getEnvString("LOG_LEVEL", "info"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Translate.Language == "" && c.Translate.LanguageCode == "" {
		return fmt.Errorf("TARGET_LANGUAGE or TARGET_LANGUAGE_CODE is required")
	}
	if c.System.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	return nil
}

// DefaultConfigDir returns the platform configuration directory for the
// application, mirroring where the desktop front end kept gui_config.json.
func DefaultConfigDir() string {
	const appName = "subflow"

	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("APPDATA"); base != "" {
			return filepath.Join(base, appName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming", appName)
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
			return filepath.Join(base, appName)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
