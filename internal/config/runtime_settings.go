package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

// RuntimeSettings are the user-editable settings persisted between
// sessions, the successor of the desktop front end's gui_config.json.
type RuntimeSettings struct {
	GeminiAPIKey      string `json:"gemini_api_key"`
	Model             string `json:"model"`
	TMDBAPIKey        string `json:"tmdb_api_key"`
	Language          string `json:"language"`
	LanguageCode      string `json:"language_code"`
	ExtractAudio      bool   `json:"extract_audio"`
	AutoFetchMetadata bool   `json:"auto_fetch_metadata"`
	AddTranslatorInfo bool   `json:"add_translator_info"`
	CronExpr          string `json:"cron_expr"`
}

// DefaultRuntimeSettingsFile is overridable via SETTINGS_FILE.
func RuntimeSettingsFilePath() string {
	return getEnvString("SETTINGS_FILE", filepath.Join(DefaultConfigDir(), "settings.json"))
}

func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if strings.TrimSpace(s.Language) == "" && strings.TrimSpace(s.LanguageCode) == "" {
		return fmt.Errorf("language or language_code is required")
	}
	if code := strings.TrimSpace(s.LanguageCode); code != "" {
		if len(code) < 2 || len(code) > 3 {
			return fmt.Errorf("invalid language_code: %q", code)
		}
		for _, r := range code {
			if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
				return fmt.Errorf("invalid language_code: %q", code)
			}
		}
	}
	if expr := strings.TrimSpace(s.CronExpr); expr != "" {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid cron_expr: %w", err)
		}
	}
	return nil
}

// RuntimeSettings extracts the persistable view of a Config.
func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		GeminiAPIKey:      c.Translate.GeminiAPIKey,
		Model:             c.Translate.Model,
		TMDBAPIKey:        c.Metadata.TMDBAPIKey,
		Language:          c.Translate.Language,
		LanguageCode:      c.Translate.LanguageCode,
		ExtractAudio:      c.Translate.ExtractAudio,
		AutoFetchMetadata: c.Metadata.AutoFetch,
		AddTranslatorInfo: c.Translate.AddTranslatorInfo,
		CronExpr:          c.Intake.CronExpr,
	}
}

// WithRuntimeSettings overlays persisted settings onto an env-derived
// Config. Empty string fields keep the env value; booleans always win
// since the settings file is the source of truth for toggles.
func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		if strings.TrimSpace(settings.GeminiAPIKey) != "" {
			c.Translate.GeminiAPIKey = settings.GeminiAPIKey
		}
		if strings.TrimSpace(settings.Model) != "" {
			c.Translate.Model = settings.Model
		}
		if strings.TrimSpace(settings.TMDBAPIKey) != "" {
			c.Metadata.TMDBAPIKey = settings.TMDBAPIKey
		}
		if strings.TrimSpace(settings.Language) != "" {
			c.Translate.Language = settings.Language
		}
		if strings.TrimSpace(settings.LanguageCode) != "" {
			c.Translate.LanguageCode = settings.LanguageCode
		}
		if strings.TrimSpace(settings.CronExpr) != "" {
			c.Intake.CronExpr = settings.CronExpr
		}
		c.Translate.ExtractAudio = settings.ExtractAudio
		c.Metadata.AutoFetch = settings.AutoFetchMetadata
		c.Translate.AddTranslatorInfo = settings.AddTranslatorInfo
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// RuntimeSettingsStore keeps the current settings in memory and writes
// updates through to the settings file.
type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}
