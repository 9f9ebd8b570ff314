package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ConfigService persists the last-used copy selection so the GUI can
// pre-fill it on the next launch.
type ConfigService struct {
	configPath string
	logger     *log.Logger
	config     *Config
}

// Config is the persisted application configuration.
type Config struct {
	SourcePath      string `json:"sourcePath"`
	DestinationPath string `json:"destinationPath"`
	Resume          bool   `json:"resume"`
}

// NewConfigService creates a ConfigService backed by a JSON file in the
// user's config directory.
func NewConfigService(logger *log.Logger) (*ConfigService, error) {
	baseDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	configDir := filepath.Join(baseDir, "hauler")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	service := &ConfigService{
		configPath: filepath.Join(configDir, "config.json"),
		logger:     logger,
		config:     &Config{},
	}

	if err := service.Load(); err != nil {
		logger.Printf("[ConfigService] Failed to load config: %v", err)
		// Continue with defaults
	}
	return service, nil
}

// Load reads the configuration from disk.
func (s *ConfigService) Load() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	s.config = &config
	return nil
}

// Save writes the configuration to disk.
func (s *ConfigService) Save() error {
	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(s.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration.
func (s *ConfigService) GetConfig() Config {
	if s.config == nil {
		return Config{}
	}
	return *s.config
}

// SetLastSelection stores the last source/destination/resume choice.
func (s *ConfigService) SetLastSelection(source, dest string, resume bool) error {
	if s.config == nil {
		s.config = &Config{}
	}
	s.config.SourcePath = source
	s.config.DestinationPath = dest
	s.config.Resume = resume
	return s.Save()
}
