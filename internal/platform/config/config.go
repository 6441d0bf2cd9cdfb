package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultTickInterval = time.Second

type Config struct {
	DataDir         string
	DBPath          string
	ArchiveDir      string
	ReportDir       string
	CurrentPath     string
	LogPath         string
	TickInterval    time.Duration
	Logging         LoggingConfig
	Profile         *ProfileConfig
	configFilePath  string
	configFileFound bool
}

// File is the on-disk shape of <data>/.chamberlog/config.yaml.
type File struct {
	TickInterval string         `yaml:"tick_interval"`
	Logging      LoggingConfig  `yaml:"logging"`
	Profile      *ProfileConfig `yaml:"profile"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// ProfileConfig overrides the built-in training profile. Keys are fixed for
// the lifetime of the process once loaded.
type ProfileConfig struct {
	Events    []EventConfig `yaml:"events"`
	Rules     []RuleConfig  `yaml:"rules"`
	Roster    []string      `yaml:"roster"`
	Reference string        `yaml:"reference"`
}

type EventConfig struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

type RuleConfig struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data directory is required")
	}
	meta := filepath.Join(dataDir, ".chamberlog")
	return Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(meta, "chamberlog.db"),
		ArchiveDir:     filepath.Join(dataDir, "sessions"),
		ReportDir:      filepath.Join(dataDir, "reports"),
		CurrentPath:    filepath.Join(meta, "current-session.json"),
		LogPath:        filepath.Join(meta, "chamberlog.log"),
		TickInterval:   defaultTickInterval,
		Logging:        LoggingConfig{Level: "info", Format: "text"},
		configFilePath: filepath.Join(meta, "config.yaml"),
	}, nil
}

// Load derives the default layout for dataDir and overlays config.yaml when
// it exists.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(cfg.configFilePath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	file := File{}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.configFileFound = true
	if file.TickInterval != "" {
		interval, err := time.ParseDuration(file.TickInterval)
		if err != nil {
			return Config{}, fmt.Errorf("parse tick_interval: %w", err)
		}
		if interval < 100*time.Millisecond {
			return Config{}, fmt.Errorf("tick_interval must be at least 100ms, got %s", interval)
		}
		cfg.TickInterval = interval
	}
	if file.Logging.Level != "" {
		cfg.Logging.Level = file.Logging.Level
	}
	if file.Logging.Format != "" {
		cfg.Logging.Format = file.Logging.Format
	}
	cfg.Profile = file.Profile
	return cfg, nil
}

// FilePath returns the config.yaml location and whether it was read.
func (c Config) FilePath() (string, bool) {
	return c.configFilePath, c.configFileFound
}

// Save writes the overridable fields back to config.yaml.
func Save(cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.configFilePath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(File{
		TickInterval: cfg.TickInterval.String(),
		Logging:      cfg.Logging,
		Profile:      cfg.Profile,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(cfg.configFilePath, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
