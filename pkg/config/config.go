/*
Package config manages TOML config for sakanadex services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure.
type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Validator ValidatorConfig `toml:"validator"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Server    ServerConfig    `toml:"server"`
}

// EngineConfig has search engine options.
type EngineConfig struct {
	MaxPrefixLength int  `toml:"max_prefix_length"`
	DefaultLimit    int  `toml:"default_limit"`
	FoldKana        bool `toml:"fold_kana"`
	FoldCase        bool `toml:"fold_case"`
	FoldWidth       bool `toml:"fold_width"`
}

// ValidatorConfig holds the rules for user-submitted names.
type ValidatorConfig struct {
	MinLength      int      `toml:"min_length"`
	MaxLength      int      `toml:"max_length"`
	ForbiddenWords []string `toml:"forbidden_words"`
	AllowedPattern string   `toml:"allowed_pattern"`
	MaxEntities    int      `toml:"max_entities"`
	TrimWhitespace bool     `toml:"trim_whitespace"`
}

// CatalogConfig points at the raw catalog source.
type CatalogConfig struct {
	Path         string `toml:"path"`
	SourceFilter string `toml:"source_filter"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxLimit int `toml:"max_limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxPrefixLength: 3,
			DefaultLimit:    10,
			FoldKana:        true,
			FoldCase:        true,
			FoldWidth:       false,
		},
		Validator: ValidatorConfig{
			MinLength:      2,
			MaxLength:      20,
			ForbiddenWords: []string{"テスト", "てすと", "test", "ダミー", "だみー", "dummy"},
			AllowedPattern: "",
			MaxEntities:    100,
			TrimWhitespace: true,
		},
		Catalog: CatalogConfig{
			Path:         "",
			SourceFilter: "all",
		},
		Server: ServerConfig{
			MaxLimit: 64,
		},
	}
}

// LoadConfig loads from a TOML file over the defaults, so a partial
// file only overrides the keys it names.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}

// InitConfig loads config from file or creates a default one if missing.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from the -config flag
// 2. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		config, err := InitConfig(customConfigPath)
		if err == nil {
			log.Debugf("Loaded config from: %s", customConfigPath)
			return config, customConfigPath
		}
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", customConfigPath, err)
	}
	return DefaultConfig(), ""
}

// SaveConfig saves into a TOML file.
func SaveConfig(config *Config, configPath string) error {
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(config)
}
