package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/llsdtool/internal/parser"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for llsdtool
type Config struct {
	InputFormat  string            `yaml:"input_format"`
	OutputFormat string            `yaml:"output_format"`
	Pretty       bool              `yaml:"pretty"`
	Templates    map[string]string `yaml:"templates"`
	Logging      LoggingConfig     `yaml:"logging"`
	Watch        WatchConfig       `yaml:"watch"`

	// directory of the loaded file, used to resolve relative template paths
	dir string
}

// LoggingConfig controls the diagnostic log written to stderr
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	Level string `yaml:"level"`
}

// WatchConfig controls the watch command
type WatchConfig struct {
	DebounceMillis int `yaml:"debounce_millis"`
}

// CLIOverrides holds flag values that take precedence over the config file.
// Empty strings and nil pointers mean the flag was not given.
type CLIOverrides struct {
	InputFormat  string
	OutputFormat string
	Pretty       *bool
	Debug        bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		InputFormat:  "",
		OutputFormat: string(parser.FormatXML),
		Pretty:       false,
		Templates:    make(map[string]string),
		Logging: LoggingConfig{
			Debug: false,
			Level: "info",
		},
		Watch: WatchConfig{
			DebounceMillis: 200,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		cfg.dir = filepath.Dir(abs)
	}
	cfg.normalizeTemplates()

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".llsdtool.yml", ".llsdtool.yaml", "llsdtool.yml", "llsdtool.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that formats and the log level are known
func (c *Config) Validate() error {
	if c.InputFormat != "" {
		if _, err := parser.ParseFormat(c.InputFormat); err != nil {
			return fmt.Errorf("input_format: %w", err)
		}
	}
	if _, err := parser.ParseFormat(c.OutputFormat); err != nil {
		return fmt.Errorf("output_format: %w", err)
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	if c.Watch.DebounceMillis < 0 {
		return fmt.Errorf("watch.debounce_millis must not be negative, got %d", c.Watch.DebounceMillis)
	}
	return nil
}

// normalizeTemplates rewrites template names so lookups ignore case and
// separator style
func (c *Config) normalizeTemplates() {
	normalized := make(map[string]string, len(c.Templates))
	for name, path := range c.Templates {
		normalized[TemplateKey(name)] = path
	}
	c.Templates = normalized
}

// TemplateKey returns the lookup key for a template name. "MediaEntry",
// "media_entry" and "media-entry" share the key "media-entry".
func TemplateKey(name string) string {
	return strcase.ToKebab(name)
}

// ResolveTemplate returns the file holding the named template. Configured
// names win over paths; relative configured paths are taken from the config
// file's directory. The second result is false when nameOrPath is neither a
// configured name nor an existing file.
func (c *Config) ResolveTemplate(nameOrPath string) (string, bool) {
	if path, ok := c.Templates[TemplateKey(nameOrPath)]; ok {
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		return path, true
	}
	if info, err := os.Stat(nameOrPath); err == nil && !info.IsDir() {
		return nameOrPath, true
	}
	return "", false
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.InputFormat != "" {
		cfg.InputFormat = cli.InputFormat
	}
	if cli.OutputFormat != "" {
		cfg.OutputFormat = cli.OutputFormat
	}
	if cli.Pretty != nil {
		cfg.Pretty = *cli.Pretty
	}
	// --debug can only switch debugging on
	if cli.Debug {
		cfg.Logging.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
