package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/pkloom-cli/internal/demographics"
)

// Global configuration structure.
type Global struct {
	// Inputs. An empty ClinicalPath selects the built-in reference dataset.
	DMPath       string `mapstructure:"dm_path" yaml:"dm_path"`
	DMSheet      string `mapstructure:"dm_sheet" yaml:"dm_sheet"`
	ClinicalPath string `mapstructure:"clinical_path" yaml:"clinical_path"`

	// Statistics
	Alpha   float64 `mapstructure:"alpha" yaml:"alpha"`
	GroupBy string  `mapstructure:"group_by" yaml:"group_by"`

	// Data quality
	MaxPlausibleAge float64                `mapstructure:"max_plausible_age" yaml:"max_plausible_age"`
	AllowUnmatched  bool                   `mapstructure:"allow_unmatched" yaml:"allow_unmatched"`
	AgeOverrides    demographics.Overrides `mapstructure:"age_overrides" yaml:"age_overrides"`

	// Output
	PlotsDir string `mapstructure:"plots_dir" yaml:"plots_dir"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// DefaultPath returns ~/.pkloom/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".pkloom", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.pkloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PKLOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dm_path", "dm.csv")
	v.SetDefault("dm_sheet", "")
	v.SetDefault("clinical_path", "")
	v.SetDefault("alpha", 0.05)
	v.SetDefault("group_by", "sex")
	v.SetDefault("max_plausible_age", 120.0)
	v.SetDefault("allow_unmatched", false)
	v.SetDefault("plots_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if !v.IsSet("age_overrides") {
		c.AgeOverrides = demographics.DefaultOverrides()
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return nil, fmt.Errorf("invalid alpha %v: want 0 < alpha < 1", c.Alpha)
	}
	return &c, nil
}
