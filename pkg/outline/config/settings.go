package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/cognicore/outline/pkg/outline/internalerr"
)

// Settings holds process-level options for the CLI
type Settings struct {
	Vocabulary   string `mapstructure:"vocabulary"`
	ReportDB     string `mapstructure:"report_db"`
	TemplatesDir string `mapstructure:"templates_dir"`
	Workers      int    `mapstructure:"workers"`
	Color        bool   `mapstructure:"color"`
}

// LoadSettings reads settings from defaults, an optional YAML file and
// environment variables with the OUTLINE_ prefix, later sources winning.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("OUTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("vocabulary", "")
	v.SetDefault("report_db", "")
	v.SetDefault("templates_dir", "")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("color", true)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("settings file %s: %w", path, internalerr.ErrNotFound)
			}
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if s.Workers < 1 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", internalerr.ErrInvalidConfig, s.Workers)
	}

	return &s, nil
}
