package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/uXmii/schemaflow/internal/build"
	"github.com/uXmii/schemaflow/internal/fileutil"
)

// Loader reads and merges configuration from the config file, environment
// variables, and built-in defaults.
type Loader struct {
	v          *viper.Viper
	configFile string
	warnings   []string
}

// LoaderOption defines a functional option for configuring a Loader.
type LoaderOption func(*Loader)

// WithConfigFile returns a LoaderOption that sets the configuration file path.
func WithConfigFile(configFile string) LoaderOption {
	return func(l *Loader) {
		l.configFile = configFile
	}
}

// Load reads the configuration. A missing config file is not an error;
// defaults and environment variables still apply.
func Load(opts ...LoaderOption) (*Config, error) {
	l := &Loader{v: viper.New()}
	for _, opt := range opts {
		opt(l)
	}

	l.setDefaults()
	l.bindEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(build.Slug)
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath(filepath.Join(xdg.ConfigHome, build.Slug))
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		l.warnings = append(l.warnings, "no config file found, using defaults")
	}

	cfg := &Config{
		Global: Global{
			Debug:     l.v.GetBool("debug"),
			LogFormat: l.v.GetString("logFormat"),
			Quiet:     l.v.GetBool("quiet"),
		},
		Paths: PathsConfig{
			PipelineRoot: l.v.GetString("pipelineRoot"),
			DataRoot:     l.v.GetString("dataRoot"),
			DataFileName: l.v.GetString("dataFileName"),
			LogFile:      l.v.GetString("logFile"),
		},
		Warnings: l.warnings,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("debug", false)
	l.v.SetDefault("quiet", false)
	l.v.SetDefault("logFormat", "text")
	l.v.SetDefault("pipelineRoot", "./pipeline")
	l.v.SetDefault("dataRoot", "./data/census_data")
	l.v.SetDefault("dataFileName", "adult.data")
	l.v.SetDefault("logFile", fmt.Sprintf("./%s.log", build.Slug))
}

func (l *Loader) bindEnv() {
	l.v.SetEnvPrefix(strings.ToUpper(build.Slug))
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

func validate(cfg *Config) error {
	if cfg.Paths.PipelineRoot == "" {
		return errors.New("pipelineRoot must not be empty")
	}
	if cfg.Paths.DataRoot == "" {
		return errors.New("dataRoot must not be empty")
	}
	if cfg.Paths.DataFileName == "" {
		return errors.New("dataFileName must not be empty")
	}
	if f := cfg.Global.LogFormat; f != "text" && f != "json" {
		return fmt.Errorf("unsupported log format %q", f)
	}
	if fileutil.FileExists(cfg.Paths.PipelineRoot) && !fileutil.IsDir(cfg.Paths.PipelineRoot) {
		return fmt.Errorf("pipelineRoot %s exists and is not a directory", cfg.Paths.PipelineRoot)
	}
	return nil
}
