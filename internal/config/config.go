// Package config loads neatgen settings with viper.
//
// Settings are layered, lowest precedence first: built-in defaults, the
// project file (neatgen.toml found by walking up from the working
// directory, or the file given with --config), NEATGEN_* environment
// variables and finally command line flags bound by the caller.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/generator"
)

// FileName is the project configuration file looked up by Find.
const FileName = "neatgen.toml"

// EnvPrefix prefixes every environment override, e.g.
// NEATGEN_RUNTIME_NAMESPACE or NEATGEN_LOG_JSON.
const EnvPrefix = "NEATGEN"

// Config is the decoded configuration.
type Config struct {
	RuntimeNamespace string      `mapstructure:"runtime_namespace"`
	Workers          int         `mapstructure:"workers"`
	OutputExtension  string      `mapstructure:"output_extension"`
	Template         string      `mapstructure:"template"`
	Log              LogConfig   `mapstructure:"log"`
	Watch            WatchConfig `mapstructure:"watch"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	JSON      bool `mapstructure:"json"`
	Verbosity int  `mapstructure:"verbosity"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// New returns a viper instance carrying the defaults and bound to the
// environment.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Find walks up from dir looking for FileName and returns the first match,
// or "" when there is none.
func Find(dir string) string {
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads the configuration file into v and decodes the result. An
// explicit path must exist; otherwise the project file is looked up from the
// working directory and silently skipped when absent.
func Load(v *viper.Viper, explicit string) (*Config, error) {
	path := explicit
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = Find(wd)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "failed to read config file %s", path), errors.ErrEnvironment)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no conversion could run with.
func (c *Config) Validate() error {
	if !validNamespace(c.RuntimeNamespace) {
		return errors.Newf("runtime_namespace %q is not a C++ namespace name", c.RuntimeNamespace)
	}
	if c.Workers < 1 {
		return errors.WithHint(errors.Newf("workers must be at least 1, got %d", c.Workers),
			"set workers = 1 to convert one artifact at a time")
	}
	if !strings.HasPrefix(c.OutputExtension, ".") || len(c.OutputExtension) < 2 {
		return errors.Newf("output_extension %q must start with a dot", c.OutputExtension)
	}
	if c.Watch.Debounce < 0 {
		return errors.Newf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// validNamespace accepts identifiers joined by "::".
func validNamespace(ns string) bool {
	if ns == "" {
		return false
	}
	for _, part := range strings.Split(ns, "::") {
		if part == "" {
			return false
		}
		for i, r := range part {
			switch {
			case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return false
			}
		}
	}
	return true
}

// TemplatePath resolves the document template path. Relative paths are taken
// relative to the configuration file that named them.
func (c *Config) TemplatePath() string {
	if c.Template == "" || filepath.IsAbs(c.Template) || c.File == "" {
		return c.Template
	}
	return filepath.Join(filepath.Dir(c.File), c.Template)
}

// Generator builds the generator settings, reading and validating the
// document template override when one is configured.
func (c *Config) Generator(log *zap.SugaredLogger) (generator.Config, error) {
	gc := generator.Config{RuntimeNamespace: c.RuntimeNamespace, Logger: log}
	path := c.TemplatePath()
	if path == "" {
		return gc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return gc, errors.Mark(errors.Wrapf(err, "failed to read document template %s", path), errors.ErrEnvironment)
	}
	if err := generator.ValidateDocumentTemplate(string(data)); err != nil {
		return gc, errors.Wrapf(err, "invalid document template %s", path)
	}
	gc.Template = string(data)
	return gc, nil
}
