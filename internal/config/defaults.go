package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/calumari/neatgen/internal/errors"
	"github.com/calumari/neatgen/internal/generator"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("runtime_namespace", generator.DefaultRuntimeNamespace)
	v.SetDefault("workers", 4)
	v.SetDefault("output_extension", ".cpp")
	v.SetDefault("template", "") // empty uses the built-in document template

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)

	v.SetDefault("watch.debounce", "250ms")
}

// DefaultTOML renders the defaults as a TOML document.
func DefaultTOML() ([]byte, error) {
	v := viper.New()
	SetDefaults(v)
	data, err := toml.Marshal(v.AllSettings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal default configuration")
	}
	return data, nil
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.WithHint(
				errors.Mark(errors.Newf("%s already exists", path), errors.ErrEnvironment),
				"use --force to overwrite it")
		}
	}
	data, err := DefaultTOML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Mark(errors.Wrapf(err, "failed to create %s", dir), errors.ErrEnvironment)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to write %s", path), errors.ErrEnvironment)
	}
	return nil
}
