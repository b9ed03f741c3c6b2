// Package config loads the goapply configuration. Values are taken from a
// yaml file, environment variables or both; environment variables win.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goapply/goapply/internal/artifacts"
	"github.com/goapply/goapply/internal/browser"
	"github.com/goapply/goapply/internal/classify"
	"github.com/goapply/goapply/internal/engine"
	"github.com/goapply/goapply/internal/events"
	"github.com/goapply/goapply/internal/output"
	"github.com/goapply/goapply/internal/platform"
	"github.com/goapply/goapply/internal/server"
	"github.com/goapply/goapply/internal/types"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines the overall structure of the configuration.
type Config struct {
	Browser browser.Config   `yaml:"browser"`
	Timing  engine.Timing    `yaml:"timing"`
	Profile classify.Profile `yaml:"profile"`
	// Platform and Criteria are the defaults of the run command.
	Platform  string               `yaml:"platform" env:"GOAPPLY_PLATFORM" env-default:"linkedin"`
	Criteria  types.SearchCriteria `yaml:"criteria"`
	Writer    output.WriterConfig  `yaml:"writer"`
	Events    events.Config        `yaml:"events"`
	Artifacts artifacts.Config     `yaml:"artifacts"`
	Server    server.Config        `yaml:"server"`
	// Locale is used for dates in the history table.
	Locale string `yaml:"locale" env:"GOAPPLY_LOCALE" env-default:"en_US"`
	// Platforms overrides parts of the built in adapters, keyed by platform
	// name.
	Platforms map[string]yaml.Node `yaml:"platforms"`
}

// LoadDotEnv loads the given .env files into the environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// NewConfig reads the config file at path. An empty path or a missing file
// falls back to the environment and the defaults.
func NewConfig(path string) (*Config, error) {
	var config Config
	var err error
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			err = cleanenv.ReadConfig(path, &config)
		} else if errors.Is(statErr, os.ErrNotExist) {
			err = cleanenv.ReadEnv(&config)
		} else {
			return nil, statErr
		}
	} else {
		err = cleanenv.ReadEnv(&config)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if config.Profile == (classify.Profile{}) {
		config.Profile = classify.DefaultProfile()
	}
	if config.Profile.CoverLetter == "" {
		config.Profile.CoverLetter = classify.DefaultCoverLetter
	}
	return &config, nil
}

// Registry returns the built in adapters with the configured overrides
// applied.
func (c *Config) Registry() (*platform.Registry, error) {
	reg := platform.Builtin()
	if err := reg.Override(c.Platforms); err != nil {
		return nil, err
	}
	return reg, nil
}

// Validate checks the parts of the configuration that are only used
// lazily, so that mistakes surface before a run starts.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Registry(); err != nil {
		errs = append(errs, err)
	}
	if _, err := types.ParsePlatform(c.Platform); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Events.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.Writer.Type {
	case "", output.STDOUT_WRITER_TYPE, output.FILE_WRITER_TYPE, output.API_WRITER_TYPE, output.POSTGRES_WRITER_TYPE:
	default:
		errs = append(errs, fmt.Errorf("writer of type '%s' not implemented", c.Writer.Type))
	}
	switch c.Artifacts.Type {
	case artifacts.NoStore, artifacts.LocalStore, artifacts.S3Store:
	default:
		errs = append(errs, fmt.Errorf("artifact store of type '%s' not implemented", c.Artifacts.Type))
	}
	return errors.Join(errs...)
}
