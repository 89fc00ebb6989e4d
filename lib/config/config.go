// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/gcli/lib/labview"
	"github.com/bureau-foundation/gcli/lib/servicelocator"
)

// EnvironmentVariable names the configuration file when --config is not
// given.
const EnvironmentVariable = "GCLI_CONFIG"

// Config is g-cli's file configuration.
type Config struct {
	// ConnectTimeout bounds the wait for the application to connect.
	// Default: 60s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// Kill makes g-cli kill the application after it reports its exit
	// code, if it has not exited by itself within KillTimeout.
	// Default: false
	Kill bool `yaml:"kill"`

	// KillTimeout is the grace period before the kill.
	// Default: 10s
	KillTimeout time.Duration `yaml:"kill_timeout"`

	// ServiceLocator configures registration with the NI Service Locator.
	ServiceLocator ServiceLocatorConfig `yaml:"service_locator"`

	// LabVIEW configures install selection.
	LabVIEW LabVIEWConfig `yaml:"labview"`
}

// ServiceLocatorConfig configures the discovery service.
type ServiceLocatorConfig struct {
	// URL is the locator's root.
	// Default: http://localhost:3580
	URL string `yaml:"url"`

	// RetryBudget bounds retries while the locator is unreachable.
	// Default: 5s
	RetryBudget time.Duration `yaml:"retry_budget"`
}

// LabVIEWConfig configures install selection.
type LabVIEWConfig struct {
	// Installs are declared by hand, in addition to detected ones.
	Installs []InstallConfig `yaml:"installs"`
}

// InstallConfig declares one LabVIEW install.
type InstallConfig struct {
	// Path is the install directory or the LabVIEW executable.
	Path string `yaml:"path"`

	// Version is the full version text, such as "2024 Q3".
	Version string `yaml:"version"`

	// Bitness is "32bit" or "64bit".
	Bitness string `yaml:"bitness"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ConnectTimeout: 60 * time.Second,
		KillTimeout:    10 * time.Second,
		ServiceLocator: ServiceLocatorConfig{
			URL:         servicelocator.DefaultURL,
			RetryBudget: servicelocator.DefaultRetryBudget,
		},
	}
}

// Load reads the file named by GCLI_CONFIG, or returns the defaults when
// the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a configuration file over the defaults, expands
// variables, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) expandVariables() {
	for index := range c.LabVIEW.Installs {
		c.LabVIEW.Installs[index].Path = expandVars(c.LabVIEW.Installs[index].Path)
	}
	c.ServiceLocator.URL = expandVars(c.ServiceLocator.URL)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("connect_timeout must not be negative, got %v", c.ConnectTimeout))
	}
	if c.KillTimeout < 0 {
		errs = append(errs, fmt.Errorf("kill_timeout must not be negative, got %v", c.KillTimeout))
	}
	if c.ServiceLocator.RetryBudget < 0 {
		errs = append(errs, fmt.Errorf("service_locator.retry_budget must not be negative, got %v", c.ServiceLocator.RetryBudget))
	}
	if parsed, err := url.Parse(c.ServiceLocator.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("service_locator.url must be an absolute URL, got %q", c.ServiceLocator.URL))
	}

	for index, install := range c.LabVIEW.Installs {
		if install.Path == "" {
			errs = append(errs, fmt.Errorf("labview.installs[%d].path is required", index))
		}
		if install.Version == "" {
			errs = append(errs, fmt.Errorf("labview.installs[%d].version is required", index))
		}
		if _, err := labview.ParseBitness(install.Bitness); err != nil {
			errs = append(errs, fmt.Errorf("labview.installs[%d].bitness: %w", index, err))
		}
	}

	return errors.Join(errs...)
}

// Installs returns the declared installs as a set. Call Validate first;
// installs with an unparseable bitness are skipped.
func (c *Config) Installs() *labview.Installs {
	installs := labview.NewInstalls()
	for _, declared := range c.LabVIEW.Installs {
		bitness, err := labview.ParseBitness(declared.Bitness)
		if err != nil {
			continue
		}
		installs.Add(labview.Install{
			Path:    declared.Path,
			Version: declared.Version,
			Bitness: bitness,
		})
	}
	return installs
}
