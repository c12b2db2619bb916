// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
var ErrInvalidLoadOptions = errors.New("invalid load options")

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath string
	}

	// InvalidLoadOptionsError lists the LoadOptions fields that are set to
	// whitespace only.
	InvalidLoadOptionsError struct {
		Fields []string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// Loaded is a configuration together with the file it came from.
	Loaded struct {
		Config *Config
		// Path is the file the configuration was read from, or empty when
		// only defaults and environment variables applied.
		Path string
	}

	fileProvider struct{}
)

// Error implements the error interface.
func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options: %s must not be blank", strings.Join(e.Fields, ", "))
}

// Unwrap returns ErrInvalidLoadOptions for errors.Is() compatibility.
func (e *InvalidLoadOptionsError) Unwrap() error { return ErrInvalidLoadOptions }

// Validate rejects paths that are set but blank. Empty fields are valid.
func (o LoadOptions) Validate() error {
	var bad []string
	if o.ConfigFilePath != "" && strings.TrimSpace(o.ConfigFilePath) == "" {
		bad = append(bad, "ConfigFilePath")
	}
	if o.ConfigDirPath != "" && strings.TrimSpace(o.ConfigDirPath) == "" {
		bad = append(bad, "ConfigDirPath")
	}
	if len(bad) > 0 {
		return &InvalidLoadOptionsError{Fields: bad}
	}
	return nil
}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	loaded, err := LoadWithPath(ctx, opts)
	if err != nil {
		return nil, err
	}
	return loaded.Config, nil
}

// LoadWithPath loads configuration and reports which file it came from.
func LoadWithPath(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cfg, path, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Path: path}, nil
}
