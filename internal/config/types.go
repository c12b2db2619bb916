// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ContainerEnginePodman uses Podman to run the generator.
	ContainerEnginePodman ContainerEngine = "podman"
	// ContainerEngineDocker uses Docker to run the generator.
	ContainerEngineDocker ContainerEngine = "docker"

	// PullMissing pulls the generator image only when absent.
	PullMissing PullPolicy = "missing"
	// PullAlways pulls before every generation.
	PullAlways PullPolicy = "always"
	// PullNever never pulls.
	PullNever PullPolicy = "never"

	// WriteModeAsync writes the merged descriptor in the background.
	WriteModeAsync WriteMode = "async"
	// WriteModeSync blocks until the merged descriptor is written.
	WriteModeSync WriteMode = "sync"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultGeneratorImage is the generator image used when none is configured.
	DefaultGeneratorImage ImageRef = "openapitools/openapi-generator-cli:v4.2.2"
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidPullPolicy is returned when a PullPolicy value is not recognized.
	ErrInvalidPullPolicy = errors.New("invalid pull policy")
	// ErrInvalidWriteMode is returned when a WriteMode value is not recognized.
	ErrInvalidWriteMode = errors.New("invalid write mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidImageRef is returned when an image reference is empty or contains whitespace.
	ErrInvalidImageRef = errors.New("invalid image reference")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container engine runs the generator.
	ContainerEngine string

	// PullPolicy specifies when the generator image is pulled.
	// Defined locally to keep config free of the generator package.
	PullPolicy string

	// WriteMode specifies how the merged build descriptor is written.
	WriteMode string

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// ImageRef is a container image reference such as "repo/name:tag".
	ImageRef string

	// InvalidValueError is returned when a typed configuration value is
	// outside its allowed set. It wraps the sentinel for its kind.
	InvalidValueError struct {
		Field   string
		Value   string
		Allowed []string
		kind    error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ContainerEngine is the preferred engine; the other one is used as
		// a fallback when the preferred is unavailable.
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		Generator       GeneratorConfig `json:"generator" mapstructure:"generator"`
		Backup          BackupConfig    `json:"backup" mapstructure:"backup"`
		Merge           MergeConfig     `json:"merge" mapstructure:"merge"`
		UI              UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// GeneratorConfig configures the generator container.
	GeneratorConfig struct {
		Image ImageRef   `json:"image" mapstructure:"image"`
		Pull  PullPolicy `json:"pull" mapstructure:"pull"`
	}

	// BackupConfig configures the backup of an existing pom.xml.
	BackupConfig struct {
		// Confirm asks before moving an existing descriptor aside.
		Confirm bool `json:"confirm" mapstructure:"confirm"`
	}

	// MergeConfig configures build descriptor reconciliation.
	MergeConfig struct {
		WriteMode WriteMode `json:"write_mode" mapstructure:"write_mode"`
		// RestoreOnFailure puts the generated descriptor back at pom.xml
		// when the merge cannot complete.
		RestoreOnFailure bool `json:"restore_on_failure" mapstructure:"restore_on_failure"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q (valid: %s)", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Unwrap returns the sentinel for the value's kind.
func (e *InvalidValueError) Unwrap() error { return e.kind }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func oneOf[T ~string](field string, v T, kind error, allowed ...T) (bool, []error) {
	for _, a := range allowed {
		if v == a {
			return true, nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return false, []error{&InvalidValueError{Field: field, Value: string(v), Allowed: names, kind: kind}}
}

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// IsValid reports whether the engine is podman or docker.
func (ce ContainerEngine) IsValid() (bool, []error) {
	return oneOf("container engine", ce, ErrInvalidContainerEngine, ContainerEnginePodman, ContainerEngineDocker)
}

// String returns the string representation of the PullPolicy.
func (p PullPolicy) String() string { return string(p) }

// IsValid reports whether the policy is missing, always or never.
func (p PullPolicy) IsValid() (bool, []error) {
	return oneOf("pull policy", p, ErrInvalidPullPolicy, PullMissing, PullAlways, PullNever)
}

// String returns the string representation of the WriteMode.
func (m WriteMode) String() string { return string(m) }

// IsValid reports whether the mode is sync or async.
func (m WriteMode) IsValid() (bool, []error) {
	return oneOf("write mode", m, ErrInvalidWriteMode, WriteModeAsync, WriteModeSync)
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid reports whether the scheme is auto, dark or light.
func (cs ColorScheme) IsValid() (bool, []error) {
	return oneOf("color scheme", cs, ErrInvalidColorScheme, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
}

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }

// IsValid reports whether the reference is non-empty and free of whitespace.
func (r ImageRef) IsValid() (bool, []error) {
	if r == "" || strings.ContainsFunc(string(r), func(c rune) bool { return c == ' ' || c == '\t' || c == '\n' }) {
		return false, []error{fmt.Errorf("%w %q: must be non-empty without whitespace", ErrInvalidImageRef, string(r))}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields, collecting every
// field error into a single InvalidConfigError.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, check := range []func() (bool, []error){
		c.ContainerEngine.IsValid,
		c.Generator.Image.IsValid,
		c.Generator.Pull.IsValid,
		c.Merge.WriteMode.IsValid,
		c.UI.ColorScheme.IsValid,
	} {
		if valid, fieldErrs := check(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: ContainerEnginePodman,
		Generator: GeneratorConfig{
			Image: DefaultGeneratorImage,
			Pull:  PullMissing,
		},
		Backup: BackupConfig{Confirm: true},
		Merge: MergeConfig{
			WriteMode:        WriteModeAsync,
			RestoreOnFailure: true,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
