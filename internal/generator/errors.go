// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPullDeclined is returned when the generator image is missing and the
	// user refuses to pull it.
	ErrPullDeclined = errors.New("image pull declined")
	// ErrOverwriteDeclined is returned when the output folder already holds
	// generated code and the user refuses to overwrite it.
	ErrOverwriteDeclined = errors.New("overwrite declined")
	// ErrNoDefinition is returned when no OpenAPI definition was given or found.
	ErrNoDefinition = errors.New("no OpenAPI definition")
	// ErrImageMissing is returned when the image is absent and the pull
	// policy forbids pulling it.
	ErrImageMissing = errors.New("generator image not present")
	// ErrNoGeneratorType is the sentinel error wrapped by NoGeneratorTypeError.
	ErrNoGeneratorType = errors.New("no generator type available")
	// ErrUnknownLanguage is the sentinel error wrapped by UnknownLanguageError.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrGeneratorRequired is the sentinel error wrapped by AmbiguousGeneratorError.
	ErrGeneratorRequired = errors.New("generator type must be chosen")
	// ErrUnknownGeneratorType is the sentinel error wrapped by UnknownGeneratorTypeError.
	ErrUnknownGeneratorType = errors.New("unknown generator type")
	// ErrGenerationFailed is the sentinel error wrapped by GenerationError.
	ErrGenerationFailed = errors.New("code generation failed")
)

type (
	// NoGeneratorTypeError is returned when a language has no generator of
	// the requested kind.
	NoGeneratorTypeError struct {
		Kind     Kind
		Language string
	}

	// UnknownLanguageError is returned for a language the catalog does not list.
	UnknownLanguageError struct {
		Language string
	}

	// AmbiguousGeneratorError is returned when several generator types fit
	// and none was requested.
	AmbiguousGeneratorError struct {
		Kind       Kind
		Language   string
		Candidates []string
	}

	// UnknownGeneratorTypeError is returned when a requested type is not
	// offered for the kind and language.
	UnknownGeneratorTypeError struct {
		Kind       Kind
		Type       string
		Candidates []string
	}

	// GenerationError is returned when the generator container could not be
	// run or exited with a non-zero status.
	GenerationError struct {
		Generator string
		ExitCode  int
		Err       error
	}
)

func (e *NoGeneratorTypeError) Error() string {
	return fmt.Sprintf("no %s generator types for language %s", e.Kind, e.Language)
}

func (e *NoGeneratorTypeError) Unwrap() error { return ErrNoGeneratorType }

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("unknown language %q", e.Language)
}

func (e *UnknownLanguageError) Unwrap() error { return ErrUnknownLanguage }

func (e *AmbiguousGeneratorError) Error() string {
	return fmt.Sprintf("%s language %s has several %s generators, choose one of: %s",
		e.Kind, e.Language, e.Kind, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousGeneratorError) Unwrap() error { return ErrGeneratorRequired }

func (e *UnknownGeneratorTypeError) Error() string {
	return fmt.Sprintf("unknown %s generator type %q (available: %s)",
		e.Kind, e.Type, strings.Join(e.Candidates, ", "))
}

func (e *UnknownGeneratorTypeError) Unwrap() error { return ErrUnknownGeneratorType }

// Error implements the error interface for GenerationError.
func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generator %s failed: %v", e.Generator, e.Err)
	}
	return fmt.Sprintf("generator %s exited with status %d", e.Generator, e.ExitCode)
}

// Unwrap returns ErrGenerationFailed and the underlying cause.
func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGenerationFailed}
	}
	return []error{ErrGenerationFailed, e.Err}
}
