// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is the sentinel error wrapped by ParseError.
	ErrParse = errors.New("malformed build descriptor")
	// ErrSectionMerge is the sentinel error wrapped by SectionMergeError.
	ErrSectionMerge = errors.New("section merge failed")
	// ErrNotProject is returned when a document root is not <project>.
	ErrNotProject = errors.New("document root is not <project>")
)

type (
	// ParseError is returned when a descriptor is not well-formed XML.
	// It wraps ErrParse for errors.Is() compatibility.
	ParseError struct {
		// Path is the file being parsed; empty for in-memory input.
		Path string
		// Line is the 1-based line where the problem was detected, when known.
		Line int
		Err  error
	}

	// SectionMergeError is returned when one of the three section merges
	// fails. No output is written when this happens.
	// It wraps ErrSectionMerge for errors.Is() compatibility.
	SectionMergeError struct {
		// Section names the failed merge (e.g., "dependencies").
		Section string
		Err     error
	}
)

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	src := e.Path
	if src == "" {
		src = "<input>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", src, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", src, e.Err)
}

// Unwrap returns ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// Error implements the error interface for SectionMergeError.
func (e *SectionMergeError) Error() string {
	return fmt.Sprintf("merge %s: %v", e.Section, e.Err)
}

// Unwrap returns ErrSectionMerge and the underlying cause.
func (e *SectionMergeError) Unwrap() []error { return []error{ErrSectionMerge, e.Err} }
