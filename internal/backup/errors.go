// SPDX-License-Identifier: MPL-2.0

package backup

import (
	"errors"
	"fmt"
)

var (
	// ErrFileSystem is the sentinel error wrapped by FileSystemError.
	ErrFileSystem = errors.New("file system error")
	// ErrUserDeclined is the sentinel error wrapped by DeclinedError.
	ErrUserDeclined = errors.New("declined by user")
)

type (
	// FileSystemError is returned when a directory cannot be read or a file
	// cannot be renamed, written, or removed.
	// It wraps ErrFileSystem for errors.Is() compatibility.
	FileSystemError struct {
		// Op is the failed operation (e.g., "stat", "rename", "write").
		Op string
		// Path is the file or directory involved.
		Path string
		// Err is the underlying I/O error.
		Err error
	}

	// DeclinedError is returned when the confirmation collaborator refuses to
	// let an existing file be moved aside.
	// It wraps ErrUserDeclined for errors.Is() compatibility.
	DeclinedError struct {
		// File is the name of the file that would have been backed up.
		File string
	}
)

// Error implements the error interface for FileSystemError.
func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns ErrFileSystem and the underlying cause, so both
// errors.Is(err, ErrFileSystem) and errors.Is(err, fs.ErrNotExist) work.
func (e *FileSystemError) Unwrap() []error {
	return []error{ErrFileSystem, e.Err}
}

// Error implements the error interface for DeclinedError.
func (e *DeclinedError) Error() string {
	return fmt.Sprintf("declined to proceed: output folder already contains %s", e.File)
}

// Unwrap returns ErrUserDeclined for errors.Is() compatibility.
func (e *DeclinedError) Unwrap() error { return ErrUserDeclined }
