// SPDX-License-Identifier: MPL-2.0

package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
)

// backupSuffix is appended to the stem when reserving a backup name.
const backupSuffix = "-backup"

type (
	// Confirmer asks an interactive surface for a yes/no answer.
	// A false answer with a nil error means the user declined.
	Confirmer interface {
		Confirm(ctx context.Context, prompt string) (bool, error)
	}

	// ConfirmFunc adapts a plain function to the Confirmer interface.
	ConfirmFunc func(ctx context.Context, prompt string) (bool, error)
)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// logger returns the package logger. It is derived on each call so level
// changes made to the default logger after init are honored.
func logger() *log.Logger {
	return log.Default().WithPrefix("backup")
}

// UniqueFileName returns the first name among stem+ext, stem-1+ext,
// stem-2+ext, ... that does not exist in dir at the time of the check.
// There is no upper bound on the suffix.
func UniqueFileName(dir, stem, ext string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", &FileSystemError{Op: "stat", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return "", &FileSystemError{Op: "stat", Path: dir, Err: errors.New("not a directory")}
	}

	name := stem + ext
	for i := 1; ; i++ {
		taken, err := exists(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
		name = stem + "-" + strconv.Itoa(i) + ext
	}
}

// FileIfExists moves dir/stem+ext to a unique "-backup" name and returns that
// name. It returns "" and does nothing when the file is absent.
//
// When confirmer is non-nil it is asked first; a negative answer fails with a
// DeclinedError and leaves the file untouched. A failed rename leaves the
// original in place and returns a FileSystemError.
func FileIfExists(ctx context.Context, dir, stem, ext string, confirmer Confirmer) (string, error) {
	fileName := stem + ext
	target := filepath.Join(dir, fileName)

	present, err := exists(target)
	if err != nil {
		return "", err
	}
	if !present {
		return "", nil
	}

	logger().Info("backing up original file", "file", fileName)

	if confirmer != nil {
		ok, err := confirmer.Confirm(ctx, fmt.Sprintf("The output folder already contains %s. Back it up and continue?", fileName))
		if err != nil {
			return "", fmt.Errorf("confirm backup of %s: %w", fileName, err)
		}
		if !ok {
			return "", &DeclinedError{File: fileName}
		}
	}

	backupName, err := UniqueFileName(dir, stem+backupSuffix, ext)
	if err != nil {
		return "", err
	}

	if err := os.Rename(target, filepath.Join(dir, backupName)); err != nil {
		return "", &FileSystemError{Op: "rename", Path: target, Err: err}
	}

	logger().Debug("original file moved", "from", fileName, "to", backupName)
	return backupName, nil
}

// RemoveDir deletes path and everything below it with an explicit post-order
// walk: entries of a directory are removed before the directory itself.
// A missing path is not an error.
func RemoveDir(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &FileSystemError{Op: "stat", Path: path, Err: err}
	}
	return removeTree(path, info)
}

func removeTree(path string, info fs.FileInfo) error {
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return &FileSystemError{Op: "readdir", Path: path, Err: err}
		}
		for _, entry := range entries {
			child := filepath.Join(path, entry.Name())
			childInfo, err := os.Lstat(child)
			if err != nil {
				return &FileSystemError{Op: "stat", Path: child, Err: err}
			}
			if err := removeTree(child, childInfo); err != nil {
				return err
			}
		}
	}

	if err := os.Remove(path); err != nil {
		return &FileSystemError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// exists reports whether path exists. Errors other than "not exist" are
// returned as FileSystemError so callers never mistake an unreadable entry
// for a free one.
func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, &FileSystemError{Op: "stat", Path: path, Err: err}
	}
}
