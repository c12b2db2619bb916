// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"oagen-cli/internal/backup"
)

// IgnoreFileName marks an output folder that already holds generated code.
const IgnoreFileName = ".openapi-generator-ignore"

// nonDefinitionFiles are YAML/JSON files that commonly sit in projects but
// are never OpenAPI definitions. Compared case-insensitively.
var nonDefinitionFiles = []string{
	"package.json",
	"package-lock.json",
	"chart.yaml",
	"nodemon.json",
	"manifest.yml",
	"devfile.yaml",
}

// IsCandidateDefinition reports whether a file name may hold an OpenAPI
// definition.
func IsCandidateDefinition(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, "yaml") && !strings.HasSuffix(lower, "yml") && !strings.HasSuffix(lower, "json") {
		return false
	}
	return !slices.Contains(nonDefinitionFiles, lower)
}

// FindDefinitions walks root for candidate OpenAPI definitions and returns
// their root-relative paths with forward slashes, sorted. Directories whose
// name starts with a dot are not descended into.
func FindDefinitions(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &backup.FileSystemError{Op: "stat", Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &backup.FileSystemError{Op: "stat", Path: root, Err: fs.ErrInvalid}
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsCandidateDefinition(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		found = append(found, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, &backup.FileSystemError{Op: "walk", Path: root, Err: err}
	}

	slices.Sort(found)
	return found, nil
}

// HasGeneratedOutput reports whether dir contains the generator's ignore
// file, which the generator writes on every run.
func HasGeneratedOutput(dir string) (bool, error) {
	info, err := os.Lstat(filepath.Join(dir, IgnoreFileName))
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, &backup.FileSystemError{Op: "stat", Path: filepath.Join(dir, IgnoreFileName), Err: err}
	}
}
