// SPDX-License-Identifier: MPL-2.0

package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func touch(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestUniqueFileName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{name: "empty directory", existing: nil, want: "pom-generated.xml"},
		{name: "bare name taken", existing: []string{"pom-generated.xml"}, want: "pom-generated-1.xml"},
		{
			name:     "first two suffixes taken",
			existing: []string{"pom-generated.xml", "pom-generated-1.xml", "pom-generated-2.xml"},
			want:     "pom-generated-3.xml",
		},
		{
			name:     "gap in suffixes is reused",
			existing: []string{"pom-generated.xml", "pom-generated-2.xml"},
			want:     "pom-generated-1.xml",
		},
		{name: "other extension does not collide", existing: []string{"pom-generated.json"}, want: "pom-generated.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.existing {
				touch(t, dir, name, "x")
			}

			got, err := UniqueFileName(dir, "pom-generated", ".xml")
			if err != nil {
				t.Fatalf("UniqueFileName() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("UniqueFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUniqueFileName_Idempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "pom.xml", "x")

	first, err := UniqueFileName(dir, "pom", ".xml")
	if err != nil {
		t.Fatalf("UniqueFileName() error = %v", err)
	}
	second, err := UniqueFileName(dir, "pom", ".xml")
	if err != nil {
		t.Fatalf("UniqueFileName() error = %v", err)
	}
	if first != second {
		t.Errorf("repeated calls returned %q and %q", first, second)
	}
}

func TestUniqueFileName_NeverReturnsExistingName(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "pom.xml", "x")

	for range 3 {
		got, err := UniqueFileName(dir, "pom", ".xml")
		if err != nil {
			t.Fatalf("UniqueFileName() error = %v", err)
		}
		if got == "pom.xml" {
			t.Fatal("UniqueFileName() returned the existing file name")
		}
		if _, err := os.Stat(filepath.Join(dir, got)); err == nil {
			t.Fatalf("UniqueFileName() returned existing file %q", got)
		}
		touch(t, dir, got, "x")
	}
}

func TestUniqueFileName_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	got, err := UniqueFileName(dir, "pom", ".xml")
	if err == nil {
		t.Fatalf("expected error, got name %q", got)
	}
	if got != "" {
		t.Errorf("expected empty name on error, got %q", got)
	}
	if !errors.Is(err, ErrFileSystem) {
		t.Errorf("expected ErrFileSystem, got %v", err)
	}

	var fsErr *FileSystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("expected *FileSystemError, got %T", err)
	}
	if fsErr.Path != dir {
		t.Errorf("FileSystemError.Path = %q, want %q", fsErr.Path, dir)
	}
}

func TestUniqueFileName_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "file", "x")

	if _, err := UniqueFileName(filepath.Join(dir, "file"), "pom", ".xml"); !errors.Is(err, ErrFileSystem) {
		t.Errorf("expected ErrFileSystem, got %v", err)
	}
}

func TestFileIfExists_NoFile(t *testing.T) {
	dir := t.TempDir()
	asked := false
	confirmer := ConfirmFunc(func(context.Context, string) (bool, error) {
		asked = true
		return true, nil
	})

	got, err := FileIfExists(context.Background(), dir, "pom", ".xml", confirmer)
	if err != nil {
		t.Fatalf("FileIfExists() error = %v", err)
	}
	if got != "" {
		t.Errorf("FileIfExists() = %q, want empty string", got)
	}
	if asked {
		t.Error("confirmer should not be consulted when the file is absent")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected directory to stay empty, found %d entries", len(entries))
	}
}

func TestFileIfExists_RenamesWithoutConfirmation(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "pom.xml", "original")

	got, err := FileIfExists(context.Background(), dir, "pom", ".xml", nil)
	if err != nil {
		t.Fatalf("FileIfExists() error = %v", err)
	}
	if got != "pom-backup.xml" {
		t.Errorf("FileIfExists() = %q, want %q", got, "pom-backup.xml")
	}

	if _, err := os.Stat(filepath.Join(dir, "pom.xml")); !os.IsNotExist(err) {
		t.Errorf("expected pom.xml to be moved, stat error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, got))
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("backup content = %q, want %q", data, "original")
	}
}

func TestFileIfExists_SkipsTakenBackupNames(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "pom.xml", "third")
	touch(t, dir, "pom-backup.xml", "first")
	touch(t, dir, "pom-backup-1.xml", "second")

	got, err := FileIfExists(context.Background(), dir, "pom", ".xml", nil)
	if err != nil {
		t.Fatalf("FileIfExists() error = %v", err)
	}
	if got != "pom-backup-2.xml" {
		t.Errorf("FileIfExists() = %q, want %q", got, "pom-backup-2.xml")
	}

	data, err := os.ReadFile(filepath.Join(dir, "pom-backup.xml"))
	if err != nil {
		t.Fatalf("failed to read earlier backup: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("earlier backup was overwritten: %q", data)
	}
}

func TestFileIfExists_Confirmation(t *testing.T) {
	tests := []struct {
		name       string
		answer     bool
		answerErr  error
		wantErr    error
		wantBackup bool
	}{
		{name: "confirmed", answer: true, wantBackup: true},
		{name: "declined", answer: false, wantErr: ErrUserDeclined},
		{name: "prompt failure", answerErr: context.Canceled, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, "pom.xml", "original")

			var prompt string
			confirmer := ConfirmFunc(func(_ context.Context, p string) (bool, error) {
				prompt = p
				return tt.answer, tt.answerErr
			})

			got, err := FileIfExists(context.Background(), dir, "pom", ".xml", confirmer)
			if prompt == "" {
				t.Error("expected the confirmer to be asked")
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FileIfExists() error = %v, want %v", err, tt.wantErr)
				}
				if got != "" {
					t.Errorf("FileIfExists() = %q, want empty name on error", got)
				}
				if _, statErr := os.Stat(filepath.Join(dir, "pom.xml")); statErr != nil {
					t.Errorf("original file must be untouched, stat error = %v", statErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("FileIfExists() error = %v", err)
			}
			if tt.wantBackup && got != "pom-backup.xml" {
				t.Errorf("FileIfExists() = %q, want %q", got, "pom-backup.xml")
			}
		})
	}
}

func TestFileIfExists_DeclinedErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "package.json", "{}")

	decline := ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
	_, err := FileIfExists(context.Background(), dir, "package", ".json", decline)

	var declined *DeclinedError
	if !errors.As(err, &declined) {
		t.Fatalf("expected *DeclinedError, got %T (%v)", err, err)
	}
	if declined.File != "package.json" {
		t.Errorf("DeclinedError.File = %q, want %q", declined.File, "package.json")
	}
}

func TestFileIfExists_RenameFailureKeepsOriginal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permission bits are not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permission bits")
	}

	dir := t.TempDir()
	touch(t, dir, "pom.xml", "original")
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := FileIfExists(context.Background(), dir, "pom", ".xml", nil)
	if !errors.Is(err, ErrFileSystem) {
		t.Fatalf("expected ErrFileSystem, got %v", err)
	}

	data, readErr := os.ReadFile(filepath.Join(dir, "pom.xml"))
	if readErr != nil {
		t.Fatalf("original file missing after failed rename: %v", readErr)
	}
	if string(data) != "original" {
		t.Errorf("original content changed: %q", data)
	}
}

func TestRemoveDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "generated")
	nested := filepath.Join(root, "src", "main", "java")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	touch(t, root, "pom.xml", "x")
	touch(t, nested, "Api.java", "class Api {}")

	if err := RemoveDir(root); err != nil {
		t.Fatalf("RemoveDir() error = %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed, stat error = %v", root, err)
	}
}

func TestRemoveDir_MissingPath(t *testing.T) {
	if err := RemoveDir(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Errorf("RemoveDir() on a missing path error = %v, want nil", err)
	}
}

func TestRemoveDir_SingleFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "lone.txt", "x")

	if err := RemoveDir(filepath.Join(dir, "lone.txt")); err != nil {
		t.Fatalf("RemoveDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lone.txt")); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat error = %v", err)
	}
}
