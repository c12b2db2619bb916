// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oagen-cli/internal/config"
	"oagen-cli/internal/testutil"
)

func TestBackupCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		cfg        *config.Config
		answer     bool
		wantBackup bool
		wantOut    string
	}{
		{name: "yes flag skips the question", args: []string{"--yes"}, wantBackup: true, wantOut: "pom-backup.xml"},
		{name: "confirmed", answer: true, wantBackup: true, wantOut: "Backed up pom.xml"},
		{name: "declined is not an error", wantOut: "Cancelled:"},
		{
			name:       "confirmation disabled in config",
			cfg:        defaultConfigWith(func(c *config.Config) { c.Backup.Confirm = false }),
			wantBackup: true,
			wantOut:    "pom-backup.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.MustWriteFile(t, filepath.Join(dir, "pom.xml"), projectPom)

			args := append([]string{"backup", dir, "pom.xml"}, tt.args...)
			res := runCLI(t, Dependencies{Config: stubConfig{cfg: tt.cfg}, Confirmer: answer(tt.answer)}, args...)
			if res.err != nil {
				t.Fatalf("backup failed: %v", res.err)
			}
			if !strings.Contains(res.stdout, tt.wantOut) {
				t.Errorf("stdout %q should contain %q", res.stdout, tt.wantOut)
			}

			_, err := os.Stat(filepath.Join(dir, "pom-backup.xml"))
			if backedUp := err == nil; backedUp != tt.wantBackup {
				t.Errorf("backup present = %v, want %v", backedUp, tt.wantBackup)
			}
		})
	}
}

func TestBackupCommand_NothingToBackUp(t *testing.T) {
	dir := t.TempDir()

	res := runCLI(t, Dependencies{}, "backup", dir, "pom.xml", "--yes")
	if res.err != nil {
		t.Fatal(res.err)
	}
	if !strings.Contains(res.stdout, "Nothing to back up") {
		t.Errorf("unexpected output: %q", res.stdout)
	}
}

func TestBackupCommand_PicksNextFreeName(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "openapi.yaml"), "openapi: 3.0.0")
	testutil.MustWriteFile(t, filepath.Join(dir, "openapi-backup.yaml"), "old")

	res := runCLI(t, Dependencies{}, "backup", dir, "openapi.yaml", "-y")
	if res.err != nil {
		t.Fatal(res.err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(dir, "openapi-backup-1.yaml")); got != "openapi: 3.0.0" {
		t.Errorf("openapi-backup-1.yaml = %q", got)
	}
}
