// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"oagen-cli/internal/backup"
	"oagen-cli/internal/container"
	"oagen-cli/internal/pom"
)

const (
	originalPom = `<?xml version="1.0" encoding="UTF-8"?>
<project>
  <artifactId>petstore</artifactId>
  <dependencies>
    <dependency>
      <groupId>org.acme</groupId>
      <artifactId>audit</artifactId>
    </dependency>
  </dependencies>
</project>
`
	generatedPom = `<?xml version="1.0" encoding="UTF-8"?>
<project>
  <artifactId>openapi-server</artifactId>
  <dependencies>
    <dependency>
      <groupId>io.swagger</groupId>
      <artifactId>swagger-annotations</artifactId>
    </dependency>
  </dependencies>
</project>
`
)

// fakeEngine is an in-memory container.Engine. Run simulates the generator
// by writing files into the host folder mounted at OutputMount.
type fakeEngine struct {
	mu       sync.Mutex
	name     string
	present  bool
	pullErr  error
	exitCode int
	runErr   error
	output   string
	files    map[string]string

	pulls []string
	runs  []container.RunOptions
}

func (e *fakeEngine) Name() string {
	if e.name == "" {
		return "docker"
	}
	return e.name
}

func (e *fakeEngine) Available() bool { return true }

func (e *fakeEngine) Version(context.Context) (string, error) { return "1.0", nil }

func (e *fakeEngine) ImageExists(context.Context, string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.present, nil
}

func (e *fakeEngine) Pull(_ context.Context, opts container.PullOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pulls = append(e.pulls, opts.Image)
	if e.pullErr != nil {
		return e.pullErr
	}
	e.present = true
	return nil
}

func (e *fakeEngine) Run(_ context.Context, opts container.RunOptions) (*container.RunResult, error) {
	e.mu.Lock()
	e.runs = append(e.runs, opts)
	e.mu.Unlock()

	if e.runErr != nil {
		return nil, e.runErr
	}
	if e.output != "" {
		_, _ = io.WriteString(opts.Stdout, e.output)
	}
	if e.exitCode == 0 {
		for _, v := range opts.Volumes {
			if v.ContainerPath != OutputMount {
				continue
			}
			for name, content := range e.files {
				if err := os.WriteFile(filepath.Join(v.HostPath, name), []byte(content), 0o644); err != nil {
					return nil, err
				}
			}
		}
	}
	return &container.RunResult{ExitCode: e.exitCode}, nil
}

func (e *fakeEngine) Remove(context.Context, string, bool) error { return nil }

func answer(ok bool, asked *[]string) backup.Confirmer {
	return backup.ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		*asked = append(*asked, prompt)
		return ok, nil
	})
}

// newProject creates a project with an OpenAPI definition and an output
// folder, returning the request for it.
func newProject(t *testing.T, kind Kind, language, genType string) Request {
	t.Helper()
	root := t.TempDir()
	touch(t, root, "api/openapi.yaml")
	return Request{
		Kind:          kind,
		Language:      language,
		GeneratorType: genType,
		Definition:    filepath.Join(root, "api", "openapi.yaml"),
		ProjectDir:    root,
		OutputDir:     filepath.Join(root, "out"),
	}
}

func TestGenerate_RunsGenerator(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		present: true,
		output:  "[main] INFO gen - writing file /out/main.go\n",
		files:   map[string]string{"main.go": "package main\n"},
	}
	var progress []string
	w := New(engine, WithUser("1000:1000"), WithProgress(func(m string) { progress = append(progress, m) }))

	req := newProject(t, KindClient, "go", "")
	out, err := w.Generate(t.Context(), req)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if out.GeneratorType != "go" || out.Backup != "" || out.Reconciled != nil {
		t.Errorf("unexpected outcome: %+v", out)
	}

	if len(engine.runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(engine.runs))
	}
	run := engine.runs[0]
	wantCmd := []string{"generate", "-i", "/gen/api/openapi.yaml", "-g", "go", "-o", "/out"}
	if !slices.Equal(run.Command, wantCmd) {
		t.Errorf("Command = %v, want %v", run.Command, wantCmd)
	}
	if run.Image != DefaultImage || !run.Remove || run.User != "1000:1000" {
		t.Errorf("unexpected run options: image=%s remove=%v user=%s", run.Image, run.Remove, run.User)
	}
	wantVolumes := []container.VolumeMount{
		{HostPath: req.ProjectDir, ContainerPath: "/gen", ReadOnly: true},
		{HostPath: req.OutputDir, ContainerPath: "/out"},
	}
	if !slices.Equal(run.Volumes, wantVolumes) {
		t.Errorf("Volumes = %+v, want %+v", run.Volumes, wantVolumes)
	}
	if !slices.Equal(progress, []string{"writing file /out/main.go"}) {
		t.Errorf("progress = %q", progress)
	}
	if _, err := os.Stat(filepath.Join(req.OutputDir, "main.go")); err != nil {
		t.Errorf("generated file missing: %v", err)
	}
}

func TestGenerate_JavaReconcilesDescriptor(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{present: true, files: map[string]string{"pom.xml": generatedPom}}
	var asked []string
	w := New(engine,
		WithBackupConfirmer(answer(true, &asked)),
		WithReconciler(pom.NewReconciler(pom.WithWriteMode(pom.WriteSync))),
	)

	req := newProject(t, KindServer, "java", "spring")
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(req.OutputDir, "pom.xml"), []byte(originalPom), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := w.Generate(t.Context(), req)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if out.Backup != "pom-backup.xml" {
		t.Errorf("Backup = %q, want pom-backup.xml", out.Backup)
	}
	if out.Reconciled == nil {
		t.Fatal("expected a reconcile result")
	}
	if err := out.Reconciled.Wait(); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if out.Reconciled.GeneratedFile != "pom-generated.xml" || out.Reconciled.Stats.Dependencies != 1 {
		t.Errorf("unexpected reconcile result: %+v", out.Reconciled)
	}
	if len(asked) != 1 {
		t.Errorf("expected one backup confirmation, got %q", asked)
	}

	merged, err := os.ReadFile(filepath.Join(req.OutputDir, "pom.xml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<artifactId>petstore</artifactId>", "<artifactId>audit</artifactId>", "<artifactId>swagger-annotations</artifactId>"} {
		if !strings.Contains(string(merged), want) {
			t.Errorf("merged pom.xml lacks %s:\n%s", want, merged)
		}
	}
	if strings.Contains(string(merged), "openapi-server") {
		t.Errorf("generated artifactId must not replace the original:\n%s", merged)
	}
}

func TestGenerate_JavaWithoutPreviousDescriptor(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{present: true, files: map[string]string{"pom.xml": generatedPom}}
	w := New(engine)

	req := newProject(t, KindClient, "Java", "java")
	out, err := w.Generate(t.Context(), req)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if out.Backup != "" || out.Reconciled != nil {
		t.Errorf("expected no backup or reconcile, got %+v", out)
	}
	data, err := os.ReadFile(filepath.Join(req.OutputDir, "pom.xml"))
	if err != nil || string(data) != generatedPom {
		t.Errorf("generated pom.xml should be kept as is, got %q (%v)", data, err)
	}
}

func TestGenerate_BackupDeclined(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{present: true}
	var asked []string
	w := New(engine, WithBackupConfirmer(answer(false, &asked)))

	req := newProject(t, KindServer, "java", "spring")
	touch(t, req.OutputDir, "pom.xml")

	_, err := w.Generate(t.Context(), req)
	if !errors.Is(err, backup.ErrUserDeclined) {
		t.Fatalf("expected ErrUserDeclined, got %v", err)
	}
	if len(engine.runs) != 0 {
		t.Error("generator must not run after a declined backup")
	}
}

func TestGenerate_OverwriteGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		answer   bool
		wantErr  error
		wantRuns int
	}{
		{"declined", false, ErrOverwriteDeclined, 0},
		{"accepted", true, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{present: true}
			var asked []string
			w := New(engine, WithOverwriteConfirmer(answer(tt.answer, &asked)))

			req := newProject(t, KindHTML, "", "")
			touch(t, req.OutputDir, IgnoreFileName)

			_, err := w.Generate(t.Context(), req)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Fatalf("Generate() error = %v, want %v", err, tt.wantErr)
			}
			if len(asked) != 1 {
				t.Errorf("expected one overwrite prompt, got %q", asked)
			}
			if len(engine.runs) != tt.wantRuns {
				t.Errorf("runs = %d, want %d", len(engine.runs), tt.wantRuns)
			}
		})
	}
}

func TestGenerate_ImageGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		present   bool
		policy    PullPolicy
		confirm   *bool
		pullErr   error
		wantErr   error
		wantPulls int
		wantRuns  int
	}{
		{name: "present image is not pulled", present: true, policy: PullMissing, wantRuns: 1},
		{name: "missing image pulled without confirmer", policy: PullMissing, wantPulls: 1, wantRuns: 1},
		{name: "missing image pulled after confirmation", policy: PullMissing, confirm: ptr(true), wantPulls: 1, wantRuns: 1},
		{name: "pull declined", policy: PullMissing, confirm: ptr(false), wantErr: ErrPullDeclined},
		{name: "never pulls", policy: PullNever, wantErr: ErrImageMissing},
		{name: "always pulls", present: true, policy: PullAlways, confirm: ptr(false), wantPulls: 1, wantRuns: 1},
		{name: "pull failure", policy: PullMissing, pullErr: container.ErrPullFailed, wantErr: container.ErrPullFailed, wantPulls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{present: tt.present, pullErr: tt.pullErr}
			opts := []Option{WithPullPolicy(tt.policy), WithImage("example/generator:1")}
			if tt.confirm != nil {
				var asked []string
				opts = append(opts, WithPullConfirmer(answer(*tt.confirm, &asked)))
			}
			w := New(engine, opts...)

			_, err := w.Generate(t.Context(), newProject(t, KindClient, "python", ""))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Generate() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Generate() unexpected error: %v", err)
			}
			if len(engine.pulls) != tt.wantPulls {
				t.Errorf("pulls = %d, want %d", len(engine.pulls), tt.wantPulls)
			}
			if len(engine.runs) != tt.wantRuns {
				t.Errorf("runs = %d, want %d", len(engine.runs), tt.wantRuns)
			}
			if tt.wantPulls > 0 && engine.pulls[0] != "example/generator:1" {
				t.Errorf("pulled %q", engine.pulls[0])
			}
		})
	}
}

func TestGenerate_Failures(t *testing.T) {
	t.Parallel()

	engineErr := errors.New("exec: docker not found")
	tests := []struct {
		name     string
		exitCode int
		runErr   error
		wantCode int
	}{
		{"non-zero exit", 2, nil, 2},
		{"engine error", 0, engineErr, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{present: true, exitCode: tt.exitCode, runErr: tt.runErr}
			w := New(engine)

			req := newProject(t, KindServer, "java", "jaxrs-spec")
			if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(req.OutputDir, "pom.xml"), []byte(originalPom), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := w.Generate(t.Context(), req)
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected GenerationError, got %T: %v", err, err)
			}
			if !errors.Is(err, ErrGenerationFailed) {
				t.Error("GenerationError should wrap ErrGenerationFailed")
			}
			if genErr.ExitCode != tt.wantCode || genErr.Generator != "jaxrs-spec" {
				t.Errorf("GenerationError = %+v", genErr)
			}
			if tt.runErr != nil && !errors.Is(err, tt.runErr) {
				t.Errorf("engine error should be preserved, got %v", err)
			}

			data, err := os.ReadFile(filepath.Join(req.OutputDir, "pom-backup.xml"))
			if err != nil || string(data) != originalPom {
				t.Errorf("backup should survive a failed run: %q (%v)", data, err)
			}
		})
	}
}

func TestGenerate_InvalidRequests(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root, "project/openapi.yaml")
	touch(t, root, "elsewhere/openapi.yaml")

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "missing definition path",
			req:     Request{Kind: KindHTML, OutputDir: filepath.Join(root, "out")},
			wantErr: ErrNoDefinition,
		},
		{
			name:    "definition does not exist",
			req:     Request{Kind: KindHTML, Definition: filepath.Join(root, "nope.yaml"), OutputDir: filepath.Join(root, "out")},
			wantErr: backup.ErrFileSystem,
		},
		{
			name:    "definition is a directory",
			req:     Request{Kind: KindHTML, Definition: filepath.Join(root, "project"), OutputDir: filepath.Join(root, "out")},
			wantErr: ErrNoDefinition,
		},
		{
			name:    "no generator for language",
			req:     Request{Kind: KindServer, Language: "swift", Definition: filepath.Join(root, "project", "openapi.yaml")},
			wantErr: ErrNoGeneratorType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := &fakeEngine{present: true}
			_, err := New(engine).Generate(t.Context(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Generate() error = %v, want %v", err, tt.wantErr)
			}
			if len(engine.runs) != 0 {
				t.Error("generator must not run for an invalid request")
			}
		})
	}

	t.Run("definition outside project", func(t *testing.T) {
		t.Parallel()
		engine := &fakeEngine{present: true}
		_, err := New(engine).Generate(t.Context(), Request{
			Kind:       KindHTML,
			Definition: filepath.Join(root, "elsewhere", "openapi.yaml"),
			ProjectDir: filepath.Join(root, "project"),
			OutputDir:  filepath.Join(root, "out"),
		})
		if err == nil || !strings.Contains(err.Error(), "outside project") {
			t.Fatalf("expected an outside-project error, got %v", err)
		}
	})
}

func TestGenerate_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	engine := &fakeEngine{present: true}
	_, err := New(engine).Generate(ctx, newProject(t, KindClient, "go", ""))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParsePullPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    PullPolicy
		wantErr bool
	}{
		{"", PullMissing, false},
		{"missing", PullMissing, false},
		{"Always", PullAlways, false},
		{"never", PullNever, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePullPolicy(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePullPolicy(%q) = %q, %v", tt.input, got, err)
		}
	}
}

func TestHostUser(t *testing.T) {
	t.Parallel()

	if got := HostUser(&fakeEngine{name: "podman"}); got != "" {
		t.Errorf("HostUser(podman) = %q, want empty", got)
	}
	got := HostUser(&fakeEngine{name: "docker"})
	if got != "" && got != fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()) {
		t.Errorf("HostUser(docker) = %q", got)
	}
}

func ptr[T any](v T) *T { return &v }
