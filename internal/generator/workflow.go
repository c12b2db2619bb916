// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"oagen-cli/internal/backup"
	"oagen-cli/internal/container"
	"oagen-cli/internal/pom"
)

const (
	// DefinitionMount is where the project holding the definition is mounted.
	DefinitionMount = "/gen"
	// OutputMount is where the output folder is mounted.
	OutputMount = "/out"

	descriptorStem = "pom"
)

type (
	// Option configures a Workflow.
	Option func(*Workflow)

	// Workflow runs the generator image through a container engine.
	Workflow struct {
		engine        container.Engine
		image         string
		pull          PullPolicy
		user          string
		overwrite     backup.Confirmer
		pullConfirm   backup.Confirmer
		backupConfirm backup.Confirmer
		reconciler    *pom.Reconciler
		progress      ProgressFunc
		pullOutput    io.Writer
	}

	// Request describes one generation.
	Request struct {
		Kind Kind
		// Language selects the generator table; ignored for KindHTML.
		Language string
		// GeneratorType optionally names the generator; see SelectGeneratorType.
		GeneratorType string
		// Definition is the path of the OpenAPI definition on the host.
		Definition string
		// ProjectDir is mounted read-only at DefinitionMount and must contain
		// Definition. Defaults to the definition's directory.
		ProjectDir string
		// OutputDir receives the generated files. It is created if missing.
		OutputDir string
	}

	// Outcome describes a successful generation.
	Outcome struct {
		GeneratorType string
		OutputDir     string
		// Backup is the name the previous pom.xml was moved to, or empty.
		Backup string
		// Reconciled is set when a previous pom.xml was merged with the
		// generated one. Call Reconciled.Wait() before reading pom.xml.
		Reconciled *pom.Result
	}
)

func logger() *log.Logger {
	return log.Default().WithPrefix("generator")
}

// WithImage overrides DefaultImage.
func WithImage(image string) Option {
	return func(w *Workflow) {
		if image != "" {
			w.image = image
		}
	}
}

// WithPullPolicy sets when the image is pulled.
func WithPullPolicy(p PullPolicy) Option {
	return func(w *Workflow) { w.pull = p }
}

// WithUser runs the generator as "uid[:gid]".
func WithUser(user string) Option {
	return func(w *Workflow) { w.user = user }
}

// WithOverwriteConfirmer asks before generating into a folder that already
// holds generated code. Without one, the folder is overwritten.
func WithOverwriteConfirmer(c backup.Confirmer) Option {
	return func(w *Workflow) { w.overwrite = c }
}

// WithPullConfirmer asks before pulling a missing image.
func WithPullConfirmer(c backup.Confirmer) Option {
	return func(w *Workflow) { w.pullConfirm = c }
}

// WithBackupConfirmer asks before moving an existing pom.xml aside.
func WithBackupConfirmer(c backup.Confirmer) Option {
	return func(w *Workflow) { w.backupConfirm = c }
}

// WithReconciler sets the reconciler used for Java projects.
func WithReconciler(r *pom.Reconciler) Option {
	return func(w *Workflow) { w.reconciler = r }
}

// WithProgress receives the generator's progress lines.
func WithProgress(fn ProgressFunc) Option {
	return func(w *Workflow) { w.progress = fn }
}

// WithPullOutput receives the engine's pull output.
func WithPullOutput(out io.Writer) Option {
	return func(w *Workflow) { w.pullOutput = out }
}

// New creates a Workflow running on engine.
func New(engine container.Engine, opts ...Option) *Workflow {
	w := &Workflow{
		engine: engine,
		image:  DefaultImage,
		pull:   PullMissing,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.reconciler == nil {
		w.reconciler = pom.NewReconciler()
	}
	return w
}

// Image returns the generator image the workflow runs.
func (w *Workflow) Image() string { return w.image }

// HostUser returns the "uid:gid" of the current process when the engine
// needs it to keep generated files owned by the caller (Docker on Linux),
// and "" otherwise. Rootless Podman maps the caller already.
func HostUser(engine container.Engine) string {
	if runtime.GOOS != "linux" || engine.Name() != string(container.EngineTypeDocker) {
		return ""
	}
	return fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
}

// Generate runs one generation.
//
// The steps are: resolve the generator type, guard an output folder that
// already holds generated code, ensure the image, back up pom.xml for Java
// client and server generation, run the generator, and finally reconcile the
// backed-up descriptor with the generated one. A backup made before a failed
// run is left in place and logged.
func (w *Workflow) Generate(ctx context.Context, req Request) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	genType, err := SelectGeneratorType(req.Kind, req.Language, req.GeneratorType)
	if err != nil {
		return nil, err
	}

	projectDir, definition, err := resolveDefinition(req.ProjectDir, req.Definition)
	if err != nil {
		return nil, err
	}
	outDir, err := filepath.Abs(req.OutputDir)
	if err != nil {
		return nil, &backup.FileSystemError{Op: "resolve", Path: req.OutputDir, Err: err}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &backup.FileSystemError{Op: "mkdir", Path: outDir, Err: err}
	}

	if err := w.guardOverwrite(ctx, outDir); err != nil {
		return nil, err
	}
	if err := w.EnsureImage(ctx); err != nil {
		return nil, err
	}

	out := &Outcome{GeneratorType: genType, OutputDir: outDir}

	if w.reconciles(req) {
		out.Backup, err = backup.FileIfExists(ctx, outDir, descriptorStem, pom.DescriptorExt, w.backupConfirm)
		if err != nil {
			return nil, err
		}
		if out.Backup != "" {
			logger().Info("backed up build descriptor", "dir", outDir, "backup", out.Backup)
		}
	}

	if err := w.run(ctx, genType, projectDir, definition, outDir); err != nil {
		if out.Backup != "" {
			logger().Warn("generation failed, previous descriptor kept", "backup", filepath.Join(outDir, out.Backup))
		}
		return nil, err
	}

	if out.Backup != "" {
		res, err := w.reconciler.Reconcile(ctx, outDir, out.Backup)
		if err != nil {
			return nil, fmt.Errorf("reconcile %s: %w", filepath.Join(outDir, pom.DescriptorFile), err)
		}
		out.Reconciled = res
	}
	return out, nil
}

func (w *Workflow) reconciles(req Request) bool {
	if req.Kind != KindClient && req.Kind != KindServer {
		return false
	}
	l, ok := LookupLanguage(req.Language)
	return ok && l.IsJava()
}

func (w *Workflow) guardOverwrite(ctx context.Context, outDir string) error {
	present, err := HasGeneratedOutput(outDir)
	if err != nil || !present || w.overwrite == nil {
		return err
	}
	ok, err := w.overwrite.Confirm(ctx, fmt.Sprintf("%s already contains generated code. Overwrite it?", outDir))
	if err != nil {
		return err
	}
	if !ok {
		return ErrOverwriteDeclined
	}
	return nil
}

func (w *Workflow) run(ctx context.Context, genType, projectDir, definition, outDir string) error {
	progress := NewProgressWriter(w.progress)
	defer progress.Flush()

	opts := container.RunOptions{
		Image:   w.image,
		Command: GenerateCommand(definition, genType),
		Volumes: []container.VolumeMount{
			{HostPath: projectDir, ContainerPath: DefinitionMount, ReadOnly: true},
			{HostPath: outDir, ContainerPath: OutputMount},
		},
		User:   w.user,
		Remove: true,
		Stdout: progress,
		Stderr: progress,
	}

	logger().Info("generating", "generator", genType, "definition", definition, "output", outDir, "engine", w.engine.Name())
	result, err := w.engine.Run(ctx, opts)
	if err != nil {
		return &GenerationError{Generator: genType, ExitCode: 1, Err: err}
	}
	if result.Error != nil {
		return &GenerationError{Generator: genType, ExitCode: result.ExitCode, Err: result.Error}
	}
	if result.ExitCode != 0 {
		return &GenerationError{Generator: genType, ExitCode: result.ExitCode}
	}
	return nil
}

// GenerateCommand returns the generator arguments for a definition given
// relative to DefinitionMount.
func GenerateCommand(definition, generatorType string) []string {
	return []string{"generate", "-i", path.Join(DefinitionMount, definition), "-g", generatorType, "-o", OutputMount}
}

// resolveDefinition returns the absolute project directory and the
// definition's slash-separated path relative to it.
func resolveDefinition(projectDir, definition string) (string, string, error) {
	if definition == "" {
		return "", "", ErrNoDefinition
	}
	def, err := filepath.Abs(definition)
	if err != nil {
		return "", "", &backup.FileSystemError{Op: "resolve", Path: definition, Err: err}
	}
	info, err := os.Stat(def)
	if err != nil {
		return "", "", &backup.FileSystemError{Op: "stat", Path: def, Err: err}
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("%w: %s is a directory", ErrNoDefinition, def)
	}

	if projectDir == "" {
		projectDir = filepath.Dir(def)
	}
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return "", "", &backup.FileSystemError{Op: "resolve", Path: projectDir, Err: err}
	}
	rel, err := filepath.Rel(root, def)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("definition %s is outside project %s", def, root)
	}
	return root, filepath.ToSlash(rel), nil
}
