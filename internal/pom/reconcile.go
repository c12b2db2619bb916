// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"oagen-cli/internal/backup"
)

const (
	// DescriptorFile is the canonical build descriptor name.
	DescriptorFile = "pom.xml"
	// GeneratedStem is the stem the generator's descriptor is moved aside to.
	GeneratedStem = "pom-generated"
	// DescriptorExt is the extension of every descriptor file.
	DescriptorExt = ".xml"
)

const (
	// WriteAsync starts the final write in the background; Result.Wait
	// reports its outcome.
	WriteAsync WriteMode = iota
	// WriteSync returns only after the merged descriptor is on disk.
	WriteSync
)

type (
	// WriteMode selects how Reconcile writes the merged descriptor.
	WriteMode int

	// Option configures a Reconciler.
	Option func(*Reconciler)

	// Reconciler merges a freshly generated pom.xml into the project's
	// previous descriptor and writes the result back to pom.xml.
	Reconciler struct {
		mode    WriteMode
		format  FormatOptions
		restore bool
		log     *log.Logger
	}

	// Result describes a reconciliation that passed parsing and merging.
	Result struct {
		// Path is the merged descriptor being written.
		Path string
		// GeneratedFile is the name the generator's pom.xml was moved to, or
		// empty when there was none.
		GeneratedFile string
		// Merged reports whether a generated document took part in the merge.
		// It is false when the generated side was missing or malformed.
		Merged bool
		// Stats counts the entries taken from the generated document.
		Stats Stats

		done chan struct{}
		err  error
	}
)

func logger() *log.Logger {
	return log.Default().WithPrefix("pom")
}

// String returns the configuration name of the write mode.
func (m WriteMode) String() string {
	switch m {
	case WriteAsync:
		return "async"
	case WriteSync:
		return "sync"
	default:
		return fmt.Sprintf("WriteMode(%d)", int(m))
	}
}

// ParseWriteMode converts a configuration value into a WriteMode.
func ParseWriteMode(s string) (WriteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "async":
		return WriteAsync, nil
	case "sync":
		return WriteSync, nil
	default:
		return WriteAsync, fmt.Errorf("unknown write mode %q (expected sync or async)", s)
	}
}

// WithWriteMode sets the final write mode. The default is WriteAsync.
func WithWriteMode(mode WriteMode) Option {
	return func(r *Reconciler) { r.mode = mode }
}

// WithFormatOptions sets the parse and serialization configuration.
func WithFormatOptions(opts FormatOptions) Option {
	return func(r *Reconciler) { r.format = opts }
}

// WithRestoreOnFailure controls whether the generator's descriptor is moved
// back to pom.xml when the original cannot be parsed or merged.
func WithRestoreOnFailure(restore bool) Option {
	return func(r *Reconciler) { r.restore = restore }
}

// WithLogger sets the logger used for diagnostic lines.
func WithLogger(l *log.Logger) Option {
	return func(r *Reconciler) { r.log = l }
}

// NewReconciler returns a Reconciler with the default formatting, async
// writes and restore-on-failure enabled.
func NewReconciler(opts ...Option) *Reconciler {
	r := &Reconciler{
		mode:    WriteAsync,
		format:  DefaultFormatOptions(),
		restore: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the configured write mode.
func (r *Reconciler) Mode() WriteMode { return r.mode }

// Reconcile merges dir/pom.xml, as just written by the generator, into the
// descriptor previously backed up as originalFileName, and writes the result
// to dir/pom.xml.
//
// The generator's descriptor is first moved to a unique pom-generated name.
// A malformed original is fatal (*ParseError); a missing or malformed
// generated descriptor is not, and the original is written back unchanged.
// Any section merge failure returns *SectionMergeError and writes nothing.
//
// With WriteAsync the returned Result is handed out before the write
// finishes; call Result.Wait for the outcome.
func (r *Reconciler) Reconcile(ctx context.Context, dir, originalFileName string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := r.logger()

	target := filepath.Join(dir, DescriptorFile)
	reserved, err := backup.UniqueFileName(dir, GeneratedStem, DescriptorExt)
	if err != nil {
		return nil, err
	}
	reservedPath := filepath.Join(dir, reserved)

	moved := true
	if err = os.Rename(target, reservedPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &backup.FileSystemError{Op: "rename", Path: target, Err: err}
		}
		moved = false
		reserved = ""
		l.Debug("no generated descriptor", "path", target)
	} else {
		l.Debug("generated descriptor moved aside", "file", reserved)
	}

	origPath := originalFileName
	if !filepath.IsAbs(origPath) {
		origPath = filepath.Join(dir, originalFileName)
	}
	orig, err := ParseFile(origPath, r.format)
	if err != nil {
		l.Error("original descriptor rejected", "path", origPath, "err", err)
		r.restoreGenerated(l, moved, reservedPath, target)
		return nil, err
	}

	var gen *Document
	if moved {
		gen, err = ParseFile(reservedPath, r.format)
		if err != nil {
			l.Warn("generated descriptor ignored", "path", reservedPath, "err", err)
			gen = nil
		}
	}

	stats, err := Merge(orig, gen)
	if err != nil {
		l.Error("merge aborted", "err", err)
		r.restoreGenerated(l, moved, reservedPath, target)
		return nil, err
	}

	data, err := Render(orig, r.format)
	if err != nil {
		r.restoreGenerated(l, moved, reservedPath, target)
		return nil, err
	}

	res := &Result{
		Path:          target,
		GeneratedFile: reserved,
		Merged:        gen != nil,
		Stats:         stats,
	}
	l.Debug("descriptor merged",
		"properties", stats.Properties,
		"dependencies", stats.Dependencies,
		"plugins", stats.Plugins,
		"mode", r.mode)

	if r.mode == WriteSync {
		res.err = writeAtomic(target, data)
		return res, res.err
	}

	res.done = make(chan struct{})
	go func() {
		defer close(res.done)
		if res.err = writeAtomic(target, data); res.err != nil {
			l.Error("write failed", "path", target, "err", res.err)
		}
	}()
	return res, nil
}

// Wait blocks until the merged descriptor has been written and returns the
// write error, if any.
func (r *Result) Wait() error {
	if r.done != nil {
		<-r.done
	}
	return r.err
}

func (r *Reconciler) logger() *log.Logger {
	if r.log != nil {
		return r.log
	}
	return logger()
}

// restoreGenerated moves the generator's descriptor back to pom.xml when the
// canonical path is still free.
func (r *Reconciler) restoreGenerated(l *log.Logger, moved bool, from, to string) {
	if !r.restore || !moved {
		return
	}
	if _, err := os.Lstat(to); err == nil {
		return
	}
	if err := os.Rename(from, to); err != nil {
		l.Warn("could not restore generated descriptor", "from", from, "err", err)
		return
	}
	l.Info("generated descriptor restored", "path", to)
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pom-*.tmp")
	if err != nil {
		return &backup.FileSystemError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &backup.FileSystemError{Op: "write", Path: path, Err: err}
	}

	if _, err = tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &backup.FileSystemError{Op: "write", Path: path, Err: err}
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &backup.FileSystemError{Op: "write", Path: path, Err: err}
	}
	return nil
}
