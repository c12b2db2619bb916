// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"bytes"
	"strings"
	"sync"
)

// writingFileMarker is the fragment the generator prints for every file it
// emits.
const writingFileMarker = "writing file"

type (
	// ProgressFunc receives one progress message per generator output line.
	ProgressFunc func(message string)

	// ProgressWriter is an io.Writer that splits the generator's output into
	// lines and reports each non-empty one. Lines mentioning a written file
	// are trimmed to start at that mention. Safe for concurrent writes from
	// stdout and stderr.
	ProgressWriter struct {
		mu     sync.Mutex
		report ProgressFunc
		buf    []byte
	}
)

// NewProgressWriter creates a writer reporting to fn. A nil fn discards
// progress.
func NewProgressWriter(fn ProgressFunc) *ProgressWriter {
	return &ProgressWriter{report: fn}
}

// ProgressMessage converts a generator output line to a progress message.
func ProgressMessage(line string) string {
	if idx := strings.Index(line, writingFileMarker); idx > 0 {
		return line[idx:]
	}
	return line
}

// Write implements io.Writer.
func (w *ProgressWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		w.emit(string(w.buf[:idx]))
		w.buf = w.buf[idx+1:]
	}
	return len(p), nil
}

// Flush reports any trailing output that did not end with a newline.
func (w *ProgressWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}

func (w *ProgressWriter) emit(line string) {
	line = strings.TrimRight(line, "\r")
	if w.report == nil || strings.TrimSpace(line) == "" {
		return
	}
	w.report(ProgressMessage(line))
}
