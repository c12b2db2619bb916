// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"

	"oagen-cli/internal/backup"
	"oagen-cli/internal/container"
	"oagen-cli/internal/generator"
	"oagen-cli/internal/issue"
	"oagen-cli/internal/pom"
)

// errorRule maps a sentinel to the user-facing context it is reported with.
type errorRule struct {
	target      error
	operation   string
	id          issue.Id
	suggestions []string
}

var errorRules = []errorRule{
	{
		target: container.ErrEngineNotAvailable, operation: "find a container engine", id: issue.ContainerEngineNotFoundId,
		suggestions: []string{"Install Podman or Docker and make sure it is running"},
	},
	{target: container.ErrPullFailed, operation: "pull the generator image", id: issue.ImagePullFailedId},
	{
		target: generator.ErrImageMissing, operation: "find the generator image", id: issue.ImagePullFailedId,
		suggestions: []string{"Set generator.pull to \"missing\" or pull the image manually"},
	},
	{
		target: generator.ErrNoDefinition, operation: "find an OpenAPI definition", id: issue.DefinitionNotFoundId,
		suggestions: []string{"Pass the definition with --definition"},
	},
	{target: generator.ErrUnknownLanguage, operation: "select a generator", id: issue.GeneratorTypeUnknownId},
	{target: generator.ErrNoGeneratorType, operation: "select a generator", id: issue.GeneratorTypeUnknownId},
	{
		target: generator.ErrGeneratorRequired, operation: "select a generator", id: issue.GeneratorTypeUnknownId,
		suggestions: []string{"Choose one with --generator"},
	},
	{target: generator.ErrUnknownGeneratorType, operation: "select a generator", id: issue.GeneratorTypeUnknownId},
	{
		target: generator.ErrGenerationFailed, operation: "generate code", id: issue.GenerationFailedId,
		suggestions: []string{"Re-run with --verbose to see every generator line"},
	},
	{target: pom.ErrParse, operation: "read the build descriptor", id: issue.DescriptorParseFailedId},
	{target: pom.ErrSectionMerge, operation: "merge the build descriptor", id: issue.DescriptorMergeFailedId},
	{target: fs.ErrPermission, operation: "access the file system", id: issue.PermissionDeniedId},
	{target: fs.ErrNotExist, operation: "find a file", id: issue.FileNotFoundId},
}

// declinedErrors are answers of "no" to a confirmation. They end the command
// without failing it.
var declinedErrors = []error{backup.ErrUserDeclined, generator.ErrPullDeclined, generator.ErrOverwriteDeclined}

func isDeclined(err error) bool {
	for _, target := range declinedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// classify attaches an operation, suggestions and an issue catalog entry to
// known failures. Errors that already carry context, and unknown errors, are
// returned as they are.
func classify(err error) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}
	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			return issue.NewErrorContext().
				WithOperation(rule.operation).
				WithSuggestions(rule.suggestions...).
				WithIssue(rule.id).
				Wrap(err).
				BuildError()
		}
	}
	return err
}

// finish turns a handler error into the command outcome. A declined
// confirmation prints a notice and succeeds. Other errors are classified,
// their catalog entry is rendered to stderr, and a failed generator run
// keeps its exit code.
func (a *App) finish(err error) error {
	if err == nil {
		return nil
	}
	if isDeclined(err) {
		fmt.Fprintln(a.stdout, WarningStyle.Render("Cancelled:")+" "+err.Error())
		return nil
	}

	err = classify(err)

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+ae.Format(a.verbose))
		renderIssue(a.stderr, ae.Issue, a.colorScheme)
		err = &reportedError{err: err}
	}

	var genErr *generator.GenerationError
	if errors.As(err, &genErr) && genErr.ExitCode > 0 {
		return &ExitError{Code: genErr.ExitCode, Err: err}
	}
	return err
}

// reportedError marks an error whose message was already written.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// handleError prints errors that finish did not report already.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// renderIssue writes the catalog entry for id, if any.
func renderIssue(w io.Writer, id issue.Id, style string) {
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	if style == "" {
		style = "auto"
	}
	rendered, err := entry.Render(style)
	if err != nil {
		log.Warn("failed to render issue catalog entry", "issue", id, "err", err)
		return
	}
	fmt.Fprint(w, rendered)
}
