package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceMissing means the input CSV does not exist. It aborts the whole
	// import before any row is read.
	ErrSourceMissing = errors.New("stories csv not found")

	// ErrTitleMissing fails a single row.
	ErrTitleMissing = errors.New("Title is missing")

	// ErrNotFound means a referenced story does not exist.
	ErrNotFound = errors.New("story not found")

	// ErrStoryNameRequired is returned by AttachMedia when no story is named.
	ErrStoryNameRequired = errors.New("story_name is required")

	// ErrImportInProgress is returned when another import holds the gate.
	ErrImportInProgress = errors.New("import already in progress")

	// ErrMappingNotWritten means stories were created but the node mapping
	// file could not be written. RunImport returns it with the summary.
	ErrMappingNotWritten = errors.New("stories created but mapping not written")
)

// UnsupportedLanguageError fails a row whose language has no schema.
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("Unsupported language: %s", e.Language)
}

// Kind groups errors by how callers must react to them.
type Kind int

const (
	KindNone Kind = iota
	// KindBatchFatal halts the whole invocation.
	KindBatchFatal
	// KindRowValidation aborts one row or one request.
	KindRowValidation
	// KindPersistence is anything the store rejected.
	KindPersistence
	// KindNotFound is a missing story on attach.
	KindNotFound
	// KindBusy means another import is running.
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBatchFatal:
		return "batch_fatal"
	case KindRowValidation:
		return "row_validation"
	case KindPersistence:
		return "persistence"
	case KindNotFound:
		return "not_found"
	case KindBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// ErrorKind classifies err using errors.Is and errors.As.
func ErrorKind(err error) Kind {
	if err == nil {
		return KindNone
	}

	var unsupported *UnsupportedLanguageError
	switch {
	case errors.Is(err, ErrSourceMissing):
		return KindBatchFatal
	case errors.Is(err, ErrTitleMissing),
		errors.Is(err, ErrStoryNameRequired),
		errors.As(err, &unsupported):
		return KindRowValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrImportInProgress):
		return KindBusy
	default:
		return KindPersistence
	}
}

// RenderDiagnostic renders err with all the detail it carries, including
// stack traces recorded by github.com/pkg/errors.
func RenderDiagnostic(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", err)
}

// panicError carries a recovered panic and the stack it happened on.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "panic: %v\n%s", e.value, e.stack)
		return
	}
	fmt.Fprint(s, e.Error())
}
