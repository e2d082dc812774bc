package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/transform"
)

// Error kinds. Match with errors.Is.
var (
	// ErrUnknownEndpoint is a client error: no contract has the endpoint id.
	ErrUnknownEndpoint = contract.ErrUnknownEndpoint

	// ErrInputNotFound means today's expected source file is absent.
	ErrInputNotFound = errors.New("input file not found")

	// ErrArtifactNotFound means today's artifact is absent and was not
	// produced (direct download never reprocesses).
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrProcessing is a parse or transform failure.
	ErrProcessing = transform.ErrProcessing

	// ErrIO is a read or write failure against either directory.
	ErrIO = errors.New("storage i/o failed")
)

// Error carries enough context to reproduce a failure by hand: the endpoint,
// the date token and the expected file.
type Error struct {
	Kind      error
	Op        string
	Endpoint  string
	Date      string
	File      string
	Available []string
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnknownEndpoint:
		return fmt.Sprintf("unknown endpoint %q (available: %s)", e.Endpoint, strings.Join(e.Available, ", "))
	case ErrInputNotFound:
		return fmt.Sprintf("input file not found for %s on %s: expected %s", e.Endpoint, e.Date, e.File)
	case ErrArtifactNotFound:
		return fmt.Sprintf("processed file not found for %s on %s: expected %s", e.Endpoint, e.Date, e.File)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s (%s, %s): %v", e.Op, e.Endpoint, e.File, e.Date, e.Kind)
	}
	return fmt.Sprintf("%s %s (%s, %s): %v", e.Op, e.Endpoint, e.File, e.Date, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether the error's kind matches target.
func (e *Error) Is(target error) bool { return errors.Is(e.Kind, target) }

// Kind names returned by KindName.
const (
	KindUnknownEndpoint  = "unknown_endpoint"
	KindInputNotFound    = "input_not_found"
	KindArtifactNotFound = "artifact_not_found"
	KindProcessing       = "processing"
	KindIO               = "io"
)

// KindName returns the stable name of err's kind, or "" for nil and
// unclassified errors.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownEndpoint):
		return KindUnknownEndpoint
	case errors.Is(err, ErrInputNotFound):
		return KindInputNotFound
	case errors.Is(err, ErrArtifactNotFound):
		return KindArtifactNotFound
	case errors.Is(err, ErrProcessing):
		return KindProcessing
	case errors.Is(err, ErrIO):
		return KindIO
	default:
		return ""
	}
}

// Detail returns the underlying cause of a pipeline error as text, suitable
// for the "detail" field of an error response.
func Detail(err error) string {
	var pe *Error
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err.Error()
	}
	return err.Error()
}
