package pgbulk

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure taxonomy of a publish operation.
// These enable callers to distinguish error kinds using errors.Is().
//
// Example usage:
//
//	err := publisher.Publish(ctx, table, target)
//	if errors.Is(err, pgbulk.ErrConnectionFailed) {
//	    // Handle connectivity problems
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrChunking indicates the input table could not be split into
	// chunks (no columns, or columns of inconsistent length).
	// Chunking failures abort a publish before any I/O happens.
	ErrChunking = errors.New("chunking failed")

	// ErrSerialization indicates a chunk could not be converted into a
	// COPY payload. Scoped to a single chunk.
	ErrSerialization = errors.New("serialization failed")

	// ErrConnectionFailed indicates a database session could not be
	// established. Scoped to a single chunk's load attempt.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrLoadFailed indicates the COPY stream or commit failed after a
	// session was established. Always paired with a rollback attempt.
	ErrLoadFailed = errors.New("load failed")

	// ErrPublishFailed is surfaced by the dispatcher when any chunk
	// fails. It wraps the first observed cause.
	ErrPublishFailed = errors.New("publish failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrChunking):
		return ExitChunkingError
	case errors.Is(err, ErrSerialization), errors.Is(err, ErrLoadFailed), errors.Is(err, ErrPublishFailed):
		return ExitLoadFailed
	}

	errStr := err.Error()

	// Cobra surfaces flag/argument problems as plain errors
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "arg(s)") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument") {
		return ExitUsageError
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
