// Package apperr defines the error taxonomy shared across the sync engine.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrNoBookmark is returned by incremental sync when no last-synced
	// commit has been persisted yet. Callers must request a full sync
	// explicitly; there is no silent fallback.
	ErrNoBookmark = errors.New("no sync bookmark")
	// ErrBadSignature rejects webhook requests with a missing or invalid
	// HMAC signature.
	ErrBadSignature = errors.New("invalid webhook signature")
)

// Error codes carried by SyncError.
const (
	CodeMissingField   = "missing_field"
	CodeAuthorNotFound = "author_not_found"
	CodeInvalidStatus  = "invalid_status"
	CodeInvalidType    = "invalid_type"
	CodeParseFailed    = "parse_failed"
	CodeResolveFailed  = "resolve_failed"
	CodeFileOp         = "file_op"
	CodeStore          = "store"
)

// ConfigError is fatal: it aborts a run before any work is done.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

// SyncError is a per-file business error. It is recorded in the run stats
// and never aborts the batch.
type SyncError struct {
	Context string `json:"context"` // usually the relative file path
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s [%s]: %s", e.Context, e.Code, e.Message)
}

// NewSyncError builds a SyncError for the given file context.
func NewSyncError(context, code, message string) *SyncError {
	return &SyncError{Context: context, Code: code, Message: message}
}

// Syncf builds a SyncError with a formatted message.
func Syncf(context, code, format string, args ...any) *SyncError {
	return &SyncError{Context: context, Code: code, Message: fmt.Sprintf(format, args...)}
}

// GitError carries the exit status and stderr of a failed git invocation.
type GitError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *GitError) Error() string {
	return fmt.Sprintf("git %v failed (exit %d): %s", e.Args, e.ExitCode, e.Stderr)
}

func (e *GitError) Unwrap() error { return e.Err }
