// Package errors provides centralized error definitions and error handling utilities
// for smrelease. It defines the release pipeline's domain errors, sentinel errors,
// and classification helpers.
//
// # Error Types
//
// Every failure the pipeline surfaces to its host belongs to one of four types:
//   - ConfigurationError: a required option is missing or invalid (construction time)
//   - ReleaseCreationError: the tracking service refused or failed to create the release
//   - FileUploadError: a single artifact could not be uploaded
//   - CleanupError: a sourcemap could not be deleted after the build
//
// None of them is retried internally.
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewReleaseCreationError("create release failed", apiErr).
//	    WithRelease("acme", "web", "1.2.3")
//
// Checking errors:
//
//	var uploadErr *errors.FileUploadError
//	if errors.As(err, &uploadErr) { ... }
//
//	if errors.IsReleaseCreation(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrMissingOption indicates that a required option was not provided.
	ErrMissingOption = New("required option not provided")
	// ErrInvalidOption indicates that an option has an unusable value.
	ErrInvalidOption = New("invalid option value")
	// ErrReleaseExists indicates that the release is already registered.
	ErrReleaseExists = New("release already exists")
	// ErrUnauthorized indicates that the service rejected the credential.
	ErrUnauthorized = New("unauthorized")
	// ErrArtifactUnreadable indicates that an artifact could not be opened for streaming.
	ErrArtifactUnreadable = New("artifact unreadable")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ReleaseError is the base interface for all smrelease errors.
type ReleaseError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed when the build is run again.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity {
	return e.severity
}

func (e *baseError) IsRetryable() bool {
	return e.retryable
}

func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<prefix> [k=v, ...]: message: cause".
func (e *baseError) format(prefix string, parts []string) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ConfigurationError reports a missing or invalid option. It is raised at
// construction time, before any client exists.
//
// Example:
//
//	err := errors.NewConfigurationError("authToken", errors.ErrMissingOption)
//	fmt.Println(err) // "configuration error [field=authToken]: invalid configuration, <authToken> was not provided: required option not provided"
type ConfigurationError struct {
	baseError
	Field string
}

// NewConfigurationError creates a ConfigurationError for the given field.
func NewConfigurationError(field string, cause error) *ConfigurationError {
	msg := fmt.Sprintf("invalid configuration, <%s> was not provided", field)
	if cause != nil && !errors.Is(cause, ErrMissingOption) {
		msg = fmt.Sprintf("invalid configuration, <%s> is invalid", field)
	}
	return &ConfigurationError{
		baseError: baseError{
			message:    msg,
			cause:      cause,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: true,
		},
		Field: field,
	}
}

// Error returns the formatted error message.
func (e *ConfigurationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}
	return e.format("configuration error", parts)
}

// Is checks if this error matches the target.
func (e *ConfigurationError) Is(target error) bool {
	if _, ok := target.(*ConfigurationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ReleaseCreationError reports that the remote release could not be created.
// Uploads are never attempted after one of these.
type ReleaseCreationError struct {
	baseError
	Organization string
	Project      string
	Version      string
}

// NewReleaseCreationError creates a new ReleaseCreationError.
func NewReleaseCreationError(message string, cause error) *ReleaseCreationError {
	return &ReleaseCreationError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithRelease adds the release key to the error context.
func (e *ReleaseCreationError) WithRelease(org, project, version string) *ReleaseCreationError {
	e.Organization = org
	e.Project = project
	e.Version = version
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ReleaseCreationError) WithRetryable(r bool) *ReleaseCreationError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ReleaseCreationError) Error() string {
	var parts []string
	if e.Organization != "" {
		parts = append(parts, "org="+e.Organization)
	}
	if e.Project != "" {
		parts = append(parts, "project="+e.Project)
	}
	if e.Version != "" {
		parts = append(parts, "version="+e.Version)
	}
	return e.format("release creation error", parts)
}

// Is checks if this error matches the target.
func (e *ReleaseCreationError) Is(target error) bool {
	if _, ok := target.(*ReleaseCreationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// FileUploadError reports that one artifact failed to upload.
type FileUploadError struct {
	baseError
	Name       string // output name as emitted by the bundler
	RemoteName string // name after the filename transform
	Path       string
}

// NewFileUploadError creates a new FileUploadError.
func NewFileUploadError(message string, cause error) *FileUploadError {
	return &FileUploadError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithArtifact adds the artifact identity to the error context.
func (e *FileUploadError) WithArtifact(name, remoteName, path string) *FileUploadError {
	e.Name = name
	e.RemoteName = remoteName
	e.Path = path
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *FileUploadError) WithRetryable(r bool) *FileUploadError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *FileUploadError) Error() string {
	var parts []string
	if e.Name != "" {
		parts = append(parts, "artifact="+e.Name)
	}
	if e.RemoteName != "" && e.RemoteName != e.Name {
		parts = append(parts, "remote="+e.RemoteName)
	}
	return e.format("file upload error", parts)
}

// Is checks if this error matches the target.
func (e *FileUploadError) Is(target error) bool {
	if _, ok := target.(*FileUploadError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// CleanupError reports that a sourcemap could not be deleted. The pass that
// produced it did not attempt any later deletions.
type CleanupError struct {
	baseError
	Path string
}

// NewCleanupError creates a new CleanupError.
func NewCleanupError(message string, cause error) *CleanupError {
	return &CleanupError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithPath adds the file path to the error context.
func (e *CleanupError) WithPath(path string) *CleanupError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *CleanupError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}
	return e.format("cleanup error", parts)
}

// Is checks if this error matches the target.
func (e *CleanupError) Is(target error) bool {
	if _, ok := target.(*CleanupError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsConfiguration reports whether err is or wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return err != nil && As(err, &target)
}

// IsReleaseCreation reports whether err is or wraps a ReleaseCreationError.
func IsReleaseCreation(err error) bool {
	var target *ReleaseCreationError
	return err != nil && As(err, &target)
}

// IsFileUpload reports whether err is or wraps at least one FileUploadError.
// Aggregated dispatcher errors are searched as well.
func IsFileUpload(err error) bool {
	var target *FileUploadError
	return err != nil && As(err, &target)
}

// IsCleanup reports whether err is or wraps a CleanupError.
func IsCleanup(err error) bool {
	var target *CleanupError
	return err != nil && As(err, &target)
}

// FileUploadErrors flattens an aggregated error into the FileUploadErrors it
// contains, in the order they were joined.
func FileUploadErrors(err error) []*FileUploadError {
	if err == nil {
		return nil
	}
	var out []*FileUploadError
	var walk func(error)
	walk = func(e error) {
		if ue, ok := e.(*FileUploadError); ok {
			out = append(out, ue)
			return
		}
		switch w := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range w.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := w.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

// IsRetryable returns true if the error represents a transient condition
// that may succeed when the build is run again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re ReleaseError
	if As(err, &re) {
		return re.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var re ReleaseError
	if As(err, &re) {
		return re.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ReleaseError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var re ReleaseError
	if As(err, &re) {
		return re.Severity()
	}
	return SeverityError
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
