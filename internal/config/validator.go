package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "upload.concurrency")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found.
// The credential and release identity are not checked here; the release
// plugin rejects them at construction so that `config show` works on a
// partial configuration.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSentry()...)
	errors = append(errors, c.validateUpload()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateSentry() []ValidationError {
	var errors []ValidationError

	if c.Sentry.URL == "" {
		return errors
	}
	u, err := url.Parse(c.Sentry.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "sentry.url",
			Value:   c.Sentry.URL,
			Message: "must be an absolute http(s) URL",
		})
	}

	return errors
}

func (c *Config) validateUpload() []ValidationError {
	var errors []ValidationError

	if c.Upload.Concurrency < 0 {
		errors = append(errors, ValidationError{
			Field:   "upload.concurrency",
			Value:   c.Upload.Concurrency,
			Message: "must be non-negative (0 means unbounded)",
		})
	}

	// Beyond this the service rate-limits long before uploads get faster
	const maxConcurrency = 256
	if c.Upload.Concurrency > maxConcurrency {
		errors = append(errors, ValidationError{
			Field:   "upload.concurrency",
			Value:   c.Upload.Concurrency,
			Message: fmt.Sprintf("exceeds maximum of %d", maxConcurrency),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
