package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// ConfigurationError Tests
// -----------------------------------------------------------------------------

func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("authToken", ErrMissingOption)

	want := "configuration error [field=authToken]: invalid configuration, <authToken> was not provided: required option not provided"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if !errors.Is(err, ErrMissingOption) {
		t.Error("expected errors.Is(err, ErrMissingOption)")
	}
	if !errors.Is(err, &ConfigurationError{}) {
		t.Error("expected errors.Is to match any *ConfigurationError")
	}
}

func TestNewConfigurationError_InvalidValue(t *testing.T) {
	err := NewConfigurationError("uploadConcurrency", ErrInvalidOption)
	want := "configuration error [field=uploadConcurrency]: invalid configuration, <uploadConcurrency> is invalid: invalid option value"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// -----------------------------------------------------------------------------
// ReleaseCreationError Tests
// -----------------------------------------------------------------------------

func TestReleaseCreationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ReleaseCreationError
		want string
	}{
		{
			name: "without context",
			err:  NewReleaseCreationError("create release failed", nil),
			want: "release creation error: create release failed",
		},
		{
			name: "with release and cause",
			err: NewReleaseCreationError("create release failed", ErrReleaseExists).
				WithRelease("acme", "web", "1.0.0"),
			want: "release creation error [org=acme, project=web, version=1.0.0]: create release failed: release already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReleaseCreationError_WithRetryable(t *testing.T) {
	err := NewReleaseCreationError("network", nil).WithRetryable(true)
	if !IsRetryable(err) {
		t.Error("IsRetryable() = false, want true")
	}
}

// -----------------------------------------------------------------------------
// FileUploadError Tests
// -----------------------------------------------------------------------------

func TestFileUploadError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FileUploadError
		want string
	}{
		{
			name: "same remote name is not repeated",
			err:  NewFileUploadError("upload failed", nil).WithArtifact("app.js", "app.js", "/out/app.js"),
			want: "file upload error [artifact=app.js]: upload failed",
		},
		{
			name: "transformed remote name",
			err:  NewFileUploadError("upload failed", ErrUnauthorized).WithArtifact("app.js", "~/app.js", "/out/app.js"),
			want: "file upload error [artifact=app.js, remote=~/app.js]: upload failed: unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileUploadErrors(t *testing.T) {
	a := NewFileUploadError("a", nil).WithArtifact("a.js", "a.js", "/a.js")
	b := NewFileUploadError("b", nil).WithArtifact("b.js.map", "b.js.map", "/b.js.map")
	joined := Join(a, fmt.Errorf("wrapped: %w", b), New("unrelated"))

	got := FileUploadErrors(joined)
	if len(got) != 2 {
		t.Fatalf("FileUploadErrors() returned %d errors, want 2", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Errorf("FileUploadErrors() = %v, want [a b] in order", got)
	}
	if !IsFileUpload(joined) {
		t.Error("IsFileUpload() = false, want true")
	}
	if FileUploadErrors(nil) != nil {
		t.Error("FileUploadErrors(nil) should be nil")
	}
}

// -----------------------------------------------------------------------------
// CleanupError Tests
// -----------------------------------------------------------------------------

func TestCleanupError(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewCleanupError("delete sourcemap", cause).WithPath("/out/app.js.map")

	want := "cleanup error [path=/out/app.js.map]: delete sourcemap: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestClassification(t *testing.T) {
	plain := errors.New("plain")
	wrappedCfg := fmt.Errorf("outer: %w", NewConfigurationError("project", ErrMissingOption))

	tests := []struct {
		name       string
		err        error
		cfg        bool
		release    bool
		upload     bool
		cleanup    bool
		userFacing bool
		severity   Severity
	}{
		{"nil", nil, false, false, false, false, false, SeverityDebug},
		{"plain", plain, false, false, false, false, false, SeverityError},
		{"wrapped configuration", wrappedCfg, true, false, false, false, true, SeverityCritical},
		{"release", NewReleaseCreationError("x", nil), false, true, false, false, true, SeverityError},
		{"upload", NewFileUploadError("x", nil), false, false, true, false, true, SeverityError},
		{"cleanup", NewCleanupError("x", nil), false, false, false, true, true, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfiguration(tt.err); got != tt.cfg {
				t.Errorf("IsConfiguration() = %v, want %v", got, tt.cfg)
			}
			if got := IsReleaseCreation(tt.err); got != tt.release {
				t.Errorf("IsReleaseCreation() = %v, want %v", got, tt.release)
			}
			if got := IsFileUpload(tt.err); got != tt.upload {
				t.Errorf("IsFileUpload() = %v, want %v", got, tt.upload)
			}
			if got := IsCleanup(tt.err); got != tt.cleanup {
				t.Errorf("IsCleanup() = %v, want %v", got, tt.cleanup)
			}
			if got := IsUserFacing(tt.err); got != tt.userFacing {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.userFacing)
			}
			if got := GetSeverity(tt.err); got != tt.severity {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.severity)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	base := New("base")
	err := Wrapf(base, "step %d", 2)
	if err.Error() != "step 2: base" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
	if !Is(err, base) {
		t.Error("Wrapf should preserve the chain")
	}
}
