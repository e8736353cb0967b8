package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Iron-Ham/smrelease/internal/errors"
	"github.com/Iron-Ham/smrelease/internal/release"
)

var (
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#F87171") // Red
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	primaryColor = lipgloss.Color("#A78BFA") // Purple

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// printer writes human-readable output, styled only when color is enabled.
type printer struct {
	w     io.Writer
	color bool
}

// newPrinter enables styling when colorEnabled is set and w is a terminal.
func newPrinter(w io.Writer, colorEnabled bool) *printer {
	color := false
	if f, ok := w.(*os.File); ok && colorEnabled {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &printer{w: w, color: color}
}

func (p *printer) render(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}

func (p *printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// summary prints the outcome of one release cycle. err is the error the
// cycle returned, if any.
func (p *printer) summary(s release.Summary, err error) {
	p.printf("%s %s\n", p.render(titleStyle, "Release"),
		fmt.Sprintf("%s/%s@%s", s.Organization, s.Project, s.Version))

	switch {
	case s.Released:
		p.printf("  %s release created\n", p.render(successStyle, "✓"))
	case errors.IsReleaseCreation(err):
		p.printf("  %s release creation failed, nothing uploaded\n", p.render(errorStyle, "✗"))
	}

	for _, name := range s.Uploaded {
		p.printf("  %s %s\n", p.render(successStyle, "↑"), name)
	}
	for _, name := range s.Failed {
		p.printf("  %s %s\n", p.render(errorStyle, "✗"), name)
	}
	if n := s.Skipped(); n > 0 && s.Released {
		p.printf("  %s %d artifact(s) not attempted\n", p.render(warningStyle, "!"), n)
	}
	for _, path := range s.Removed {
		p.printf("  %s %s\n", p.render(mutedStyle, "-"), path)
	}

	counts := []string{
		fmt.Sprintf("%d uploaded", len(s.Uploaded)),
		fmt.Sprintf("%d failed", len(s.Failed)),
	}
	if len(s.Removed) > 0 {
		counts = append(counts, fmt.Sprintf("%d sourcemap(s) deleted", len(s.Removed)))
	}
	p.printf("%s\n", p.render(mutedStyle, fmt.Sprintf("%s in %s", strings.Join(counts, ", "), s.Duration.Round(time.Millisecond))))
}

// failure explains why a command failed. Upload failures are listed one line
// per artifact; anything else gets a single line labelled by its kind.
func (p *printer) failure(err error) {
	if err == nil {
		return
	}
	style := errorStyle
	if errors.GetSeverity(err) < errors.SeverityError {
		style = warningStyle
	}

	switch {
	case errors.IsFileUpload(err):
		for _, u := range errors.FileUploadErrors(err) {
			p.printf("%s %v\n", p.render(style, "✗"), u)
		}
	default:
		label := "error:"
		switch {
		case errors.IsConfiguration(err):
			label = "configuration error:"
		case errors.IsReleaseCreation(err):
			label = "release error:"
		case errors.IsCleanup(err):
			label = "cleanup error:"
		}
		p.printf("%s %v\n", p.render(style, label), err)
	}

	switch {
	case errors.IsRetryable(err):
		p.printf("%s\n", p.render(mutedStyle, "the service reported a transient failure; running the build again may succeed"))
	case !errors.IsUserFacing(err):
		p.printf("%s\n", p.render(mutedStyle, "rerun with --log-level debug for details"))
	}
}
