package release

import "time"

// Summary describes the most recent build cycle handled by a Plugin.
type Summary struct {
	RunID        string
	Organization string
	Project      string
	Version      string

	// Selected lists the emitted asset names chosen for upload.
	Selected []string
	// Uploaded lists the release file names that were stored.
	Uploaded []string
	// Failed lists the asset names whose upload failed.
	Failed []string
	// Removed lists the sourcemap paths deleted after the build.
	Removed []string

	Released bool // the release was created
	Duration time.Duration
}

// Skipped returns the number of selected artifacts that were never
// attempted because an earlier failure stopped the dispatcher.
func (s Summary) Skipped() int {
	n := len(s.Selected) - len(s.Uploaded) - len(s.Failed)
	if n < 0 {
		return 0
	}
	return n
}

func (s Summary) clone() Summary {
	s.Selected = append([]string(nil), s.Selected...)
	s.Uploaded = append([]string(nil), s.Uploaded...)
	s.Failed = append([]string(nil), s.Failed...)
	s.Removed = append([]string(nil), s.Removed...)
	return s
}
