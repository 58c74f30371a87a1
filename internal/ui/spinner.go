package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps a terminal spinner that is only animated when enabled.
type Spinner struct {
	s       *spinner.Spinner
	out     io.Writer
	enabled bool
}

// StartSpinner starts a spinner with message on w. When enabled is false,
// typically in verbose mode where log lines would interleave, nothing is
// drawn.
func StartSpinner(w io.Writer, message string, enabled bool) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	// Continue without a colored spinner if it fails.
	_ = s.Color("cyan")

	if enabled {
		s.Start()
	}
	return &Spinner{s: s, out: w, enabled: enabled}
}

// Stop clears the spinner line and prints final, if any.
func (sp *Spinner) Stop(final string) {
	if sp.enabled {
		sp.s.Stop()
	}
	if final != "" {
		fmt.Fprint(sp.out, EnsureNewline(final))
	}
}
