package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/illarion/datavault/internal/core"
	"github.com/illarion/datavault/internal/diff"
	"github.com/illarion/datavault/internal/git"
	"github.com/illarion/datavault/internal/storage"
)

const labelWidth = 10

// Label returns the upper-case tag printed for a diff kind.
func Label(k diff.Kind) string {
	switch k {
	case diff.Added:
		return "ADDED"
	case diff.Removed:
		return "REMOVED"
	case diff.Modified:
		return "UPDATED"
	case diff.Unreadable:
		return "UNREADABLE"
	default:
		return "UNCHANGED"
	}
}

func labelFormatter(k diff.Kind) Formatter {
	switch k {
	case diff.Added:
		return Success
	case diff.Removed:
		return Error
	case diff.Modified:
		return Warning
	case diff.Unreadable:
		return Error
	default:
		return Muted
	}
}

func line(w io.Writer, k diff.Kind, path string, err error) {
	label := fmt.Sprintf("%-*s", labelWidth, Label(k))
	f := labelFormatter(k)
	if k == diff.Unchanged && noColor() {
		// Parentheses would break the column alignment.
		f = Formatter{}
	}
	if f.color == nil {
		fmt.Fprintf(w, "  %s %s", label, path)
	} else {
		fmt.Fprintf(w, "  %s %s", f.Sprint(label), path)
	}
	if err != nil {
		fmt.Fprintf(w, ": %v", err)
	}
	fmt.Fprintln(w)
}

// Summary returns "1 added, 2 updated, ..." for the non-zero counts.
func Summary(counts map[diff.Kind]int) string {
	var parts []string
	for _, k := range diff.Kinds {
		if n := counts[k]; n > 0 {
			name := k.String()
			if k == diff.Modified {
				name = "updated"
			}
			parts = append(parts, fmt.Sprintf("%d %s", n, name))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}

// RenderResult prints an inspect result. Unchanged entries are listed only
// when verbose is set.
func RenderResult(w io.Writer, r *diff.Result, verbose bool) {
	if r.Empty() {
		fmt.Fprintf(w, "  %s\n", Muted.Sprint("directory is empty"))
		return
	}
	for _, e := range r.Entries {
		if e.Kind == diff.Unchanged && !verbose {
			continue
		}
		line(w, e.Kind, e.Path, e.Err)
	}
	if !r.HasChanges() && len(r.Unreadable()) == 0 {
		fmt.Fprintf(w, "  %s\n", Muted.Sprint("no changes"))
	}
}

// RenderReport prints the outcome of encrypt, decrypt or a clear.
func RenderReport(w io.Writer, r *core.Report, verbose bool) {
	if r.Empty() {
		fmt.Fprintf(w, "  %s\n", Muted.Sprint("directory is empty"))
		return
	}

	for _, f := range r.Files {
		switch {
		case f.Action == core.ActionNone && !verbose:
			continue
		case f.Action == core.ActionFailed:
			fmt.Fprintf(w, "  %s %s: %v\n", Error.Sprintf("%-*s", labelWidth, "FAILED"), f.Path, f.Err)
		default:
			line(w, f.Kind, f.Path, f.Err)
		}
	}

	if !r.HasChanges() && len(r.Errors()) == 0 {
		fmt.Fprintf(w, "  %s\n", Muted.Sprint("no changes"))
		return
	}

	prefix := ""
	if r.DryRun {
		prefix = Warning.Sprint("[dry-run]") + " "
	}
	mark := Success.Sprint("✓")
	if len(r.Errors()) > 0 {
		mark = Warning.Sprint("⚠")
	}
	fmt.Fprintf(w, "  %s %s%s\n", mark, prefix, Summary(r.Counts()))
}

// RenderStatus prints a status report.
func RenderStatus(w io.Writer, s *core.StatusInfo, verbose bool) {
	if !s.Indexed {
		fmt.Fprintf(w, "  %s\n", Warning.Sprint("no index yet; run encrypt to create one"))
	} else {
		fmt.Fprintf(w, "  vault id:  %s\n", Highlight.Sprint(s.VaultID))
		if !s.LastSync.IsZero() {
			fmt.Fprintf(w, "  last sync: %s\n", s.LastSync.Local().Format("2006-01-02 15:04:05"))
		}
	}

	if len(s.Files) == 0 {
		fmt.Fprintf(w, "  %s\n", Muted.Sprint("directory is empty"))
	}
	for _, f := range s.Files {
		if f.State == core.StateSynced && !verbose {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", stateFormatter(f.State).Sprintf("%-*s", labelWidth, f.State), f.Path)
	}

	counts := s.Counts()
	var parts []string
	for _, st := range []core.FileState{core.StateSynced, core.StateChanged, core.StateUntracked, core.StateMissing, core.StatePending} {
		if counts[st] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[st], st))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, ", "))
	}

	if s.Git != nil {
		fmt.Fprint(w, indent(git.FormatStatus(s.Git, storage.FileName)))
	}
}

func stateFormatter(st core.FileState) Formatter {
	switch st {
	case core.StateSynced:
		return Success
	case core.StateChanged, core.StatePending:
		return Warning
	case core.StateMissing:
		return Error
	default:
		return Info
	}
}

func indent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l != "" {
			b.WriteString("  " + l)
		}
	}
	return b.String()
}

// VaultHeader prints the vault path that precedes its report.
func VaultHeader(w io.Writer, root string) {
	fmt.Fprintln(w, Path.Sprint(root))
}

// RenderBatchFooter prints the batch outcome when more than one vault ran.
func RenderBatchFooter(w io.Writer, b *core.BatchReport) {
	if len(b.Results) < 2 {
		return
	}
	failed := b.Failed()
	if failed == 0 {
		fmt.Fprintf(w, "%s %d vaults processed\n", Success.Sprint("✓"), len(b.Results))
		return
	}
	fmt.Fprintf(w, "%s %d of %d vaults failed\n", Error.Sprint("✗"), failed, len(b.Results))
}
