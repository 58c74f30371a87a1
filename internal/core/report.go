package core

import (
	"sort"

	"github.com/illarion/datavault/internal/diff"
	"github.com/illarion/datavault/internal/vault"
)

// Operation names a vault operation in reports and logs.
type Operation string

const (
	OpInspect        Operation = "inspect"
	OpEncrypt        Operation = "encrypt"
	OpDecrypt        Operation = "decrypt"
	OpClear          Operation = "clear"
	OpClearEncrypted Operation = "clear-encrypted"
)

// Action is what an operation did with one file.
type Action int

const (
	ActionNone   Action = iota // left as is
	ActionWrite                // written (or would be, on a dry run)
	ActionDelete               // deleted (or would be, on a dry run)
	ActionSkip                 // skipped because it could not be read
	ActionFailed               // the write or delete failed
)

func (a Action) String() string {
	switch a {
	case ActionWrite:
		return "write"
	case ActionDelete:
		return "delete"
	case ActionSkip:
		return "skip"
	case ActionFailed:
		return "failed"
	default:
		return "none"
	}
}

// FileResult is the outcome for one vault entry.
type FileResult struct {
	Path          string
	EncryptedPath string
	Kind          diff.Kind
	Action        Action
	Err           error
}

// Report is the structured result of one operation on one vault.
type Report struct {
	Vault     vault.Vault
	Operation Operation
	DryRun    bool
	Files     []FileResult
}

// Counts returns the number of files per diff kind.
func (r *Report) Counts() map[diff.Kind]int {
	counts := make(map[diff.Kind]int, len(diff.Kinds))
	for _, f := range r.Files {
		counts[f.Kind]++
	}
	return counts
}

// Changed returns the files that were written or deleted.
func (r *Report) Changed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Action == ActionWrite || f.Action == ActionDelete {
			out = append(out, f)
		}
	}
	return out
}

// HasChanges reports whether any file was written or deleted.
func (r *Report) HasChanges() bool {
	return len(r.Changed()) > 0
}

// Skipped returns the unreadable files that were left alone.
func (r *Report) Skipped() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Action == ActionSkip {
			out = append(out, f)
		}
	}
	return out
}

// Errors returns the per-file errors, unreadable entries included.
func (r *Report) Errors() []error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// Empty reports whether the vault had no files to consider.
func (r *Report) Empty() bool {
	return len(r.Files) == 0
}

func newReport(v vault.Vault, op Operation, dryRun bool) *Report {
	return &Report{Vault: v, Operation: op, DryRun: dryRun}
}

func (r *Report) add(e diff.Entry, action Action, err error) {
	r.Files = append(r.Files, FileResult{
		Path:          e.Path,
		EncryptedPath: e.EncryptedPath,
		Kind:          e.Kind,
		Action:        action,
		Err:           err,
	})
}

func sortFileStatus(files []FileStatus) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}
