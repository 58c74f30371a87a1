package git

import (
	"context"
	"fmt"
	"os/exec"
	"path"
	"strings"
)

// Status describes how a vault sits in its git repository.
type Status struct {
	IsRepo bool
	// IndexTracked is true when the vault index is committed.
	IndexTracked bool
	// GitignorePresent is true when the vault root has a .gitignore.
	GitignorePresent bool
	// TrackedPlaintext lists plaintext files committed to git (bad).
	TrackedPlaintext []string
	// UnignoredPlaintext lists plaintext files git would pick up (warning).
	UnignoredPlaintext []string
	// IgnoredPlaintext counts plaintext files git ignores (good).
	IgnoredPlaintext int
}

// HasProblems reports whether any plaintext file is exposed to git.
func (s *Status) HasProblems() bool {
	return len(s.TrackedPlaintext) > 0 || len(s.UnignoredPlaintext) > 0
}

// IsGitRepo checks if the directory is inside a git work tree
func IsGitRepo(ctx context.Context, workDir string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(ctx context.Context, workDir, file string) bool {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--", file)
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(ctx context.Context, workDir, file string) bool {
	cmd := exec.CommandContext(ctx, "git", "check-ignore", "-q", "--", file)
	cmd.Dir = workDir
	// exit code 0 means ignored
	return cmd.Run() == nil
}

// CheckVault inspects git hygiene for the vault at root. plainDir is the
// plaintext side relative to root and plainFiles are relative to plainDir.
func CheckVault(ctx context.Context, root, plainDir, indexFile string, gitignorePresent bool, plainFiles []string) (*Status, error) {
	status := &Status{GitignorePresent: gitignorePresent}
	if !IsGitRepo(ctx, root) {
		return status, nil
	}
	status.IsRepo = true
	status.IndexTracked = IsTracked(ctx, root, indexFile)

	for _, f := range plainFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := path.Join(plainDir, f)
		if IsTracked(ctx, root, rel) {
			status.TrackedPlaintext = append(status.TrackedPlaintext, rel)
		}
		if IsIgnored(ctx, root, rel) {
			status.IgnoredPlaintext++
		} else {
			status.UnignoredPlaintext = append(status.UnignoredPlaintext, rel)
		}
	}
	return status, nil
}

// FormatStatus formats git status for display
func FormatStatus(status *Status, indexFile string) string {
	if status == nil || !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("Git integration:\n")

	if status.IndexTracked {
		result.WriteString(fmt.Sprintf("   ok: %s is tracked by git\n", indexFile))
	} else {
		result.WriteString(fmt.Sprintf("   warning: %s not tracked (run: git add %s)\n", indexFile, indexFile))
	}

	if !status.GitignorePresent {
		result.WriteString("   warning: vault has no .gitignore\n")
	}

	if len(status.TrackedPlaintext) > 0 {
		result.WriteString(fmt.Sprintf("   error: %d plaintext file(s) tracked by git:\n", len(status.TrackedPlaintext)))
		for _, file := range status.TrackedPlaintext {
			result.WriteString(fmt.Sprintf("      - %s (run: git rm --cached %s)\n", file, file))
		}
	}

	if len(status.UnignoredPlaintext) > 0 {
		tracked := make(map[string]bool, len(status.TrackedPlaintext))
		for _, f := range status.TrackedPlaintext {
			tracked[f] = true
		}
		for _, file := range status.UnignoredPlaintext {
			if !tracked[file] {
				result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore\n", file))
			}
		}
	} else if status.IgnoredPlaintext > 0 {
		result.WriteString(fmt.Sprintf("   ok: %d plaintext file(s) ignored by git\n", status.IgnoredPlaintext))
	}

	return result.String()
}
