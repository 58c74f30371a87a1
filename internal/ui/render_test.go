package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/illarion/datavault/internal/core"
	"github.com/illarion/datavault/internal/diff"
)

func plain(t *testing.T) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	color.NoColor = true
}

func TestFormatter_NoColor(t *testing.T) {
	plain(t)
	assert.Equal(t, "`datavault new`", Code.Sprint("datavault new"))
	assert.Equal(t, "'abc'", Highlight.Sprintf("%s", "abc"))
	assert.Equal(t, "(optional)", Muted.Sprint("optional"))
	assert.Equal(t, "a\n", EnsureNewline("a"))
}

func TestRenderReport(t *testing.T) {
	plain(t)
	r := &core.Report{
		Operation: core.OpEncrypt,
		Files: []core.FileResult{
			{Path: "a.txt", Kind: diff.Added, Action: core.ActionWrite},
			{Path: "b.txt", Kind: diff.Modified, Action: core.ActionWrite},
			{Path: "c.txt", Kind: diff.Unchanged, Action: core.ActionNone},
			{Path: "d.txt", Kind: diff.Unreadable, Action: core.ActionSkip, Err: errors.New("authentication failed")},
		},
	}

	var buf bytes.Buffer
	RenderReport(&buf, r, false)
	out := buf.String()

	assert.Contains(t, out, "ADDED      a.txt\n")
	assert.Contains(t, out, "UPDATED    b.txt\n")
	assert.NotContains(t, out, "c.txt")
	assert.Contains(t, out, "UNREADABLE d.txt: authentication failed\n")
	assert.Contains(t, out, "1 added, 1 updated, 1 unchanged, 1 unreadable")

	buf.Reset()
	RenderReport(&buf, r, true)
	assert.Contains(t, buf.String(), "UNCHANGED  c.txt\n")
}

func TestRenderReport_Messages(t *testing.T) {
	plain(t)
	var buf bytes.Buffer

	RenderReport(&buf, &core.Report{}, false)
	assert.Contains(t, buf.String(), "(directory is empty)")

	buf.Reset()
	RenderReport(&buf, &core.Report{Files: []core.FileResult{{Path: "a", Kind: diff.Unchanged}}}, false)
	assert.Contains(t, buf.String(), "(no changes)")

	buf.Reset()
	RenderReport(&buf, &core.Report{DryRun: true, Files: []core.FileResult{{Path: "a", Kind: diff.Removed, Action: core.ActionDelete}}}, false)
	assert.Contains(t, buf.String(), "[dry-run] 1 removed")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "nothing to do", Summary(nil))
	assert.Equal(t, "2 removed, 1 unchanged", Summary(map[diff.Kind]int{diff.Removed: 2, diff.Unchanged: 1}))
}

func TestRenderStatus(t *testing.T) {
	plain(t)
	s := &core.StatusInfo{
		Indexed: true,
		VaultID: "id-1",
		Files: []core.FileStatus{
			{Path: "a.txt", State: core.StateSynced},
			{Path: "b.txt", State: core.StatePending},
		},
	}

	var buf bytes.Buffer
	RenderStatus(&buf, s, false)
	out := buf.String()
	assert.Contains(t, out, "'id-1'")
	assert.NotContains(t, out, "a.txt")
	assert.Contains(t, out, "pending    b.txt")
	assert.Contains(t, out, "1 synced, 1 pending")
}
