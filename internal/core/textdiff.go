package core

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/illarion/datavault/internal/crypto"
	"github.com/illarion/datavault/internal/diff"
	derrors "github.com/illarion/datavault/internal/errors"
	"github.com/illarion/datavault/internal/vault"
)

const (
	BinarySampleSize   = 8192 // Bytes to sample for text/binary detection
	BinaryThresholdPct = 10   // Max % non-printable chars for text files
)

// DetectFileType determines if a file is likely text or binary.
// Returns true if the file appears to be text.
//
// Detection heuristic (in order):
//  1. Null bytes present → binary (executables, images, etc.)
//  2. Invalid UTF-8 → binary
//  3. >10% non-printable control chars → binary
func DetectFileType(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sample := data[:min(len(data), BinarySampleSize)]
	if !utf8.Valid(sample) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		// tab, newline and carriage return are text
		if (b < 32 && b != 9 && b != 10 && b != 13) || b == 127 {
			nonPrintable++
		}
	}

	threshold := len(sample) * BinaryThresholdPct / 100
	return nonPrintable <= threshold
}

// GenerateUnifiedDiff generates a unified diff from the encrypted version
// to the plaintext version. It returns an empty string if they are identical.
func GenerateUnifiedDiff(path string, encryptedData, plainData []byte) string {
	if bytes.Equal(encryptedData, plainData) {
		return ""
	}

	if !DetectFileType(encryptedData) || !DetectFileType(plainData) {
		return fmt.Sprintf("Binary file %s has changed\n", path)
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff: each diff text holds whole lines
	a, b, lineArray := dmp.DiffLinesToChars(string(encryptedData), string(plainData))
	diffs := dmp.DiffMain(a, b, false)
	lines := diffLines(dmp.DiffCharsToLines(diffs, lineArray))

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- a/%s\n", path))
	result.WriteString(fmt.Sprintf("+++ b/%s\n", path))
	writeHunks(&result, lines)
	return result.String()
}

// diffContext is the number of unchanged lines printed around a change.
const diffContext = 3

type diffLine struct {
	op   byte // ' ', '-' or '+'
	text string
}

func diffLines(diffs []diffmatchpatch.Diff) []diffLine {
	var lines []diffLine
	for _, d := range diffs {
		op := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = '-'
		case diffmatchpatch.DiffInsert:
			op = '+'
		}
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l != "" {
				lines = append(lines, diffLine{op: op, text: l})
			}
		}
	}
	return lines
}

// writeHunks prints lines as unified diff hunks. Changes separated by at
// most 2*diffContext unchanged lines share a hunk.
func writeHunks(w *strings.Builder, lines []diffLine) {
	// line numbers in the old and new file at each index
	oldAt := make([]int, len(lines)+1)
	newAt := make([]int, len(lines)+1)
	o, n := 1, 1
	for i, l := range lines {
		oldAt[i], newAt[i] = o, n
		if l.op != '+' {
			o++
		}
		if l.op != '-' {
			n++
		}
	}
	oldAt[len(lines)], newAt[len(lines)] = o, n

	for i := 0; i < len(lines); {
		if lines[i].op == ' ' {
			i++
			continue
		}

		start := max(0, i-diffContext)
		end := i + 1
		for j := i; j < len(lines); j++ {
			if lines[j].op != ' ' {
				end = j + 1
				continue
			}
			if j-end >= 2*diffContext {
				break
			}
		}
		end = min(len(lines), end+diffContext)

		fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n",
			oldAt[start], oldAt[end]-oldAt[start], newAt[start], newAt[end]-newAt[start])
		for _, l := range lines[start:end] {
			w.WriteByte(l.op)
			w.WriteString(l.text)
			if !strings.HasSuffix(l.text, "\n") {
				w.WriteString("\n\\ No newline at end of file\n")
			}
		}
		i = end
	}
}

// ContentDiff returns a line diff between the decrypted copy and the
// plaintext copy of a Modified entry.
func (s *Service) ContentDiff(ctx context.Context, v vault.Vault, secret *crypto.Secret, e diff.Entry) (string, error) {
	codec, err := crypto.NewCodec(secret)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !e.InPlain || !e.InEncrypted {
		return "", fmt.Errorf("%s is not on both sides", e.Path)
	}

	sd, err := openSides(v)
	if err != nil {
		return "", err
	}
	defer sd.Close()

	plain, err := sd.plain.ReadFile(e.Path)
	if err != nil {
		return "", &derrors.UnreadableEntryError{Path: e.Path, Err: err}
	}
	defer crypto.ClearBytes(plain)

	sealed, err := sd.enc.ReadFile(e.EncryptedPath)
	if err != nil {
		return "", &derrors.UnreadableEntryError{Path: e.Path, Err: err}
	}
	opened, err := codec.Decrypt(sealed)
	if err != nil {
		return "", &derrors.UnreadableEntryError{Path: e.Path, Err: err}
	}
	defer crypto.ClearBytes(opened)

	return GenerateUnifiedDiff(e.Path, opened, plain), nil
}
