// Package diff compares the plaintext and encrypted sides of a vault.
//
// Encryption is randomized, so two ciphertexts of the same file never match
// byte for byte. Files present on both sides are therefore compared by
// decrypting the encrypted copy in memory and comparing it to the plaintext.
// Computing a diff never modifies the vault.
package diff

import (
	"fmt"
	"sort"
)

// Direction says which side is authoritative.
type Direction int

const (
	// PlaintextIsSource is used by encrypt and inspect.
	PlaintextIsSource Direction = iota
	// EncryptedIsSource is used by decrypt.
	EncryptedIsSource
)

func (d Direction) String() string {
	switch d {
	case PlaintextIsSource:
		return "plaintext-is-source"
	case EncryptedIsSource:
		return "encrypted-is-source"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Kind classifies one entry relative to a Direction.
type Kind int

const (
	Unchanged Kind = iota
	Added
	Removed
	Modified
	Unreadable
)

// Kinds lists every kind in report order.
var Kinds = []Kind{Added, Removed, Modified, Unchanged, Unreadable}

func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	case Unreadable:
		return "unreadable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entry is one logical file of the vault.
type Entry struct {
	// Path is relative to the plaintext side, slash separated.
	Path string
	// EncryptedPath is relative to the encrypted side.
	EncryptedPath string

	InPlain     bool
	InEncrypted bool

	// Fingerprints are xxhash64 hex digests of the raw bytes on each side.
	PlainFingerprint     string
	EncryptedFingerprint string
	EncryptedSize        int64

	Kind Kind
	// Err is set for Unreadable entries.
	Err error
}

// Result is an ordered diff of one vault.
type Result struct {
	Root      string
	Direction Direction
	Entries   []Entry
}

func (r *Result) sort() {
	sort.Slice(r.Entries, func(i, j int) bool { return r.Entries[i].Path < r.Entries[j].Path })
}

// Counts returns the number of entries per kind.
func (r *Result) Counts() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, e := range r.Entries {
		counts[e.Kind]++
	}
	return counts
}

// HasChanges reports whether applying the diff would write or delete files.
// Unreadable entries are not changes.
func (r *Result) HasChanges() bool {
	for _, e := range r.Entries {
		switch e.Kind {
		case Added, Removed, Modified:
			return true
		}
	}
	return false
}

// Filter returns the entries of the given kinds, in path order.
func (r *Result) Filter(kinds ...Kind) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Unreadable returns the entries that could not be read or decrypted.
func (r *Result) Unreadable() []Entry {
	return r.Filter(Unreadable)
}

// Empty reports whether the vault holds no mappable files on either side.
func (r *Result) Empty() bool {
	return len(r.Entries) == 0
}
