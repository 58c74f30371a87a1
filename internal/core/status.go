package core

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/illarion/datavault/internal/diff"
	"github.com/illarion/datavault/internal/git"
	"github.com/illarion/datavault/internal/storage"
	"github.com/illarion/datavault/internal/vault"
)

// FileState is the status of one file relative to the vault index.
type FileState string

const (
	StateSynced    FileState = "synced"    // ciphertext unchanged since the last sync
	StateChanged   FileState = "changed"   // ciphertext differs from the last sync
	StateUntracked FileState = "untracked" // ciphertext never synced
	StateMissing   FileState = "missing"   // indexed ciphertext is gone
	StatePending   FileState = "pending"   // plaintext with no ciphertext yet
)

// FileStatus describes one file in a status report.
type FileStatus struct {
	Path          string
	EncryptedPath string
	State         FileState
	Size          int64
	LastSynced    time.Time
}

// StatusInfo is the result of Status.
type StatusInfo struct {
	Vault        vault.Vault
	Indexed      bool
	IndexVersion int
	VaultID      string
	LastSync     time.Time
	Files        []FileStatus
	Git          *git.Status
}

// Counts returns the number of files per state.
func (s *StatusInfo) Counts() map[FileState]int {
	counts := make(map[FileState]int)
	for _, f := range s.Files {
		counts[f.State]++
	}
	return counts
}

// Status compares the encrypted side with the vault index and lists
// plaintext files that were never encrypted. It needs no secret, so
// plaintext content is never compared.
func (s *Service) Status(ctx context.Context, v vault.Vault) (*StatusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	status := &StatusInfo{Vault: v}
	indexed := map[string]storage.Entry{}

	idx, err := peekIndex(v)
	if err != nil {
		return nil, err
	}
	if idx != nil {
		defer idx.Close()
		status.Indexed = true
		// Not critical
		status.IndexVersion, _ = idx.GetVersion()
		status.VaultID, _ = idx.GetVaultID()
		status.LastSync, _ = idx.GetModified()

		entries, err := idx.Entries()
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			indexed[e.Path] = e
		}
	}

	sd, err := openSides(v)
	if err != nil {
		return nil, err
	}
	defer sd.Close()

	encFiles, err := sd.enc.Files()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(encFiles))
	for _, rel := range encFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plain, err := s.mapper.ToPlain(rel)
		if err != nil {
			continue
		}
		seen[plain] = true

		fs := FileStatus{Path: plain, EncryptedPath: rel}
		data, err := sd.enc.ReadFile(rel)
		if err != nil {
			fs.State = StateChanged
			status.Files = append(status.Files, fs)
			continue
		}
		fs.Size = int64(len(data))

		entry, ok := indexed[rel]
		switch {
		case !ok:
			fs.State = StateUntracked
		case entry.Size == fs.Size && entry.Fingerprint == diff.Fingerprint(data):
			fs.State = StateSynced
			fs.LastSynced = entry.Synced
		default:
			fs.State = StateChanged
			fs.LastSynced = entry.Synced
		}
		delete(indexed, rel)
		status.Files = append(status.Files, fs)
	}

	for rel, entry := range indexed {
		plain, err := s.mapper.ToPlain(rel)
		if err != nil {
			plain = rel
		}
		seen[plain] = true
		status.Files = append(status.Files, FileStatus{
			Path:          plain,
			EncryptedPath: rel,
			State:         StateMissing,
			Size:          entry.Size,
			LastSynced:    entry.Synced,
		})
	}

	plainFiles, err := sd.plain.Files()
	if err != nil {
		return nil, err
	}
	var mappable []string
	for _, rel := range plainFiles {
		enc, err := s.mapper.ToEncrypted(rel)
		if err != nil {
			continue
		}
		mappable = append(mappable, rel)
		if !seen[rel] {
			status.Files = append(status.Files, FileStatus{Path: rel, EncryptedPath: enc, State: StatePending})
		}
	}

	sortFileStatus(status.Files)

	_, gitignoreErr := os.Stat(filepath.Join(v.Root, vault.GitIgnore))
	gitStatus, err := git.CheckVault(ctx, v.Root, vault.PlainDir, storage.FileName, gitignoreErr == nil, mappable)
	if err == nil && gitStatus.IsRepo {
		status.Git = gitStatus
	}

	return status, nil
}
