package core

import (
	"time"

	"github.com/illarion/datavault/internal/diff"
	"github.com/illarion/datavault/internal/storage"
)

// indexSync collects index changes during one encrypt or decrypt pass.
// Only ciphertext facts are recorded.
type indexSync struct {
	present map[string]bool
	upserts []storage.Entry
	now     time.Time
}

func newIndexSync(r *diff.Result) *indexSync {
	present := make(map[string]bool, len(r.Entries))
	for _, e := range r.Entries {
		if e.InEncrypted {
			present[e.EncryptedPath] = true
		}
	}
	return &indexSync{present: present, now: time.Now().UTC()}
}

// keep records that the ciphertext at encRel matches the plaintext.
func (s *indexSync) keep(encRel, fingerprint string, size int64) {
	s.present[encRel] = true
	s.upserts = append(s.upserts, storage.Entry{
		Path:        encRel,
		Size:        size,
		Fingerprint: fingerprint,
		Synced:      s.now,
	})
}

// drop records that the ciphertext at encRel was deleted.
func (s *indexSync) drop(encRel string) {
	delete(s.present, encRel)
}

// apply writes the collected changes. Index entries whose ciphertext no
// longer exists are removed as well. Entries already recorded with the same
// fingerprint and size keep their sync time, and a pass that changes nothing
// leaves the index file as it was.
func (s *indexSync) apply(idx *storage.Storage) error {
	existing, err := idx.Entries()
	if err != nil {
		return err
	}
	known := make(map[string]storage.Entry, len(existing))
	var removed []string
	for _, e := range existing {
		known[e.Path] = e
		if !s.present[e.Path] {
			removed = append(removed, e.Path)
		}
	}

	var upserts []storage.Entry
	for _, e := range s.upserts {
		if old, ok := known[e.Path]; ok && old.Fingerprint == e.Fingerprint && old.Size == e.Size {
			continue
		}
		upserts = append(upserts, e)
	}
	return idx.Sync(upserts, removed)
}
