package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	derrors "github.com/illarion/datavault/internal/errors"
	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

const (
	// FileName is the index file name at the vault root.
	FileName = "vault.db"

	// Version is the index format version.
	Version = 1

	lockTimeout = time.Second
)

// Bucket names
var (
	ConfigBucket = []byte("config") // version, timestamps, vault ID
	IndexBucket  = []byte("index")  // encrypted path -> Entry
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigVaultID  = []byte("vault_id")
)

// Storage provides BBolt-based storage for the vault index
type Storage struct {
	db *bolt.DB
}

// Entry records an encrypted file as last written or read by a sync.
type Entry struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	Fingerprint string    `json:"fingerprint"`
	Synced      time.Time `json:"synced"`
}

// Open opens or creates a vault index, creating its buckets.
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		if errors.Is(err, berrors.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", derrors.ErrVaultBusy, path)
		}
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing index without taking the write lock.
func OpenReadOnly(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: lockTimeout, ReadOnly: true})
	if err != nil {
		if errors.Is(err, berrors.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", derrors.ErrVaultBusy, path)
		}
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// initialize creates the bucket structure once. An index that already has
// it is not written to, so opening a committed index leaves its bytes alone.
func (s *Storage) initialize() error {
	var ready bool
	if err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		ready = config != nil && config.Get(ConfigVersion) != nil && tx.Bucket(IndexBucket) != nil
		return nil
	}); err != nil {
		return err
	}
	if ready {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, IndexBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}

		if err := config.Put(ConfigVersion, []byte(strconv.Itoa(Version))); err != nil {
			return err
		}
		now, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, now); err != nil {
			return err
		}
		if err := config.Put(ConfigModified, now); err != nil {
			return err
		}
		return config.Put(ConfigVaultID, []byte(uuid.NewString()))
	})
}

// GetVersion returns the index format version.
func (s *Storage) GetVersion() (int, error) {
	var version int
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		v, err := strconv.Atoi(string(config.Get(ConfigVersion)))
		if err != nil {
			return fmt.Errorf("invalid index version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// GetVaultID retrieves the vault ID from config bucket
func (s *Storage) GetVaultID() (string, error) {
	var vaultID string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigVaultID)
		if data == nil {
			return fmt.Errorf("vault_id not found")
		}
		vaultID = string(data)
		return nil
	})
	return vaultID, err
}

// GetModified retrieves the last sync timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// Sync applies index changes from one encrypt or decrypt pass in a single
// transaction: upserts are written, removed paths deleted, and the
// modified timestamp bumped. Nothing is written when both are empty.
func (s *Storage) Sync(upserts []Entry, removed []string) error {
	if len(upserts) == 0 && len(removed) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		for _, e := range upserts {
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if err := index.Put([]byte(e.Path), data); err != nil {
				return err
			}
		}
		for _, p := range removed {
			if err := index.Delete([]byte(p)); err != nil {
				return err
			}
		}

		modified, _ := time.Now().MarshalBinary()
		return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
	})
}

// Reset removes every index entry.
func (s *Storage) Reset() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(IndexBucket); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(IndexBucket)
		return err
	})
}

// Entries returns all index entries ordered by path.
func (s *Storage) Entries() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return nil
		}
		return index.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("corrupt index entry %s: %w", k, err)
			}
			entries = append(entries, e)
			return nil
		})
	})
	return entries, err
}
