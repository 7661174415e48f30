package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // version, timestamps, store ID - unencrypted
	IndexBucket   = []byte("index")   // Public history list - unencrypted
	RecordsBucket = []byte("records") // Payloads or encrypted records
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigStoreID  = []byte("store_id")
)

const (
	storeVersion = "1"
	openTimeout  = 2 * time.Second
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrNotInitialized = errors.New("store not initialized")
)

// Storage provides BBolt-based storage for computed billing cycles
type Storage struct {
	db *bolt.DB
}

// Entry is the public index entry for one stored computation
type Entry struct {
	Key       string    `json:"key"`
	Start     string    `json:"start"`
	Encrypted bool      `json:"encrypted"`
	Size      int       `json:"size"`
	Created   time.Time `json:"created"`
}

// Open opens or creates a billcycle store. The file lock wait is bounded so a
// second process fails instead of hanging.
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Initialize creates the bucket structure. It is safe to call on an existing store.
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, IndexBucket, RecordsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte(storeVersion)); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

func touch(tx *bolt.Tx) error {
	modified, _ := time.Now().MarshalBinary()
	return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// GetStoreID retrieves the store ID from config bucket
func (s *Storage) GetStoreID() (string, error) {
	var storeID string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		data := config.Get(ConfigStoreID)
		if data == nil {
			return fmt.Errorf("store_id not found")
		}
		storeID = string(data)
		return nil
	})
	return storeID, err
}

// GetOrCreateStoreID retrieves existing store ID or generates a new one
func (s *Storage) GetOrCreateStoreID() (string, error) {
	storeID, err := s.GetStoreID()
	if err == nil {
		return storeID, nil
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return ErrNotInitialized
		}
		// Another process may have won the race
		if existing := config.Get(ConfigStoreID); existing != nil {
			storeID = string(existing)
			return nil
		}
		storeID = uuid.NewString()
		return config.Put(ConfigStoreID, []byte(storeID))
	})
	if err != nil {
		return "", err
	}

	return storeID, nil
}

// Put stores data under entry.Key and updates the index in one transaction.
// An existing entry for the same key is replaced.
func (s *Storage) Put(entry Entry, data []byte) error {
	if entry.Key == "" {
		return fmt.Errorf("empty record key")
	}
	entry.Size = len(data)
	if entry.Created.IsZero() {
		entry.Created = time.Now()
	}

	meta, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		records := tx.Bucket(RecordsBucket)
		if index == nil || records == nil {
			return ErrNotInitialized
		}
		if err := records.Put([]byte(entry.Key), data); err != nil {
			return err
		}
		if err := index.Put([]byte(entry.Key), meta); err != nil {
			return err
		}
		return touch(tx)
	})
}

// Get returns the index entry and stored data for key
func (s *Storage) Get(key string) (*Entry, []byte, error) {
	var entry *Entry
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		records := tx.Bucket(RecordsBucket)
		if index == nil || records == nil {
			return ErrNotInitialized
		}
		meta := index.Get([]byte(key))
		raw := records.Get([]byte(key))
		if meta == nil || raw == nil {
			return ErrNotFound
		}
		entry = &Entry{}
		if err := json.Unmarshal(meta, entry); err != nil {
			return fmt.Errorf("corrupt index entry %s: %w", key, err)
		}
		// Make a copy since the slice is only valid during the transaction
		data = append([]byte(nil), raw...)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return entry, data, nil
}

// List returns all index entries in chronological order
func (s *Storage) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return nil
		}
		return index.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt index entry %s: %w", k, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	return entries, err
}

// LatestEncrypted returns the encrypted entry with the latest start date
func (s *Storage) LatestEncrypted() (*Entry, error) {
	var entry *Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return ErrNotFound
		}
		c := index.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("corrupt index entry %s: %w", k, err)
			}
			if e.Encrypted {
				entry = &e
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes a stored record and its index entry
func (s *Storage) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		records := tx.Bucket(RecordsBucket)
		if index == nil || records == nil {
			return ErrNotInitialized
		}
		if index.Get([]byte(key)) == nil {
			return ErrNotFound
		}
		if err := index.Delete([]byte(key)); err != nil {
			return err
		}
		if err := records.Delete([]byte(key)); err != nil {
			return err
		}
		return touch(tx)
	})
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after deleting records to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	s.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
