// Package guest stores resume documents for unauthenticated sessions as JSON
// files on local disk, one file per session key.
package guest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofrs/flock"

	"github.com/jonathan/resume-assistant/internal/resume"
	"github.com/jonathan/resume-assistant/internal/schemas"
)

const (
	lockTimeout  = 3 * time.Second
	lockInterval = 100 * time.Millisecond
	entryVersion = "1.0"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ErrInvalidKey is returned for session keys that cannot name a cache file.
var ErrInvalidKey = errors.New("invalid guest session key")

// CorruptEntryError reports a cache file that no longer holds a valid document.
type CorruptEntryError struct {
	Key   string
	Cause error
}

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("guest cache entry %s is corrupt: %v", e.Key, e.Cause)
}

func (e *CorruptEntryError) Unwrap() error {
	return e.Cause
}

// entry is the on-disk file layout.
type entry struct {
	Version   string          `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	Document  json.RawMessage `json:"document"`
}

// Cache is a directory of guest documents.
type Cache struct {
	dir string
}

// New creates the cache directory if needed.
func New(dir string) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("guest cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create guest cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Get returns the document stored under key. found is false when the key has
// never been written.
func (c *Cache) Get(ctx context.Context, key string) (doc resume.Document, found bool, err error) {
	path, err := c.path(key)
	if err != nil {
		return resume.Document{}, false, err
	}

	unlock, err := lock(ctx, path)
	if err != nil {
		return resume.Document{}, false, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return resume.Document{}, false, nil
	}
	if err != nil {
		return resume.Document{}, false, fmt.Errorf("failed to read guest cache entry: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return resume.Document{}, false, &CorruptEntryError{Key: key, Cause: err}
	}
	if err := schemas.ValidateDocument(e.Document); err != nil {
		return resume.Document{}, false, &CorruptEntryError{Key: key, Cause: err}
	}
	if err := json.Unmarshal(e.Document, &doc); err != nil {
		return resume.Document{}, false, &CorruptEntryError{Key: key, Cause: err}
	}
	return doc, true, nil
}

// Set replaces the document stored under key.
func (c *Cache) Set(ctx context.Context, key string, doc resume.Document) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data, err := json.MarshalIndent(entry{
		Version:   entryVersion,
		UpdatedAt: time.Now().UTC(),
		Document:  body,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode guest cache entry: %w", err)
	}

	unlock, err := lock(ctx, path)
	if err != nil {
		return err
	}
	defer unlock()

	// Write atomically
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// Delete removes the entry for key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}

	unlock, err := lock(ctx, path)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete guest cache entry: %w", err)
	}
	_ = os.Remove(path + ".lock")
	return nil
}

// Saver binds the cache to one session key.
func (c *Cache) Saver(key string) *Saver {
	return &Saver{cache: c, key: key}
}

// Saver persists documents for a single guest session.
type Saver struct {
	cache *Cache
	key   string
}

// Save writes doc and returns the session key as its identifier.
func (s *Saver) Save(ctx context.Context, doc resume.Document) (string, error) {
	if err := s.cache.Set(ctx, s.key, doc); err != nil {
		return "", err
	}
	return s.key, nil
}

func (c *Cache) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(c.dir, key+".json"), nil
}

// lock takes the per-entry file lock, waiting up to lockTimeout.
func lock(ctx context.Context, path string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	fileLock := flock.New(path + ".lock")
	locked, err := fileLock.TryLockContext(ctx, lockInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire file lock")
	}
	return func() { _ = fileLock.Unlock() }, nil
}
