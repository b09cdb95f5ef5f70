// Package cache provides the persistent per-user store for repository
// lists and enrichment details, each with its own time-to-live.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/orrery-cli/orrery/internal/constants"
	"github.com/orrery-cli/orrery/internal/log"
	"github.com/orrery-cli/orrery/internal/model"
)

// Storer defines the interface for cache operations.
// This interface enables mocking the cache in unit tests.
type Storer interface {
	GetBasic(user string) ([]model.Repository, bool)
	SetBasic(user string, repos []model.Repository) error

	GetDetail(user, repo string) (DetailFields, bool)
	SetDetail(user, repo string, fields DetailFields) error
	GetAllDetail(user string) map[string]DetailFields

	Clear() error
	Stats() (*Stats, error)
}

// Ensure Store implements Storer.
var _ Storer = (*Store)(nil)

// Store is a file-backed key/value store keyed by user identity. Reads
// past TTL delete the entry and report absent, never a stale return.
// A single mutex serializes writers within this process; concurrent
// writers in separate processes may race (last write wins), but entries
// are replaced atomically so a reader never observes a torn write.
type Store struct {
	dir       string
	basicTTL  time.Duration
	detailTTL time.Duration

	mu sync.Mutex

	// now is the clock; replaced in tests to simulate TTL expiry.
	now func() time.Time
}

// NewStore creates a store rooted at the user cache directory.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return NewStoreAt(filepath.Join(cacheDir, "orrery"), constants.BasicListCacheTTL, constants.DetailCacheTTL)
}

// NewStoreAt creates a store rooted at dir with explicit TTLs.
func NewStoreAt(dir string, basicTTL, detailTTL time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Store{
		dir:       dir,
		basicTTL:  basicTTL,
		detailTTL: detailTTL,
		now:       time.Now,
	}, nil
}

// safeName replaces path separators so user and repository names can be
// embedded in file names without losing uniqueness.
func safeName(s string) string {
	return strings.ReplaceAll(s, "/", "_")
}

func (s *Store) basicPath(user string) string {
	return filepath.Join(s.dir, fmt.Sprintf("basic_%s.json", safeName(user)))
}

func (s *Store) detailPath(user, repo string) string {
	return filepath.Join(s.dir, fmt.Sprintf("detail_%s_%s.json", safeName(user), safeName(repo)))
}

// GetBasic returns the cached repository list for a user, or absent if
// missing, malformed, version-mismatched, or past TTL. Expired entries
// are deleted on read.
func (s *Store) GetBasic(user string) ([]model.Repository, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.basicPath(user)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry BasicEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Version != Version {
		log.Debug("cache version mismatch", "cached", entry.Version, "current", Version, "user", user)
		_ = os.Remove(path)
		return nil, false
	}

	if s.now().Sub(entry.CachedAt) > s.basicTTL {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Repos, true
}

// SetBasic caches the raw repository list for a user. Last write wins.
// A write failure is non-fatal and triggers an opportunistic eviction
// pass over fully expired entries.
func (s *Store) SetBasic(user string, repos []model.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := BasicEntry{
		Repos:    repos,
		CachedAt: s.now(),
		Version:  Version,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := s.writeEntryLocked(s.basicPath(user), data); err != nil {
		s.evictExpiredLocked()
		return err
	}
	return nil
}

// GetDetail returns cached detail fields for one repository, or absent.
// Expired entries are deleted on read.
func (s *Store) GetDetail(user, repo string) (DetailFields, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getDetailLocked(user, repo)
}

func (s *Store) getDetailLocked(user, repo string) (DetailFields, bool) {
	path := s.detailPath(user, repo)
	data, err := os.ReadFile(path)
	if err != nil {
		return DetailFields{}, false
	}

	var entry DetailEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return DetailFields{}, false
	}

	if entry.Version != Version {
		_ = os.Remove(path)
		return DetailFields{}, false
	}

	if s.now().Sub(entry.CachedAt) > s.detailTTL {
		_ = os.Remove(path)
		return DetailFields{}, false
	}

	return entry.Detail, true
}

// SetDetail caches measured counts for one repository of one user.
func (s *Store) SetDetail(user, repo string, fields DetailFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := DetailEntry{
		Detail:   fields,
		CachedAt: s.now(),
		Version:  Version,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := s.writeEntryLocked(s.detailPath(user, repo), data); err != nil {
		s.evictExpiredLocked()
		return err
	}
	return nil
}

// writeEntryLocked writes an entry through a temp file and rename so a
// reader in another process never sees a partially written entry.
func (s *Store) writeEntryLocked(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".write-*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0600); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}

// GetAllDetail returns every fresh detail entry for a user, keyed by
// repository name.
func (s *Store) GetAllDetail(user string) map[string]DetailFields {
	s.mu.Lock()
	defer s.mu.Unlock()

	details := make(map[string]DetailFields)

	prefix := fmt.Sprintf("detail_%s_", safeName(user))
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return details
	}

	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		repo := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		if fields, ok := s.getDetailLocked(user, repo); ok {
			details[repo] = fields
		}
	}

	return details
}

// Clear removes all cached entries.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// evictExpiredLocked removes entries whose TTL has expired. Called after
// a failed write (e.g. storage quota) to reclaim space; errors here are
// logged and swallowed.
func (s *Store) evictExpiredLocked() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Trace("eviction pass failed to read cache dir", "error", err)
		return
	}

	now := s.now()
	evicted := 0

	for _, e := range entries {
		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		ttl := s.detailTTL
		if strings.HasPrefix(e.Name(), "basic_") {
			ttl = s.basicTTL
		}

		var stamp struct {
			CachedAt time.Time `json:"cachedAt"`
		}
		if err := json.Unmarshal(data, &stamp); err != nil {
			continue
		}

		if now.Sub(stamp.CachedAt) > ttl {
			if err := os.Remove(path); err == nil {
				evicted++
			}
		}
	}

	if evicted > 0 {
		log.Debug("evicted expired cache entries after write failure", "count", evicted)
	}
}

// Stats returns cache statistics.
func (s *Store) Stats() (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	now := s.now()

	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}

		var stamp struct {
			CachedAt time.Time `json:"cachedAt"`
		}
		if err := json.Unmarshal(data, &stamp); err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(e.Name(), "basic_"):
			stats.BasicTotal++
			if now.Sub(stamp.CachedAt) <= s.basicTTL {
				stats.BasicValid++
			}
		case strings.HasPrefix(e.Name(), "detail_"):
			stats.DetailTotal++
			if now.Sub(stamp.CachedAt) <= s.detailTTL {
				stats.DetailValid++
			}
		}
	}

	return stats, nil
}

// SetClock replaces the store's clock. Tests use this to simulate TTL
// expiry without sleeping.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
