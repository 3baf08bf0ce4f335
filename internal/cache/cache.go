// Package cache stores encoded reports on disk. Entries for a clean git
// checkout are keyed by HEAD; anything else falls back to modification-time
// freshness against the analyzed files.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/phobologic/repolens/internal/model"
)

// ErrNoRevision is returned by Revision when root is not a clean git
// checkout.
var ErrNoRevision = errors.New("no clean git revision")

// Revision returns the HEAD commit of the repository containing root. A
// dirty worktree has no stable revision.
func Revision(root string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRevision, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRevision, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRevision, err)
	}
	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRevision, err)
	}
	if !status.IsClean() {
		return "", fmt.Errorf("%w: worktree has changes", ErrNoRevision)
	}
	return head.Hash().String(), nil
}

// Fingerprint hashes the settings that change a report's content.
func Fingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:8])
}

type envelope struct {
	Key    string        `json:"key"`
	Report *model.Report `json:"report"`
}

// Store is a directory of cached reports.
type Store struct {
	dir string
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Get returns the cached report for root if it is still valid. files are
// the repository-relative paths the report was built from and are only
// consulted when root has no clean revision.
func (s *Store) Get(root, fingerprint string, files []string) (*model.Report, bool) {
	path, key, byRevision := s.entry(root, fingerprint)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Key != key || env.Report == nil {
		return nil, false
	}
	if !byRevision && !isFresh(path, root, files) {
		return nil, false
	}
	return env.Report, true
}

// Put writes rep as the current entry for root.
func (s *Store) Put(root, fingerprint string, rep *model.Report) error {
	path, key, _ := s.entry(root, fingerprint)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	data, err := json.Marshal(envelope{Key: key, Report: rep})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (s *Store) entry(root, fingerprint string) (path, key string, byRevision bool) {
	if rev, err := Revision(root); err == nil {
		key = rev + ":" + fingerprint
		byRevision = true
	} else {
		abs, _ := filepath.Abs(root)
		key = "worktree:" + abs + ":" + fingerprint
	}
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:12])+".json"), key, byRevision
}

func isFresh(cachePath, root string, files []string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, filepath.FromSlash(f)))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}
