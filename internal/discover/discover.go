// Package discover finds analyzable files in a repository checkout and
// reads them into memory.
package discover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/repolens/internal/lang"
	"github.com/phobologic/repolens/internal/logging"
	"github.com/phobologic/repolens/internal/manifest"
	"github.com/phobologic/repolens/internal/model"
)

// ErrNotDirectory is returned when the analysis root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// FileEntry represents a discovered file.
type FileEntry struct {
	Path     string // Relative to repo root, slash-separated
	Language model.LanguageTag
	Manifest bool
}

// Options narrows discovery.
type Options struct {
	// Languages keeps only files of the listed languages. Manifests are
	// always kept.
	Languages []string
	// Include keeps only paths matching at least one pattern.
	Include []string
	// Exclude drops paths matching any pattern.
	Exclude []string
}

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".env":          {},
	"build":         {},
	"dist":          {},
	"target":        {},
	"vendor":        {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
	"egg-info":      {},
}

// Files discovers analyzable files under root: every file with a language
// that has extractor support, plus recognized manifests.
func Files(root string, opts Options) ([]FileEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	include, err := compileGlobs(opts.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileGlobs(opts.Exclude)
	if err != nil {
		return nil, err
	}

	langSet := make(map[string]struct{}, len(opts.Languages))
	for _, l := range opts.Languages {
		langSet[l] = struct{}{}
	}
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if p == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gitFiles != nil {
			if _, ok := gitFiles[rel]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if len(include) > 0 && !matchAny(include, rel) {
			return nil
		}
		if matchAny(exclude, rel) {
			return nil
		}

		if manifest.IsManifest(rel) {
			results = append(results, FileEntry{Path: rel, Manifest: true})
			return nil
		}

		tag := lang.Classify(name)
		if lang.Lookup(tag) == nil {
			return nil
		}

		if len(langSet) > 0 {
			if _, ok := langSet[string(tag)]; !ok {
				return nil
			}
		}

		results = append(results, FileEntry{Path: rel, Language: tag})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

// Read loads the content of each entry. Files larger than maxSize bytes or
// that cannot be read are logged and returned in skipped.
func Read(root string, entries []FileEntry, maxSize int64, logger *slog.Logger) (files []model.SourceFile, skipped []string) {
	if logger == nil {
		logger = logging.Discard()
	}
	for _, e := range entries {
		full := filepath.Join(root, filepath.FromSlash(e.Path))
		info, err := os.Stat(full)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", e.Path, "error", err)
			skipped = append(skipped, e.Path)
			continue
		}
		if maxSize > 0 && info.Size() > maxSize {
			logger.Warn("skipping oversized file", "path", e.Path, "size", info.Size(), "limit", maxSize)
			skipped = append(skipped, e.Path)
			continue
		}
		content, err := os.ReadFile(full)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", e.Path, "error", err)
			skipped = append(skipped, e.Path)
			continue
		}
		files = append(files, model.SourceFile{Path: e.Path, Content: string(content), Size: info.Size()})
	}
	return files, skipped
}

var testDirs = map[string]struct{}{
	"test":      {},
	"tests":     {},
	"spec":      {},
	"__tests__": {},
	"testdata":  {},
}

// IsTestFile reports whether rel looks like test code, by directory
// component or by file name convention.
func IsTestFile(rel string) bool {
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if _, ok := testDirs[dir]; ok {
			return true
		}
	}

	name := parts[len(parts)-1]
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	switch {
	case strings.HasPrefix(stem, "test_"):
		return true
	case strings.HasSuffix(stem, "_test"), strings.HasSuffix(stem, "_spec"):
		return true
	case strings.HasSuffix(stem, ".test"), strings.HasSuffix(stem, ".spec"):
		return true
	case strings.HasSuffix(stem, "Test") && ext == ".java":
		return true
	}
	return false
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, rel string) bool {
	for _, g := range globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	p := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(p)
	if err != nil {
		return nil
	}
	return gi
}
