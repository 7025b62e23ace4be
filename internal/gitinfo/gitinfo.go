// Package gitinfo resolves when a content file last changed, preferring the
// git history of the enclosing repository over filesystem timestamps.
package gitinfo

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Source says where a timestamp came from.
type Source string

const (
	SourceGit   Source = "git"
	SourceMTime Source = "mtime"
	SourceNone  Source = ""
)

// Resolver answers last-modified queries. The zero value is not usable;
// call New.
type Resolver struct {
	repo  *git.Repository
	root  string
	mu    sync.Mutex
	cache map[string]time.Time
}

// New opens the repository containing dir. When dir is not inside a git
// worktree the resolver falls back to file mtimes for every query.
func New(dir string) *Resolver {
	r := &Resolver{cache: make(map[string]time.Time)}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		slog.Debug("No git repository for content, using file times", logfields.Path(dir), logfields.Error(err))
		return r
	}
	wt, err := repo.Worktree()
	if err != nil {
		slog.Debug("Bare repository, using file times", logfields.Path(dir), logfields.Error(err))
		return r
	}
	r.repo = repo
	r.root = wt.Filesystem.Root()
	return r
}

// InRepository reports whether git history is available.
func (r *Resolver) InRepository() bool { return r.repo != nil }

// LastModified returns the author time of the latest commit touching path,
// else the file's mtime. Missing files yield SourceNone.
func (r *Resolver) LastModified(path string) (time.Time, Source) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if t, ok := r.fromGit(abs); ok {
		return t, SourceGit
	}
	st, err := os.Stat(abs)
	if err != nil {
		return time.Time{}, SourceNone
	}
	return st.ModTime(), SourceMTime
}

func (r *Resolver) fromGit(abs string) (time.Time, bool) {
	if r.repo == nil {
		return time.Time{}, false
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return time.Time{}, false
	}
	rel = filepath.ToSlash(rel)

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.cache[rel]; ok {
		return t, !t.IsZero()
	}

	var when time.Time
	iter, err := r.repo.Log(&git.LogOptions{FileName: &rel})
	if err == nil {
		if c, nextErr := iter.Next(); nextErr == nil {
			when = c.Author.When
		}
		iter.Close()
	}
	r.cache[rel] = when
	return when, !when.IsZero()
}
