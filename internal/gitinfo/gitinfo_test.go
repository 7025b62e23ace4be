package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestLastModifiedFromGit(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0o755))
	file := filepath.Join(dir, "content", "intro.md")
	require.NoError(t, os.WriteFile(file, []byte("# Intro\n"), 0o600))
	_, err = wt.Add("content/intro.md")
	require.NoError(t, err)

	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err = wt.Commit("add intro", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: when},
	})
	require.NoError(t, err)

	r := New(filepath.Join(dir, "content"))
	require.True(t, r.InRepository())

	got, src := r.LastModified(file)
	require.Equal(t, SourceGit, src)
	require.True(t, when.Equal(got))

	untracked := filepath.Join(dir, "content", "draft.md")
	require.NoError(t, os.WriteFile(untracked, []byte("draft"), 0o600))
	_, src = r.LastModified(untracked)
	require.Equal(t, SourceMTime, src)
}

func TestLastModifiedWithoutRepository(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	r := New(dir)
	require.False(t, r.InRepository())

	got, src := r.LastModified(file)
	require.Equal(t, SourceMTime, src)
	require.False(t, got.IsZero())

	_, src = r.LastModified(filepath.Join(dir, "missing.md"))
	require.Equal(t, SourceNone, src)
}
