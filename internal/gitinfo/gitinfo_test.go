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

func TestHeadCommit_NotRepository(t *testing.T) {
	dir := t.TempDir()

	_, err := Head(dir)
	require.ErrorIs(t, err, ErrNotRepository)
	require.Empty(t, HeadCommit(dir))
}

func TestHeadCommit_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.Empty(t, HeadCommit(dir))
}

func TestHeadCommit_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "index.html"), []byte("<h1>hi</h1>"), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()}})
	require.NoError(t, err)

	full, err := Head(filepath.Join(dir, "content"))
	require.NoError(t, err)
	require.Equal(t, hash.String(), full)
	require.Equal(t, hash.String()[:ShortHashLength], HeadCommit(filepath.Join(dir, "content")))
}
