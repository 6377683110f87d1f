package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/codegraph/errors"
	qtesting "github.com/teranos/codegraph/internal/testing"
)

func TestStampRepoMeta(t *testing.T) {
	store := NewStore(qtesting.CreateTestDB(t), nil)
	ctx := context.Background()

	// Build a throwaway repo with one commit
	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "a.go"), []byte("package a\n"), 0644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("a.go")
	require.NoError(t, err)
	commit, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	// Stamping from a subdirectory still resolves the repo root
	subDir := filepath.Join(repoDir, "sub")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	require.NoError(t, store.StampRepoMeta(ctx, subDir))

	root, err := store.GetMeta(ctx, MetaRepoRoot)
	require.NoError(t, err)
	resolvedRepoDir, err := filepath.EvalSymlinks(repoDir)
	require.NoError(t, err)
	resolvedRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, resolvedRepoDir, resolvedRoot)

	head, err := store.GetMeta(ctx, MetaRepoHead)
	require.NoError(t, err)
	assert.Equal(t, commit.String(), head)
}

func TestStampRepoMetaOutsideRepo(t *testing.T) {
	store := NewStore(qtesting.CreateTestDB(t), nil)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, store.StampRepoMeta(ctx, dir))

	// Root is recorded, HEAD is not
	_, err := store.GetMeta(ctx, MetaRepoRoot)
	require.NoError(t, err)

	_, err = store.GetMeta(ctx, MetaRepoHead)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestSetMetaUpsert(t *testing.T) {
	store := NewStore(qtesting.CreateTestDB(t), nil)
	ctx := context.Background()

	require.NoError(t, store.SetMeta(ctx, "k", "v1"))
	require.NoError(t, store.SetMeta(ctx, "k", "v2"))

	value, err := store.GetMeta(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)
}
