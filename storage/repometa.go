package storage

import (
	"context"
	"database/sql"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/teranos/codegraph/errors"
)

// Meta keys stamped into the index.
const (
	MetaRepoRoot = "repo_root"
	MetaRepoHead = "repo_head"
)

// StampRepoMeta resolves the git repository containing dir and records its
// root path and HEAD commit hash in the meta table. A directory outside any
// git repository is not an error; only the root path is recorded then.
func (s *Store) StampRepoMeta(ctx context.Context, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", dir)
	}

	root := absDir
	head := ""

	repo, err := git.PlainOpenWithOptions(absDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		if wt, wtErr := repo.Worktree(); wtErr == nil {
			root = wt.Filesystem.Root()
		}
		if ref, headErr := repo.Head(); headErr == nil {
			head = ref.Hash().String()
		}
	} else if !errors.Is(err, git.ErrRepositoryNotExists) {
		return errors.Wrapf(err, "failed to open repository at %s", absDir)
	}

	if err := s.SetMeta(ctx, MetaRepoRoot, root); err != nil {
		return err
	}
	if head != "" {
		if err := s.SetMeta(ctx, MetaRepoHead, head); err != nil {
			return err
		}
	}

	s.logger.Debugw("Stamped repository metadata", "root", root, "head", head)
	return nil
}

// SetMeta upserts one meta key.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return errors.Wrapf(err, "failed to set meta key %s", key)
	}
	return nil
}

// GetMeta returns one meta value, or errors.ErrNotFound if the key is absent.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.Wrapf(errors.ErrNotFound, "meta key %s", key)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to get meta key %s", key)
	}
	return value, nil
}
