// Package gitinfo reads revision information for the project being built.
package gitinfo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ShortHashLength is the number of hex characters kept by HeadCommit.
const ShortHashLength = 7

// ErrNotRepository is returned when dir is not inside a git working tree.
var ErrNotRepository = errors.New("not a git repository")

// Head returns the full HEAD commit hash for the repository containing dir.
func Head(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", ErrNotRepository
	}
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	ref, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// Fresh repository without commits.
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// HeadCommit returns the short HEAD hash, or "" when dir is not in a repository or has no commits.
func HeadCommit(dir string) string {
	hash, err := Head(dir)
	if err != nil || len(hash) < ShortHashLength {
		return hash
	}
	return hash[:ShortHashLength]
}
