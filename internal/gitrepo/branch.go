// Package gitrepo performs branch operations on the local working copy.
package gitrepo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// EnsureBranch creates the named branch at HEAD and checks it out. If the
// branch already exists it is checked out instead; re-running is safe.
// Returns true when the branch was newly created.
func EnsureBranch(path, name string) (bool, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return false, fmt.Errorf("not a git repository: %s: %w", path, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to open worktree: %w", err)
	}

	refName := plumbing.NewBranchReferenceName(name)
	_, err = repo.Reference(refName, true)
	switch {
	case err == nil:
		if err := wt.Checkout(&git.CheckoutOptions{Branch: refName}); err != nil {
			return false, fmt.Errorf("failed to switch to branch %q: %w", name, err)
		}
		return false, nil
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		if err := wt.Checkout(&git.CheckoutOptions{Branch: refName, Create: true}); err != nil {
			return false, fmt.Errorf("failed to create branch %q: %w", name, err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("failed to resolve branch %q: %w", name, err)
	}
}

// CurrentBranch returns the short name of the checked-out branch, or an
// empty string on a detached HEAD.
func CurrentBranch(path string) (string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("not a git repository: %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}
