// Package git reads change sets out of a local repository with go-git.
// It produces the same []nitpick.Change a pull request listing does, so rules
// can be tried against local commits before they are pushed.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/ethanis/nitpicker/pkg/nitpick"
)

// Repository is a local git repository.
type Repository struct {
	// Dir is the directory the repository was opened from.
	Dir string

	repo *git.Repository
}

// RepositoryInfo holds information about a git repository.
type RepositoryInfo struct {
	// HEAD is the current commit SHA.
	HEAD string

	// Branch is the current branch name (empty if detached HEAD).
	Branch string
}

// Open opens the repository containing dir, walking up to find .git.
// Worktrees are supported.
func Open(dir string) (*Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", abs, err)
	}
	return &Repository{Dir: abs, repo: repo}, nil
}

// Info returns the HEAD commit and current branch.
func (r *Repository) Info() (*RepositoryInfo, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	info := &RepositoryInfo{HEAD: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info, nil
}

// ResolveCommit resolves a revision such as "HEAD~1", a branch, a tag or a
// SHA to a commit.
func (r *Repository) ResolveCommit(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}
	return commit, nil
}

// Diff returns the files changed between base and head, sorted by path.
// Patches hold only the hunks, like the patch field of the GitHub API;
// binary files have an empty patch.
func (r *Repository) Diff(ctx context.Context, base, head string) ([]nitpick.Change, error) {
	baseCommit, err := r.ResolveCommit(base)
	if err != nil {
		return nil, err
	}
	headCommit, err := r.ResolveCommit(head)
	if err != nil {
		return nil, err
	}

	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", base, err)
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", head, err)
	}

	diffs, err := object.DiffTreeWithOptions(ctx, baseTree, headTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..%s: %w", base, head, err)
	}

	changes := make([]nitpick.Change, 0, len(diffs))
	for _, d := range diffs {
		change, err := toChange(ctx, d)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].File < changes[j].File })
	return changes, nil
}

func toChange(ctx context.Context, d *object.Change) (nitpick.Change, error) {
	action, err := d.Action()
	if err != nil {
		return nitpick.Change{}, fmt.Errorf("failed to classify change: %w", err)
	}

	change := nitpick.Change{File: d.To.Name, ChangeType: nitpick.ChangeEdit}
	switch action {
	case merkletrie.Insert:
		change.ChangeType = nitpick.ChangeAdd
	case merkletrie.Delete:
		change.File = d.From.Name
		change.ChangeType = nitpick.ChangeDelete
	}

	patch, err := d.PatchContext(ctx)
	if err != nil {
		return nitpick.Change{}, fmt.Errorf("failed to compute patch for %s: %w", change.File, err)
	}
	change.Patch = hunks(patch.String())
	return change, nil
}

// hunks drops the diff header lines before the first hunk.
func hunks(patch string) string {
	if strings.HasPrefix(patch, "@@") {
		return patch
	}
	if i := strings.Index(patch, "\n@@"); i >= 0 {
		return patch[i+1:]
	}
	return ""
}

// IsRepo reports whether dir is inside a git repository.
func IsRepo(dir string) bool {
	_, err := Open(dir)
	return err == nil
}

// ErrNotRepo is returned by OpenCurrent outside of a repository.
var ErrNotRepo = errors.New("not a git repository")

// OpenCurrent opens the repository containing the working directory.
func OpenCurrent() (*Repository, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	r, err := Open(wd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRepo, wd)
	}
	return r, nil
}
