// Package source resolves build contexts. A context is either a directory
// on the host, used as-is, or a git URL cloned into a workspace directory.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var ErrFetch = errors.New("context fetch failed")

// A resolved build context.
type Checkout struct {
	Dir    string // Directory holding the context files.
	Commit string // Checked-out commit, empty for plain directory contexts.
}

// Reports whether s looks like a git URL rather than a local path.
func IsGitURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "git://") ||
		strings.HasPrefix(s, "ssh://") ||
		strings.HasPrefix(s, "git@")
}

// Resolves a context argument to a directory.
//
// Git URLs are cloned into workspace. Anything else must be an existing
// directory on the host. An optional "#branch" suffix on a git URL selects
// the branch to clone.
func Resolve(ctx context.Context, contextArg, workspace string) (*Checkout, error) {
	if !IsGitURL(contextArg) {
		info, err := os.Stat(contextArg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetch, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: context %s is not a directory", ErrFetch, contextArg)
		}
		return &Checkout{Dir: contextArg}, nil
	}

	url, branch, _ := strings.Cut(contextArg, "#")
	return Fetch(ctx, url, branch, workspace)
}

// Clones a repository into dest and returns the checkout.
//
// The clone is shallow and single-branch; build contexts only need the
// working tree at one commit. Any stale checkout at dest is removed first.
func Fetch(ctx context.Context, url, branch, dest string) (*Checkout, error) {
	slog.Debug("fetching build context", "url", url, "branch", branch, "dest", dest)

	if err := os.RemoveAll(dest); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	opts := &git.CloneOptions{
		URL:   url,
		Depth: 1,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, dest, false, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: clone %s: %w", ErrFetch, url, err)
	}

	checkout := &Checkout{Dir: dest}
	if ref, err := repo.Head(); err == nil {
		checkout.Commit = ref.Hash().String()
		slog.Info("build context fetched", "url", url, "commit", checkout.Commit[:8])
	} else {
		slog.Info("build context fetched", "url", url)
	}

	return checkout, nil
}
