// Package vcs confines every git operation behind a typed Go API, per the
// Design Notes anti-pattern "Repository as both database and transport":
// business logic never shells out to git directly. Built on go-git, a
// pure-Go git implementation, so commit/diff/log/status are native Go calls
// rather than parsed CLI output.
package vcs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/wstrucke/scs/errs"
)

// Repo wraps a go-git repository rooted at the fact repository's working dir.
type Repo struct {
	path string
	repo *git.Repository
}

// Open opens an existing git repository at path.
func Open(path string) (*Repo, error) {
	r, err := git.PlainOpen(path)
	if err != nil {
		return nil, errs.Remotef("open repository %s: %w", path, err)
	}
	return &Repo{path: path, repo: r}, nil
}

// Init creates a new git repository at path (used the first time the store
// is initialized).
func Init(path string) (*Repo, error) {
	r, err := git.PlainInit(path, false)
	if err != nil {
		return nil, errs.Remotef("init repository %s: %w", path, err)
	}
	return &Repo{path: path, repo: r}, nil
}

// LogEntry is one decorated one-line log entry.
type LogEntry struct {
	Hash    string
	Author  string
	When    time.Time
	Subject string
}

// Log returns commits reachable from HEAD, most recent first, decorated
// one-line per spec's "log (decorated one-line)".
func (r *Repo) Log(max int) ([]LogEntry, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, errs.Remotef("resolve HEAD: %w", err)
	}
	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, errs.Remotef("log: %w", err)
	}
	defer iter.Close()

	var out []LogEntry
	err = iter.ForEach(func(c *object.Commit) error {
		if max > 0 && len(out) >= max {
			return storerIterStop
		}
		subject := c.Message
		if i := strings.IndexByte(subject, '\n'); i >= 0 {
			subject = subject[:i]
		}
		out = append(out, LogEntry{
			Hash:    c.Hash.String()[:12], //nolint:mnd
			Author:  c.Author.Name,
			When:    c.Author.When,
			Subject: subject,
		})
		return nil
	})
	if err != nil && err != storerIterStop {
		return nil, errs.Remotef("log: %w", err)
	}
	return out, nil
}

// sentinel used only to break out of ForEach early without returning a real error.
var storerIterStop = fmt.Errorf("stop")

// Status reports per-file working tree status, verbose form used by the
// `status` global verb (ahead/behind is reported separately by AheadBehind).
func (r *Repo) Status() (git.Status, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, errs.Remotef("worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, errs.Remotef("status: %w", err)
	}
	return st, nil
}

// AheadBehind counts commits HEAD is ahead/behind of its upstream tracking
// branch. Returns (0, 0, nil) if there is no configured upstream.
func (r *Repo) AheadBehind() (ahead, behind int, err error) {
	head, err := r.repo.Head()
	if err != nil {
		return 0, 0, errs.Remotef("resolve HEAD: %w", err)
	}
	remoteRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName("origin", head.Name().Short()), true)
	if err != nil {
		return 0, 0, nil // no upstream configured
	}
	localCommits, err := commitSet(r.repo, head.Hash())
	if err != nil {
		return 0, 0, err
	}
	remoteCommits, err := commitSet(r.repo, remoteRef.Hash())
	if err != nil {
		return 0, 0, err
	}
	for h := range localCommits {
		if _, ok := remoteCommits[h]; !ok {
			ahead++
		}
	}
	for h := range remoteCommits {
		if _, ok := localCommits[h]; !ok {
			behind++
		}
	}
	return ahead, behind, nil
}

func commitSet(repo *git.Repository, from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, errs.Remotef("log: %w", err)
	}
	defer iter.Close()
	set := map[plumbing.Hash]struct{}{}
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, errs.Remotef("log: %w", err)
	}
	return set, nil
}

// Commit stages everything under path (superproject plus each configured
// submodule, in that order per "submodules are handled: git add/commit in
// each submodule before the superproject") and creates a commit with message.
func (r *Repo) Commit(message, authorName, authorEmail string) (plumbing.Hash, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, errs.Remotef("worktree: %w", err)
	}

	subs, err := wt.Submodules()
	if err == nil {
		names := make([]string, 0, len(subs))
		byName := make(map[string]*git.Submodule, len(subs))
		for _, s := range subs {
			names = append(names, s.Config().Name)
			byName[s.Config().Name] = s
		}
		sort.Strings(names)
		for _, name := range names {
			sub := byName[name]
			subRepo, err := sub.Repository()
			if err != nil {
				continue
			}
			subWT, err := subRepo.Worktree()
			if err != nil {
				continue
			}
			if err := subWT.AddWithOptions(&git.AddOptions{All: true}); err != nil {
				continue
			}
			_, _ = subWT.Commit(message, &git.CommitOptions{
				Author: &object.Signature{Name: authorName, Email: authorEmail, When: time.Now()},
			})
		}
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, errs.Remotef("add: %w", err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: authorName, Email: authorEmail, When: time.Now()},
	})
	if err != nil {
		return plumbing.ZeroHash, errs.Remotef("commit: %w", err)
	}
	return hash, nil
}

// DiscardChanges discards working-tree changes recursively into submodules,
// used by cancel_modify.
func (r *Repo) DiscardChanges() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return errs.Remotef("worktree: %w", err)
	}
	head, err := r.repo.Head()
	if err != nil {
		return errs.Remotef("resolve HEAD: %w", err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: head.Hash(), Mode: git.HardReset}); err != nil {
		return errs.Remotef("reset: %w", err)
	}
	if err := wt.Clean(&git.CleanOptions{Dir: true}); err != nil {
		return errs.Remotef("clean: %w", err)
	}
	subs, err := wt.Submodules()
	if err == nil {
		for _, s := range subs {
			subRepo, err := s.Repository()
			if err != nil {
				continue
			}
			subWT, err := subRepo.Worktree()
			if err != nil {
				continue
			}
			subHead, err := subRepo.Head()
			if err != nil {
				continue
			}
			_ = subWT.Reset(&git.ResetOptions{Commit: subHead.Hash(), Mode: git.HardReset})
			_ = subWT.Clean(&git.CleanOptions{Dir: true})
		}
	}
	return nil
}

// Push pushes the current branch to its upstream remote. Refuses to push
// directly to origin/master per spec ("never to origin/master") — callers
// must have the current branch tracking a non-master upstream.
func (r *Repo) Push(branch string) error {
	if branch == "master" || branch == "main" {
		return errs.Validationf("refusing to push directly to %s", branch)
	}
	err := r.repo.Push(&git.PushOptions{RemoteName: "origin"})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return errs.Remotef("push: %w", err)
	}
	return nil
}

// DiffNames returns the names of files with uncommitted changes (staged or
// unstaged), used by `diff` and by stop_modify's pending-diff preview.
func DiffNames(st git.Status) []string {
	names := make([]string, 0, len(st))
	for name := range st {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
