// Package lock implements the repository lock half of Component B: a
// sentinel file at the root of the store holding the current owner's
// username. Unlike a conventional mutex, the lock spans an entire
// start_modify..stop_modify/cancel_modify session, potentially across many
// separate CLI invocations, so it is a content marker guarded by a brief
// flock(2) hold rather than a held-for-the-duration lock (contrast
// lock/flock's in-process dual design, which the teacher uses for
// operations that complete within a single call).
package lock

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/utils"
)

// RepoLock manages the sentinel file at SentinelPath.
type RepoLock struct {
	SentinelPath string
	// Shared disables all locking semantics when false (SCS_SHARED_REPO=0):
	// Status always reports unlocked and StartModify/StopModify/CancelModify
	// become no-ops beyond their VCS side effects.
	Shared bool
}

// New creates a RepoLock for the given sentinel path.
func New(sentinelPath string, shared bool) *RepoLock {
	return &RepoLock{SentinelPath: sentinelPath, Shared: shared}
}

// Status reads the current owner, if any. locked is false when the sentinel
// is absent or locking is disabled.
func (l *RepoLock) Status() (owner string, locked bool, err error) {
	if !l.Shared {
		return "", false, nil
	}
	data, err := os.ReadFile(l.SentinelPath) //nolint:gosec // repo-managed path
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	owner = strings.TrimSpace(string(data))
	return owner, owner != "", nil
}

// StartModify acquires the lock for user, creating the sentinel if absent.
// Re-acquiring as the same owner is idempotent. Acquiring while another user
// holds it fails fast with ConflictError (Lock safety, property 6).
func (l *RepoLock) StartModify(ctx context.Context, user string) error {
	if !l.Shared {
		return nil
	}
	fl := flock.New(l.SentinelPath + ".flock")
	ok, err := fl.TryLockContext(ctx, 50*time.Millisecond) //nolint:mnd
	if err != nil {
		return errs.Remotef("acquire sentinel flock: %w", err)
	}
	if !ok {
		return errs.Conflictf("repository lock is busy, try again")
	}
	defer fl.Unlock() //nolint:errcheck

	owner, locked, err := l.Status()
	if err != nil {
		return err
	}
	if locked && owner != user {
		return errs.Conflictf("repository is locked by %s", owner)
	}
	return utils.AtomicWriteFile(l.SentinelPath, []byte(user+"\n"), 0o640) //nolint:mnd
}

// RequireOwner fails fast unless the lock is held by user — called at the
// top of every mutating operation per "every mutating verb acquires the lock".
func (l *RepoLock) RequireOwner(user string) error {
	owner, locked, err := l.Status()
	if err != nil {
		return err
	}
	if !l.Shared {
		return nil
	}
	if !locked {
		return errs.Conflictf("repository is not locked; run 'scs lock' first")
	}
	if owner != user {
		return errs.Conflictf("repository is locked by %s", owner)
	}
	return nil
}

// Release removes the sentinel unconditionally. Called by both stop_modify
// (after a successful commit) and cancel_modify (after discarding changes).
func (l *RepoLock) Release() error {
	if !l.Shared {
		return nil
	}
	if err := os.Remove(l.SentinelPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
