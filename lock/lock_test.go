package lock

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) *RepoLock {
	t.Helper()
	return New(filepath.Join(t.TempDir(), ".scs_lock"), true)
}

func TestStartModify_AcquiresWhenAbsent(t *testing.T) {
	l := newTestLock(t)
	require.NoError(t, l.StartModify(context.Background(), "alice"))

	owner, locked, err := l.Status()
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Equal(t, "alice", owner)
}

func TestStartModify_IdempotentForSameOwner(t *testing.T) {
	l := newTestLock(t)
	require.NoError(t, l.StartModify(context.Background(), "alice"))
	assert.NoError(t, l.StartModify(context.Background(), "alice"))
}

func TestStartModify_RefusesWhenHeldByAnotherUser(t *testing.T) {
	l := newTestLock(t)
	require.NoError(t, l.StartModify(context.Background(), "alice"))

	err := l.StartModify(context.Background(), "bob")
	assert.Error(t, err)
}

func TestRequireOwner_FailsWhenNotLocked(t *testing.T) {
	l := newTestLock(t)
	assert.Error(t, l.RequireOwner("alice"))
}

func TestRequireOwner_FailsForWrongUser(t *testing.T) {
	l := newTestLock(t)
	require.NoError(t, l.StartModify(context.Background(), "alice"))
	assert.Error(t, l.RequireOwner("bob"))
}

func TestRequireOwner_SucceedsForOwner(t *testing.T) {
	l := newTestLock(t)
	require.NoError(t, l.StartModify(context.Background(), "alice"))
	assert.NoError(t, l.RequireOwner("alice"))
}

func TestRelease_ClearsTheSentinel(t *testing.T) {
	l := newTestLock(t)
	require.NoError(t, l.StartModify(context.Background(), "alice"))
	require.NoError(t, l.Release())

	_, locked, err := l.Status()
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestRelease_NoopWhenAlreadyUnlocked(t *testing.T) {
	l := newTestLock(t)
	assert.NoError(t, l.Release())
}

func TestUnsharedRepo_LockingIsANoop(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), ".scs_lock"), false)
	require.NoError(t, l.StartModify(context.Background(), "alice"))

	_, locked, err := l.Status()
	require.NoError(t, err)
	assert.False(t, locked)
	assert.NoError(t, l.RequireOwner("anyone"))
}
