package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommitLog(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "application"), []byte("web,w,build,n\n"), 0o640))

	hash, err := r.Commit("add application record", "scs", "scs@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, hash.String())

	log, err := r.Log(0)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "add application record", log[0].Subject)
}

func TestStatus_CleanAfterCommit(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build"), []byte("webserver,role,,linux,x86_64,10,512,\n"), 0o640))
	_, err = r.Commit("add build", "scs", "scs@example.com")
	require.NoError(t, err)

	st, err := r.Status()
	require.NoError(t, err)
	assert.True(t, st.IsClean())
}

func TestDiscardChanges_RevertsUncommittedEdits(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "location")
	require.NoError(t, os.WriteFile(path, []byte("dal,Dallas,\n"), 0o640))
	_, err = r.Commit("add location", "scs", "scs@example.com")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("dal,Dallas,modified\n"), 0o640))
	require.NoError(t, r.DiscardChanges())

	data, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	assert.Equal(t, "dal,Dallas,\n", string(data))
}

func TestPush_RefusesMasterBranch(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)
	err = r.Push("master")
	assert.Error(t, err)
}
