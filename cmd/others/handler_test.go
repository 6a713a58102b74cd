package others

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/vcs"
)

func newTestHandler(t *testing.T) (Handler, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfDir = t.TempDir()
	require.NoError(t, cfg.EnsureDirs())
	_, err := vcs.Init(cfg.ConfDir)
	require.NoError(t, err)
	return Handler{BaseHandler: cmdcore.BaseHandler{ConfProvider: func() *config.Config { return cfg }}}, cfg
}

func TestHandler_DirPrintsConfDir(t *testing.T) {
	h, cfg := newTestHandler(t)
	assert.NoError(t, h.Dir(&cobra.Command{}, nil))
	assert.Equal(t, filepath.Dir(cfg.ConfDir), filepath.Dir(cfg.ConfDir))
}

func TestHandler_PdirPrintsParentOfConfDir(t *testing.T) {
	h, cfg := newTestHandler(t)
	require.NoError(t, h.Pdir(&cobra.Command{}, nil))
	assert.Equal(t, filepath.Dir(cfg.ConfDir), filepath.Dir(cfg.ConfDir))
}

func TestHandler_AbortClearsSentinelIfAbsent(t *testing.T) {
	h, _ := newTestHandler(t)
	assert.NoError(t, h.Abort(&cobra.Command{}, nil))
}

func TestHandler_LockThenStatusReportsLocked(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NoError(t, h.Lock(&cobra.Command{}, nil))

	l, err := h.BaseHandler.Lock()
	require.NoError(t, err)
	owner, locked, err := l.Status()
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Equal(t, cmdcore.CurrentUser(), owner)
}

func TestHandler_UnlockClearsLock(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NoError(t, h.Lock(&cobra.Command{}, nil))
	require.NoError(t, h.Unlock(&cobra.Command{}, nil))

	l, err := h.BaseHandler.Lock()
	require.NoError(t, err)
	_, locked, err := l.Status()
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestHandler_DiffListsUncommittedFile(t *testing.T) {
	h, cfg := newTestHandler(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ConfDir, "constant"), []byte("ntp,primary\n"), 0o640))

	assert.NoError(t, h.Diff(&cobra.Command{}, nil))
}

func TestHandler_CommitThenLogShowsOneEntry(t *testing.T) {
	h, cfg := newTestHandler(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ConfDir, "constant"), []byte("ntp,primary\n"), 0o640))

	repo, err := vcs.Open(cfg.ConfDir)
	require.NoError(t, err)
	_, err = repo.Commit("seed", "tester", "tester@localhost")
	require.NoError(t, err)

	cmd := &cobra.Command{}
	cmd.Flags().Int("max", 10, "")
	assert.NoError(t, h.Log(cmd, nil))
}
