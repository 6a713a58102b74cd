package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/store"
)

func newTestHandler(t *testing.T) (Handler, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfDir = t.TempDir()
	cfg.SharedRepo = false
	require.NoError(t, cfg.EnsureDirs())
	return Handler{BaseHandler: cmdcore.BaseHandler{ConfProvider: func() *config.Config { return cfg }}}, cfg
}

func cmdWithFlags(flags map[string]any) *cobra.Command {
	cmd := &cobra.Command{}
	for name, v := range flags {
		switch val := v.(type) {
		case string:
			cmd.Flags().String(name, val, "")
		case bool:
			cmd.Flags().Bool(name, val, "")
		}
	}
	return cmd
}

func TestHandler_CreateShowLockUnlock(t *testing.T) {
	h, _ := newTestHandler(t)

	require.NoError(t, h.Create(cmdWithFlags(map[string]any{
		"build": "web", "ip": "dhcp", "location": "ord", "environment": "prod",
		"virtual": true, "backing-image": false, "overlay": "",
	}), []string{"web01"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	sys, err := store.Get(repo.Systems(), "web01")
	require.NoError(t, err)
	assert.False(t, sys.Locked)

	require.NoError(t, h.Lock(&cobra.Command{}, []string{"web01"}))
	sys, err = store.Get(repo.Systems(), "web01")
	require.NoError(t, err)
	assert.True(t, sys.Locked)

	require.NoError(t, h.Unlock(&cobra.Command{}, []string{"web01"}))
	sys, err = store.Get(repo.Systems(), "web01")
	require.NoError(t, err)
	assert.False(t, sys.Locked)
}

func TestHandler_UpdatePreservesLockedAndBuildDate(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NoError(t, h.Create(cmdWithFlags(map[string]any{
		"build": "web", "ip": "dhcp", "location": "ord", "environment": "prod",
		"virtual": true, "backing-image": false, "overlay": "",
	}), []string{"web01"}))
	require.NoError(t, h.Lock(&cobra.Command{}, []string{"web01"}))

	require.NoError(t, h.Update(cmdWithFlags(map[string]any{
		"build": "web2", "ip": "dhcp", "location": "ord", "environment": "prod",
		"virtual": true, "backing-image": false, "overlay": "",
	}), []string{"web01"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	sys, err := store.Get(repo.Systems(), "web01")
	require.NoError(t, err)
	assert.True(t, sys.Locked)
	assert.Equal(t, "web2", sys.Build)
}

func TestHandler_ProvisionStatus_FiltersBySystem(t *testing.T) {
	h, cfg := newTestHandler(t)

	log := `{"level":"info","pid":1,"user":"root","host":"ctl","system":"web01","time":"2026-01-01T00:00:00Z","message":"phase2 start"}
{"level":"info","pid":1,"user":"root","host":"ctl","time":"2026-01-01T00:01:00Z","message":"waiting for ssh"}
`
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ConfDir, ".scs_background.log"), []byte(log), 0o640))

	require.NoError(t, h.ProvisionStatus(&cobra.Command{}, []string{"web01"}))
}

func TestHandler_ProvisionStatus_NoEntriesIsNotAnError(t *testing.T) {
	h, cfg := newTestHandler(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ConfDir, ".scs_background.log"), []byte(""), 0o640))
	assert.NoError(t, h.ProvisionStatus(&cobra.Command{}, []string{"web01"}))
}
