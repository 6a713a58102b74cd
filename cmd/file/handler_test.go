package file

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

func newTestHandler(t *testing.T) Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfDir = t.TempDir()
	cfg.SharedRepo = false
	require.NoError(t, cfg.EnsureDirs())
	return Handler{BaseHandler: cmdcore.BaseHandler{ConfProvider: func() *config.Config { return cfg }}}
}

func cmdWithFlags(path, ftype, owner, group, octal, target, desc string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("path", path, "")
	cmd.Flags().String("type", ftype, "")
	cmd.Flags().String("owner", owner, "")
	cmd.Flags().String("group", group, "")
	cmd.Flags().String("octal", octal, "")
	cmd.Flags().String("target", target, "")
	cmd.Flags().String("description", desc, "")
	return cmd
}

func TestHandler_CreateShowUpdateDelete(t *testing.T) {
	h := newTestHandler(t)

	require.NoError(t, h.Create(cmdWithFlags("etc/motd", "file", "root", "root", "644", "", "motd"), []string{"motd"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	got, err := store.Get(repo.Files(), "motd")
	require.NoError(t, err)
	assert.Equal(t, "etc/motd", got.Path)

	require.NoError(t, h.Update(cmdWithFlags("etc/motd", "file", "root", "root", "640", "", "motd v2"), []string{"motd"}))
	got, err = store.Get(repo.Files(), "motd")
	require.NoError(t, err)
	assert.Equal(t, "640", got.Octal)

	require.NoError(t, h.Delete(&cobra.Command{}, []string{"motd"}))
	_, err = store.Get(repo.Files(), "motd")
	assert.Error(t, err)
}

func TestHandler_CreateSymlinkRequiresTarget(t *testing.T) {
	h := newTestHandler(t)
	err := h.Create(cmdWithFlags("etc/alt", "symlink", "root", "root", "777", "", ""), []string{"alt"})
	assert.Error(t, err)
}

func TestHandler_MapAndUnmap(t *testing.T) {
	h := newTestHandler(t)
	require.NoError(t, h.Create(cmdWithFlags("etc/motd", "file", "root", "root", "644", "", ""), []string{"motd"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	require.NoError(t, store.Create(repo.Applications(), records.Application{Name: "webapp", Alias: "web"}))

	mapCmd := &cobra.Command{}
	mapCmd.Flags().String("env-flags", "all", "")
	require.NoError(t, h.Map(mapCmd, []string{"motd", "webapp"}))

	got, err := store.Get(repo.FileMaps(), "motd:webapp")
	require.NoError(t, err)
	assert.Equal(t, "all", got.EnvFlags)

	require.NoError(t, h.Unmap(&cobra.Command{}, []string{"motd", "webapp"}))
	_, err = store.Get(repo.FileMaps(), "motd:webapp")
	assert.Error(t, err)
}
