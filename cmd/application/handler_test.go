package application

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/store"
)

func newTestHandler(t *testing.T) Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfDir = t.TempDir()
	cfg.SharedRepo = false
	require.NoError(t, cfg.EnsureDirs())
	return Handler{BaseHandler: cmdcore.BaseHandler{ConfProvider: func() *config.Config { return cfg }}}
}

func cmdWithFlags(alias, build string, cluster bool) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("alias", alias, "")
	cmd.Flags().String("build", build, "")
	cmd.Flags().Bool("cluster", cluster, "")
	return cmd
}

func TestHandler_CreateShowUpdateDelete(t *testing.T) {
	h := newTestHandler(t)

	require.NoError(t, h.Create(cmdWithFlags("web", "websrv", false), []string{"webapp"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	got, err := store.Get(repo.Applications(), "webapp")
	require.NoError(t, err)
	assert.Equal(t, "web", got.Alias)
	assert.False(t, got.Cluster)

	require.NoError(t, h.Update(cmdWithFlags("web", "websrv", true), []string{"webapp"}))
	got, err = store.Get(repo.Applications(), "webapp")
	require.NoError(t, err)
	assert.True(t, got.Cluster)

	require.NoError(t, h.Delete(&cobra.Command{}, []string{"webapp"}))
	_, err = store.Get(repo.Applications(), "webapp")
	assert.Error(t, err)
}

func TestHandler_CreateRequiresAlias(t *testing.T) {
	h := newTestHandler(t)
	err := h.Create(cmdWithFlags("", "", false), []string{"webapp"})
	assert.Error(t, err)
}
