package resource

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

func cmdWithFlags(name, desc string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("name", name, "")
	cmd.Flags().String("description", desc, "")
	return cmd
}

func TestHandler_CreateShowUpdateDelete(t *testing.T) {
	h := newTestHandler(t)

	require.NoError(t, h.Create(cmdWithFlags("web-vip", "web cluster IP"), []string{"cluster_ip", "10.2.0.10"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	got, err := store.Get(repo.Resources(), "cluster_ip:10.2.0.10")
	require.NoError(t, err)
	assert.Equal(t, records.AssignNone, got.AssignType)
	assert.Equal(t, records.NotAssigned, got.AssignTo)

	require.NoError(t, h.Update(cmdWithFlags("web-vip", "web cluster IP v2"), []string{"cluster_ip", "10.2.0.10"}))
	got, err = store.Get(repo.Resources(), "cluster_ip:10.2.0.10")
	require.NoError(t, err)
	assert.Equal(t, "web cluster IP v2", got.Description)

	require.NoError(t, h.Delete(&cobra.Command{}, []string{"cluster_ip", "10.2.0.10"}))
	_, err = store.Get(repo.Resources(), "cluster_ip:10.2.0.10")
	assert.Error(t, err)
}

func TestHandler_CreateRejectsInvalidType(t *testing.T) {
	h := newTestHandler(t)
	err := h.Create(cmdWithFlags("", ""), []string{"not_a_type", "10.2.0.10"})
	assert.Error(t, err)
}

func TestHandler_AssignThenUnassign(t *testing.T) {
	h := newTestHandler(t)
	require.NoError(t, h.Create(cmdWithFlags("web-vip", ""), []string{"ip", "10.2.0.11"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)

	assignCmd := &cobra.Command{}
	assignCmd.Flags().String("assign-type", "host", "")
	require.NoError(t, h.Assign(assignCmd, []string{"ip", "10.2.0.11", "ord:prod:web01"}))

	got, err := store.Get(repo.Resources(), "ip:10.2.0.11")
	require.NoError(t, err)
	assert.Equal(t, records.AssignHost, got.AssignType)
	assert.Equal(t, "ord:prod:web01", got.AssignTo)

	require.NoError(t, h.Unassign(&cobra.Command{}, []string{"ip", "10.2.0.11"}))
	got, err = store.Get(repo.Resources(), "ip:10.2.0.11")
	require.NoError(t, err)
	assert.Equal(t, records.AssignNone, got.AssignType)
}

func TestHandler_UpdatePreservesExistingAssignment(t *testing.T) {
	h := newTestHandler(t)
	require.NoError(t, h.Create(cmdWithFlags("web-vip", ""), []string{"ip", "10.2.0.12"}))

	assignCmd := &cobra.Command{}
	assignCmd.Flags().String("assign-type", "host", "")
	require.NoError(t, h.Assign(assignCmd, []string{"ip", "10.2.0.12", "ord:prod:web01"}))

	require.NoError(t, h.Update(cmdWithFlags("web-vip-renamed", ""), []string{"ip", "10.2.0.12"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	got, err := store.Get(repo.Resources(), "ip:10.2.0.12")
	require.NoError(t, err)
	assert.Equal(t, records.AssignHost, got.AssignType)
	assert.Equal(t, "ord:prod:web01", got.AssignTo)
	assert.Equal(t, "web-vip-renamed", got.Name)
}
