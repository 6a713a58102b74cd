package location

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

func cmdWithFlags(name, desc string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("name", name, "")
	cmd.Flags().String("description", desc, "")
	return cmd
}

func TestHandler_CreateShowUpdateDelete(t *testing.T) {
	h := newTestHandler(t)

	require.NoError(t, h.Create(cmdWithFlags("Chicago", "primary DC"), []string{"ord"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	got, err := store.Get(repo.Locations(), "ord")
	require.NoError(t, err)
	assert.Equal(t, "Chicago", got.Name)

	require.NoError(t, h.Update(cmdWithFlags("Chicago", "primary site"), []string{"ord"}))
	got, err = store.Get(repo.Locations(), "ord")
	require.NoError(t, err)
	assert.Equal(t, "primary site", got.Description)

	require.NoError(t, h.Delete(&cobra.Command{}, []string{"ord"}))
	_, err = store.Get(repo.Locations(), "ord")
	assert.Error(t, err)
}

func TestHandler_CreateRejectsNonThreeCharCode(t *testing.T) {
	h := newTestHandler(t)
	assert.Error(t, h.Create(cmdWithFlags("Chicago", ""), []string{"chicago"}))
}
