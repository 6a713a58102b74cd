package constant

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
	cfg.SharedRepo = false // exercise create/update/delete without a lock session
	require.NoError(t, cfg.EnsureDirs())
	return Handler{BaseHandler: cmdcore.BaseHandler{ConfProvider: func() *config.Config { return cfg }}}
}

func invoke(h Handler, fn func(cmd *cobra.Command, args []string) error, descFlag string, args []string) error {
	cmd := &cobra.Command{}
	cmd.Flags().String("description", descFlag, "")
	return fn(cmd, args)
}

func TestHandler_CreateShowUpdateDelete(t *testing.T) {
	h := newTestHandler(t)

	require.NoError(t, invoke(h, h.Create, "primary NTP server", []string{"ntp"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	got, err := store.Get(repo.Constants(), "ntp")
	require.NoError(t, err)
	assert.Equal(t, "primary NTP server", got.Description)

	require.NoError(t, invoke(h, h.Update, "secondary NTP server", []string{"ntp"}))
	got, err = store.Get(repo.Constants(), "ntp")
	require.NoError(t, err)
	assert.Equal(t, "secondary NTP server", got.Description)

	require.NoError(t, invoke(h, h.Delete, "", []string{"ntp"}))
	_, err = store.Get(repo.Constants(), "ntp")
	assert.Error(t, err)
}

func TestHandler_CreateRefusesDuplicateKey(t *testing.T) {
	h := newTestHandler(t)
	require.NoError(t, invoke(h, h.Create, "first", []string{"dns"}))
	assert.Error(t, invoke(h, h.Create, "second", []string{"dns"}))
}
