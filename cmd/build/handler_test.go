package build

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

func newTestHandler(t *testing.T) (Handler, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfDir = t.TempDir()
	cfg.SharedRepo = false
	require.NoError(t, cfg.EnsureDirs())
	return Handler{BaseHandler: cmdcore.BaseHandler{ConfProvider: func() *config.Config { return cfg }}}, cfg
}

func cmdWithFlags(role, desc, osName, arch string, diskGB, ramMB int, parent string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("role", role, "")
	cmd.Flags().String("description", desc, "")
	cmd.Flags().String("os", osName, "")
	cmd.Flags().String("arch", arch, "")
	cmd.Flags().Int("disk-gb", diskGB, "")
	cmd.Flags().Int("ram-mb", ramMB, "")
	cmd.Flags().String("parent", parent, "")
	return cmd
}

func TestHandler_CreateShowUpdateDelete(t *testing.T) {
	h, _ := newTestHandler(t)

	require.NoError(t, h.Create(cmdWithFlags("web", "web role", "rhel9", "x86_64", 20, 4096, ""), []string{"web"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	got, err := store.Get(repo.Builds(), "web")
	require.NoError(t, err)
	assert.Equal(t, 20, got.DiskGB)

	require.NoError(t, h.Update(cmdWithFlags("web", "web role v2", "rhel9", "x86_64", 40, 4096, ""), []string{"web"}))
	got, err = store.Get(repo.Builds(), "web")
	require.NoError(t, err)
	assert.Equal(t, 40, got.DiskGB)

	require.NoError(t, h.Delete(&cobra.Command{}, []string{"web"}))
	_, err = store.Get(repo.Builds(), "web")
	assert.Error(t, err)
}

func TestHandler_DeleteRefusesWhenSystemReferencesIt(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NoError(t, h.Create(cmdWithFlags("web", "", "rhel9", "x86_64", 0, 0, ""), []string{"web"}))

	_, repo, err := h.Init(&cobra.Command{})
	require.NoError(t, err)
	require.NoError(t, store.Create(repo.Systems(), records.System{Name: "web01", Build: "web", IP: "dhcp"}))

	err = h.Delete(&cobra.Command{}, []string{"web"})
	assert.Error(t, err)
}
