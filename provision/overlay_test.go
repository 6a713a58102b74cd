package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

func newProvisionTestRepo(t *testing.T) *store.Repo {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfDir = t.TempDir()
	require.NoError(t, cfg.EnsureDirs())
	return store.New(cfg)
}

func TestResolveAutoOverlay_PicksMostRecentExistingBacking(t *testing.T) {
	repo := newProvisionTestRepo(t)
	require.NoError(t, store.Create(repo.Builds(), records.Build{Name: "web", OS: "rhel9", Arch: "x86_64", DiskGB: 20, RAMMB: 2048}))
	require.NoError(t, store.Create(repo.Systems(), records.System{
		Name: "web-backing-old", Build: "web", IP: "dhcp", Location: "dal", Environment: "prod",
		Virtual: true, BackingImage: true, BuildDateUnix: 100,
	}))
	require.NoError(t, store.Create(repo.Systems(), records.System{
		Name: "web-backing-new", Build: "web", IP: "dhcp", Location: "dal", Environment: "prod",
		Virtual: true, BackingImage: true, BuildDateUnix: 200,
	}))

	sys := records.System{Name: "web01", Build: "web", IP: "dhcp", Location: "dal", Environment: "prod", Virtual: true, Overlay: "auto"}
	backing, err := ResolveAutoOverlay(nil, repo, nil, sys, "")
	require.NoError(t, err)
	assert.Equal(t, "web-backing-new", backing.Name)
}

func TestResolveAutoOverlay_ExcludesOwnAncestorChain(t *testing.T) {
	repo := newProvisionTestRepo(t)
	require.NoError(t, store.Create(repo.Builds(), records.Build{Name: "web", OS: "rhel9", Arch: "x86_64", DiskGB: 20, RAMMB: 2048}))
	require.NoError(t, store.Create(repo.Systems(), records.System{
		Name: "web01", Build: "web", IP: "dhcp", Location: "dal", Environment: "prod",
		Virtual: true, BackingImage: true, BuildDateUnix: 100,
	}))

	sys := records.System{Name: "web01", Build: "web", IP: "dhcp", Location: "dal", Environment: "prod", Virtual: true, Overlay: "auto"}
	_, err := ResolveAutoOverlay(nil, repo, nil, sys, "")
	assert.Error(t, err, "a system cannot pick itself as its own backing image")
}

func TestResolveAutoOverlay_NoCandidateAndNoParentBuildFails(t *testing.T) {
	repo := newProvisionTestRepo(t)
	require.NoError(t, store.Create(repo.Builds(), records.Build{Name: "web", OS: "rhel9", Arch: "x86_64", DiskGB: 20, RAMMB: 2048}))

	sys := records.System{Name: "web01", Build: "web", IP: "dhcp", Location: "dal", Environment: "prod", Virtual: true, Overlay: "auto"}
	_, err := ResolveAutoOverlay(nil, repo, nil, sys, "")
	assert.Error(t, err)
}
