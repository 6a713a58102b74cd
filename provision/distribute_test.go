package provision

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/remote"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

func TestDistribute_RefusesNonBackingSystem(t *testing.T) {
	repo := newProvisionTestRepo(t)
	sys := records.System{Name: "web01", BackingImage: false}
	err := Distribute(context.Background(), repo, nil, sys, "dal-prod-build", "dal-prod-final")
	assert.Error(t, err)
}

func TestDistribute_CopiesToEveryOtherEligibleHypervisor(t *testing.T) {
	repo := newProvisionTestRepo(t)
	require.NoError(t, store.Create(repo.Hypervisors(), records.Hypervisor{Name: "hv1", MgmtIP: "10.0.0.1", Location: "dal", VMPath: "/vms", Enabled: true}))
	require.NoError(t, store.Create(repo.Hypervisors(), records.Hypervisor{Name: "hv2", MgmtIP: "10.0.0.2", Location: "dal", VMPath: "/vms", Enabled: true}))
	require.NoError(t, store.Create(repo.HVSystems(), records.HVSystem{System: "web-backing", Hypervisor: "hv1"}))
	require.NoError(t, store.Create(repo.HVEnvironments(), records.HVEnvironment{Hypervisor: "hv1", Environment: "prod"}))
	require.NoError(t, store.Create(repo.HVEnvironments(), records.HVEnvironment{Hypervisor: "hv2", Environment: "prod"}))
	require.NoError(t, store.Create(repo.HVNetworks(), records.HVNetwork{Hypervisor: "hv1", NetworkKey: "dal-prod-build", Interface: "br0"}))
	require.NoError(t, store.Create(repo.HVNetworks(), records.HVNetwork{Hypervisor: "hv1", NetworkKey: "dal-prod-final", Interface: "br0"}))
	require.NoError(t, store.Create(repo.HVNetworks(), records.HVNetwork{Hypervisor: "hv2", NetworkKey: "dal-prod-build", Interface: "br0"}))
	require.NoError(t, store.Create(repo.HVNetworks(), records.HVNetwork{Hypervisor: "hv2", NetworkKey: "dal-prod-final", Interface: "br0"}))

	hosts := map[string]*remote.FakeHost{
		"10.0.0.1": remote.NewFakeHost("10.0.0.1"),
		"10.0.0.2": remote.NewFakeHost("10.0.0.2"),
	}
	hosts["10.0.0.1"].StubCommand("ls -1 '/vms'/backing_images/ 2>/dev/null | grep -E '^web-backing(\\..+)?\\.img$'", "web-backing.img\n")

	dial := func(addr string) (remote.Host, error) { return hosts[addr], nil }

	sys := records.System{Name: "web-backing", Location: "dal", Environment: "prod", BackingImage: true}
	err := Distribute(context.Background(), repo, dial, sys, "dal-prod-build", "dal-prod-final")
	require.NoError(t, err)

	destLog := strings.Join(hosts["10.0.0.2"].ExecLog(), "\n")
	assert.Contains(t, destLog, "mkdir -p")
	assert.Contains(t, destLog, "chattr +i")

	srcLog := strings.Join(hosts["10.0.0.1"].ExecLog(), "\n")
	assert.Contains(t, srcLog, "scp")
}
