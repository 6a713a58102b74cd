package hypervisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/remote"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

func newTestRepo(t *testing.T) *store.Repo {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfDir = t.TempDir()
	require.NoError(t, cfg.EnsureDirs())
	return store.New(cfg)
}

func TestPollResources_ParsesDfAndFreeOutput(t *testing.T) {
	host := remote.NewFakeHost("10.0.0.5")
	host.StubCommand("df -Pm '/vm/images' | tail -n1", "/dev/sda1 102400 51200 51200 50% /vm/images\n")
	host.StubCommand("free -m | awk '/^Mem:/ {print $7}'", "2048\n")

	res, err := PollResources(context.Background(), host, "/vm/images")
	require.NoError(t, err)
	assert.Equal(t, Resources{FreeDiskMB: 51200, FreeMemMB: 2048}, res)
}

func TestRank_PicksHigherFreeMemoryByMoreThanFivePercent(t *testing.T) {
	candidates := []Candidate{
		{Hypervisor: records.Hypervisor{Name: "hv1"}, Resources: Resources{FreeMemMB: 1000}},
		{Hypervisor: records.Hypervisor{Name: "hv2"}, Resources: Resources{FreeMemMB: 1100}},
		{Hypervisor: records.Hypervisor{Name: "hv3"}, Resources: Resources{FreeMemMB: 1102}}, // < 5% over hv2, should not win
	}
	winner, err := Rank(candidates, "")
	require.NoError(t, err)
	assert.Equal(t, "hv2", winner.Name)
}

func TestRank_ExcludesBelowMinimums(t *testing.T) {
	candidates := []Candidate{
		{Hypervisor: records.Hypervisor{Name: "tiny", MinFreeMemMB: 4096}, Resources: Resources{FreeMemMB: 1000}},
		{Hypervisor: records.Hypervisor{Name: "big", MinFreeMemMB: 512}, Resources: Resources{FreeMemMB: 2048}},
	}
	winner, err := Rank(candidates, "")
	require.NoError(t, err)
	assert.Equal(t, "big", winner.Name)
}

func TestRank_AvoidDroppedWhenAllCandidatesMatch(t *testing.T) {
	candidates := []Candidate{
		{Hypervisor: records.Hypervisor{Name: "hv1"}, Resources: Resources{FreeMemMB: 1000}, Running: []string{"web01-test"}},
		{Hypervisor: records.Hypervisor{Name: "hv2"}, Resources: Resources{FreeMemMB: 2000}, Running: []string{"web02-test"}},
	}
	winner, err := Rank(candidates, "test")
	require.NoError(t, err)
	assert.Equal(t, "hv2", winner.Name, "avoidance must be dropped when every candidate matches")
}

func TestRank_AvoidAppliedWhenSomeCandidatesDontMatch(t *testing.T) {
	candidates := []Candidate{
		{Hypervisor: records.Hypervisor{Name: "hv1"}, Resources: Resources{FreeMemMB: 5000}, Running: []string{"web01-test"}},
		{Hypervisor: records.Hypervisor{Name: "hv2"}, Resources: Resources{FreeMemMB: 1000}, Running: []string{"other"}},
	}
	winner, err := Rank(candidates, "test")
	require.NoError(t, err)
	assert.Equal(t, "hv2", winner.Name)
}

func TestCandidatesFor_FiltersByEnvAndBothNetworks(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, store.Create(repo.Hypervisors(), records.Hypervisor{Name: "hv1", Location: "dal", VMPath: "/vm", Enabled: true}))
	require.NoError(t, store.Create(repo.Hypervisors(), records.Hypervisor{Name: "hv2", Location: "dal", VMPath: "/vm", Enabled: true}))
	require.NoError(t, store.Create(repo.HVEnvironments(), records.HVEnvironment{Environment: "prod", Hypervisor: "hv1"}))
	require.NoError(t, store.Create(repo.HVEnvironments(), records.HVEnvironment{Environment: "prod", Hypervisor: "hv2"}))
	require.NoError(t, store.Create(repo.HVNetworks(), records.HVNetwork{NetworkKey: "dal-prod-build", Hypervisor: "hv1", Interface: "eth0"}))
	require.NoError(t, store.Create(repo.HVNetworks(), records.HVNetwork{NetworkKey: "dal-prod-final", Hypervisor: "hv1", Interface: "eth1"}))
	require.NoError(t, store.Create(repo.HVNetworks(), records.HVNetwork{NetworkKey: "dal-prod-build", Hypervisor: "hv2", Interface: "eth0"}))

	out, err := CandidatesFor(repo, "dal", "prod", "dal-prod-build", "dal-prod-final")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "hv1", out[0].Name)
}

func TestLocate_NoSuchDomainIsNotFoundNotError(t *testing.T) {
	host := remote.NewFakeHost("10.0.0.5")
	host.StubCommand("virsh domstate 'ghost'", "")

	found, _, err := Locate(context.Background(), host, "ghost")
	require.NoError(t, err)
	assert.False(t, found)
}
