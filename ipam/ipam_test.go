package ipam

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/errs"
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

func testNetwork() records.Network {
	return records.Network{
		Location: "dal", Zone: "prod", Alias: "web",
		NetworkAddr: "10.0.0.0", Mask: "255.255.255.0", Gateway: "10.0.0.1",
	}
}

func TestIndexFiles_SmallerThanSlash24RoundsUp(t *testing.T) {
	prefix := netip.MustParsePrefix("10.0.0.64/26")
	assert.Equal(t, []string{"10.0.0.0"}, IndexFiles(prefix))
}

func TestIndexFiles_LargerThanSlash24Splits(t *testing.T) {
	prefix := netip.MustParsePrefix("10.0.0.0/23")
	assert.Equal(t, []string{"10.0.0.0", "10.0.1.0"}, IndexFiles(prefix))
}

func TestAddRangeThenAssign_S3IPAllocationRace(t *testing.T) {
	repo := newTestRepo(t)
	n := testNetwork()
	require.NoError(t, store.Create(repo.Networks(), n))

	start := netip.MustParseAddr("10.0.0.1")
	end := netip.MustParseAddr("10.0.0.10")
	require.NoError(t, AddRange(repo, n, start, end))

	available, err := ListAvailable(repo, n)
	require.NoError(t, err)
	assert.Len(t, available, 10)

	noProbe := func(string) bool { return false }
	require.NoError(t, Assign(repo, "10.0.0.5", "sys1", false, "first host", "alice", noProbe))

	err = Assign(repo, "10.0.0.5", "sys2", false, "", "bob", noProbe)
	assert.ErrorIs(t, err, errs.Conflict)

	available, err = ListAvailable(repo, n)
	require.NoError(t, err)
	assert.Len(t, available, 9)
}

func TestAssign_RejectsUnmanagedAddress(t *testing.T) {
	repo := newTestRepo(t)
	err := Assign(repo, "10.0.0.5", "sys1", false, "", "alice", nil)
	assert.ErrorIs(t, err, errs.MissingReference)
}

func TestAssign_BusyWhenProbeRespondsAndUnassigned(t *testing.T) {
	repo := newTestRepo(t)
	n := testNetwork()
	require.NoError(t, store.Create(repo.Networks(), n))
	start := netip.MustParseAddr("10.0.0.5")
	require.NoError(t, AddRange(repo, n, start, start))

	alwaysUp := func(string) bool { return true }
	err := Assign(repo, "10.0.0.5", "sys1", false, "", "alice", alwaysUp)
	assert.ErrorIs(t, err, errs.Conflict)

	available, err := ListAvailable(repo, n)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestUnassign_ClearsHostnameKeepsReservation(t *testing.T) {
	repo := newTestRepo(t)
	n := testNetwork()
	require.NoError(t, store.Create(repo.Networks(), n))
	addr := netip.MustParseAddr("10.0.0.9")
	require.NoError(t, AddRange(repo, n, addr, addr))
	require.NoError(t, Assign(repo, "10.0.0.9", "sys1", false, "", "alice", func(string) bool { return false }))

	require.NoError(t, Unassign(repo, "10.0.0.9"))

	rows, err := repo.IPIndex("10.0.0.0").Load()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Hostname)
	assert.False(t, rows[0].Reserved)
}

func TestLocate_FindsContainingNetwork(t *testing.T) {
	repo := newTestRepo(t)
	n := testNetwork()
	require.NoError(t, store.Create(repo.Networks(), n))

	found, err := Locate(repo, "10.0.0.42")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, n.Key(), found[0].Key())

	found, err = Locate(repo, "192.168.1.1")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestAddRange_RefusesNetworkAndBroadcast(t *testing.T) {
	repo := newTestRepo(t)
	n := testNetwork()
	require.NoError(t, store.Create(repo.Networks(), n))
	require.NoError(t, AddRange(repo, n,
		netip.MustParseAddr("10.0.0.0"), netip.MustParseAddr("10.0.0.255")))

	rows, err := repo.IPIndex("10.0.0.0").Load()
	require.NoError(t, err)
	for _, r := range rows {
		assert.NotEqual(t, "10.0.0.0", r.DottedIP)
		assert.NotEqual(t, "10.0.0.255", r.DottedIP)
	}
	assert.Len(t, rows, 254) //nolint:mnd
}

func TestReserveRange_SetsReservedOnExistingAndNewRows(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, ReserveRange(repo, netip.MustParseAddr("10.0.0.20"), netip.MustParseAddr("10.0.0.22")))

	rows, err := repo.IPIndex("10.0.0.0").Load()
	require.NoError(t, err)
	assert.Len(t, rows, 3) //nolint:mnd
	for _, r := range rows {
		assert.True(t, r.Reserved)
	}
}
