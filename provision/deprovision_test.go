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

func TestDeprovision_RequiresConfirmation(t *testing.T) {
	repo := newProvisionTestRepo(t)
	sys := records.System{Name: "web01"}
	err := Deprovision(context.Background(), repo, nil, sys, false)
	assert.Error(t, err)
}

func TestDeprovision_DestroysUndefinesAndFreesIP(t *testing.T) {
	repo := newProvisionTestRepo(t)
	require.NoError(t, store.Create(repo.Hypervisors(), records.Hypervisor{Name: "hv1", MgmtIP: "10.0.0.1", VMPath: "/vms", Enabled: true}))
	require.NoError(t, store.Create(repo.HVSystems(), records.HVSystem{System: "web01", Hypervisor: "hv1"}))
	require.NoError(t, repo.IPIndex("10.1.0.0").Save([]records.IPRow{
		{OctalIP: "005", DottedIP: "10.1.0.5", Hostname: "web01", Owner: "scs"},
	}))

	host := remote.NewFakeHost("10.0.0.1")
	sys := records.System{Name: "web01", IP: "10.1.0.5"}

	err := Deprovision(context.Background(), repo, func(string) (remote.Host, error) { return host, nil }, sys, true)
	require.NoError(t, err)

	log := strings.Join(host.ExecLog(), "\n")
	assert.Contains(t, log, "virsh destroy 'web01'")
	assert.Contains(t, log, "virsh undefine 'web01'")
	assert.Contains(t, log, "rm -f /vms/web01.img")

	hvsys, err := store.List(repo.HVSystems())
	require.NoError(t, err)
	assert.Empty(t, hvsys)

	rows, err := repo.IPIndex("10.1.0.0").Load()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Hostname)
	assert.Empty(t, rows[0].Owner)
}
