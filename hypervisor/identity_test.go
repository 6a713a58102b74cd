package hypervisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/remote"
)

func TestGenerateMAC_AvoidsKnownCollisions(t *testing.T) {
	known := map[string]struct{}{}
	mac, err := GenerateMAC(known)
	require.NoError(t, err)
	assert.Regexp(t, `^54:52:00:[0-9a-f]{2}:[0-9a-f]{2}:[0-9a-f]{2}$`, mac)

	known[mac] = struct{}{}
	second, err := GenerateMAC(known)
	require.NoError(t, err)
	assert.NotEqual(t, mac, second)
}

func TestGenerateUUID_AvoidsKnownCollisions(t *testing.T) {
	known := map[string]struct{}{}
	id, err := GenerateUUID(known)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	known[id] = struct{}{}
	second, err := GenerateUUID(known)
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
}

func TestKnownIdentities_ExtractsUUIDsAndMACsFromDumpxml(t *testing.T) {
	host := remote.NewFakeHost("10.0.0.10")
	host.StubCommand("virsh list --name --state-running", "web01\n")
	host.StubCommand("virsh list --all --name", "web01\n")
	host.StubCommand("virsh dumpxml 'web01'", `<domain>
  <uuid>1234abcd-0000-0000-0000-000000000000</uuid>
  <devices>
    <interface type='bridge'>
      <mac address='54:52:00:aa:bb:cc'/>
    </interface>
  </devices>
</domain>`)

	uuids, macs, err := KnownIdentities(context.Background(), []remote.Host{host})
	require.NoError(t, err)
	assert.Contains(t, uuids, "1234abcd-0000-0000-0000-000000000000")
	assert.Contains(t, macs, "54:52:00:aa:bb:cc")
}
