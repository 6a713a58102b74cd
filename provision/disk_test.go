package provision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/remote"
)

func TestNextDeviceID_IncrementsHighestFound(t *testing.T) {
	xml := `<disk><target dev='vda' bus='virtio'/></disk><disk><target dev='vdb' bus='virtio'/></disk>`
	id, err := NextDeviceID(xml)
	require.NoError(t, err)
	assert.Equal(t, "vdc", id)
}

func TestNextDeviceID_NoExistingDisksStartsAtB(t *testing.T) {
	id, err := NextDeviceID(`<domain></domain>`)
	require.NoError(t, err)
	assert.Equal(t, "vdb", id)
}

func TestNextDeviceID_RejectsPastZ(t *testing.T) {
	_, err := NextDeviceID(`<disk><target dev='vdz' bus='virtio'/></disk>`)
	assert.Error(t, err)
}

func TestAddSecondaryDisk_AttachesAndReturnsDeviceID(t *testing.T) {
	host := remote.NewFakeHost("10.0.0.5")
	host.StubCommand("virsh dumpxml 'web01'", `<disk><target dev='vda' bus='virtio'/></disk>`)

	id, err := AddSecondaryDisk(context.Background(), host, "/vm", "web01", "data", "20G", "", "virtio")
	require.NoError(t, err)
	assert.Equal(t, "vdb", id)

	log := host.ExecLog()
	require.Len(t, log, 3)
	assert.Contains(t, log[1], "qemu-img create")
	assert.Contains(t, log[2], "virsh attach-device")
}
