package provision

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/remote"
)

func TestToBacking_MovesDiskAndUndefinesDomain(t *testing.T) {
	host := remote.NewFakeHost("10.0.0.10")
	require.NoError(t, host.Copy(context.Background(), "/vms/web01.img", []byte("fake-disk"), 0o644))

	err := ToBacking(context.Background(), host, "/vms", "web01")
	require.NoError(t, err)

	log := strings.Join(host.ExecLog(), "\n")
	assert.Contains(t, log, "mv '/vms/web01.img' '/vms/backing_images/web01.img'")
	assert.Contains(t, log, "chattr +i '/vms/backing_images/web01.img'")
	assert.Contains(t, log, "virsh undefine 'web01'")
}

func TestFromBacking_RefusesWhenStillReferenced(t *testing.T) {
	host := remote.NewFakeHost("10.0.0.11")
	host.StubCommand("grep -l '/vms/backing_images/web01.img' /etc/libvirt/qemu/*.xml 2>/dev/null", "/etc/libvirt/qemu/web02.xml\n")

	err := FromBacking(context.Background(), host, "/vms", "web01", nil, nil)
	assert.Error(t, err)
}

func TestFromBacking_MovesDiskWhenUnreferenced(t *testing.T) {
	host := remote.NewFakeHost("10.0.0.12")

	err := FromBacking(context.Background(), host, "/vms", "web01", nil, nil)
	require.NoError(t, err)

	log := strings.Join(host.ExecLog(), "\n")
	assert.Contains(t, log, "chattr -i '/vms/backing_images/web01.img'")
	assert.Contains(t, log, "mv '/vms/backing_images/web01.img' '/vms/web01.img'")
}
