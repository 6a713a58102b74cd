package provision

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/remote"
)

func TestRewriteInterface_ReplacesMatchingTargetAndSource(t *testing.T) {
	host := remote.NewFakeHost("10.0.0.5")
	xml := `<domain>
  <devices>
    <interface type='bridge'>
      <source bridge='br0'/>
      <target dev='br0'/>
    </interface>
  </devices>
</domain>`
	require.NoError(t, host.Copy(context.Background(), "/etc/libvirt/qemu/web01.xml", []byte(xml), 0o644))

	err := rewriteInterface(context.Background(), host, "web01", "br0", "br1")
	require.NoError(t, err)

	updated, err := host.Fetch(context.Background(), "/etc/libvirt/qemu/web01.xml")
	require.NoError(t, err)
	assert.Contains(t, string(updated), "br1")
	assert.NotContains(t, string(updated), "dev=\"br0\"")

	log := host.ExecLog()
	assert.Contains(t, strings.Join(log, "\n"), "virsh define")
}

func TestFlushIdentity_RemovesHostKeysAndUdevRules(t *testing.T) {
	host := remote.NewFakeHost("10.0.0.6")
	require.NoError(t, flushIdentity(context.Background(), host))
	log := host.ExecLog()
	require.Len(t, log, 1)
	assert.Contains(t, log[0], "ssh_host_")
	assert.Contains(t, log[0], "70-persistent-net.rules")
}
