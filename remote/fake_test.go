package remote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeHost_CopyThenFetchRoundTrips(t *testing.T) {
	h := NewFakeHost("10.0.0.5")
	err := h.Copy(context.Background(), "/etc/hosts", []byte("127.0.0.1 localhost\n"), 0o644)
	require.NoError(t, err)

	data, err := h.Fetch(context.Background(), "/etc/hosts")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1 localhost\n", string(data))
}

func TestFakeHost_FetchMissingFileErrors(t *testing.T) {
	h := NewFakeHost("10.0.0.5")
	_, err := h.Fetch(context.Background(), "/nope")
	assert.Error(t, err)
}

func TestFakeHost_ExecLogRecordsCommandsInOrder(t *testing.T) {
	h := NewFakeHost("10.0.0.5")
	h.StubCommand("uname -m", "x86_64")

	out, err := h.Exec(context.Background(), "uname -m")
	require.NoError(t, err)
	assert.Equal(t, "x86_64", out)

	_, _ = h.Exec(context.Background(), "uptime")
	assert.Equal(t, []string{"uname -m", "uptime"}, h.ExecLog())
}
