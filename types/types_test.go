package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_AlgorithmAndHex(t *testing.T) {
	d := NewDigest("md5", "deadbeef")
	assert.Equal(t, "md5", d.Algorithm())
	assert.Equal(t, "deadbeef", d.Hex())
	assert.Equal(t, "md5:deadbeef", d.String())
}

func TestDigest_MalformedHasNoAlgorithm(t *testing.T) {
	d := Digest("deadbeef")
	assert.Empty(t, d.Algorithm())
	assert.Equal(t, "deadbeef", d.Hex())
}

func TestParseIPv4_RejectsNonIPv4(t *testing.T) {
	_, err := ParseIPv4("::1")
	require.Error(t, err)
}

func TestParseIPv4_AcceptsDottedQuad(t *testing.T) {
	ip, err := ParseIPv4("10.1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", ip.String())
}

func TestParseCIDR_MasksHostBits(t *testing.T) {
	c, err := ParseCIDR("10.1.0.5/24")
	require.NoError(t, err)
	assert.Equal(t, "10.1.0.0/24", c.String())
	assert.Equal(t, 24, c.Bits())
}

func TestCIDR_Contains(t *testing.T) {
	c, err := ParseCIDR("10.1.0.0/24")
	require.NoError(t, err)
	inside, err := ParseIPv4("10.1.0.42")
	require.NoError(t, err)
	outside, err := ParseIPv4("10.2.0.42")
	require.NoError(t, err)
	assert.True(t, c.Contains(inside))
	assert.False(t, c.Contains(outside))
}

func TestParseCIDR_RejectsIPv6(t *testing.T) {
	_, err := ParseCIDR("fe80::/64")
	require.Error(t, err)
}
