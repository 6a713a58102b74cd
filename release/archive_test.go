package release

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/cavaliergopher/cpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/store/records"
)

func testStaging() *Staging {
	return &Staging{
		System: records.System{Name: "web01"},
		Files: []Entry{
			{Path: "etc/motd", Owner: "root", Group: "root", Octal: "644", Kind: records.FileTypeFile, Content: []byte("hello\n")},
			{Path: "var/www", Owner: "root", Group: "root", Octal: "755", Kind: records.FileTypeDirectory},
			{Path: "etc/current", Owner: "root", Group: "root", Kind: records.FileTypeSymlink, Target: "/etc/releases/v1"},
		},
	}
}

func TestArchive_ContainsEveryManagedEntryPlusGeneratedArtifacts(t *testing.T) {
	st := testStaging()
	install, err := st.InstallScript("20260101000000", 5)
	require.NoError(t, err)
	audit, err := st.AuditScript()
	require.NoError(t, err)

	payload, err := Archive(st, install, audit)
	require.NoError(t, err)

	names := readCpioNames(t, payload)
	assert.Contains(t, names, "etc/motd")
	assert.Contains(t, names, "var/www")
	assert.Contains(t, names, "etc/current")
	assert.Contains(t, names, "scs-stat")
	assert.Contains(t, names, "scs-audit.sh")
	assert.Contains(t, names, "scs-install.sh")
}

func TestArchive_IdempotentAcrossCompiles(t *testing.T) {
	st := testStaging()
	install, err := st.InstallScript("20260101000000", 5)
	require.NoError(t, err)
	audit, err := st.AuditScript()
	require.NoError(t, err)

	first, err := Archive(st, install, audit)
	require.NoError(t, err)
	second, err := Archive(st, install, audit)
	require.NoError(t, err)

	assert.Equal(t, first, second, "compiling the same staged tree twice must produce byte-identical archives")
}

func TestWrap_PlacesSentinelBeforePayload(t *testing.T) {
	payload := []byte("not actually gzip, just a marker")
	wrapped := Wrap(payload, "20260101000000")

	idx := bytes.Index(wrapped, []byte(payloadSentinel+"\n"))
	require.NotEqual(t, -1, idx)
	assert.Equal(t, payload, wrapped[idx+len(payloadSentinel)+1:])
	assert.Contains(t, string(wrapped[:idx]), "--install")
	assert.Contains(t, string(wrapped[:idx]), "--audit")
	assert.Contains(t, string(wrapped[:idx]), "scs-release-20260101000000")
}

func readCpioNames(t *testing.T, payload []byte) []string {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer gz.Close()

	r := cpio.NewReader(gz)
	var names []string
	for {
		hdr, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	return names
}
