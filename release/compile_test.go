package release

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
	"github.com/wstrucke/scs/template"
)

func newCompileTestRepo(t *testing.T) *store.Repo {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ConfDir = t.TempDir()
	require.NoError(t, cfg.EnsureDirs())
	return store.New(cfg)
}

func seedMOTD(t *testing.T, repo *store.Repo, env string) records.System {
	t.Helper()
	require.NoError(t, store.Create(repo.Applications(), records.Application{Name: "web", Alias: "web", Build: "std"}))
	require.NoError(t, store.Create(repo.Files(), records.File{
		Name: "motd", Path: "etc/motd", Type: records.FileTypeFile, Owner: "root", Group: "root", Octal: "644",
	}))
	require.NoError(t, store.Create(repo.FileMaps(), records.FileMap{File: "motd", Application: "web", EnvFlags: "all"}))

	tmplDir := filepath.Join(repo.Config().ConfDir, "template")
	require.NoError(t, os.MkdirAll(tmplDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "motd"), []byte("welcome to {% constant.hostname %}\n"), 0o644))

	require.NoError(t, store.Create(repo.ValueConstant(), records.ValuePair{Name: "hostname", Value: "default-host"}))

	return records.System{Name: "web01", Build: "std", IP: "dhcp", Location: "dal", Environment: env}
}

func TestCompile_S1IdempotentCompile(t *testing.T) {
	repo := newCompileTestRepo(t)
	sys := seedMOTD(t, repo, "prod")

	first, err := Compile(repo, sys, template.Strict)
	require.NoError(t, err)
	second, err := Compile(repo, sys, template.Strict)
	require.NoError(t, err)

	firstStat, secondStat := first.Stat(), second.Stat()
	assert.Equal(t, firstStat, secondStat, "compiling the same inputs twice must produce byte-identical scs-stat output")

	firstInstall, err := first.InstallScript("20260101000000", 5)
	require.NoError(t, err)
	secondInstall, err := second.InstallScript("20260101000000", 5)
	require.NoError(t, err)
	assert.Equal(t, firstInstall, secondInstall)
}

func TestCompile_S2FilePatchApply(t *testing.T) {
	repo := newCompileTestRepo(t)
	sys := seedMOTD(t, repo, "staging")
	require.NoError(t, store.Create(repo.ValueConstant(), records.ValuePair{Name: "hostname", Value: "base-host"}))

	patchDir := filepath.Join(repo.Config().ConfDir, "template", "staging")
	require.NoError(t, os.MkdirAll(patchDir, 0o755))
	patch := "--- a/motd\n+++ b/motd\n@@ -1,1 +1,1 @@\n-welcome to {% constant.hostname %}\n+welcome to the staging copy of {% constant.hostname %}\n"
	require.NoError(t, os.WriteFile(filepath.Join(patchDir, "motd"), []byte(patch), 0o644))

	st, err := Compile(repo, sys, template.Strict)
	require.NoError(t, err)
	require.Len(t, st.Files, 1)
	assert.Contains(t, string(st.Files[0].Content), "staging copy of")
}

func TestCompile_UnresolvedConstantInStrictPolicyFails(t *testing.T) {
	repo := newCompileTestRepo(t)
	require.NoError(t, store.Create(repo.Applications(), records.Application{Name: "web", Alias: "web", Build: "std"}))
	require.NoError(t, store.Create(repo.Files(), records.File{
		Name: "motd", Path: "etc/motd", Type: records.FileTypeFile, Owner: "root", Group: "root", Octal: "644",
	}))
	require.NoError(t, store.Create(repo.FileMaps(), records.FileMap{File: "motd", Application: "web", EnvFlags: "all"}))
	tmplDir := filepath.Join(repo.Config().ConfDir, "template")
	require.NoError(t, os.MkdirAll(tmplDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "motd"), []byte("{% constant.missing %}\n"), 0o644))

	sys := records.System{Name: "web01", Build: "std", IP: "dhcp", Location: "dal", Environment: "prod"}
	_, err := Compile(repo, sys, template.Strict)
	assert.Error(t, err)
}
