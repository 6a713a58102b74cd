package release

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/wstrucke/scs/store/records"
)

// Stat renders scs-stat: one record per managed path,
// "/<path> <owner> <group> <octal> <type>", symlinks recorded as
// "/<path> -> <target> root root 777 symlink".
func (s *Staging) Stat() []byte {
	var b bytes.Buffer
	for _, e := range s.SortedManaged() {
		if e.Kind == records.FileTypeSymlink {
			fmt.Fprintf(&b, "/%s -> %s root root 777 symlink\n", e.Path, e.Target)
			continue
		}
		fmt.Fprintf(&b, "/%s %s %s %s %s\n", e.Path, e.Owner, e.Group, e.Octal, string(e.Kind))
	}
	return b.Bytes()
}

type auditData struct {
	Entries []auditEntry
}

type auditEntry struct {
	Path, Owner, Group, Octal, Kind, Target string
}

var auditScriptTmpl = template.Must(template.New("scs-audit.sh").Parse(`#!/bin/bash
# generated by scs release compile — verifies managed paths match scs-stat
set -u
FAIL=0
{{range .Entries}}
if [ ! -e "/{{.Path}}" ]; then
  echo "MISSING /{{.Path}}"
  FAIL=1
{{if eq .Kind "symlink"}}elif [ "$(readlink -f "/{{.Path}}")" != "$(readlink -f "{{.Target}}")" ]; then
  echo "SYMLINK MISMATCH /{{.Path}}"
  FAIL=1
{{else}}elif [ "$(stat -c'%a %U:%G' "/{{.Path}}")" != "{{.Octal}} {{.Owner}}:{{.Group}}" ]; then
  echo "PERM MISMATCH /{{.Path}}"
  FAIL=1
{{end}}fi
{{end}}
exit $FAIL
`))

// AuditScript renders scs-audit.sh: for each managed path, checks existence
// and stat against the expected owner/group/mode, exiting non-zero on any
// mismatch.
func (s *Staging) AuditScript() ([]byte, error) {
	data := auditData{}
	for _, e := range s.SortedManaged() {
		data.Entries = append(data.Entries, auditEntry{
			Path: e.Path, Owner: e.Owner, Group: e.Group, Octal: e.Octal,
			Kind: string(e.Kind), Target: e.Target,
		})
	}
	var b bytes.Buffer
	if err := auditScriptTmpl.Execute(&b, data); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

type installData struct {
	Timestamp     string
	BackupPaths   []string
	DeletePaths   []string
	RemoteBackups int
	DownloadCmds  []string
}

var installScriptTmpl = template.Must(template.New("scs-install.sh").Parse(`#!/bin/bash
# generated by scs release compile
set -eu
TS="{{.Timestamp}}"
echo "scs-install starting at $TS"
BACKUP=/var/backups/scs-$TS.tar
mkdir -p /var/backups
tar -cf "$BACKUP" --ignore-failed-read \
{{- range .BackupPaths}}
  "/{{.}}" \
{{- end}}
{{- range .DeletePaths}}
  "/{{.}}" \
{{- end}}
  2>/dev/null || true
{{if gt .RemoteBackups 0}}ls -1t /var/backups/scs-*.tar 2>/dev/null | tail -n +{{.RemoteBackups}} | xargs -r rm -f
{{end}}rsync -crlK ./ /
{{range .DeletePaths}}rm -rf "/{{.}}"
{{end}}
{{range .DownloadCmds}}curl -fsSL -o /dev/null "{{.}}" || true
{{end}}
rm -- "$0"
`))

// InstallScript renders scs-install.sh: backs up existing copies of every
// path about to be written (plus delete paths), prunes old backups to at
// most RemoteBackups (0 disables pruning), rsyncs the staged tree to /, runs
// post-commands, then removes itself. ts is a caller-supplied timestamp so
// compilation stays deterministic (see the idempotent-compile property).
func (s *Staging) InstallScript(ts string, remoteBackups int) ([]byte, error) {
	data := installData{Timestamp: ts, RemoteBackups: remoteBackups, DownloadCmds: s.DownloadCmds, DeletePaths: s.DeleteCmds}
	for _, e := range s.SortedManaged() {
		data.BackupPaths = append(data.BackupPaths, e.Path)
	}
	var b bytes.Buffer
	if err := installScriptTmpl.Execute(&b, data); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
