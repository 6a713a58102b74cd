package release

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"strconv"
	"time"

	"github.com/cavaliergopher/cpio"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/store/records"
)

// payloadSentinel marks the boundary between the shell wrapper header and
// the trailing gzipped cpio-newc blob, per spec §6's self-extracting
// archive format.
const payloadSentinel = "__PAYLOAD__"

// Archive writes the staging tree, scs-stat, scs-audit.sh, and
// scs-install.sh as a cpio-newc archive and gzips it. cavaliergopher/cpio is
// the pack's only cpio-newc writer, wired because spec §6 requires that
// literal wire format.
func Archive(s *Staging, installScript, auditScript []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	cw := cpio.NewWriter(gz)

	for _, e := range s.SortedManaged() {
		if err := writeEntry(cw, e); err != nil {
			return nil, err
		}
	}
	if err := writeRegular(cw, "scs-stat", s.Stat()); err != nil {
		return nil, err
	}
	if err := writeRegular(cw, "scs-audit.sh", auditScript); err != nil {
		return nil, err
	}
	if err := writeRegular(cw, "scs-install.sh", installScript); err != nil {
		return nil, err
	}
	if s.StaticRoutes != nil {
		if err := writeRegular(cw, "etc/sysconfig/static-routes", s.StaticRoutes); err != nil {
			return nil, err
		}
	}

	if err := cw.Close(); err != nil {
		return nil, errs.Templatef("close cpio writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, errs.Templatef("close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(cw *cpio.Writer, e Entry) error {
	mode, err := octalMode(e.Octal, e.Kind)
	if err != nil {
		return err
	}
	hdr := &cpio.Header{Name: e.Path, Mode: mode, ModTime: time.Unix(0, 0)}

	switch e.Kind {
	case records.FileTypeDirectory:
		hdr.Mode |= cpio.TypeDir
	case records.FileTypeSymlink:
		hdr.Mode |= cpio.TypeSymlink
		hdr.Linkname = e.Target
		hdr.Size = int64(len(e.Target))
	default:
		hdr.Mode |= cpio.TypeReg
		hdr.Size = int64(len(e.Content))
	}

	if err := cw.WriteHeader(hdr); err != nil {
		return errs.Templatef("write cpio header %s: %w", e.Path, err)
	}
	if hdr.Mode&cpio.TypeSymlink != 0 {
		_, err = cw.Write([]byte(e.Target))
	} else if e.Kind != records.FileTypeDirectory {
		_, err = cw.Write(e.Content)
	}
	if err != nil {
		return errs.Templatef("write cpio body %s: %w", e.Path, err)
	}
	return nil
}

func writeRegular(cw *cpio.Writer, name string, content []byte) error {
	hdr := &cpio.Header{Name: name, Mode: cpio.FileMode(0o755) | cpio.TypeReg, Size: int64(len(content)), ModTime: time.Unix(0, 0)} //nolint:mnd
	if err := cw.WriteHeader(hdr); err != nil {
		return errs.Templatef("write cpio header %s: %w", name, err)
	}
	if _, err := cw.Write(content); err != nil {
		return errs.Templatef("write cpio body %s: %w", name, err)
	}
	return nil
}

func octalMode(octal string, kind records.FileType) (cpio.FileMode, error) {
	if octal == "" {
		if kind == records.FileTypeSymlink {
			return cpio.FileMode(0o777), nil //nolint:mnd
		}
		return cpio.FileMode(0o644), nil //nolint:mnd
	}
	n, err := strconv.ParseInt(octal, 8, 32) //nolint:mnd
	if err != nil {
		return 0, errs.Validationf("invalid octal mode %q: %w", octal, err)
	}
	return cpio.FileMode(n), nil
}

// Wrap prepends the self-extracting shell header to the gzipped cpio
// payload: a header supporting --audit/--install/--extract <dir>, a line
// containing exactly __PAYLOAD__, then the payload bytes. ts is the
// caller-supplied release timestamp used to name the default extract
// directory, keeping archive assembly free of time.Now() so two compiles of
// the same inputs with the same ts produce byte-identical output.
func Wrap(payload []byte, ts string) []byte {
	header := fmt.Sprintf(`#!/bin/bash
# scs release archive
set -eu
MODE="${1:-}"
DEST="${2:-/root/scs-release-%s}"
SELF="$(readlink -f "$0")"
LINE=$(grep -an -m1 '^%s$' "$SELF" | cut -d: -f1)
mkdir -p "$DEST"
tail -n +$((LINE+1)) "$SELF" | gunzip -c | (cd "$DEST" && cpio -idm --quiet)
case "$MODE" in
  --install) (cd "$DEST" && bash scs-install.sh) ;;
  --audit) (cd "$DEST" && bash scs-audit.sh) ;;
  --extract) ;;
  *) echo "usage: $0 [--audit|--install|--extract <dir>]" >&2; exit 2 ;;
esac
exit $?
%s
`, ts, payloadSentinel, payloadSentinel)

	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, []byte(header)...)
	out = append(out, payload...)
	return out
}
