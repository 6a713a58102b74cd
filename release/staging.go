// Package release implements the Release Compiler (Component F): per-system
// file staging, scs-stat/scs-audit.sh/scs-install.sh generation, and
// self-extracting cpio-newc archive assembly.
package release

import (
	"sort"

	"github.com/wstrucke/scs/store/records"
)

// Entry is one managed path staged for a release.
type Entry struct {
	// Path is relative to the staging tree root, no leading slash.
	Path   string
	Owner  string
	Group  string
	Octal  string
	Kind   records.FileType
	Target string // symlink target, or the local source for copy/download
	// Content is the rendered content for FileTypeFile entries; empty for
	// directory/symlink/binary(staged separately)/delete/download.
	Content []byte
}

// Staging is the in-memory tree produced by Compile, independent of any
// particular directory on disk so compilation is deterministic and testable
// without touching the filesystem.
type Staging struct {
	System records.System
	Files  []Entry
	// DownloadCmds and DeleteCmds are emitted into scs-install.sh/scs-audit.sh
	// rather than staged as tree entries, per the `download`/`delete` file types.
	DownloadCmds []string
	DeleteCmds   []string
	// StaticRoutes holds the routes file content, if the system's network has
	// static_routes enabled.
	StaticRoutes []byte
}

// SortedManaged returns the staged file/directory/symlink/binary/copy
// entries (excluding download/delete, which have no tree presence) in
// deterministic path order, the order used for scs-stat and the archive.
func (s *Staging) SortedManaged() []Entry {
	out := make([]Entry, len(s.Files))
	copy(out, s.Files)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
