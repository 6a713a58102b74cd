package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/utils"
)

// SchemaVersion is the version this binary writes to <repo>/schema. Bump it
// and add a Migration whenever a record's on-disk field layout changes.
const SchemaVersion = "0.1"

// Migration upgrades a repo from one schema version to the next. From/To
// name the versions it bridges; Apply performs the upgrade in place.
type Migration struct {
	From  string
	To    string
	Apply func(*Repo) error
}

// Migrations is the ordered list of upgrades EnsureSchema walks through.
// Empty until the on-disk layout changes for the first time after 0.1.
var Migrations []Migration

// EnsureSchema reads <repo>/schema, applies every migration between the
// stored version and SchemaVersion in order, and rewrites the file. A
// missing schema file is treated as a fresh repo already at SchemaVersion.
func EnsureSchema(r *Repo) error {
	path := r.cfg.SchemaFile()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return utils.AtomicWriteFile(path, []byte(SchemaVersion+"\n"), 0o640) //nolint:mnd
		}
		return fmt.Errorf("read schema file %s: %w", path, err)
	}
	version := strings.TrimSpace(string(data))
	for version != SchemaVersion {
		idx := -1
		for i, m := range Migrations {
			if m.From == version {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errs.Integrityf("no migration path from schema version %q to %q", version, SchemaVersion)
		}
		if err := Migrations[idx].Apply(r); err != nil {
			return errs.Integrityf("migrate schema from %q: %w", version, err)
		}
		version = Migrations[idx].To
	}
	return utils.AtomicWriteFile(path, []byte(SchemaVersion+"\n"), 0o640) //nolint:mnd
}
