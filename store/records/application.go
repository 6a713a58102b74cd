// Package records defines the typed on-disk record for every entity kind in
// the data model (spec §3), each implementing store.Record.
package records

import (
	"fmt"

	"github.com/wstrucke/scs/errs"
)

// Application is the (name, alias, build, cluster) entity. Name is the
// primary key; alias must be unique across all applications (enforced by the
// service layer, not per-record, since it spans records).
type Application struct {
	Name    string
	Alias   string
	Build   string // references Build by name, or empty
	Cluster bool
}

func (a *Application) Key() string { return a.Name }

func (a *Application) ToFields() []string {
	return []string{a.Name, a.Alias, a.Build, boolField(a.Cluster)}
}

func (a *Application) FromFields(f []string) error {
	if err := expectFields("application", f, 4); err != nil {
		return err
	}
	a.Name, a.Alias, a.Build = f[0], f[1], f[2]
	cluster, err := parseYN("cluster", f[3])
	if err != nil {
		return err
	}
	a.Cluster = cluster
	return nil
}

func (a *Application) Validate() error {
	if a.Name == "" {
		return errs.Validationf("application: name is required")
	}
	if a.Alias == "" {
		return errs.Validationf("application %s: alias is required", a.Name)
	}
	return nil
}

// --- shared field helpers used by every record type in this package ---

func expectFields(kind string, f []string, n int) error {
	if len(f) != n {
		return fmt.Errorf("%s: expected %d fields, got %d", kind, n, len(f))
	}
	return nil
}

func boolField(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func parseYN(field, v string) (bool, error) {
	switch v {
	case "y":
		return true, nil
	case "n":
		return false, nil
	default:
		return false, errs.Validationf("%s: expected y or n, got %q", field, v)
	}
}
