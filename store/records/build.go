package records

import (
	"strconv"

	"github.com/wstrucke/scs/errs"
)

// Build is the (name, role, description, os, arch, disk_gb, ram_mb, parent)
// entity. DiskGB/RAMMB of 0 mean "inherit transitively from root build"
// (resolved by the service layer walking Parent, not stored here).
type Build struct {
	Name        string
	Role        string
	Description string
	OS          string
	Arch        string
	DiskGB      int
	RAMMB       int
	Parent      string
}

func (b *Build) Key() string { return b.Name }

func (b *Build) ToFields() []string {
	return []string{
		b.Name, b.Role, b.Description, b.OS, b.Arch,
		strconv.Itoa(b.DiskGB), strconv.Itoa(b.RAMMB), b.Parent,
	}
}

func (b *Build) FromFields(f []string) error {
	if err := expectFields("build", f, 8); err != nil {
		return err
	}
	b.Name, b.Role, b.Description, b.OS, b.Arch = f[0], f[1], f[2], f[3], f[4]
	var err error
	if b.DiskGB, err = atoiField("disk_gb", f[5]); err != nil {
		return err
	}
	if b.RAMMB, err = atoiField("ram_mb", f[6]); err != nil {
		return err
	}
	b.Parent = f[7]
	return nil
}

func (b *Build) Validate() error {
	if b.Name == "" {
		return errs.Validationf("build: name is required")
	}
	if b.Parent == b.Name {
		return errs.Integrityf("build %s: cannot be its own parent", b.Name)
	}
	if b.DiskGB < 0 || b.RAMMB < 0 {
		return errs.Validationf("build %s: disk_gb/ram_mb must be >= 0", b.Name)
	}
	return nil
}

func atoiField(field, v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.Validationf("%s: not an integer: %q", field, v)
	}
	return n, nil
}
