package records

import (
	"strings"

	"github.com/wstrucke/scs/errs"
)

// Constant is the (name, description) entity. Name is always lower-cased on
// write so lookups and resolution can compare case-insensitively for free.
type Constant struct {
	Name        string
	Description string
}

func (c *Constant) Key() string { return c.Name }

func (c *Constant) ToFields() []string { return []string{c.Name, c.Description} }

func (c *Constant) FromFields(f []string) error {
	if err := expectFields("constant", f, 2); err != nil {
		return err
	}
	c.Name = strings.ToLower(f[0])
	c.Description = f[1]
	return nil
}

func (c *Constant) Validate() error {
	if c.Name == "" {
		return errs.Validationf("constant: name is required")
	}
	return nil
}
