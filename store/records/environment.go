package records

import (
	"strings"
	"unicode"

	"github.com/wstrucke/scs/errs"
)

// Environment is the (name, alias, description) entity. Alias is a single
// upper-cased letter, unique across environments.
type Environment struct {
	Name        string
	Alias       string
	Description string
}

func (e *Environment) Key() string { return e.Name }

func (e *Environment) ToFields() []string { return []string{e.Name, e.Alias, e.Description} }

func (e *Environment) FromFields(f []string) error {
	if err := expectFields("environment", f, 3); err != nil {
		return err
	}
	e.Name, e.Alias, e.Description = f[0], strings.ToUpper(f[1]), f[2]
	return nil
}

func (e *Environment) Validate() error {
	if e.Name == "" {
		return errs.Validationf("environment: name is required")
	}
	if len([]rune(e.Alias)) != 1 || !unicode.IsUpper([]rune(e.Alias)[0]) {
		return errs.Validationf("environment %s: alias must be a single upper-case letter", e.Name)
	}
	return nil
}
