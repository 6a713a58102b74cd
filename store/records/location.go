package records

import "github.com/wstrucke/scs/errs"

// Location is the (code, name, description) entity; code is exactly 3 characters.
type Location struct {
	Code        string
	Name        string
	Description string
}

func (l *Location) Key() string { return l.Code }

func (l *Location) ToFields() []string { return []string{l.Code, l.Name, l.Description} }

func (l *Location) FromFields(f []string) error {
	if err := expectFields("location", f, 3); err != nil {
		return err
	}
	l.Code, l.Name, l.Description = f[0], f[1], f[2]
	return nil
}

func (l *Location) Validate() error {
	if len(l.Code) != 3 {
		return errs.Validationf("location: code must be exactly 3 characters, got %q", l.Code)
	}
	if l.Name == "" {
		return errs.Validationf("location %s: name is required", l.Code)
	}
	return nil
}
