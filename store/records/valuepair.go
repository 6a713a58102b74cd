package records

import "github.com/wstrucke/scs/errs"

// ValuePair is a (constant_name, value) row as stored in each of the five
// scoped constant-value files (§3 Scoped constant values).
type ValuePair struct {
	Name  string
	Value string
}

func (v *ValuePair) Key() string { return v.Name }

func (v *ValuePair) ToFields() []string { return []string{v.Name, v.Value} }

func (v *ValuePair) FromFields(f []string) error {
	if err := expectFields("value-pair", f, 2); err != nil {
		return err
	}
	v.Name, v.Value = f[0], f[1]
	return nil
}

func (v *ValuePair) Validate() error {
	if v.Name == "" {
		return errs.Validationf("value-pair: constant name is required")
	}
	return nil
}
