package records

import "github.com/wstrucke/scs/errs"

// FileMap is the (file, application, env_flags) relation between applications
// and files. Its key is the composite "file:application" since a file may be
// mapped to many applications.
type FileMap struct {
	File        string
	Application string
	EnvFlags    string
}

func (m *FileMap) Key() string { return m.File + ":" + m.Application }

func (m *FileMap) ToFields() []string { return []string{m.File, m.Application, m.EnvFlags} }

func (m *FileMap) FromFields(f []string) error {
	if err := expectFields("file-map", f, 3); err != nil {
		return err
	}
	m.File, m.Application, m.EnvFlags = f[0], f[1], f[2]
	return nil
}

func (m *FileMap) Validate() error {
	if m.File == "" || m.Application == "" {
		return errs.Validationf("file-map: file and application are required")
	}
	_, err := ParseEnvFlags(m.EnvFlags)
	return err
}
