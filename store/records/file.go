package records

import (
	"regexp"

	"github.com/wstrucke/scs/errs"
)

// FileType enumerates the managed-file kinds from §3/§4.3.
type FileType string

const (
	FileTypeFile      FileType = "file"
	FileTypeDirectory FileType = "directory"
	FileTypeSymlink   FileType = "symlink"
	FileTypeBinary    FileType = "binary"
	FileTypeCopy      FileType = "copy"
	FileTypeDelete    FileType = "delete"
	FileTypeDownload  FileType = "download"
)

func (t FileType) valid() bool {
	switch t {
	case FileTypeFile, FileTypeDirectory, FileTypeSymlink, FileTypeBinary, FileTypeCopy, FileTypeDelete, FileTypeDownload:
		return true
	}
	return false
}

var octalRE = regexp.MustCompile(`^[0-7]{3,4}$`)

// File is the (name, path, type, owner, group, octal, target, description)
// entity. Target semantics differ by Type: symlink target, copy/download
// source, unused for file/directory/binary/delete.
type File struct {
	Name        string
	Path        string
	Type        FileType
	Owner       string
	Group       string
	Octal       string
	Target      string
	Description string
}

func (f *File) Key() string { return f.Name }

func (f *File) ToFields() []string {
	return []string{f.Name, f.Path, string(f.Type), f.Owner, f.Group, f.Octal, f.Target, f.Description}
}

func (f *File) FromFields(in []string) error {
	if err := expectFields("file", in, 8); err != nil {
		return err
	}
	f.Name, f.Path, f.Type = in[0], in[1], FileType(in[2])
	f.Owner, f.Group, f.Octal, f.Target, f.Description = in[3], in[4], in[5], in[6], in[7]
	return nil
}

func (f *File) Validate() error {
	if f.Name == "" {
		return errs.Validationf("file: name is required")
	}
	if f.Path == "" {
		return errs.Validationf("file %s: path is required", f.Name)
	}
	if !f.Type.valid() {
		return errs.Validationf("file %s: invalid type %q", f.Name, f.Type)
	}
	switch f.Type {
	case FileTypeSymlink:
		if f.Target == "" {
			return errs.Validationf("file %s: symlink requires target", f.Name)
		}
	case FileTypeCopy, FileTypeDownload:
		if f.Target == "" {
			return errs.Validationf("file %s: %s requires target", f.Name, f.Type)
		}
	}
	if f.Octal != "" && !octalRE.MatchString(f.Octal) {
		return errs.Validationf("file %s: octal must be 3-4 octal digits, got %q", f.Name, f.Octal)
	}
	return nil
}
