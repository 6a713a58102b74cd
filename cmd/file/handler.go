package file

import (
	"github.com/spf13/cobra"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

var header = []string{"name", "path", "type", "owner", "group", "octal", "target", "description"}

type Handler struct {
	cmdcore.BaseHandler
}

func fromFlags(cmd *cobra.Command, name string) records.File {
	path, _ := cmd.Flags().GetString("path")
	ftype, _ := cmd.Flags().GetString("type")
	owner, _ := cmd.Flags().GetString("owner")
	group, _ := cmd.Flags().GetString("group")
	octal, _ := cmd.Flags().GetString("octal")
	target, _ := cmd.Flags().GetString("target")
	desc, _ := cmd.Flags().GetString("description")
	return records.File{
		Name: name, Path: path, Type: records.FileType(ftype),
		Owner: owner, Group: group, Octal: octal, Target: target, Description: desc,
	}
}

func (h Handler) Create(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Create(repo.Files(), fromFlags(cmd, args[0]))
}

func (h Handler) Update(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Update(repo.Files(), args[0], fromFlags(cmd, args[0]))
}

// Delete removes a file and cascades its base/patch templates and file-map
// rows, mirroring store.Repo.DeleteFileCascade.
func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	if err := repo.DeleteFileCascade(args[0]); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.Files(), args[0])
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ListRecords(repo.Files(), header)
}

func (h Handler) Show(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ShowRecord(repo.Files(), args[0], header)
}

func (h Handler) Map(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	envFlags, _ := cmd.Flags().GetString("env-flags")
	return store.Create(repo.FileMaps(), records.FileMap{File: args[0], Application: args[1], EnvFlags: envFlags})
}

func (h Handler) Unmap(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.FileMaps(), args[0]+":"+args[1])
}
