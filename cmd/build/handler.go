package build

import (
	"github.com/spf13/cobra"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

var header = []string{"name", "role", "description", "os", "arch", "disk_gb", "ram_mb", "parent"}

type Handler struct {
	cmdcore.BaseHandler
}

func fromFlags(cmd *cobra.Command, name string) records.Build {
	role, _ := cmd.Flags().GetString("role")
	desc, _ := cmd.Flags().GetString("description")
	osName, _ := cmd.Flags().GetString("os")
	arch, _ := cmd.Flags().GetString("arch")
	diskGB, _ := cmd.Flags().GetInt("disk-gb")
	ramMB, _ := cmd.Flags().GetInt("ram-mb")
	parent, _ := cmd.Flags().GetString("parent")
	return records.Build{
		Name: name, Role: role, Description: desc, OS: osName, Arch: arch,
		DiskGB: diskGB, RAMMB: ramMB, Parent: parent,
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
	return store.Create(repo.Builds(), fromFlags(cmd, args[0]))
}

func (h Handler) Update(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Update(repo.Builds(), args[0], fromFlags(cmd, args[0]))
}

// Delete refuses when any system still references this build — callers
// retarget or delete those systems first.
func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	referencing, err := repo.ReferencingSystems(args[0])
	if err != nil {
		return err
	}
	if len(referencing) > 0 {
		return errs.Conflictf("build %s is still referenced by systems: %v", args[0], referencing)
	}
	return cmdcore.DeleteRecord(repo.Builds(), args[0])
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ListRecords(repo.Builds(), header)
}

func (h Handler) Show(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ShowRecord(repo.Builds(), args[0], header)
}
