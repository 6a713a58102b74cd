package application

import (
	"github.com/spf13/cobra"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

var header = []string{"name", "alias", "build", "cluster"}

type Handler struct {
	cmdcore.BaseHandler
}

func fromFlags(cmd *cobra.Command, name string) records.Application {
	alias, _ := cmd.Flags().GetString("alias")
	build, _ := cmd.Flags().GetString("build")
	cluster, _ := cmd.Flags().GetBool("cluster")
	return records.Application{Name: name, Alias: alias, Build: build, Cluster: cluster}
}

func (h Handler) Create(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Create(repo.Applications(), fromFlags(cmd, args[0]))
}

func (h Handler) Update(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Update(repo.Applications(), args[0], fromFlags(cmd, args[0]))
}

// Delete removes the application and cascades its file-maps and resource
// assignments (§3 lifecycle rules), mirroring store.Repo.DeleteApplicationCascade.
func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	if err := repo.DeleteApplicationCascade(args[0]); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.Applications(), args[0])
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ListRecords(repo.Applications(), header)
}

func (h Handler) Show(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ShowRecord(repo.Applications(), args[0], header)
}
