package location

import (
	"github.com/spf13/cobra"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

var header = []string{"code", "name", "description"}

type Handler struct {
	cmdcore.BaseHandler
}

func fromFlags(cmd *cobra.Command, code string) records.Location {
	name, _ := cmd.Flags().GetString("name")
	desc, _ := cmd.Flags().GetString("description")
	return records.Location{Code: code, Name: name, Description: desc}
}

func (h Handler) Create(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Create(repo.Locations(), fromFlags(cmd, args[0]))
}

func (h Handler) Update(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Update(repo.Locations(), args[0], fromFlags(cmd, args[0]))
}

func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.Locations(), args[0])
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ListRecords(repo.Locations(), header)
}

func (h Handler) Show(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ShowRecord(repo.Locations(), args[0], header)
}
