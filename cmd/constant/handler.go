package constant

import (
	"github.com/spf13/cobra"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

var header = []string{"name", "description"}

type Handler struct {
	cmdcore.BaseHandler
}

func (h Handler) Create(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	desc, _ := cmd.Flags().GetString("description")
	return store.Create(repo.Constants(), records.Constant{Name: args[0], Description: desc})
}

func (h Handler) Update(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	desc, _ := cmd.Flags().GetString("description")
	return store.Update(repo.Constants(), args[0], records.Constant{Name: args[0], Description: desc})
}

func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.Constants(), args[0])
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ListRecords(repo.Constants(), header)
}

func (h Handler) Show(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ShowRecord(repo.Constants(), args[0], header)
}
