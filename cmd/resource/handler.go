package resource

import (
	"github.com/spf13/cobra"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

var header = []string{"type", "value", "assign_type", "assign_to", "name", "description"}

type Handler struct {
	cmdcore.BaseHandler
}

func key(args []string) string { return args[0] + ":" + args[1] }

func fromFlags(cmd *cobra.Command, rtype, value string) records.Resource {
	name, _ := cmd.Flags().GetString("name")
	desc, _ := cmd.Flags().GetString("description")
	return records.Resource{Type: records.ResourceType(rtype), Value: value, Name: name, Description: desc}
}

func (h Handler) Create(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Create(repo.Resources(), fromFlags(cmd, args[0], args[1]))
}

func (h Handler) Update(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	existing, err := store.Get(repo.Resources(), key(args))
	if err != nil {
		return err
	}
	rec := fromFlags(cmd, args[0], args[1])
	rec.AssignType, rec.AssignTo = existing.AssignType, existing.AssignTo
	return store.Update(repo.Resources(), key(args), rec)
}

func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.Resources(), key(args))
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ListRecords(repo.Resources(), header)
}

func (h Handler) Show(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ShowRecord(repo.Resources(), key(args), header)
}

func (h Handler) Assign(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	rec, err := store.Get(repo.Resources(), key(args))
	if err != nil {
		return err
	}
	assignType, _ := cmd.Flags().GetString("assign-type")
	rec.AssignType = records.ResourceAssignType(assignType)
	rec.AssignTo = args[2]
	return store.Update(repo.Resources(), key(args), rec)
}

func (h Handler) Unassign(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	rec, err := store.Get(repo.Resources(), key(args))
	if err != nil {
		return err
	}
	rec.AssignType = records.AssignNone
	rec.AssignTo = ""
	return store.Update(repo.Resources(), key(args), rec)
}
