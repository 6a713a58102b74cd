// Package resource implements the "resource" noun: allocatable IP/cluster-IP/
// HA-IP values assignable to a host or an application.
package resource

import "github.com/spf13/cobra"

type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
	Assign(cmd *cobra.Command, args []string) error
	Unassign(cmd *cobra.Command, args []string) error
}

func Command(h Actions) *cobra.Command {
	resourceCmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage allocatable resources (ip, cluster_ip, ha_ip)",
	}

	createCmd := &cobra.Command{
		Use:   "create TYPE VALUE",
		Short: "Define a new resource",
		Args:  cobra.ExactArgs(2),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update TYPE VALUE",
		Short: "Change a resource's name/description",
		Args:  cobra.ExactArgs(2),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete TYPE VALUE",
		Short: "Remove a resource",
		Args:  cobra.ExactArgs(2),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List resources",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show TYPE VALUE",
		Short: "Show one resource",
		Args:  cobra.ExactArgs(2),
		RunE:  h.Show,
	}

	assignCmd := &cobra.Command{
		Use:   "assign TYPE VALUE TARGET",
		Short: "Assign a resource to a host (loc:env:name) or application (loc:env:app)",
		Args:  cobra.ExactArgs(3),
		RunE:  h.Assign,
	}
	assignCmd.Flags().String("assign-type", "host", "host|application")

	unassignCmd := &cobra.Command{
		Use:   "unassign TYPE VALUE",
		Short: "Clear a resource's assignment",
		Args:  cobra.ExactArgs(2),
		RunE:  h.Unassign,
	}

	resourceCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd, assignCmd, unassignCmd)
	return resourceCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "short name")
	cmd.Flags().String("description", "", "human-readable description")
}
