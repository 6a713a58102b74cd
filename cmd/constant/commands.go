// Package constant implements the "constant" noun: create/delete/list/show/update
// over records.Constant, the lowest-priority tier of the constant resolver (§4.2).
package constant

import "github.com/spf13/cobra"

// Actions defines the constant noun's verbs.
type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
}

// Command builds the "constant" parent command with its subcommands.
func Command(h Actions) *cobra.Command {
	constantCmd := &cobra.Command{
		Use:   "constant",
		Short: "Manage global constants",
	}

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Define a new constant",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Change a constant's description",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a constant",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List constants",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one constant",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Show,
	}

	constantCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd)
	return constantCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("description", "", "human-readable description")
}
