// Package location implements the "location" noun: a 3-character site code.
package location

import "github.com/spf13/cobra"

type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
}

func Command(h Actions) *cobra.Command {
	locationCmd := &cobra.Command{
		Use:   "location",
		Short: "Manage physical/logical site codes",
	}

	createCmd := &cobra.Command{
		Use:   "create CODE",
		Short: "Define a new 3-character location code",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update CODE",
		Short: "Change a location's name/description",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete CODE",
		Short: "Remove a location",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List locations",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show CODE",
		Short: "Show one location",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Show,
	}

	locationCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd)
	return locationCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("description", "", "human-readable description")
}
