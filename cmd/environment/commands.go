// Package environment implements the "environment" noun (e.g. prod/stage/dev).
package environment

import "github.com/spf13/cobra"

type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
}

func Command(h Actions) *cobra.Command {
	envCmd := &cobra.Command{
		Use:   "environment",
		Short: "Manage deployment environments",
	}

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Define a new environment",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Change an environment's alias/description",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove an environment",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List environments",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one environment",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Show,
	}

	envCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd)
	return envCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("alias", "", "single upper-case letter alias")
	cmd.Flags().String("description", "", "human-readable description")
}
