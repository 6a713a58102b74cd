// Package application implements the "application" noun.
package application

import "github.com/spf13/cobra"

type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
}

func Command(h Actions) *cobra.Command {
	appCmd := &cobra.Command{
		Use:   "application",
		Short: "Manage applications",
	}

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Define a new application",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Change an application's alias/build/cluster flag",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove an application (cascades file-maps and resource assignments)",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List applications",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one application",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Show,
	}

	appCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd)
	return appCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("alias", "", "unique application alias")
	cmd.Flags().String("build", "", "owning build name")
	cmd.Flags().Bool("cluster", false, "application is cluster-aware")
}
