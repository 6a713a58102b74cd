// Package build implements the "build" noun: an OS/role template systems
// and applications inherit from.
package build

import "github.com/spf13/cobra"

type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
}

func Command(h Actions) *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Manage build templates",
	}

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Define a new build",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Change a build's attributes",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a build (refuses while systems still reference it)",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List builds",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one build",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Show,
	}

	buildCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd)
	return buildCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("role", "", "role script name")
	cmd.Flags().String("description", "", "human-readable description")
	cmd.Flags().String("os", "", "OS identifier, selects <kstemplate>/<os>.tpl")
	cmd.Flags().String("arch", "x86_64", "CPU architecture")
	cmd.Flags().Int("disk-gb", 0, "disk size in GB, 0 = inherit from parent")
	cmd.Flags().Int("ram-mb", 0, "RAM in MB, 0 = inherit from parent")
	cmd.Flags().String("parent", "", "parent build name")
}
