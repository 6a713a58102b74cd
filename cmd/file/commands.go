// Package file implements the "file" noun: a managed-file definition (§4.3).
package file

import "github.com/spf13/cobra"

type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
	Map(cmd *cobra.Command, args []string) error
	Unmap(cmd *cobra.Command, args []string) error
}

func Command(h Actions) *cobra.Command {
	fileCmd := &cobra.Command{
		Use:   "file",
		Short: "Manage managed-file definitions",
	}

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Define a new managed file",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Change a managed file's attributes",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a managed file (cascades templates and file-maps)",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List managed files",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one managed file",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Show,
	}

	mapCmd := &cobra.Command{
		Use:   "map NAME APPLICATION",
		Short: "Attach a file to an application",
		Args:  cobra.ExactArgs(2),
		RunE:  h.Map,
	}
	mapCmd.Flags().String("env-flags", "all", "environment scoping flags")

	unmapCmd := &cobra.Command{
		Use:   "unmap NAME APPLICATION",
		Short: "Detach a file from an application",
		Args:  cobra.ExactArgs(2),
		RunE:  h.Unmap,
	}

	fileCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd, mapCmd, unmapCmd)
	return fileCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("path", "", "absolute target path, repo-relative (no leading slash)")
	cmd.Flags().String("type", "file", "file|directory|symlink|binary|copy|delete|download")
	cmd.Flags().String("owner", "root", "owning user")
	cmd.Flags().String("group", "root", "owning group")
	cmd.Flags().String("octal", "644", "permission bits") //nolint:mnd
	cmd.Flags().String("target", "", "symlink target / copy-download source")
	cmd.Flags().String("description", "", "human-readable description")
}
