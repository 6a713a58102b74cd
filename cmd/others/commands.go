// Package others implements the global verbs that aren't tied to a noun:
// repository lock lifecycle, VCS inspection, and abort control.
package others

import "github.com/spf13/cobra"

type Actions interface {
	Abort(cmd *cobra.Command, args []string) error
	Cancel(cmd *cobra.Command, args []string) error
	Commit(cmd *cobra.Command, args []string) error
	Diff(cmd *cobra.Command, args []string) error
	Dir(cmd *cobra.Command, args []string) error
	Lock(cmd *cobra.Command, args []string) error
	Log(cmd *cobra.Command, args []string) error
	Pdir(cmd *cobra.Command, args []string) error
	Status(cmd *cobra.Command, args []string) error
	Unlock(cmd *cobra.Command, args []string) error
}

// Commands returns the global verbs as individual top-level commands, mirroring
// the teacher's cmd/others pattern of adding loose commands rather than a
// parent noun.
func Commands(h Actions) []*cobra.Command {
	abortCmd := &cobra.Command{
		Use:   "abort",
		Short: "Control the cancellation sentinel for background provisioning",
	}
	abortDisableCmd := &cobra.Command{
		Use:   "disable",
		Short: "Remove the abort sentinel",
		RunE:  h.Abort,
	}
	abortCmd.AddCommand(abortDisableCmd)

	cancelCmd := &cobra.Command{
		Use:   "cancel",
		Short: "Discard uncommitted changes and release the repository lock",
		RunE:  h.Cancel,
	}

	commitCmd := &cobra.Command{
		Use:   "commit [message]",
		Short: "Commit pending changes and release the repository lock",
		Args:  cobra.MaximumNArgs(1),
		RunE:  h.Commit,
	}
	commitCmd.Flags().Bool("push", false, "push to the configured remote after committing")

	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Show files changed since the lock was acquired",
		RunE:  h.Diff,
	}

	dirCmd := &cobra.Command{
		Use:   "dir",
		Short: "Print the configuration repository's directory",
		RunE:  h.Dir,
	}

	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "Acquire the repository lock for the current user",
		RunE:  h.Lock,
	}

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Show decorated one-line commit history",
		RunE:  h.Log,
	}
	logCmd.Flags().Int("max", 20, "maximum entries to show") //nolint:mnd

	pdirCmd := &cobra.Command{
		Use:   "pdir",
		Short: "Print the directory containing the configuration repository",
		RunE:  h.Pdir,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the repository lock owner and commit drift; exits 1 when locked",
		RunE:  h.Status,
	}

	unlockCmd := &cobra.Command{
		Use:   "unlock",
		Short: "Release the repository lock (owner or administrator only)",
		RunE:  h.Unlock,
	}

	return []*cobra.Command{
		abortCmd, cancelCmd, commitCmd, diffCmd, dirCmd,
		lockCmd, logCmd, pdirCmd, statusCmd, unlockCmd,
	}
}
