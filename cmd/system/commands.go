// Package system implements the "system" noun: CRUD over configured hosts
// plus the provisioning lifecycle sub-verbs (§4.5) that operate on them.
package system

import "github.com/spf13/cobra"

type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
	Lock(cmd *cobra.Command, args []string) error
	Unlock(cmd *cobra.Command, args []string) error
	Provision(cmd *cobra.Command, args []string) error
	Deprovision(cmd *cobra.Command, args []string) error
	Distribute(cmd *cobra.Command, args []string) error
	ToBacking(cmd *cobra.Command, args []string) error
	FromBacking(cmd *cobra.Command, args []string) error
	Audit(cmd *cobra.Command, args []string) error
	AddDisk(cmd *cobra.Command, args []string) error
	ProvisionStatus(cmd *cobra.Command, args []string) error
}

func Command(h Actions) *cobra.Command {
	sysCmd := &cobra.Command{
		Use:   "system",
		Short: "Manage configured hosts and run their provisioning lifecycle",
	}

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Define a new system",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Change a system's attributes",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a system record (does not deprovision it)",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List systems",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one system",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Show,
	}

	lockCmd := &cobra.Command{
		Use:   "lock NAME",
		Short: "Mark a system locked, refusing further provisioning changes",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Lock,
	}

	unlockCmd := &cobra.Command{
		Use:   "unlock NAME",
		Short: "Clear a system's locked flag",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Unlock,
	}

	provisionCmd := &cobra.Command{
		Use:   "provision NAME",
		Short: "Select a hypervisor, build the VM, and run post-install configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Provision,
	}
	provisionCmd.Flags().String("avoid", "", "hypervisor name to exclude from candidate ranking")
	provisionCmd.Flags().Bool("foreground", false, "run phase 2 in the foreground instead of detaching")

	deprovisionCmd := &cobra.Command{
		Use:   "deprovision NAME",
		Short: "Destroy and undefine a system's VM and free its reservations",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Deprovision,
	}
	deprovisionCmd.Flags().Bool("yes-i-am-sure", false, "confirm the destructive operation")

	distributeCmd := &cobra.Command{
		Use:   "distribute NAME BUILD-NET FINAL-NET",
		Short: "Copy a backing image to every other eligible hypervisor",
		Args:  cobra.ExactArgs(3),
		RunE:  h.Distribute,
	}

	toBackingCmd := &cobra.Command{
		Use:   "to-backing NAME",
		Short: "Convert a running VM's disk into a backing image",
		Args:  cobra.ExactArgs(1),
		RunE:  h.ToBacking,
	}

	fromBackingCmd := &cobra.Command{
		Use:   "from-backing NAME",
		Short: "Flatten an overlay system off its backing image",
		Args:  cobra.ExactArgs(1),
		RunE:  h.FromBacking,
	}

	auditCmd := &cobra.Command{
		Use:   "audit NAME",
		Short: "Compare a system's deployed files against its release; exits 1 on mismatch",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Audit,
	}

	addDiskCmd := &cobra.Command{
		Use:   "add-disk NAME ALIAS SIZE",
		Short: "Attach a secondary disk to a running VM",
		Args:  cobra.ExactArgs(3),
		RunE:  h.AddDisk,
	}
	addDiskCmd.Flags().String("backing-path", "", "backing image path for the new disk, if any")
	addDiskCmd.Flags().String("bus", "virtio", "disk bus type") //nolint:mnd

	provisionStatusCmd := &cobra.Command{
		Use:   "provision-status NAME",
		Short: "Show a detached provisioning run's background-log progress",
		Args:  cobra.ExactArgs(1),
		RunE:  h.ProvisionStatus,
	}

	sysCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd,
		lockCmd, unlockCmd, provisionCmd, deprovisionCmd, distributeCmd,
		toBackingCmd, fromBackingCmd, auditCmd, addDiskCmd, provisionStatusCmd)
	return sysCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("build", "", "build name")
	cmd.Flags().String("ip", "dhcp", "static IP or \"dhcp\"")
	cmd.Flags().String("location", "", "location code")
	cmd.Flags().String("environment", "", "environment name")
	cmd.Flags().Bool("virtual", true, "this system is a VM")
	cmd.Flags().Bool("backing-image", false, "this system is a template other systems overlay")
	cmd.Flags().String("overlay", "", "backing system name, \"auto\", or empty")
}
