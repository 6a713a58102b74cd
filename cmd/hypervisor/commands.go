// Package hypervisor implements the "hypervisor" noun plus the HV-Environment
// and HV-Network linkage sub-verbs hypervisor.CandidatesFor depends on.
package hypervisor

import "github.com/spf13/cobra"

type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
	LinkEnvironment(cmd *cobra.Command, args []string) error
	UnlinkEnvironment(cmd *cobra.Command, args []string) error
	LinkNetwork(cmd *cobra.Command, args []string) error
	UnlinkNetwork(cmd *cobra.Command, args []string) error
	Poll(cmd *cobra.Command, args []string) error
}

func Command(h Actions) *cobra.Command {
	hvCmd := &cobra.Command{
		Use:   "hypervisor",
		Short: "Manage KVM/libvirt hypervisors",
	}

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Register a new hypervisor",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Change a hypervisor's attributes",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a hypervisor",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List hypervisors",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one hypervisor",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Show,
	}

	linkEnvCmd := &cobra.Command{
		Use:   "link-environment NAME ENVIRONMENT",
		Short: "Make a hypervisor a candidate for an environment",
		Args:  cobra.ExactArgs(2),
		RunE:  h.LinkEnvironment,
	}
	unlinkEnvCmd := &cobra.Command{
		Use:   "unlink-environment NAME ENVIRONMENT",
		Short: "Remove an environment candidacy link",
		Args:  cobra.ExactArgs(2),
		RunE:  h.UnlinkEnvironment,
	}

	linkNetCmd := &cobra.Command{
		Use:   "link-network NAME LOCATION-ZONE-ALIAS INTERFACE",
		Short: "Attach a hypervisor bridge interface to a network",
		Args:  cobra.ExactArgs(3),
		RunE:  h.LinkNetwork,
	}
	unlinkNetCmd := &cobra.Command{
		Use:   "unlink-network NAME LOCATION-ZONE-ALIAS",
		Short: "Remove a network link",
		Args:  cobra.ExactArgs(2),
		RunE:  h.UnlinkNetwork,
	}

	pollCmd := &cobra.Command{
		Use:   "poll NAME",
		Short: "Report free memory/disk and running VMs",
		Args:  cobra.ExactArgs(1),
		RunE:  h.Poll,
	}

	hvCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd,
		linkEnvCmd, unlinkEnvCmd, linkNetCmd, unlinkNetCmd, pollCmd)
	return hvCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("mgmt-ip", "", "management IP/hostname for SSH access")
	cmd.Flags().String("location", "", "location code")
	cmd.Flags().String("vm-path", "/vms", "directory holding disk images") //nolint:mnd
	cmd.Flags().Int("min-free-disk-mb", 0, "minimum free disk in MB to be eligible")
	cmd.Flags().Int("min-free-mem-mb", 0, "minimum free memory in MB to be eligible")
	cmd.Flags().Bool("enabled", true, "eligible for new placements")
}
