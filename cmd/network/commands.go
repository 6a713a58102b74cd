// Package network implements the "network" noun plus its IPAM sub-verbs
// (Component C), since every address lives under a network's /24 index.
package network

import "github.com/spf13/cobra"

type Actions interface {
	Create(cmd *cobra.Command, args []string) error
	Delete(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Show(cmd *cobra.Command, args []string) error
	Update(cmd *cobra.Command, args []string) error
	IPAssign(cmd *cobra.Command, args []string) error
	IPUnassign(cmd *cobra.Command, args []string) error
	IPAvailable(cmd *cobra.Command, args []string) error
	IPScan(cmd *cobra.Command, args []string) error
}

func Command(h Actions) *cobra.Command {
	networkCmd := &cobra.Command{
		Use:   "network",
		Short: "Manage networks and their IP indices",
	}

	createCmd := &cobra.Command{
		Use:   "create LOCATION ZONE ALIAS",
		Short: "Define a new network",
		Args:  cobra.ExactArgs(3),
		RunE:  h.Create,
	}
	addFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update LOCATION ZONE ALIAS",
		Short: "Change a network's attributes",
		Args:  cobra.ExactArgs(3),
		RunE:  h.Update,
	}
	addFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete LOCATION ZONE ALIAS",
		Short: "Remove a network",
		Args:  cobra.ExactArgs(3),
		RunE:  h.Delete,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List networks",
		RunE:    h.List,
	}

	showCmd := &cobra.Command{
		Use:   "show LOCATION ZONE ALIAS",
		Short: "Show one network",
		Args:  cobra.ExactArgs(3),
		RunE:  h.Show,
	}

	ipAssignCmd := &cobra.Command{
		Use:   "ip-assign LOCATION ZONE ALIAS IP HOSTNAME",
		Short: "Reserve an address for a host",
		Args:  cobra.ExactArgs(5),
		RunE:  h.IPAssign,
	}
	ipAssignCmd.Flags().Bool("force", false, "bypass the liveness probe")
	ipAssignCmd.Flags().String("comment", "", "reservation comment")

	ipUnassignCmd := &cobra.Command{
		Use:   "ip-unassign LOCATION ZONE ALIAS IP",
		Short: "Release a reserved address",
		Args:  cobra.ExactArgs(4),
		RunE:  h.IPUnassign,
	}

	ipAvailableCmd := &cobra.Command{
		Use:   "ip-available LOCATION ZONE ALIAS",
		Short: "List unassigned, unreserved addresses",
		Args:  cobra.ExactArgs(3),
		RunE:  h.IPAvailable,
	}

	ipScanCmd := &cobra.Command{
		Use:   "ip-scan LOCATION ZONE ALIAS",
		Short: "Probe every address and report hosts alive but not recorded",
		Args:  cobra.ExactArgs(3),
		RunE:  h.IPScan,
	}

	networkCmd.AddCommand(createCmd, updateCmd, deleteCmd, listCmd, showCmd,
		ipAssignCmd, ipUnassignCmd, ipAvailableCmd, ipScanCmd)
	return networkCmd
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().String("network-addr", "", "network address, e.g. 10.1.0.0")
	cmd.Flags().String("mask", "255.255.255.0", "dotted-quad netmask") //nolint:mnd
	cmd.Flags().String("cidr", "", "CIDR notation")
	cmd.Flags().String("gateway", "", "gateway address")
	cmd.Flags().Bool("static-routes", false, "this network has a routes file")
	cmd.Flags().String("dns", "", "DNS server address")
	cmd.Flags().String("vlan", "", "VLAN tag")
	cmd.Flags().String("description", "", "human-readable description")
	cmd.Flags().String("repo-addr", "", "kickstart/release repo host address")
	cmd.Flags().String("repo-fs-path", "", "kickstart/release repo filesystem path")
	cmd.Flags().String("repo-url", "", "kickstart/release repo URL path")
	cmd.Flags().Bool("build-net", false, "this network is eligible as a build network")
	cmd.Flags().Bool("default-build", false, "this is the location's default build network")
	cmd.Flags().String("ntp", "", "NTP server address")
	cmd.Flags().String("dhcp", "", "DHCP range/config marker")
}
