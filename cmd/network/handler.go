package network

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/ipam"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

var header = []string{
	"location", "zone", "alias", "network_addr", "mask", "cidr", "gateway",
	"static_routes", "dns", "vlan", "description", "repo_addr", "repo_fs_path",
	"repo_url", "build_net", "default_build", "ntp", "dhcp",
}

type Handler struct {
	cmdcore.BaseHandler
}

func key(args []string) string { return args[0] + "-" + args[1] + "-" + args[2] }

func fromFlags(cmd *cobra.Command, loc, zone, alias string) records.Network {
	netAddr, _ := cmd.Flags().GetString("network-addr")
	mask, _ := cmd.Flags().GetString("mask")
	cidr, _ := cmd.Flags().GetString("cidr")
	gateway, _ := cmd.Flags().GetString("gateway")
	staticRoutes, _ := cmd.Flags().GetBool("static-routes")
	dns, _ := cmd.Flags().GetString("dns")
	vlan, _ := cmd.Flags().GetString("vlan")
	desc, _ := cmd.Flags().GetString("description")
	repoAddr, _ := cmd.Flags().GetString("repo-addr")
	repoFSPath, _ := cmd.Flags().GetString("repo-fs-path")
	repoURL, _ := cmd.Flags().GetString("repo-url")
	buildNet, _ := cmd.Flags().GetBool("build-net")
	defaultBuild, _ := cmd.Flags().GetBool("default-build")
	ntp, _ := cmd.Flags().GetString("ntp")
	dhcp, _ := cmd.Flags().GetString("dhcp")
	return records.Network{
		Location: loc, Zone: zone, Alias: alias,
		NetworkAddr: netAddr, Mask: mask, CIDR: cidr, Gateway: gateway,
		StaticRoutes: staticRoutes, DNS: dns, VLAN: vlan, Description: desc,
		RepoAddr: repoAddr, RepoFSPath: repoFSPath, RepoURL: repoURL,
		BuildNet: buildNet, DefaultBuild: defaultBuild, NTP: ntp, DHCP: dhcp,
	}
}

func (h Handler) Create(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Create(repo.Networks(), fromFlags(cmd, args[0], args[1], args[2]))
}

func (h Handler) Update(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Update(repo.Networks(), key(args), fromFlags(cmd, args[0], args[1], args[2]))
}

func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.Networks(), key(args))
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ListRecords(repo.Networks(), header)
}

func (h Handler) Show(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ShowRecord(repo.Networks(), key(args), header)
}

func (h Handler) IPAssign(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	comment, _ := cmd.Flags().GetString("comment")
	return ipam.Assign(repo, args[3], args[4], force, comment, cmdcore.CurrentUser(), ipam.Probe)
}

func (h Handler) IPUnassign(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return ipam.Unassign(repo, args[3])
}

func (h Handler) IPAvailable(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	n, err := store.Get(repo.Networks(), key(args))
	if err != nil {
		return err
	}
	rows, err := ipam.ListAvailable(repo, n)
	if err != nil {
		return err
	}
	rows2 := make([][]string, 0, len(rows))
	for _, r := range rows {
		rows2 = append(rows2, []string{r.DottedIP, r.OctalIP})
	}
	cmdcore.PrintTable([]string{"ip", "octal"}, rows2)
	return nil
}

func (h Handler) IPScan(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	n, err := store.Get(repo.Networks(), key(args))
	if err != nil {
		return err
	}
	reserved, err := ipam.Scan(repo, n, ipam.Probe)
	if err != nil {
		return err
	}
	for _, ip := range reserved {
		fmt.Println(ip)
	}
	return nil
}
