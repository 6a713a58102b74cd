package records

import (
	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/types"
)

// Network is the (location, zone, alias, network, mask, cidr, gateway,
// static_routes, dns, vlan, description, repo_addr, repo_fs_path, repo_url,
// build_net, default_build, ntp, dhcp) entity. Primary key is
// (location, zone, alias).
type Network struct {
	Location      string
	Zone          string
	Alias         string
	NetworkAddr   string
	Mask          string
	CIDR          string
	Gateway       string
	StaticRoutes  bool
	DNS           string
	VLAN          string
	Description   string
	RepoAddr      string
	RepoFSPath    string
	RepoURL       string
	BuildNet      bool
	DefaultBuild  bool
	NTP           string
	DHCP          string
}

// LocZoneAlias is the "loc-zone-alias" composite key used by HV-Network and
// hypervisor-selection lookups.
func (n *Network) LocZoneAlias() string { return n.Location + "-" + n.Zone + "-" + n.Alias }

func (n *Network) Key() string { return n.LocZoneAlias() }

func (n *Network) ToFields() []string {
	return []string{
		n.Location, n.Zone, n.Alias, n.NetworkAddr, n.Mask, n.CIDR, n.Gateway,
		boolField(n.StaticRoutes), n.DNS, n.VLAN, n.Description,
		n.RepoAddr, n.RepoFSPath, n.RepoURL,
		boolField(n.BuildNet), boolField(n.DefaultBuild), n.NTP, n.DHCP,
	}
}

func (n *Network) FromFields(f []string) error {
	if err := expectFields("network", f, 18); err != nil {
		return err
	}
	n.Location, n.Zone, n.Alias = f[0], f[1], f[2]
	n.NetworkAddr, n.Mask, n.CIDR, n.Gateway = f[3], f[4], f[5], f[6]
	var err error
	if n.StaticRoutes, err = parseYN("static_routes", f[7]); err != nil {
		return err
	}
	n.DNS, n.VLAN, n.Description = f[8], f[9], f[10]
	n.RepoAddr, n.RepoFSPath, n.RepoURL = f[11], f[12], f[13]
	if n.BuildNet, err = parseYN("build_net", f[14]); err != nil {
		return err
	}
	if n.DefaultBuild, err = parseYN("default_build", f[15]); err != nil {
		return err
	}
	n.NTP, n.DHCP = f[16], f[17]
	return nil
}

func (n *Network) Validate() error {
	if n.Location == "" || n.Zone == "" || n.Alias == "" {
		return errs.Validationf("network: location, zone, and alias are required")
	}
	if n.NetworkAddr == "" || n.Mask == "" {
		return errs.Validationf("network %s: network and mask are required", n.Key())
	}
	if n.DefaultBuild && !n.BuildNet {
		return errs.Validationf("network %s: default_build requires build_net=y", n.Key())
	}
	if n.CIDR != "" {
		if _, err := types.ParseCIDR(n.CIDR); err != nil {
			return errs.Validationf("network %s: %w", n.Key(), err)
		}
	}
	return nil
}
