// Package provision implements Component I: the two-phase VM lifecycle
// state machine. Phase 1 runs synchronously in the foreground (validate,
// select hypervisor, reserve an IP, render and publish a kickstart,
// invoke the external VM creator). Phase 2 runs detached and is covered by
// phase2.go.
package provision

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"time"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/hypervisor"
	"github.com/wstrucke/scs/ipam"
	"github.com/wstrucke/scs/release"
	"github.com/wstrucke/scs/remote"
	"github.com/wstrucke/scs/resolve"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
	"github.com/wstrucke/scs/template"
)

// HostDialer opens a remote.Host for a hypervisor's management IP; production
// code backs this with remote.NewSSHHost, tests substitute a fake.
type HostDialer func(mgmtIP string) (remote.Host, error)

// Plan is the result of phase 1: everything phase 2 needs to finish the
// build, persisted by the caller (e.g. into a background-task marker file)
// so the detached process can resume without re-running phase 1.
type Plan struct {
	System       records.System
	Hypervisor   records.Hypervisor
	BuildIface   string
	FinalIface   string
	BuildNetwork records.Network
	FinalNetwork records.Network
	BuildIP      string
	UUID         string
	MAC          string
	KickstartURL string
}

// Phase1 validates and plans a new VM build per spec §4.5 steps 1-9,
// stopping short of the detached phase 2.
func Phase1(ctx context.Context, repo *store.Repo, dial HostDialer, sys records.System, avoid string) (*Plan, error) {
	if sys.Locked {
		return nil, errs.Validationf("system %s is locked", sys.Name)
	}

	buildNet, err := buildNetworkFor(repo, sys)
	if err != nil {
		return nil, err
	}
	finalNet := buildNet
	if !sys.IPIsDHCP() && sys.IP != "" {
		if n, err := networkContaining(repo, sys.IP); err == nil {
			finalNet = n
		}
	}

	candidates, err := hypervisor.CandidatesFor(repo, sys.Location, sys.Environment, buildNet.LocZoneAlias(), finalNet.LocZoneAlias())
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errs.MissingReferencef("no hypervisor candidate for system %s", sys.Name)
	}

	polled, hosts, err := pollCandidates(ctx, repo, dial, candidates)
	if err != nil {
		return nil, err
	}
	selected, err := hypervisor.Rank(polled, avoid)
	if err != nil {
		return nil, err
	}

	buildIface, _, err := hypervisor.NetworkLinked(repo, selected.Name, buildNet.LocZoneAlias())
	if err != nil {
		return nil, err
	}
	finalIface, _, err := hypervisor.NetworkLinked(repo, selected.Name, finalNet.LocZoneAlias())
	if err != nil {
		return nil, err
	}

	if sys.Kind() == records.KindOverlay && sys.Overlay == "auto" {
		backing, err := ResolveAutoOverlay(ctx, repo, dial, sys, avoid)
		if err != nil {
			return nil, err
		}
		sys.Overlay = backing.Name
	}

	if _, err := release.Compile(repo, sys, template.Strict); err != nil {
		return nil, errs.Templatef("dry-run compile for %s: %w", sys.Name, err)
	}

	buildIP, err := reserveBuildIP(repo, buildNet, sys)
	if err != nil {
		return nil, err
	}

	allHosts := make([]remote.Host, 0, len(hosts))
	for _, h := range hosts {
		allHosts = append(allHosts, h)
	}
	knownUUIDs, knownMACs, err := hypervisor.KnownIdentities(ctx, allHosts)
	if err != nil {
		return nil, err
	}
	uuid, err := hypervisor.GenerateUUID(knownUUIDs)
	if err != nil {
		return nil, err
	}
	mac, err := hypervisor.GenerateMAC(knownMACs)
	if err != nil {
		return nil, err
	}

	ksURL, ksErr := publishKickstart(ctx, repo, dial, sys, buildNet, buildIP)
	if ksErr != nil {
		return nil, ksErr
	}

	if err := store.Create(repo.HVSystems(), records.HVSystem{System: sys.Name, Hypervisor: selected.Name, Preferred: false}); err != nil {
		return nil, err
	}
	sys.BuildDateUnix = time.Now().Unix()
	if err := store.Update(repo.Systems(), sys.Name, sys); err != nil {
		return nil, err
	}

	return &Plan{
		System: sys, Hypervisor: *selected,
		BuildIface: buildIface, FinalIface: finalIface,
		BuildNetwork: buildNet, FinalNetwork: finalNet,
		BuildIP: buildIP, UUID: uuid, MAC: mac, KickstartURL: ksURL,
	}, nil
}

// buildNetworkFor resolves the system's build network: either the system's
// own network (if it is itself a build network) or the location's
// default-build network.
func buildNetworkFor(repo *store.Repo, sys records.System) (records.Network, error) {
	networks, err := store.List(repo.Networks())
	if err != nil {
		return records.Network{}, err
	}
	if !sys.IPIsDHCP() && sys.IP != "" {
		if addr, perr := netip.ParseAddr(sys.IP); perr == nil {
			for _, n := range networks {
				prefix, err := ipam.Prefix(n)
				if err == nil && prefix.Contains(addr) && n.BuildNet {
					return n, nil
				}
			}
		}
	}
	for _, n := range networks {
		if n.Location == sys.Location && n.DefaultBuild {
			return n, nil
		}
	}
	return records.Network{}, errs.MissingReferencef("no build network for location %s", sys.Location)
}

func networkContaining(repo *store.Repo, ip string) (records.Network, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return records.Network{}, err
	}
	networks, err := store.List(repo.Networks())
	if err != nil {
		return records.Network{}, err
	}
	for _, n := range networks {
		prefix, err := ipam.Prefix(n)
		if err == nil && prefix.Contains(addr) {
			return n, nil
		}
	}
	return records.Network{}, errs.MissingReferencef("no network contains %s", ip)
}

func pollCandidates(ctx context.Context, repo *store.Repo, dial HostDialer, hvs []records.Hypervisor) ([]hypervisor.Candidate, map[string]remote.Host, error) {
	out := make([]hypervisor.Candidate, 0, len(hvs))
	hosts := make(map[string]remote.Host, len(hvs))
	for _, hv := range hvs {
		h, err := dial(hv.MgmtIP)
		if err != nil {
			return nil, nil, err
		}
		hosts[hv.Name] = h
		res, err := hypervisor.PollResources(ctx, h, hv.VMPath)
		if err != nil {
			return nil, nil, err
		}
		running, err := hypervisor.RunningVMs(ctx, h)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, hypervisor.Candidate{Hypervisor: hv, Resources: res, Running: running})
	}
	return out, hosts, nil
}

func reserveBuildIP(repo *store.Repo, n records.Network, sys records.System) (string, error) {
	if !sys.IPIsDHCP() && sys.IP != "" {
		if err := ipam.Assign(repo, sys.IP, sys.Name, false, "provisioned", "scs", func(string) bool { return false }); err != nil {
			return "", err
		}
		return sys.IP, nil
	}
	available, err := ipam.ListAvailable(repo, n)
	if err != nil {
		return "", err
	}
	if len(available) == 0 {
		return "", errs.Conflictf("no available address on network %s", n.Key())
	}
	chosen := available[0].DottedIP
	if err := ipam.Assign(repo, chosen, sys.Name, false, "provisioned (build)", "scs", func(string) bool { return false }); err != nil {
		return "", err
	}
	return chosen, nil
}

// publishKickstart renders <kstemplate>/<os>.tpl with the minimal variable
// set spec §4.5 step 6 names and uploads it to the network's repo server.
func publishKickstart(ctx context.Context, repo *store.Repo, dial HostDialer, sys records.System, n records.Network, buildIP string) (string, error) {
	build, err := loadBuild(repo, sys.Build)
	if err != nil {
		return "", err
	}
	vars, err := resolve.Resolve(repo, sys)
	if err != nil {
		return "", err
	}
	minimal := resolve.VarMap{
		"system.name":     sys.Name,
		"system.ip":       buildIP,
		"system.netmask":  n.Mask,
		"system.gateway":  n.Gateway,
		"system.dns":      n.DNS,
		"system.arch":     build.Arch,
		"resource.sm-web": vars["resource.sm-web"],
	}

	tmplPath := repo.Config().KSTemplateFile(build.OS)
	raw, err := os.ReadFile(tmplPath) //nolint:gosec // repo-managed path
	if err != nil {
		return "", errs.Validationf("kickstart template for os %s missing: %w", build.OS, err)
	}
	out, subErrs := template.Substitute(raw, minimal, template.Strict)
	if len(subErrs) > 0 {
		return "", subErrs[0]
	}

	host, err := dial(n.RepoAddr)
	if err != nil {
		return "", err
	}
	remotePath := n.RepoFSPath + "/" + sys.Name + ".cfg"
	if err := host.Copy(ctx, remotePath, out, 0o644); err != nil { //nolint:mnd
		return "", err
	}
	return fmt.Sprintf("http://%s/%s/%s.cfg", n.RepoAddr, n.RepoURL, sys.Name), nil
}

func loadBuild(repo *store.Repo, name string) (records.Build, error) {
	builds, err := store.List(repo.Builds())
	if err != nil {
		return records.Build{}, err
	}
	for _, b := range builds {
		if b.Name == name {
			return b, nil
		}
	}
	return records.Build{}, errs.MissingReferencef("build %s not found", name)
}
