// Package resolve implements the constant resolver (Component D): given a
// system, it builds the effective variable map consumed by the Template
// Engine by merging five scoped constant layers and adding system and
// resource variables.
package resolve

import (
	"net/netip"
	"sort"
	"strings"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

// VarMap holds the resolved "ns.name" -> value pairs handed to the template
// engine's Substitute. Constant names are always lower-cased.
type VarMap map[string]string

// Set assigns vars[key] only if key is not already present, implementing the
// "first layer to define a name wins" merge rule.
func (v VarMap) setIfAbsent(key, value string) {
	if _, ok := v[key]; !ok {
		v[key] = value
	}
}

// Resolve builds the effective variable map for sys, per the five-level
// priority order (earlier wins):
//
//  1. env/<env>/by-app/<app>  for each application linked to sys.Build
//  2. env/<env>/by-loc/<loc>
//  3. env/<env>/constant
//  4. value/by-app/<app>      for each linked application
//  5. value/constant
func Resolve(repo *store.Repo, sys records.System) (VarMap, error) {
	apps, err := repo.ApplicationsForBuild(sys.Build)
	if err != nil {
		return nil, err
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })

	vars := VarMap{}

	for _, app := range apps {
		if err := mergeScope(vars, repo.EnvByApp(sys.Environment, app.Name)); err != nil {
			return nil, err
		}
	}
	if err := mergeScope(vars, repo.EnvByLoc(sys.Environment, sys.Location)); err != nil {
		return nil, err
	}
	if err := mergeScope(vars, repo.EnvConstant(sys.Environment)); err != nil {
		return nil, err
	}
	for _, app := range apps {
		if err := mergeScope(vars, repo.ValueByApp(app.Name)); err != nil {
			return nil, err
		}
	}
	if err := mergeScope(vars, repo.ValueConstant()); err != nil {
		return nil, err
	}

	if err := addSystemVars(repo, sys, vars); err != nil {
		return nil, err
	}
	if err := addResourceVars(repo, sys, apps, vars); err != nil {
		return nil, err
	}

	return vars, nil
}

// mergeScope folds one scope's (name, value) rows into vars, skipping any
// name already set by a higher-priority scope. A missing scope file (not yet
// created for this app/env/loc) is not an error — it simply contributes
// nothing.
func mergeScope(vars VarMap, fs *store.FileStore[records.ValuePair, *records.ValuePair]) error {
	rows, err := fs.Load()
	if err != nil {
		return err
	}
	for _, row := range rows {
		vars.setIfAbsent("constant."+strings.ToLower(row.Name), row.Value)
	}
	return nil
}

// addSystemVars emits system.* variables, including network-derived fields
// when sys.IP falls inside a registered network.
func addSystemVars(repo *store.Repo, sys records.System, vars VarMap) error {
	vars["system.name"] = sys.Name
	vars["system.ip"] = sys.IP
	vars["system.location"] = sys.Location
	vars["system.environment"] = sys.Environment
	vars["system.build"] = sys.Build

	if sys.IPIsDHCP() || sys.IP == "" {
		return nil
	}
	addr, err := netip.ParseAddr(sys.IP)
	if err != nil {
		return errs.Validationf("system %s: invalid ip %q: %w", sys.Name, sys.IP, err)
	}

	networks, err := store.List(repo.Networks())
	if err != nil {
		return err
	}
	for _, n := range networks {
		prefix, err := networkPrefix(n)
		if err != nil {
			continue
		}
		if !prefix.Contains(addr) {
			continue
		}
		vars["system.zone"] = n.Zone
		vars["system.network"] = n.NetworkAddr
		vars["system.netmask"] = n.Mask
		vars["system.gateway"] = n.Gateway
		if bc, err := broadcast(prefix); err == nil {
			vars["system.broadcast"] = bc.String()
		}
		if n.DNS != "" {
			vars["system.dns"] = n.DNS
		}
		if n.NTP != "" {
			vars["system.ntp"] = n.NTP
		}
		if n.VLAN != "" {
			vars["system.vlan"] = n.VLAN
		}
		break
	}
	return nil
}

// networkPrefix builds a netip.Prefix from a Network's dotted network
// address and dotted subnet mask.
func networkPrefix(n records.Network) (netip.Prefix, error) {
	addr, err := netip.ParseAddr(n.NetworkAddr)
	if err != nil {
		return netip.Prefix{}, err
	}
	maskAddr, err := netip.ParseAddr(n.Mask)
	if err != nil {
		return netip.Prefix{}, err
	}
	ones := maskBits(maskAddr)
	return addr.Prefix(ones)
}

// maskBits counts the leading one-bits of a dotted-quad subnet mask.
func maskBits(mask netip.Addr) int {
	bits := 0
	for _, b := range mask.AsSlice() {
		for i := 7; i >= 0; i-- {
			if b&(1<<uint(i)) == 0 {
				return bits
			}
			bits++
		}
	}
	return bits
}

// broadcast computes the broadcast address of prefix (network | ^mask).
func broadcast(prefix netip.Prefix) (netip.Addr, error) {
	base := prefix.Masked().Addr().As4()
	ones := prefix.Bits()
	var out [4]byte
	for i := range out {
		bitsInByte := ones - 8*i
		switch {
		case bitsInByte >= 8: //nolint:mnd
			out[i] = base[i]
		case bitsInByte <= 0:
			out[i] = 0xff
		default:
			hostMask := byte(0xff >> uint(bitsInByte))
			out[i] = base[i] | hostMask
		}
	}
	return netip.AddrFrom4(out), nil
}

// addResourceVars emits resource.* and system.* variables for resources
// assigned either directly to sys (assign_type=host) or to one of its linked
// applications in this (location, environment) (assign_type=application).
func addResourceVars(repo *store.Repo, sys records.System, apps []records.Application, vars VarMap) error {
	resources, err := store.List(repo.Resources())
	if err != nil {
		return err
	}
	appNames := make(map[string]struct{}, len(apps))
	for _, a := range apps {
		appNames[a.Name] = struct{}{}
	}

	for _, r := range resources {
		if !resourceAppliesToSystem(r, sys, appNames) {
			continue
		}
		label := r.Name
		if label == "" {
			label = string(r.Type)
		}
		if r.Type == records.ResourceClusterIP {
			vars["resource."+label] = r.Value
		} else {
			vars["system."+label] = r.Value
		}
	}
	return nil
}

func resourceAppliesToSystem(r records.Resource, sys records.System, appNames map[string]struct{}) bool {
	switch r.AssignType {
	case records.AssignHost:
		return r.AssignTo == sys.Name
	case records.AssignApplication:
		parts := strings.SplitN(r.AssignTo, ":", 3) //nolint:mnd
		if len(parts) != 3 {                        //nolint:mnd
			return false
		}
		loc, env, app := parts[0], parts[1], parts[2]
		if loc != sys.Location || env != sys.Environment {
			return false
		}
		_, ok := appNames[app]
		return ok
	default:
		return false
	}
}

// Lines renders vars in the "name value" text form produced by the
// `constant resolve` CLI verb, sorted by key for stable output.
func Lines(vars VarMap) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+" "+vars[k])
	}
	return out
}
