package release

import (
	"net/netip"
	"os"
	"sort"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/ipam"
	"github.com/wstrucke/scs/resolve"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
	"github.com/wstrucke/scs/template"
)

// Compile builds the in-memory staging tree for sys: resolves its
// application set, enumerates File-Map rows filtered by env_flags, stages
// each file per its type, and attaches the static-routes file when
// applicable. policy controls how the Template Engine handles missing
// variables (Strict for a real compile, Verbose/Silent for a dry run used by
// `system compile --dry`).
func Compile(repo *store.Repo, sys records.System, policy template.Policy) (*Staging, error) {
	vars, err := resolve.Resolve(repo, sys)
	if err != nil {
		return nil, err
	}

	apps, err := repo.ApplicationsForBuild(sys.Build)
	if err != nil {
		return nil, err
	}
	appNames := make(map[string]struct{}, len(apps))
	for _, a := range apps {
		appNames[a.Name] = struct{}{}
	}

	fileMaps, err := store.List(repo.FileMaps())
	if err != nil {
		return nil, err
	}
	files, err := store.List(repo.Files())
	if err != nil {
		return nil, err
	}
	byFileName := make(map[string]records.File, len(files))
	for _, f := range files {
		byFileName[f.Name] = f
	}

	var relevant []records.FileMap
	for _, fm := range fileMaps {
		if _, ok := appNames[fm.Application]; !ok {
			continue
		}
		flags, err := records.ParseEnvFlags(fm.EnvFlags)
		if err != nil {
			return nil, err
		}
		if !flags.Includes(sys.Environment) {
			continue
		}
		relevant = append(relevant, fm)
	}
	sort.Slice(relevant, func(i, j int) bool { return relevant[i].File < relevant[j].File })

	st := &Staging{System: sys}
	seen := map[string]struct{}{}
	for _, fm := range relevant {
		if _, dup := seen[fm.File]; dup {
			continue
		}
		seen[fm.File] = struct{}{}
		f, ok := byFileName[fm.File]
		if !ok {
			return nil, errs.MissingReferencef("file-map references unknown file %s", fm.File)
		}
		entry, err := stageFile(repo, sys, f, vars, policy)
		if err != nil {
			return nil, err
		}
		switch f.Type {
		case records.FileTypeDownload:
			st.DownloadCmds = append(st.DownloadCmds, f.Target)
		case records.FileTypeDelete:
			st.DeleteCmds = append(st.DeleteCmds, f.Path)
		default:
			st.Files = append(st.Files, entry)
		}
	}

	if err := attachStaticRoutes(repo, sys, st); err != nil {
		return nil, err
	}
	return st, nil
}

func stageFile(repo *store.Repo, sys records.System, f records.File, vars resolve.VarMap, policy template.Policy) (Entry, error) {
	entry := Entry{Path: f.Path, Owner: f.Owner, Group: f.Group, Octal: f.Octal, Kind: f.Type, Target: f.Target}

	switch f.Type {
	case records.FileTypeFile:
		base, err := os.ReadFile(repo.TemplateFile(f.Name)) //nolint:gosec // repo-managed path
		if err != nil {
			return Entry{}, errs.Templatef("read template %s: %w", f.Name, err)
		}
		if patch, err := os.ReadFile(repo.TemplatePatchFile(sys.Environment, f.Name)); err == nil { //nolint:gosec
			base, err = template.ApplyPatch(base, patch)
			if err != nil {
				return Entry{}, errs.Templatef("apply patch %s/%s: %w", sys.Environment, f.Name, err)
			}
		}
		out, subErrs := template.Substitute(base, vars, policy)
		if policy == template.Strict && len(subErrs) > 0 {
			return Entry{}, subErrs[0]
		}
		entry.Content = out
	case records.FileTypeBinary:
		data, err := os.ReadFile(repo.EnvBinaryFile(sys.Environment, f.Name)) //nolint:gosec
		if err != nil {
			return Entry{}, errs.Validationf("binary %s/%s missing: %w", sys.Environment, f.Name, err)
		}
		entry.Content = data
	case records.FileTypeCopy:
		data, err := os.ReadFile(f.Target) //nolint:gosec // operator-configured source path
		if err != nil {
			return Entry{}, errs.Validationf("copy source %s missing: %w", f.Target, err)
		}
		entry.Content = data
	case records.FileTypeDirectory, records.FileTypeSymlink, records.FileTypeDownload, records.FileTypeDelete:
		// no staged content
	}
	return entry, nil
}

// attachStaticRoutes stages etc/sysconfig/static-routes when sys.IP falls in
// a network with static_routes enabled (spec §4.3 step 4).
func attachStaticRoutes(repo *store.Repo, sys records.System, st *Staging) error {
	if sys.IPIsDHCP() || sys.IP == "" {
		return nil
	}
	networks, err := store.List(repo.Networks())
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(sys.IP)
	if err != nil {
		return errs.Validationf("system %s: invalid ip %q: %w", sys.Name, sys.IP, err)
	}
	for _, n := range networks {
		prefix, err := ipam.Prefix(n)
		if err != nil || !prefix.Contains(addr) {
			continue
		}
		if !n.StaticRoutes {
			return nil
		}
		routes, err := os.ReadFile(repo.RoutesFile(n.NetworkAddr)) //nolint:gosec
		if err != nil {
			return errs.Validationf("network %s: static_routes=y but routes file missing: %w", n.Key(), err)
		}
		st.StaticRoutes = routes
		return nil
	}
	return nil
}
