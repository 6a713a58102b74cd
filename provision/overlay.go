package provision

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

// ResolveAutoOverlay implements spec §4.5's auto-overlay resolution: find an
// existing backing system for sys's build at the same location/environment
// (excluding sys's own ancestor chain), preferring the most recently built;
// otherwise recursively provision a new one for the build's parent.
func ResolveAutoOverlay(ctx context.Context, repo *store.Repo, dial HostDialer, sys records.System, avoid string) (records.System, error) {
	ancestors, err := ancestorChain(repo, sys.Name)
	if err != nil {
		return records.System{}, err
	}

	systems, err := store.List(repo.Systems())
	if err != nil {
		return records.System{}, err
	}
	var candidates []records.System
	for _, s := range systems {
		if !s.BackingImage || s.Build != sys.Build || s.Location != sys.Location || s.Environment != sys.Environment {
			continue
		}
		if _, excluded := ancestors[s.Name]; excluded {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) > 0 {
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].BuildDateUnix > candidates[j].BuildDateUnix })
		return candidates[0], nil
	}

	build, err := loadBuild(repo, sys.Build)
	if err != nil {
		return records.System{}, err
	}
	if build.Parent == "" {
		return records.System{}, errs.MissingReferencef("no backing system for build %s and no parent build to synthesize one from", sys.Build)
	}

	name := fmt.Sprintf("%s_%d", build.Parent, time.Now().Unix())
	parentBuild, err := loadBuild(repo, build.Parent)
	if err != nil {
		return records.System{}, err
	}
	newSys := records.System{
		Name: name, Build: build.Parent, IP: "dhcp",
		Location: sys.Location, Environment: sys.Environment,
		Virtual: true, BackingImage: true,
	}
	if parentBuild.Parent != "" {
		newSys.Overlay = "auto"
	}
	if err := store.Create(repo.Systems(), newSys); err != nil {
		return records.System{}, err
	}

	if _, err := Phase1(ctx, repo, dial, newSys, avoid); err != nil {
		return records.System{}, errs.Remotef("provision synthesized backing %s: %w", name, err)
	}
	return newSys, nil
}

// ancestorChain walks a system's overlay chain to guard against attaching a
// backing image that would create a cycle.
func ancestorChain(repo *store.Repo, name string) (map[string]struct{}, error) {
	systems, err := store.List(repo.Systems())
	if err != nil {
		return nil, err
	}
	byName := make(map[string]records.System, len(systems))
	for _, s := range systems {
		byName[s.Name] = s
	}
	seen := map[string]struct{}{name: {}}
	cur, ok := byName[name]
	for ok && cur.Overlay != "" && cur.Overlay != "auto" {
		if _, cyc := seen[cur.Overlay]; cyc {
			return nil, errs.Integrityf("system %s: overlay chain contains a cycle", name)
		}
		seen[cur.Overlay] = struct{}{}
		cur, ok = byName[cur.Overlay]
	}
	return seen, nil
}
