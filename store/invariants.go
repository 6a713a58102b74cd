package store

import (
	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/store/records"
)

// CheckBuildAcyclic enforces I2: the build parent graph must stay acyclic.
// candidate is the post-update record (its Name must match an existing or
// new key); existing is every other build currently on disk.
func CheckBuildAcyclic(existing []records.Build, candidate records.Build) error {
	byName := make(map[string]records.Build, len(existing)+1)
	for _, b := range existing {
		byName[b.Name] = b
	}
	byName[candidate.Name] = candidate

	visited := map[string]struct{}{}
	cur := candidate
	for cur.Parent != "" {
		if _, ok := visited[cur.Parent]; ok {
			return errs.Integrityf("build %s: parent chain contains a cycle (I2)", candidate.Name)
		}
		if cur.Parent == candidate.Name {
			return errs.Integrityf("build %s: parent chain contains a cycle (I2)", candidate.Name)
		}
		visited[cur.Parent] = struct{}{}
		parent, ok := byName[cur.Parent]
		if !ok {
			return errs.MissingReferencef("build %s: parent %s not found", candidate.Name, cur.Parent)
		}
		cur = parent
	}
	return nil
}

// ResolveBuildResource walks the parent chain to find the first ancestor (or
// self) that defines a non-zero disk/ram size, per "unspecified disk/ram
// inherit transitively from root build".
func ResolveBuildResource(all []records.Build, name string) (diskGB, ramMB int, err error) {
	byName := make(map[string]records.Build, len(all))
	for _, b := range all {
		byName[b.Name] = b
	}
	seen := map[string]struct{}{}
	cur, ok := byName[name]
	if !ok {
		return 0, 0, errs.MissingReferencef("build %s not found", name)
	}
	for {
		if cur.DiskGB != 0 {
			diskGB = cur.DiskGB
		}
		if cur.RAMMB != 0 {
			ramMB = cur.RAMMB
		}
		if (diskGB != 0 && ramMB != 0) || cur.Parent == "" {
			break
		}
		if _, dup := seen[cur.Parent]; dup {
			return 0, 0, errs.Integrityf("build %s: parent chain contains a cycle (I2)", name)
		}
		seen[cur.Parent] = struct{}{}
		next, ok := byName[cur.Parent]
		if !ok {
			break
		}
		cur = next
	}
	return diskGB, ramMB, nil
}

// CheckDefaultBuildUnique enforces I5: at most one default-build network per
// location. candidate is the network being created/updated.
func CheckDefaultBuildUnique(existing []records.Network, candidate records.Network) error {
	if !candidate.DefaultBuild {
		return nil
	}
	for _, n := range existing {
		if n.Key() == candidate.Key() {
			continue
		}
		if n.Location == candidate.Location && n.DefaultBuild {
			return errs.Conflictf("location %s already has a default-build network (%s) (I5)", candidate.Location, n.Key())
		}
	}
	return nil
}

// CheckOverlayReference enforces I3: a system's overlay must reference an
// existing backing system, or be the literal "auto" sentinel.
func CheckOverlayReference(systems []records.System, sys records.System) error {
	if sys.Overlay == "" || sys.OverlayAuto() {
		return nil
	}
	for _, s := range systems {
		if s.Name == sys.Overlay {
			if !s.BackingImage {
				return errs.Integrityf("system %s: overlay %s is not a backing image (I3)", sys.Name, sys.Overlay)
			}
			return nil
		}
	}
	return errs.MissingReferencef("system %s: overlay %s not found (I3)", sys.Name, sys.Overlay)
}
