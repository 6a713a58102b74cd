package store

import (
	"os"

	"github.com/wstrucke/scs/store/records"
)

// DeleteApplicationCascade removes every File-Map row and scoped value file
// owned by app, per "deleting an application removes file-map rows and
// application-scoped values" (§3 Lifecycle).
func (r *Repo) DeleteApplicationCascade(app string) error {
	if err := Mutate(r.FileMaps(), func(rows []records.FileMap) ([]records.FileMap, error) {
		out := rows[:0]
		for _, row := range rows {
			if row.Application != app {
				out = append(out, row)
			}
		}
		return out, nil
	}); err != nil {
		return err
	}
	_ = os.Remove(r.cfg.ValueByAppFile(app))

	envs, err := r.Environments().Load()
	if err != nil {
		return err
	}
	for _, e := range envs {
		_ = os.Remove(r.cfg.EnvByAppFile(e.Name, app))
	}
	return nil
}

// DeleteFileCascade removes a file's base/patch templates and every File-Map
// row referencing it, per "deleting a file removes its template, all env
// patches, and file-map rows" (§3 Lifecycle).
func (r *Repo) DeleteFileCascade(name string) error {
	if err := Mutate(r.FileMaps(), func(rows []records.FileMap) ([]records.FileMap, error) {
		out := rows[:0]
		for _, row := range rows {
			if row.File != name {
				out = append(out, row)
			}
		}
		return out, nil
	}); err != nil {
		return err
	}
	_ = os.Remove(r.cfg.TemplateFile(name))

	envs, err := r.Environments().Load()
	if err != nil {
		return err
	}
	for _, e := range envs {
		_ = os.Remove(r.cfg.TemplatePatchFile(e.Name, name))
		_ = os.Remove(r.cfg.EnvBinaryFile(e.Name, name))
	}
	return nil
}

// DeleteHVSystemsFor removes every HV-System row for the given system, used
// when a system is deleted or deprovisioned.
func (r *Repo) DeleteHVSystemsFor(system string) error {
	return Mutate(r.HVSystems(), func(rows []records.HVSystem) ([]records.HVSystem, error) {
		out := rows[:0]
		for _, row := range rows {
			if row.System != system {
				out = append(out, row)
			}
		}
		return out, nil
	})
}

// ReferencingSystems returns the names of systems whose Build equals build —
// used to warn-but-allow when deleting a build still in use.
func (r *Repo) ReferencingSystems(build string) ([]string, error) {
	systems, err := r.Systems().Load()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, s := range systems {
		if s.Build == build {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

// ApplicationsForBuild returns every application linked to build, the set
// used by the Constant Resolver and Release Compiler to enumerate a system's
// application set (§4.2 step 1, §4.3 step 1).
func (r *Repo) ApplicationsForBuild(build string) ([]records.Application, error) {
	apps, err := r.Applications().Load()
	if err != nil {
		return nil, err
	}
	var out []records.Application
	for _, a := range apps {
		if a.Build == build {
			out = append(out, a)
		}
	}
	return out, nil
}
