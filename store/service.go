package store

import (
	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/store/records"
)

// Repo is the single entry point onto every entity kind's FileStore. All
// higher layers (resolve, template, release, ipam, provision) take a *Repo
// rather than reading files directly.
type Repo struct {
	cfg *config.Config
}

// New builds a Repo rooted at cfg.ConfDir.
func New(cfg *config.Config) *Repo { return &Repo{cfg: cfg} }

func (r *Repo) Config() *config.Config { return r.cfg }

func (r *Repo) Applications() *FileStore[records.Application, *records.Application] {
	return NewFileStore[records.Application, *records.Application](r.cfg.ApplicationsFile())
}
func (r *Repo) Builds() *FileStore[records.Build, *records.Build] {
	return NewFileStore[records.Build, *records.Build](r.cfg.BuildsFile())
}
func (r *Repo) Constants() *FileStore[records.Constant, *records.Constant] {
	return NewFileStore[records.Constant, *records.Constant](r.cfg.ConstantsFile())
}
func (r *Repo) Environments() *FileStore[records.Environment, *records.Environment] {
	return NewFileStore[records.Environment, *records.Environment](r.cfg.EnvironmentsFile())
}
func (r *Repo) Files() *FileStore[records.File, *records.File] {
	return NewFileStore[records.File, *records.File](r.cfg.FilesFile())
}
func (r *Repo) FileMaps() *FileStore[records.FileMap, *records.FileMap] {
	return NewFileStore[records.FileMap, *records.FileMap](r.cfg.FileMapFile())
}
func (r *Repo) Hypervisors() *FileStore[records.Hypervisor, *records.Hypervisor] {
	return NewFileStore[records.Hypervisor, *records.Hypervisor](r.cfg.HypervisorsFile())
}
func (r *Repo) HVEnvironments() *FileStore[records.HVEnvironment, *records.HVEnvironment] {
	return NewFileStore[records.HVEnvironment, *records.HVEnvironment](r.cfg.HVEnvironmentFile())
}
func (r *Repo) HVNetworks() *FileStore[records.HVNetwork, *records.HVNetwork] {
	return NewFileStore[records.HVNetwork, *records.HVNetwork](r.cfg.HVNetworkFile())
}
func (r *Repo) HVSystems() *FileStore[records.HVSystem, *records.HVSystem] {
	return NewFileStore[records.HVSystem, *records.HVSystem](r.cfg.HVSystemFile())
}
func (r *Repo) Locations() *FileStore[records.Location, *records.Location] {
	return NewFileStore[records.Location, *records.Location](r.cfg.LocationsFile())
}
func (r *Repo) Networks() *FileStore[records.Network, *records.Network] {
	return NewFileStore[records.Network, *records.Network](r.cfg.NetworksFile())
}
func (r *Repo) Resources() *FileStore[records.Resource, *records.Resource] {
	return NewFileStore[records.Resource, *records.Resource](r.cfg.ResourcesFile())
}
func (r *Repo) Systems() *FileStore[records.System, *records.System] {
	return NewFileStore[records.System, *records.System](r.cfg.SystemsFile())
}

func (r *Repo) ValueConstant() *FileStore[records.ValuePair, *records.ValuePair] {
	return NewFileStore[records.ValuePair, *records.ValuePair](r.cfg.ValueConstantFile())
}
func (r *Repo) ValueByApp(app string) *FileStore[records.ValuePair, *records.ValuePair] {
	return NewFileStore[records.ValuePair, *records.ValuePair](r.cfg.ValueByAppFile(app))
}
func (r *Repo) EnvConstant(env string) *FileStore[records.ValuePair, *records.ValuePair] {
	return NewFileStore[records.ValuePair, *records.ValuePair](r.cfg.EnvConstantFile(env))
}
func (r *Repo) EnvByLoc(env, loc string) *FileStore[records.ValuePair, *records.ValuePair] {
	return NewFileStore[records.ValuePair, *records.ValuePair](r.cfg.EnvByLocFile(env, loc))
}
func (r *Repo) EnvByApp(env, app string) *FileStore[records.ValuePair, *records.ValuePair] {
	return NewFileStore[records.ValuePair, *records.ValuePair](r.cfg.EnvByAppFile(env, app))
}

func (r *Repo) IPIndex(networkAddr string) *FileStore[records.IPRow, *records.IPRow] {
	return NewFileStore[records.IPRow, *records.IPRow](r.cfg.NetIndexFile(networkAddr))
}

func (r *Repo) RoutesFile(networkAddr string) string { return r.cfg.NetRoutesFile(networkAddr) }

func (r *Repo) TemplateFile(name string) string           { return r.cfg.TemplateFile(name) }
func (r *Repo) TemplatePatchFile(env, name string) string { return r.cfg.TemplatePatchFile(env, name) }
func (r *Repo) EnvBinaryFile(env, name string) string     { return r.cfg.EnvBinaryFile(env, name) }

func (r *Repo) LocEnvFile(loc, env string) string { return r.cfg.LocEnvFile(loc, env) }
