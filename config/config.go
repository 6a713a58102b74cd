// Package config holds the explicit Config value threaded through the call
// graph instead of process-wide globals, per the Design Notes anti-pattern
// "Global mutable settings" -> "pass a Config value through the call graph".
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"
)

// Config holds every path and toggle needed by the core. All fields are
// populated from environment variables (see spec §6) with sane defaults,
// and may be overridden by CLI persistent flags bound via viper.
type Config struct {
	// ConfDir is the root of the fact repository (SCS_CONF).
	ConfDir string `json:"conf_dir" mapstructure:"conf_dir"`
	// IdentityPath is the SSH private key used for all remote operations (SCS_IDENTITY).
	IdentityPath string `json:"identity_path" mapstructure:"identity_path"`
	// ReleasesDir is where compiled release archives are written (SCS_RELEASES).
	ReleasesDir string `json:"releases_dir" mapstructure:"releases_dir"`
	// RemoteBackups caps retained /var/backups/ snapshots on a target host; 0 = unbounded (SCS_REMOTE_BACKUPS).
	RemoteBackups int `json:"remote_backups" mapstructure:"remote_backups"`
	// RemoteUser is the SSH user used for all remote commands (SCS_REMOTE_USER, default root).
	RemoteUser string `json:"remote_user" mapstructure:"remote_user"`
	// SharedRepo disables the repository lock entirely when false (SCS_SHARED_REPO=0).
	SharedRepo bool `json:"shared_repo" mapstructure:"shared_repo"`
	// TempDir and TempLargeDir are scratch directories for staging trees and
	// large payloads (SCS_TEMP, SCS_TEMP_LARGE) respectively.
	TempDir      string `json:"temp_dir" mapstructure:"temp_dir"`
	TempLargeDir string `json:"temp_large_dir" mapstructure:"temp_large_dir"`

	// PoolSize bounds concurrent hypervisor polling and distribute fan-out.
	PoolSize int `json:"pool_size" mapstructure:"pool_size"`

	LogLevel string `json:"log_level" mapstructure:"log_level"`
}

// DefaultConfig mirrors the teacher's DefaultConfig: sensible values that
// work out of the box, later overridden by environment/flags.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		ConfDir:       filepath.Join(home, ".scs", "conf"),
		IdentityPath:  filepath.Join(home, ".ssh", "id_rsa"),
		ReleasesDir:   filepath.Join(home, ".scs", "releases"),
		RemoteBackups: 3, //nolint:mnd
		RemoteUser:    "root",
		SharedRepo:    true,
		TempDir:       filepath.Join(os.TempDir(), "scs"),
		TempLargeDir:  filepath.Join(os.TempDir(), "scs-large"),
		PoolSize:      runtime.NumCPU(),
		LogLevel:      "info",
	}
}

// FromEnv overlays SCS_* environment variables on top of cfg, matching spec §6.
func FromEnv(cfg *Config) *Config {
	if v := os.Getenv("SCS_CONF"); v != "" {
		cfg.ConfDir = v
	}
	if v := os.Getenv("SCS_IDENTITY"); v != "" {
		cfg.IdentityPath = v
	}
	if v := os.Getenv("SCS_RELEASES"); v != "" {
		cfg.ReleasesDir = v
	}
	if v := os.Getenv("SCS_REMOTE_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RemoteBackups = n
		}
	}
	if v := os.Getenv("SCS_REMOTE_USER"); v != "" {
		cfg.RemoteUser = v
	}
	if v := os.Getenv("SCS_SHARED_REPO"); v == "0" {
		cfg.SharedRepo = false
	}
	if v := os.Getenv("SCS_TEMP"); v != "" {
		cfg.TempDir = v
	}
	if v := os.Getenv("SCS_TEMP_LARGE"); v != "" {
		cfg.TempLargeDir = v
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = runtime.NumCPU()
	}
	return cfg
}

// ZeroLevel parses cfg.LogLevel, falling back to info on error.
func (c *Config) ZeroLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// --- derived repository paths (§6 Persisted layout) ---

func (c *Config) path(elem ...string) string { return filepath.Join(append([]string{c.ConfDir}, elem...)...) }

func (c *Config) ApplicationsFile() string  { return c.path("application") }
func (c *Config) BuildsFile() string        { return c.path("build") }
func (c *Config) ConstantsFile() string     { return c.path("constant") }
func (c *Config) EnvironmentsFile() string  { return c.path("environment") }
func (c *Config) FilesFile() string         { return c.path("file") }
func (c *Config) FileMapFile() string       { return c.path("file-map") }
func (c *Config) HypervisorsFile() string   { return c.path("hypervisor") }
func (c *Config) HVEnvironmentFile() string { return c.path("hv-environment") }
func (c *Config) HVNetworkFile() string     { return c.path("hv-network") }
func (c *Config) HVSystemFile() string      { return c.path("hv-system") }
func (c *Config) LocationsFile() string     { return c.path("location") }
func (c *Config) NetworksFile() string      { return c.path("network") }
func (c *Config) ResourcesFile() string     { return c.path("resource") }
func (c *Config) SystemsFile() string       { return c.path("system") }
func (c *Config) SchemaFile() string        { return c.path("schema") }
func (c *Config) LockFile() string          { return c.path(".scs_lock") }
func (c *Config) GitignoreFile() string     { return c.path(".gitignore") }
func (c *Config) AbortFile() string         { return c.path(".scs_abort") }
func (c *Config) BackgroundLogFile() string { return c.path(".scs_background.log") }

func (c *Config) ValueConstantFile() string        { return c.path("value", "constant") }
func (c *Config) ValueByAppFile(app string) string { return c.path("value", "by-app", app) }
func (c *Config) EnvConstantFile(env string) string { return c.path("env", env, "constant") }
func (c *Config) EnvByLocFile(env, loc string) string {
	return c.path("env", env, "by-loc", loc)
}
func (c *Config) EnvByAppFile(env, app string) string {
	return c.path("env", env, "by-app", app)
}
func (c *Config) LocEnvFile(loc, env string) string { return c.path(loc, env) }

func (c *Config) TemplateFile(name string) string          { return c.path("template", name) }
func (c *Config) TemplatePatchFile(env, name string) string { return c.path("template", env, name) }
func (c *Config) EnvBinaryFile(env, name string) string     { return c.path("env", env, "binary", name) }

// KSTemplateFile is the kickstart template for a given OS, <kstemplate>/<os>.tpl.
func (c *Config) KSTemplateFile(osName string) string { return c.path("kstemplate", osName+".tpl") }

func (c *Config) NetIndexFile(networkAddr string) string  { return c.path("net", networkAddr) }
func (c *Config) NetRoutesFile(networkAddr string) string { return c.path("net", networkAddr+"-routes") }

// EnsureDirs creates the static directories the Store needs to operate.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{
		c.ConfDir,
		filepath.Join(c.ConfDir, "value", "by-app"),
		filepath.Join(c.ConfDir, "env"),
		filepath.Join(c.ConfDir, "template"),
		filepath.Join(c.ConfDir, "net"),
		filepath.Join(c.ConfDir, "kstemplate"),
		c.ReleasesDir,
		c.TempDir,
		c.TempLargeDir,
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return nil
}
