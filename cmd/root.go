// Package cmd wires the cobra command tree together: one noun package per
// entity (application, build, constant, environment, file, hypervisor,
// location, network, resource, system) plus the global verbs in cmd/others,
// mirroring the teacher's cmd/vm, cmd/images, cmd/others split.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdapplication "github.com/wstrucke/scs/cmd/application"
	cmdbuild "github.com/wstrucke/scs/cmd/build"
	cmdconstant "github.com/wstrucke/scs/cmd/constant"
	cmdcore "github.com/wstrucke/scs/cmd/core"
	cmdenvironment "github.com/wstrucke/scs/cmd/environment"
	cmdfile "github.com/wstrucke/scs/cmd/file"
	cmdhypervisor "github.com/wstrucke/scs/cmd/hypervisor"
	cmdlocation "github.com/wstrucke/scs/cmd/location"
	cmdnetwork "github.com/wstrucke/scs/cmd/network"
	cmdothers "github.com/wstrucke/scs/cmd/others"
	cmdresource "github.com/wstrucke/scs/cmd/resource"
	cmdsystem "github.com/wstrucke/scs/cmd/system"
	"github.com/wstrucke/scs/config"
)

var (
	cfgFile string
	conf    *config.Config
)

var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "scs",
		Short:        "scs - fleet configuration & provisioning engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().String("conf-dir", "", "fact repository root (SCS_CONF)")
	cmd.PersistentFlags().String("identity", "", "SSH identity key path (SCS_IDENTITY)")
	cmd.PersistentFlags().String("releases-dir", "", "compiled release output directory (SCS_RELEASES)")
	cmd.PersistentFlags().String("remote-user", "", "SSH user for remote operations (SCS_REMOTE_USER)")

	_ = viper.BindPFlag("conf_dir", cmd.PersistentFlags().Lookup("conf-dir"))
	_ = viper.BindPFlag("identity_path", cmd.PersistentFlags().Lookup("identity"))
	_ = viper.BindPFlag("releases_dir", cmd.PersistentFlags().Lookup("releases-dir"))
	_ = viper.BindPFlag("remote_user", cmd.PersistentFlags().Lookup("remote-user"))

	viper.SetEnvPrefix("SCS")
	viper.AutomaticEnv()

	confProvider := func() *config.Config { return conf }
	base := cmdcore.BaseHandler{ConfProvider: confProvider}

	cmd.AddCommand(cmdapplication.Command(cmdapplication.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdbuild.Command(cmdbuild.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdconstant.Command(cmdconstant.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdenvironment.Command(cmdenvironment.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdfile.Command(cmdfile.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdhypervisor.Command(cmdhypervisor.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdlocation.Command(cmdlocation.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdnetwork.Command(cmdnetwork.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdresource.Command(cmdresource.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdsystem.Command(cmdsystem.Handler{BaseHandler: base}))
	cmd.AddCommand(cmdsystem.Phase2Command(base))
	for _, c := range cmdothers.Commands(cmdothers.Handler{BaseHandler: base}) {
		cmd.AddCommand(c)
	}

	return cmd
}()

// Execute is the main entry point called from cmd/scs/main.go.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func initConfig() error {
	base := config.DefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config: %w", err)
			}
		}
		if err := viper.Unmarshal(base); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}

	// Persistent flags bound via viper take precedence over the file, and
	// SCS_* environment variables (read directly, not through viper, since
	// they predate the cobra/viper CLI and must keep working standalone)
	// take precedence over flag defaults left unset.
	conf = config.FromEnv(base)
	if v := viper.GetString("conf_dir"); v != "" {
		conf.ConfDir = v
	}
	if v := viper.GetString("identity_path"); v != "" {
		conf.IdentityPath = v
	}
	if v := viper.GetString("releases_dir"); v != "" {
		conf.ReleasesDir = v
	}
	if v := viper.GetString("remote_user"); v != "" {
		conf.RemoteUser = v
	}

	return conf.EnsureDirs()
}
