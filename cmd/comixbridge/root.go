package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/comix-bridge/internal/config"
	"github.com/phrazzld/comix-bridge/internal/platform/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// rootOptions carries what every subcommand needs to build its application.
type rootOptions struct {
	viper      *viper.Viper
	configPath string
	newRuntime runtimeFactory
}

// runner is the body of a subcommand, called with a wired application.
type runner func(cmd *cobra.Command, args []string, app *application) error

// newRootCmd builds the command tree.
func newRootCmd(newRuntime runtimeFactory) *cobra.Command {
	opts := &rootOptions{viper: config.NewViper(), newRuntime: newRuntime}

	root := &cobra.Command{
		Use:          "comixbridge",
		Short:        "Read comic book archives through cancellable tasks",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a configuration file (yaml, json or toml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	bindFlags(opts.viper, flags, map[string]string{"log-level": "server.log_level"})

	root.AddCommand(
		newMetadataCmd(opts),
		newHashCmd(opts),
		newPageCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// run wraps fn so that it receives an application and the runtime is
// stopped when fn returns, whether or not it failed.
func (o *rootOptions) run(fn runner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := o.setup(cmd)
		if err != nil {
			return err
		}
		defer app.cleanup()
		return fn(cmd, args, app)
	}
}

func (o *rootOptions) setup(cmd *cobra.Command) (*application, error) {
	if o.configPath != "" {
		o.viper.SetConfigFile(o.configPath)
		if err := o.viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := config.FromViper(o.viper)
	if err != nil {
		return nil, err
	}

	// Command output goes to stdout, so logs go to stderr.
	log := logger.SetupWithWriter(cmd.ErrOrStderr(), cfg.Server.LogLevel)
	log.Debug("configuration loaded",
		"library_root", cfg.Server.LibraryRoot,
		"workers", cfg.Runtime.WorkerCount,
		"inline", cfg.Runtime.Inline,
		"hash_algorithm", cfg.Engine.HashAlgorithm)

	return newApplication(cfg, log, o.newRuntime)
}

// bindFlags maps command line flags onto configuration keys, so that a flag
// set on the command line overrides the file and the environment.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}

// signalContext is cancelled by SIGINT or SIGTERM, which cancels the task
// running under it.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
