// Package cmdutil holds the flags and helpers shared by sieve subcommands.
package cmdutil

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/sieve/pkg/config"
	"github.com/papercomputeco/sieve/pkg/logger"
)

const (
	// ConfigFlag names the persistent --config flag.
	ConfigFlag = "config"

	// DebugFlag names the persistent --debug flag.
	DebugFlag = "debug"

	// DefaultConfigFile is read from the working directory when --config is
	// not given.
	DefaultConfigFile = "sieve.toml"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// AddPersistentFlags registers --config and --debug on a root command.
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(ConfigFlag, "c", "", "Path to sieve.toml (default: ./sieve.toml when present)")
	cmd.PersistentFlags().Bool(DebugFlag, false, "Enable debug logging")
}

// ConfigPath resolves the config file for cmd: the --config flag, else
// DefaultConfigFile if it exists, else "".
func ConfigPath(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup(ConfigFlag); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	if config.Exists(DefaultConfigFile) {
		return DefaultConfigFile
	}
	return ""
}

// LoadConfig loads the configuration resolved by ConfigPath.
func LoadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(ConfigPath(cmd))
}

// Logger builds the command logger, honouring --debug.
func Logger(cmd *cobra.Command, opts ...logger.Option) *zap.Logger {
	debug := false
	if f := cmd.Flags().Lookup(DebugFlag); f != nil {
		debug = f.Value.String() == "true"
	}
	return logger.NewLogger(debug, append([]logger.Option{logger.WithOutput(cmd.ErrOrStderr())}, opts...)...)
}
