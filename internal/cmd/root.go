package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrEthical07/authshield"
)

var versionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// SetVersionInfo is called by main with ldflags values.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

type rootOptions struct {
	configFile string
	envFile    string
	verbose    bool
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "authshield",
		Short:         "Password strength scoring and login attempt limiting",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.loadEnvFile()
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before config; a missing file is ignored")
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml); AUTHSHIELD_* env vars override it")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newStrengthCommand(),
		newServeCommand(opts),
		newLoadtestCommand(opts),
		newVersionCommand(),
	)
	return root
}

// loadEnvFile never overrides variables that are already set.
func (o *rootOptions) loadEnvFile() error {
	if o.envFile == "" {
		return nil
	}
	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	if o.verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (o *rootOptions) config() (authshield.Config, error) {
	return authshield.LoadConfig(o.configFile)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			v := versionInfo.Version
			if v == "" {
				v = "dev"
			}
			cmd.Printf("authshield %s (commit %s, built %s)\n", v, versionInfo.Commit, versionInfo.BuildDate)
		},
	}
}
