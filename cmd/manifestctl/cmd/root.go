package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-manifest/internal/config"
	"github.com/oshokin/release-manifest/internal/logger"
	"github.com/oshokin/release-manifest/internal/service/client"
	"github.com/oshokin/release-manifest/internal/service/resolver"
	"github.com/oshokin/release-manifest/internal/version"
)

var (
	// options shared by every subcommand.
	options client.Options
	// logLevel sets the local log level.
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "manifestctl",
		Short: "Manage profiles and generate release manifests.",
		Long: `Client for manifest-server.

Connects to the server from the configuration file (or --server) and prints
results as indented JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if logLevel == "" {
				return nil
			}

			return logger.Configure(logLevel, logger.FormatConsole)
		},
	}
)

// run executes call with a signal-aware context.
func run(call client.Call) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return client.Run(ctx, &options, call)
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "generate <sw_package_id> <sw_version>",
		Short:   "Assemble the manifest of a stored profile.",
		Example: `  manifestctl generate 42 BSW_VCC_20.0.1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(client.Generate(args[0], args[1]))
		},
	}
}

func newProfilesCmd() *cobra.Command {
	profiles := &cobra.Command{
		Use:   "profiles",
		Short: "Manage stored profiles.",
	}

	profiles.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every stored profile.",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return run(client.ListProfiles())
			},
		},
		&cobra.Command{
			Use:   "get <sw_package_id>",
			Short: "Print one stored profile.",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return run(client.GetProfile(args[0]))
			},
		},
		&cobra.Command{
			Use:   "put <file|-> [sw_package_id]",
			Short: "Create or replace a profile from a JSON file.",
			Long: `Stores the JSON object read from file. With sw_package_id the slot of that id is
replaced and a missing sw_package_id in the object is taken from the argument.`,
			Args: cobra.RangeArgs(1, 2),
			RunE: func(_ *cobra.Command, args []string) error {
				var id string
				if len(args) > 1 {
					id = args[1]
				}

				return run(client.PutProfile(id, args[0]))
			},
		},
		&cobra.Command{
			Use:   "replace <file|->",
			Short: "Replace every stored profile with a JSON list.",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return run(client.ReplaceProfiles(args[0]))
			},
		},
		&cobra.Command{
			Use:   "delete <sw_package_id>",
			Short: "Delete a stored profile.",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return run(client.DeleteProfile(args[0]))
			},
		},
	)

	return profiles
}

func newLookupCmds() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "tag <project> <tag>",
			Short: "Print the browse URL of an exact Gerrit tag.",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return run(client.ResolveTag(args[0], args[1]))
			},
		},
		{
			Use:   "tags <project>",
			Short: "List the Gerrit tags of a project.",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return run(client.ListTags(args[0]))
			},
		},
		{
			Use:     "artifact <name> <sw_version>",
			Short:   "Resolve the location and checksum of a logical artifact.",
			Long:    "Resolve the location and checksum of a logical artifact.\n\nKnown names: " + strings.Join(resolver.ArtifactNames(), ", ") + ".",
			Example: `  manifestctl artifact "SUM SWLM" BSW_VCC_20.0.1`,
			Args:    cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return run(client.ResolveArtifact(args[0], args[1]))
			},
		},
		{
			Use:   "item <id|swap-url>",
			Short: "Print a CarWeaver item.",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return run(client.GetItem(args[0]))
			},
		},
	}
}

// Execute runs the manifestctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.ServerAddress, "server", "s", "", "server address, overrides the configuration file")
	flags.StringVar(&logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")

	rootCmd.AddCommand(newGenerateCmd(), newProfilesCmd())
	rootCmd.AddCommand(newLookupCmds()...)
}
