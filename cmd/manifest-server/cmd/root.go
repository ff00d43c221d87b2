package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-manifest/internal/config"
	"github.com/oshokin/release-manifest/internal/service/server"
	"github.com/oshokin/release-manifest/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// profilesFile overrides the profiles file from the settings.
	profilesFile string
	// logLevel overrides the log level from the settings.
	logLevel string

	// rootCmd represents the base command for running the gRPC server.
	rootCmd = &cobra.Command{
		Use:   "manifest-server [listen-address]",
		Short: "Run the release manifest gRPC server.",
		Long: `Starts the gRPC server that stores package profiles and assembles release manifests.

Manifests combine a stored profile with tag URLs resolved in Gerrit and artifact
locations and checksums resolved in Artifactory.
Only the port from server_addr is used for listening (e.g., :8080).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:8080).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				ProfilesFile:  profilesFile,
				LogLevel:      logLevel,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the manifest-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&profilesFile, "profiles-file", "p", "", "path to the profiles JSON file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")
}
