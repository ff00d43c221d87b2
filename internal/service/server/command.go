package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/release-manifest/internal/api/grpc/manifest"
	"github.com/oshokin/release-manifest/internal/config"
	"github.com/oshokin/release-manifest/internal/logger"
	repo "github.com/oshokin/release-manifest/internal/repository/profile"
)

// Options controls the manifest-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// ProfilesFile overrides the profiles JSON file from the settings.
	ProfilesFile string
	// LogLevel overrides the log level from the settings.
	LogLevel string
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.ProfilesFile != "" {
		settings.ProfilesFile = opts.ProfilesFile
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if err = logger.Configure(settings.LogLevel, settings.LogFormat); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	defer logger.Sync()

	// Name the logger after configuring it, the global one is replaced there.
	ctx = logger.WithName(ctx, "manifest-server")

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	u, err := newUpstreams(settings)
	if err != nil {
		return fmt.Errorf("initialise upstream clients: %w", err)
	}

	svc := newService(settings, repo.NewFileRepository(settings.ProfilesFile), u)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	return serve(ctx, lis, svc, settings, listenAddress)
}

// serve runs the gRPC server on lis until ctx is done.
func serve(ctx context.Context, lis net.Listener, svc api.Service, settings *config.Config, listenAddress string) error {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(api.UnaryServerInterceptor(logger.FromContext(ctx))),
	)
	api.RegisterManifestServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Manifest server listening",
		"listen_address", listenAddress,
		"profiles_file", settings.ProfilesFile,
		"resolve_workers", settings.ResolveWorkers,
		"gerrit", settings.Gerrit.URL != "",
		"artifactory", settings.Artifactory.BaseURL != "",
		"carweaver", settings.CarWeaver.URL != "",
	)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	// "server.example.com:8080" listens on ":8080".
	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return ":" + port, nil
}
