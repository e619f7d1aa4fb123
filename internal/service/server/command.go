package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/store"
	"github.com/oshokin/alarm-clock/internal/service/clock"
	"github.com/oshokin/alarm-clock/internal/service/tone"
)

// Options controls the alarm clock daemon and its configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile overrides the configured alarm store path.
	StateFile string
	// LogLevel overrides the configured log level when set.
	LogLevel string
	// Silent disables tone playback; alarms still fire and are published.
	Silent bool
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the engine and the gRPC server and blocks until ctx is canceled
// or one of them fails.
//
//nolint:funlen // Linear start-up sequence.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	// Use StateFile from config unless overridden by command line option.
	if opts.StateFile != "" {
		settings.StateFile = opts.StateFile
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo, err := store.Open(settings)
	if err != nil {
		return fmt.Errorf("open alarm store: %w", err)
	}

	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close alarm store", "error", closeErr)
		}
	}()

	engineOptions := []clock.Option{clock.WithDefaultTone(settings.DefaultTone)}

	if !opts.Silent {
		player, playerErr := tone.NewCommandPlayer(settings.ToneDir, settings.PlayerCommand)
		if playerErr != nil {
			return fmt.Errorf("initialise tone player: %w", playerErr)
		}

		engineOptions = append(engineOptions, clock.WithPlayer(player))
	}

	engine, err := clock.New(ctx, repo, engineOptions...)
	if err != nil {
		return fmt.Errorf("initialise engine: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterAlarmClockServer(grpcServer, api.NewServer(engine, settings.SnoozeMinutes))

	logger.InfoKV(
		ctx,
		"Alarm clock listening",
		"listen_address", lis.Addr().String(),
		"store_driver", settings.StoreDriver,
		"state_file", settings.StateFile,
		"alarms", len(engine.Alarms()),
		"log_level", logger.Level().String(),
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return engine.Run(groupCtx, settings.PollInterval)
	})

	group.Go(func() error {
		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", serveErr)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")

		// Watch streams end when their contexts do; Stop closes them all.
		grpcServer.Stop()

		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Alarm clock stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise uses the configured address.
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
