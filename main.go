package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GreenHouse007/world-builder/internal/identity"
	mcpserver "github.com/GreenHouse007/world-builder/internal/mcp"
	"github.com/GreenHouse007/world-builder/internal/server"
	"github.com/GreenHouse007/world-builder/internal/service"
	"github.com/GreenHouse007/world-builder/internal/store"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var configPath string

	root := &cobra.Command{
		Use:   "world-builder",
		Short: "World-builder backend: page-tree sync server and tooling",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "world-builder.yaml", "path to config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP sync API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath, log)
		},
	}

	var mcpActorID, mcpActorName, mcpDSN string
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP stdio server against the world store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd.Context(), mcpDSN, mcpActorID, mcpActorName, log)
		},
	}
	mcpCmd.Flags().StringVar(&mcpActorID, "actor-id", "", "actor id the tools act as (required)")
	mcpCmd.Flags().StringVar(&mcpActorName, "actor-name", "", "actor display name")
	mcpCmd.Flags().StringVar(&mcpDSN, "dsn", "worldbuilder.db", "world store DSN")
	mcpCmd.MarkFlagRequired("actor-id")

	root.AddCommand(serveCmd, mcpCmd)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

func runServe(ctx context.Context, configPath string, log zerolog.Logger) error {
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return err
	}
	applyLogLevel(cfg.LogLevel, log)

	st, err := store.Open(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	worlds := service.NewWorldService(st, nil, log)
	srv := server.New(worlds, cfg, log)

	stopWatch, err := server.WatchConfig(configPath, log, func(next *server.Config) {
		applyLogLevel(next.LogLevel, log)
	})
	if err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
	} else {
		defer stopWatch()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Addr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP(ctx context.Context, dsn, actorID, actorName string, log zerolog.Logger) error {
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	worlds := service.NewWorldService(st, nil, log)
	actor := &identity.Actor{ID: actorID, Name: actorName}
	return mcpserver.New(worlds, actor).ServeStdio()
}

func applyLogLevel(name string, log zerolog.Logger) {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Info().Str("level", level.String()).Msg("log level set")
}
