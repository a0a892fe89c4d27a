package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pliu/chatsight/internal/auth"
	"github.com/pliu/chatsight/internal/chat"
	"github.com/pliu/chatsight/internal/config"
	"github.com/pliu/chatsight/internal/insight"
	"github.com/pliu/chatsight/internal/llm"
	"github.com/pliu/chatsight/internal/logger"
	"github.com/pliu/chatsight/internal/server"
	"github.com/pliu/chatsight/internal/store/sqlstore"
	"github.com/pliu/chatsight/internal/ws"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	addr       string
)

func main() {
	root := &cobra.Command{
		Use:           "chatsight",
		Short:         "Direct-message chat server with AI conversation insights",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default chatsight.yaml when present)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE:  runServe,
	}
	serve.Flags().StringVar(&addr, "addr", "", "http service address (overrides server.addr)")
	root.Flags().AddFlagSet(serve.Flags())

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables and exit",
		RunE:  runMigrate,
	}

	root.AddCommand(serve, migrate)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chatsight:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// New migrates on open.
	store, err := sqlstore.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()
	logger.L().Info("database migrated", zap.String("driver", cfg.Database.Driver))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.L()

	store, err := sqlstore.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(cfg.Server.AllowedOrigins)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	var provider llm.Provider
	if cfg.Insights.Enabled {
		provider = llm.NewOpenAI(
			&http.Client{Timeout: cfg.Insights.Timeout},
			cfg.Insights.BaseURL,
			cfg.Insights.APIKey,
			cfg.Insights.Model,
		)
	} else {
		log.Warn("insights disabled; /insights/generate will answer 500")
	}

	router := server.NewRouter(server.Deps{
		Config: cfg,
		Store:  store,
		Auth:   auth.NewService(store, auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)),
		Chat:   chat.NewService(store),
		Insights: insight.NewService(store, provider, insight.Options{
			Model:       cfg.Insights.Model,
			Temperature: cfg.Insights.Temperature,
		}),
		Hub: hub,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("driver", cfg.Database.Driver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	stop()
	<-hubDone
	return nil
}
