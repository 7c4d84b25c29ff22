package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-assistant/internal/config"
	"github.com/jonathan/resume-assistant/internal/db"
	"github.com/jonathan/resume-assistant/internal/guest"
	"github.com/jonathan/resume-assistant/internal/rendering"
	"github.com/jonathan/resume-assistant/internal/server"
	"github.com/jonathan/resume-assistant/internal/server/ratelimit"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server for chat-driven resume editing. Accounts, profiles and
stored resumes need DATABASE_URL and JWT_SECRET; without them the server runs in
guest-only mode.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, client, err := newAssistant(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	deps := server.Deps{
		Config:    cfg,
		Assistant: a,
		Limiter:   ratelimit.NewLimiter(ratelimit.LoadConfig()),
		Logger:    log,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Resumes = database
		deps.Profiles = database
	} else {
		log.Warn("DATABASE_URL not set; stored resumes and profiles are disabled")
	}

	if jwtConfig, err := config.NewJWTConfig(); err == nil {
		deps.JWT = server.NewJWTService(jwtConfig)
	} else {
		log.Warn("authentication disabled", "reason", err)
	}

	if deps.Guests, err = guest.New(cfg.GuestCacheDir); err != nil {
		return err
	}

	if cfg.Template != "" {
		if deps.Renderer, err = rendering.NewFromFile(cfg.Template); err != nil {
			return err
		}
	}

	srv, err := server.New(deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}
