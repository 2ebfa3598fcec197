package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ahmetk3436/companion/internal/chat"
	"github.com/ahmetk3436/companion/internal/config"
	"github.com/ahmetk3436/companion/internal/database"
	"github.com/ahmetk3436/companion/internal/handlers"
	"github.com/ahmetk3436/companion/internal/media"
	"github.com/ahmetk3436/companion/internal/metrics"
	"github.com/ahmetk3436/companion/internal/routes"
	"github.com/ahmetk3436/companion/internal/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ServeFlags struct {
	Port    string
	Migrate bool
}

func NewServeFlags() *ServeFlags {
	return &ServeFlags{Migrate: true}
}

func (f *ServeFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Port, "port", f.Port, "Port to listen on (overrides PORT)")
	fs.BoolVar(&f.Migrate, "migrate", f.Migrate, "Run schema migrations before serving")
}

func NewServeCommand() *cobra.Command {
	f := NewServeFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the companion API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if f.Port != "" {
				cfg.Port = f.Port
			}
			return serve(cfg, f)
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}

func serve(cfg *config.Config, f *ServeFlags) error {
	slog.Info("Starting companion", "version", handlers.Version)

	// ─── Database ────────────────────────────────────────────────────────
	db, err := database.Connect(cfg)
	if err != nil {
		return errors.WithMessage(err, "database connection failed")
	}
	if f.Migrate {
		if err := database.Migrate(db); err != nil {
			return errors.Wrap(err, "database migration failed")
		}
	}

	// ─── Generated assets ────────────────────────────────────────────────
	assets := media.NewAssetStore(cfg.GeneratedDir, cfg.PublicPrefix)
	if err := assets.EnsureDir(); err != nil {
		return err
	}

	// ─── Upstream clients ────────────────────────────────────────────────
	completer := chat.NewOpenAICompleter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel)
	if cfg.ZAIAPIKey == "" {
		slog.Warn("ZAI_API_KEY not set, media generation requests will fail upstream")
	}
	provider := media.NewHTTPProvider(cfg.ZAIAPIURL, cfg.ZAIAPIKey, cfg.GenerationTimeout)

	// ─── Handlers ───────────────────────────────────────────────────────
	m := metrics.New()
	characters := store.NewCharacterStore(db)

	systemHandler := handlers.NewSystemHandler(db, characters)
	characterHandler := handlers.NewCharacterHandler(characters)
	chatHandler := handlers.NewChatHandler(completer, m)
	mediaHandler := handlers.NewMediaHandler(provider, assets, m)

	// ─── Fiber App ──────────────────────────────────────────────────────
	app := routes.NewApp(m)
	routes.Setup(app, m, cfg.GeneratedDir, cfg.PublicPrefix,
		systemHandler, characterHandler, chatHandler, mediaHandler)

	// ─── Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down companion...")

		if err := app.Shutdown(); err != nil {
			slog.Error("Fiber shutdown error", "error", err)
		}

		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// ─── Start ──────────────────────────────────────────────────────────
	listenAddr := ":" + cfg.Port
	slog.Info("companion listening", "addr", listenAddr)

	return app.Listen(listenAddr)
}
