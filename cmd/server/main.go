package main

import (
	"log/slog"
	"os"

	"github.com/ahmetk3436/companion/internal/handlers"
	"github.com/spf13/cobra"
)

var logLevel = "info"

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "AI companion chat service",
	Long: `companion serves a catalog of AI characters, relays chat turns to an
OpenAI compatible model, and stores generated images and speech.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return err
		}
		// JSON structured logging
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})))
		slog.Debug("debug logging enabled", "version", handlers.Version)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(
		NewServeCommand(),
		NewSeedCommand(),
	)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug,info,warn,error)")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("could not execute root command", "error", err)
		os.Exit(1)
	}
}
