package main

import (
	"log/slog"

	"github.com/ahmetk3436/companion/internal/config"
	"github.com/ahmetk3436/companion/internal/database"
	"github.com/ahmetk3436/companion/internal/media"
	"github.com/ahmetk3436/companion/internal/seed"
	"github.com/ahmetk3436/companion/internal/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type SeedFlags struct {
	File string
}

func (f *SeedFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.File, "file", "", "YAML catalog to load instead of the built-in characters")
}

func NewSeedCommand() *cobra.Command {
	f := &SeedFlags{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all characters with the seed catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			inputs, err := seed.Load(f.File)
			if err != nil {
				return err
			}

			db, err := database.Connect(cfg)
			if err != nil {
				return errors.WithMessage(err, "database connection failed")
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					sqlDB.Close()
				}
			}()
			if err := database.Migrate(db); err != nil {
				return errors.Wrap(err, "database migration failed")
			}

			assets := media.NewAssetStore(cfg.GeneratedDir, cfg.PublicPrefix)
			if err := seed.Run(cmd.Context(), store.NewCharacterStore(db), assets, inputs); err != nil {
				return errors.WithMessage(err, "seeding failed")
			}

			slog.Info("Database seeded", "characters", len(inputs))
			return nil
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}
