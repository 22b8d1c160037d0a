package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"silsilah_go/internal/repository"
	"silsilah_go/internal/service"
)

func newImportCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.yaml|snapshot.json>",
		Short: "Import a Bani snapshot into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := service.LoadConfig(*cfgFile)
			if err != nil {
				return err
			}
			logger, err := service.NewLogger(cfg.Logger)
			if err != nil {
				return err
			}
			defer logger.Sync()

			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}

			db, err := repository.Open(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			bani := snap.Bani()
			if err := repository.NewPersonRepository(db).Import(cmd.Context(), bani, snap.Persons); err != nil {
				return service.FromStore(err, service.ErrDatabase, "failed to import snapshot")
			}

			logger.Info("snapshot imported",
				zap.String("bani_id", bani.ID),
				zap.Int("members", len(snap.Persons)))
			fmt.Fprintln(cmd.OutOrStdout(), bani.ID)
			return nil
		},
	}
}
