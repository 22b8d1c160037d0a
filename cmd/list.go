package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"silsilah_go/internal/repository"
	"silsilah_go/internal/service"
)

func newListCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the Bani stored in the database",
		Args:  cobra.NoArgs,
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

			db, err := repository.Open(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := repository.NewPersonRepository(db).ListBani(cmd.Context())
			if err != nil {
				return service.FromStore(err, service.ErrDatabase, "failed to list bani")
			}
			out := cmd.OutOrStdout()
			for _, b := range list {
				visibility := "private"
				if b.IsPublic {
					visibility = "public"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", b.ID, visibility, b.Name)
			}
			return nil
		},
	}
}
