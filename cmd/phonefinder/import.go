package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"phonefinder/internal/app"
	"phonefinder/internal/config"
)

func newImportCmd(cfg *config.Config) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a CSV catalog into the configured database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if cfg.DatabaseDriver() == "" {
				return fmt.Errorf("no database configured (set DATABASE_URL or SQLITE_PATH)")
			}

			cat, err := app.LoadCSVCatalog(csvPath, cfg)
			if err != nil {
				return err
			}

			repo, err := app.OpenRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := app.Import(ctx, repo, cat)
			if err != nil {
				return fmt.Errorf("import catalog: %w", err)
			}

			log.Info().Int("phones", n).Str("csv", csvPath).Str("driver", cfg.DatabaseDriver()).Msg("import complete")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d phones\n", n)
			return err
		},
	}

	cmd.Flags().StringVar(&csvPath, "catalog", "", "path to the CSV catalog (required)")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}
