package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealscout/internal/config"
	"github.com/sells-group/dealscout/internal/source"
)

var importDataset string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-load a lead dataset into the Postgres directory table",
	Long:  "Copies leads from a YAML or XLSX dataset (or the built-in seed dataset) into the table named by source.postgres.table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Source.Postgres.DatabaseURL == "" {
			return eris.New("import: source.postgres.database_url is required")
		}

		ctx := cmd.Context()
		fb, err := buildFallback(ctx, config.FallbackConfig{DatasetPath: importDataset})
		if err != nil {
			return err
		}
		leads, err := fb.Search(ctx, source.Query{})
		if err != nil {
			return err
		}

		dir, err := source.NewPostgresDirectory(ctx, cfg.Source.Postgres.DatabaseURL, cfg.Source.Postgres.Table)
		if err != nil {
			return err
		}
		defer dir.Close()

		n, err := dir.Import(ctx, leads)
		if err != nil {
			return err
		}

		zap.L().Info("import complete", zap.Int64("rows", n), zap.String("table", cfg.Source.Postgres.Table))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d leads into %s\n", n, cfg.Source.Postgres.Table)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDataset, "dataset", "", "YAML or XLSX dataset to import (default: built-in seed)")
	rootCmd.AddCommand(importCmd)
}
