package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/storyimport/internal/core"
	"github.com/JonMunkholm/storyimport/internal/store"
)

// errRowsFailed makes the process exit non-zero under --fail-on-row-errors.
var errRowsFailed = errors.New("some rows failed to import")

func newImportCmd(a *app) *cobra.Command {
	var (
		source        string
		mapping       string
		migrate       bool
		failOnRowErrs bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import every row of the stories CSV",
		Long: `Reads the stories CSV, creates one story per new title and writes the
story_name,node_id mapping. Existing titles are skipped, so the command can
be rerun safely. The summary is printed as JSON on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source != "" {
				a.cfg.Import.SourcePath = source
			}
			if mapping != "" {
				a.cfg.Import.MappingPath = mapping
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := a.connectDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if migrate {
				if err := store.Migrate(ctx, pool); err != nil {
					return err
				}
			}

			svc, err := core.NewService(store.NewPostgres(pool), core.Options{
				SourcePath:  a.cfg.Import.SourcePath,
				MappingPath: a.cfg.Import.MappingPath,
			})
			if err != nil {
				return err
			}

			summary, err := svc.RunImport(ctx)
			if summary != nil {
				if werr := writeJSON(cmd.OutOrStdout(), summary); werr != nil {
					return werr
				}
			}
			if err != nil {
				return userError(err)
			}
			if failOnRowErrs && summary.FailedCount > 0 {
				return fmt.Errorf("%w: %d of %d", errRowsFailed, summary.FailedCount, summary.Total())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Stories CSV (default IMPORT_SOURCE_PATH)")
	cmd.Flags().StringVar(&mapping, "mapping", "", "Mapping output (default IMPORT_MAPPING_PATH)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply the schema before importing")
	cmd.Flags().BoolVar(&failOnRowErrs, "fail-on-row-errors", false, "Exit non-zero when any row fails")
	return cmd
}
