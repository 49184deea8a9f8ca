package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/storyimport/internal/store"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the story tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := a.connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := store.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
