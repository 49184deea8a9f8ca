package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/storyimport/internal/core"
	"github.com/JonMunkholm/storyimport/internal/store"
)

func newAttachMediaCmd(a *app) *cobra.Command {
	var audio, thumbnail string

	cmd := &cobra.Command{
		Use:   "attach-media <story-name>",
		Short: "Set the audio and thumbnail of a story",
		Long: `Sets story_audio and thumbnail_image on an existing story. A field that
already holds a value is left unchanged. With neither flag the command only
checks that the story exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := a.connectDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc, err := core.NewService(store.NewPostgres(pool), core.Options{
				SourcePath:  a.cfg.Import.SourcePath,
				MappingPath: a.cfg.Import.MappingPath,
			})
			if err != nil {
				return err
			}

			return attachMedia(ctx, svc, cmd.OutOrStdout(), args[0], audio, thumbnail)
		},
	}

	cmd.Flags().StringVar(&audio, "audio", "", "Audio file reference")
	cmd.Flags().StringVar(&thumbnail, "thumbnail", "", "Thumbnail image reference")
	return cmd
}

type mediaAttacher interface {
	AttachMedia(ctx context.Context, storyName, audio, thumbnail string) (string, error)
}

// attachMedia prints the same {"status":"ok"} body as the HTTP route,
// including when no media value was given.
func attachMedia(ctx context.Context, svc mediaAttacher, out io.Writer, storyName, audio, thumbnail string) error {
	name, err := svc.AttachMedia(ctx, storyName, audio, thumbnail)
	if err != nil {
		return userError(err)
	}
	return writeJSON(out, map[string]string{"status": "ok", "story": name})
}
