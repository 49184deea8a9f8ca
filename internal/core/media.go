package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/storyimport/internal/logging"
)

// Media fields of a story.
const (
	FieldStoryAudio     = "story_audio"
	FieldThumbnailImage = "thumbnail_image"
)

// AttachMedia sets the audio and thumbnail references of an existing story.
//
// Each field is written only if a value is given and the field is still
// empty: the first reference attached wins and later ones are ignored, also
// when two calls overlap. Calling it with no values is a no-op that still
// requires the story to exist. Returns the story name.
func (s *Service) AttachMedia(ctx context.Context, storyName, audio, thumbnail string) (string, error) {
	if storyName == "" {
		return "", ErrStoryNameRequired
	}

	applied, err := s.store.UpdateMedia(ctx, storyName, audio, thumbnail)
	if err != nil {
		return "", fmt.Errorf("save story %s: %w", storyName, err)
	}

	if audio != "" {
		s.recorder.MediaUpdated(FieldStoryAudio, applied.Audio)
	}
	if thumbnail != "" {
		s.recorder.MediaUpdated(FieldThumbnailImage, applied.Thumbnail)
	}

	logging.WithFields(ctx, "story", storyName).With(requesterFields(ctx)...).
		Info("media attached", "audio_set", applied.Audio, "thumbnail_set", applied.Thumbnail)
	return storyName, nil
}
