package main

import (
	"context"
	"fmt"

	"github.com/olusolaa/sailbuddy/foundation/config"
	"github.com/olusolaa/sailbuddy/foundation/tools"
	"github.com/olusolaa/sailbuddy/foundation/youtube"
)

// setupTools registers the agent's tools in the order the prompt lists them.
func setupTools(ctx context.Context, settings *config.Settings, tracks tools.TrackSource) (*tools.Registry, error) {
	registry, err := tools.NewRegistry(ctx,
		tools.NewMusicTool(tracks, settings.Spotify.SavedTracksLimit),
		tools.NewVideoTool(youtube.NewSearcher(), settings.YouTube.Results),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tools: %w", err)
	}
	return registry, nil
}
