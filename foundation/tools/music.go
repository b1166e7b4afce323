package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/olusolaa/sailbuddy/foundation/spotify"
)

const (
	MusicToolName = "Spotify Tool"
	musicToolDesc = "You are a mental health assistant. You aim to make the user happy. Always suggest between 3 to 5 songs and not more than that unless the user asks for more. The output should strictly be in json format."
)

// TrackSource lists the user's saved tracks.
type TrackSource interface {
	SavedTracks(ctx context.Context, limit int) ([]spotify.Track, error)
}

// MusicTool exposes the user's saved tracks to the agent.
type MusicTool struct {
	source TrackSource
	limit  int
}

var _ tool.InvokableTool = (*MusicTool)(nil)

func NewMusicTool(source TrackSource, limit int) *MusicTool {
	return &MusicTool{source: source, limit: limit}
}

func (t *MusicTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: MusicToolName, Desc: musicToolDesc}, nil
}

// InvokableRun ignores its input; the saved-track list is not query specific.
// The result is a JSON array of {name, link} records.
func (t *MusicTool) InvokableRun(ctx context.Context, _ string, _ ...tool.Option) (string, error) {
	tracks, err := t.source.SavedTracks(ctx, t.limit)
	if err != nil {
		return "", fmt.Errorf("fetch saved tracks: %w", err)
	}
	if tracks == nil {
		tracks = []spotify.Track{}
	}

	out, err := json.Marshal(tracks)
	if err != nil {
		return "", fmt.Errorf("encode saved tracks: %w", err)
	}
	return string(out), nil
}
