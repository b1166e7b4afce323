package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/sailbuddy/foundation/spotify"
	"github.com/olusolaa/sailbuddy/foundation/youtube"
)

type fakeTracks struct {
	tracks   []spotify.Track
	err      error
	gotLimit int
}

func (f *fakeTracks) SavedTracks(_ context.Context, limit int) ([]spotify.Track, error) {
	f.gotLimit = limit
	return f.tracks, f.err
}

type fakeSearcher struct {
	videos   []youtube.Video
	err      error
	gotQuery string
	gotLimit int
}

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) ([]youtube.Video, error) {
	f.gotQuery = query
	f.gotLimit = limit
	return f.videos, f.err
}

func TestToolInfo(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		tool tool.InvokableTool
		want string
	}{
		{name: "music", tool: NewMusicTool(&fakeTracks{}, 30), want: "Spotify Tool"},
		{name: "video", tool: NewVideoTool(&fakeSearcher{}, 2), want: "YouTube"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := tt.tool.Info(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Name)
			assert.NotEmpty(t, info.Desc)
		})
	}
}

func TestMusicTool_Run(t *testing.T) {
	src := &fakeTracks{tracks: []spotify.Track{{Name: "A", Link: "http://x"}}}
	mt := NewMusicTool(src, 30)

	out, err := mt.InvokableRun(context.Background(), "anything cheerful")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"A","link":"http://x"}]`, out)
	assert.Equal(t, 30, src.gotLimit)
}

func TestMusicTool_EmptyAndError(t *testing.T) {
	out, err := NewMusicTool(&fakeTracks{}, 30).InvokableRun(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	upstream := errors.New("token expired")
	_, err = NewMusicTool(&fakeTracks{err: upstream}, 30).InvokableRun(context.Background(), "")
	require.ErrorIs(t, err, upstream)
}

func TestVideoTool_ParsesInput(t *testing.T) {
	tests := []struct {
		input     string
		wantQuery string
		wantLimit int
	}{
		{input: "relaxing music", wantQuery: "relaxing music", wantLimit: 2},
		{input: "relaxing music,5", wantQuery: "relaxing music", wantLimit: 5},
		{input: "rain, thunder", wantQuery: "rain, thunder", wantLimit: 2},
		{input: "lofi,0", wantQuery: "lofi,0", wantLimit: 2},
		{input: `{"query":"sea shanties","count":3}`, wantQuery: "sea shanties", wantLimit: 3},
		{input: `{"query":"sea shanties"}`, wantQuery: "sea shanties", wantLimit: 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &fakeSearcher{videos: []youtube.Video{{Name: "V", Link: "https://www.youtube.com/watch?v=abc"}}}
			out, err := NewVideoTool(s, 2).InvokableRun(context.Background(), tt.input)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"name":"V","link":"https://www.youtube.com/watch?v=abc"}]`, out)
			assert.Equal(t, tt.wantQuery, s.gotQuery)
			assert.Equal(t, tt.wantLimit, s.gotLimit)
		})
	}
}

func TestVideoTool_Error(t *testing.T) {
	upstream := errors.New("status 503")
	_, err := NewVideoTool(&fakeSearcher{err: upstream}, 2).InvokableRun(context.Background(), "waves")
	require.ErrorIs(t, err, upstream)
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(ctx, NewMusicTool(&fakeTracks{}, 30), NewVideoTool(&fakeSearcher{}, 2))
	require.NoError(t, err)

	assert.Equal(t, []string{"Spotify Tool", "YouTube"}, r.Names())
	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, musicToolDesc, list[0].Description)

	assert.Equal(t, "Spotify Tool: "+musicToolDesc+"\nYouTube: "+videoToolDesc, r.Describe())

	_, ok := r.Lookup("YouTube")
	assert.True(t, ok)
	_, ok = r.Lookup("youtube")
	assert.False(t, ok)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(context.Background(), NewVideoTool(&fakeSearcher{}, 2), NewVideoTool(&fakeSearcher{}, 3))
	require.ErrorIs(t, err, ErrDuplicateTool)
}

func TestRegistry_Invoke(t *testing.T) {
	ctx := context.Background()
	src := &fakeTracks{tracks: []spotify.Track{{Name: "A", Link: "http://x"}}}
	r, err := NewRegistry(ctx, NewMusicTool(src, 30))
	require.NoError(t, err)

	out, err := r.Invoke(ctx, "Spotify Tool", "")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"A","link":"http://x"}]`, out)

	_, err = r.Invoke(ctx, "Calculator", "")
	require.ErrorIs(t, err, ErrUnknownTool)
}
