package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/gjson"

	"github.com/olusolaa/sailbuddy/foundation/youtube"
)

const (
	VideoToolName = "YouTube"
	videoToolDesc = "You are a mental health assistant. Suggest relevant videos on YouTube. Your goal is to improve the user's mood."
)

// VideoSearcher finds videos for a free-text query.
type VideoSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]youtube.Video, error)
}

// VideoTool searches YouTube on the agent's behalf.
type VideoTool struct {
	searcher     VideoSearcher
	defaultCount int
}

var _ tool.InvokableTool = (*VideoTool)(nil)

func NewVideoTool(searcher VideoSearcher, defaultCount int) *VideoTool {
	if defaultCount < 1 {
		defaultCount = 2
	}
	return &VideoTool{searcher: searcher, defaultCount: defaultCount}
}

func (t *VideoTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: VideoToolName, Desc: videoToolDesc}, nil
}

// InvokableRun accepts "search terms" or "search terms,count", or a JSON
// object with "query" and optional "count". The result is a JSON array of
// {name, link} records.
func (t *VideoTool) InvokableRun(ctx context.Context, input string, _ ...tool.Option) (string, error) {
	query, count := t.parseInput(input)

	videos, err := t.searcher.Search(ctx, query, count)
	if err != nil {
		return "", fmt.Errorf("search videos: %w", err)
	}
	if videos == nil {
		videos = []youtube.Video{}
	}

	out, err := json.Marshal(videos)
	if err != nil {
		return "", fmt.Errorf("encode videos: %w", err)
	}
	return string(out), nil
}

func (t *VideoTool) parseInput(input string) (string, int) {
	input = strings.TrimSpace(input)
	count := t.defaultCount

	if gjson.Valid(input) {
		if obj := gjson.Parse(input); obj.IsObject() {
			if c := obj.Get("count").Int(); c > 0 {
				count = int(c)
			}
			return strings.TrimSpace(obj.Get("query").String()), count
		}
	}

	if i := strings.LastIndex(input, ","); i >= 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(input[i+1:])); err == nil && n > 0 {
			return strings.TrimSpace(input[:i]), n
		}
	}
	return input, count
}
