// Package youtube searches YouTube videos by scraping the public results page.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://www.youtube.com"
	userAgent      = "Mozilla/5.0 (compatible; SailBuddy/1.0)"
)

var (
	initialDataMarkers = []string{"var ytInitialData = ", `window["ytInitialData"] = `}
	videoIDPattern     = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"`)
)

// Video is one search hit.
type Video struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Searcher queries the results page. It keeps no state between searches.
type Searcher struct {
	http    *resty.Client
	baseURL string
}

type Option func(*Searcher)

func WithBaseURL(baseURL string) Option {
	return func(s *Searcher) {
		s.baseURL = strings.TrimRight(baseURL, "/")
		s.http.SetBaseURL(s.baseURL)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Searcher) { s.http.SetTimeout(d) }
}

func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept-Language", "en-US,en;q=0.9"),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns at most limit videos for query, in the order YouTube ranks
// them. Results are not cached, paginated or retried.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query cannot be empty")
	}
	if limit < 1 {
		limit = 1
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("search_query", query).
		Get("/results")
	if err != nil {
		return nil, fmt.Errorf("youtube search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("youtube search returned status %d", resp.StatusCode())
	}

	page := resp.String()
	videos := s.parseInitialData(page, limit)
	if len(videos) == 0 {
		videos = s.parseVideoIDs(page, limit)
	}
	return videos, nil
}

// parseInitialData walks the JSON state embedded in the results page.
func (s *Searcher) parseInitialData(page string, limit int) []Video {
	data, ok := extractInitialData(page)
	if !ok {
		return nil
	}

	var videos []Video
	sections := gjson.Get(data, "contents.twoColumnSearchResultsRenderer.primaryContents.sectionListRenderer.contents")
	sections.ForEach(func(_, section gjson.Result) bool {
		section.Get("itemSectionRenderer.contents").ForEach(func(_, item gjson.Result) bool {
			renderer := item.Get("videoRenderer")
			id := renderer.Get("videoId").String()
			if id == "" {
				return true
			}
			suffix := renderer.Get("navigationEndpoint.commandMetadata.webCommandMetadata.url").String()
			if suffix == "" {
				suffix = "/watch?v=" + id
			}
			name := renderer.Get("title.runs.0.text").String()
			if name == "" {
				name = renderer.Get("title.simpleText").String()
			}
			videos = append(videos, Video{Name: name, Link: s.baseURL + suffix})
			return len(videos) < limit
		})
		return len(videos) < limit
	})
	return videos
}

// parseVideoIDs is the fallback when the embedded state cannot be read.
func (s *Searcher) parseVideoIDs(page string, limit int) []Video {
	var videos []Video
	seen := make(map[string]bool)
	for _, match := range videoIDPattern.FindAllStringSubmatch(page, -1) {
		id := match[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		videos = append(videos, Video{Name: id, Link: s.baseURL + "/watch?v=" + id})
		if len(videos) >= limit {
			break
		}
	}
	return videos
}

func extractInitialData(page string) (string, bool) {
	for _, marker := range initialDataMarkers {
		start := strings.Index(page, marker)
		if start < 0 {
			continue
		}
		rest := page[start+len(marker):]
		end := strings.Index(rest, ";</script>")
		if end < 0 {
			continue
		}
		data := rest[:end]
		if gjson.Valid(data) {
			return data, true
		}
	}
	return "", false
}
