package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const initialDataPage = `<html><script>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[
{"itemSectionRenderer":{"contents":[
 {"adSlotRenderer":{}},
 {"videoRenderer":{"videoId":"aaaaaaaaaaa","title":{"runs":[{"text":"Calm Piano"}]},"navigationEndpoint":{"commandMetadata":{"webCommandMetadata":{"url":"/watch?v=aaaaaaaaaaa&pp=x"}}}}},
 {"videoRenderer":{"videoId":"bbbbbbbbbbb","title":{"runs":[{"text":"Ocean Waves"}]}}},
 {"videoRenderer":{"videoId":"ccccccccccc","title":{"runs":[{"text":"Third"}]}}}
]}}]}}}}};</script></html>`

func newTestSearcher(t *testing.T, page string, status int) (*Searcher, *string) {
	t.Helper()
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.WriteHeader(status)
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return NewSearcher(WithBaseURL(srv.URL)), &gotQuery
}

func TestSearch_ParsesInitialData(t *testing.T) {
	s, gotQuery := newTestSearcher(t, initialDataPage, http.StatusOK)

	videos, err := s.Search(context.Background(), "  relaxing music ", 2)
	require.NoError(t, err)

	assert.Equal(t, "relaxing music", *gotQuery)
	assert.Equal(t, []Video{
		{Name: "Calm Piano", Link: s.baseURL + "/watch?v=aaaaaaaaaaa&pp=x"},
		{Name: "Ocean Waves", Link: s.baseURL + "/watch?v=bbbbbbbbbbb"},
	}, videos)
}

func TestSearch_FallsBackToVideoIDs(t *testing.T) {
	page := `<html>"videoId":"ddddddddddd" junk "videoId":"ddddddddddd" "videoId":"eeeeeeeeeee"</html>`
	s, _ := newTestSearcher(t, page, http.StatusOK)

	videos, err := s.Search(context.Background(), "waves", 5)
	require.NoError(t, err)
	assert.Equal(t, []Video{
		{Name: "ddddddddddd", Link: s.baseURL + "/watch?v=ddddddddddd"},
		{Name: "eeeeeeeeeee", Link: s.baseURL + "/watch?v=eeeeeeeeeee"},
	}, videos)
}

func TestSearch_NoResults(t *testing.T) {
	s, _ := newTestSearcher(t, "<html></html>", http.StatusOK)

	videos, err := s.Search(context.Background(), "nothing", 2)
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestSearch_Errors(t *testing.T) {
	s, _ := newTestSearcher(t, "blocked", http.StatusServiceUnavailable)

	_, err := s.Search(context.Background(), "waves", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	_, err = s.Search(context.Background(), "   ", 2)
	require.Error(t, err)
}
