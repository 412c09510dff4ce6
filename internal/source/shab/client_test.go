package shab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(Config{
		BaseURL:     baseURL,
		PageSize:    100,
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		ChunkDays:   7,
		ChunkDelay:  time.Millisecond,
	}, logger)
}

func listingBody(metas ...itemMeta) []byte {
	resp := listResponse{Total: len(metas)}
	for _, m := range metas {
		resp.Content = append(resp.Content, listItem{Meta: m})
	}
	body, _ := json.Marshal(resp)
	return body
}

func TestFetchPublications(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/publications", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "SB01", q.Get("subRubrics"))
		assert.Equal(t, "PUBLISHED,CANCELLED", q.Get("publicationStates"))
		assert.Equal(t, "2024-06-01", q.Get("publicationDate.start"))
		assert.Equal(t, "2024-06-07", q.Get("publicationDate.end"))
		assert.Equal(t, "0", q.Get("pageRequest.page"))
		assert.Equal(t, "100", q.Get("pageRequest.size"))

		w.Write(listingBody(
			itemMeta{
				ID:                "pub-1",
				PublicationNumber: "SB01-0001",
				PublicationDate:   "2024-06-03",
				Rubric:            "SB",
				SubRubric:         "SB01",
				Language:          "de",
				Cantons:           []string{"ZH", "BE"},
			},
			itemMeta{
				ID:                "pub-2",
				PublicationNumber: "SB01-0002",
				PublicationDate:   "2024-06-05",
				Rubric:            "SB",
				SubRubric:         "SB01",
				Language:          "fr",
			},
		))
	})
	mux.HandleFunc("/publications/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		id := parts[len(parts)-2]
		fmt.Fprintf(w, "<publication id=%q/>", id)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv.URL)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)

	pubs, err := c.FetchPublications(context.Background(), start, end, 0)
	require.NoError(t, err)
	require.Len(t, pubs, 2)

	assert.Equal(t, "pub-1", pubs[0].ID)
	assert.Equal(t, "SB01-0001", pubs[0].PublicationNumber)
	assert.Equal(t, "ZH", pubs[0].Canton)
	assert.Equal(t, "de", pubs[0].Language)
	assert.Equal(t, `<publication id="pub-1"/>`, pubs[0].XMLContent)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), pubs[0].PublicationDate)

	// No canton list falls back to Unknown.
	assert.Equal(t, "pub-2", pubs[1].ID)
	assert.Equal(t, "Unknown", pubs[1].Canton)
	assert.Equal(t, `<publication id="pub-2"/>`, pubs[1].XMLContent)
}

func TestFetchPublications_RetriesListing(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/publications", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()

		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(listingBody(itemMeta{ID: "pub-1", PublicationDate: "2024-06-03"}))
	})
	mux.HandleFunc("/publications/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<publication/>"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv.URL)

	pubs, err := c.FetchPublications(context.Background(), time.Now(), time.Now(), 0)
	require.NoError(t, err)
	assert.Len(t, pubs, 1)
	assert.Equal(t, 3, attempts)
}

func TestFetchPublications_RetryExhausted(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.FetchPublications(context.Background(), time.Now(), time.Now(), 0)
	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestFetchPublications_XMLFailureFailsPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/publications", func(w http.ResponseWriter, r *http.Request) {
		w.Write(listingBody(
			itemMeta{ID: "good", PublicationDate: "2024-06-03"},
			itemMeta{ID: "gone", PublicationDate: "2024-06-03"},
		))
	})
	mux.HandleFunc("/publications/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "gone") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<publication/>"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.FetchPublications(context.Background(), time.Now(), time.Now(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestFetchPublicationXML_ErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("blocked"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.FetchPublicationXML(context.Background(), "pub-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "blocked", apiErr.Body)
}

func TestFetchHistoricalPublications_Chunks(t *testing.T) {
	type window struct {
		start string
		end   string
	}

	var mu sync.Mutex
	var windows []window

	mux := http.NewServeMux()
	mux.HandleFunc("/publications", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		windows = append(windows, window{
			start: q.Get("publicationDate.start"),
			end:   q.Get("publicationDate.end"),
		})
		n := len(windows)
		mu.Unlock()

		w.Write(listingBody(itemMeta{
			ID:              fmt.Sprintf("pub-%d", n),
			PublicationDate: q.Get("publicationDate.start"),
		}))
	})
	mux.HandleFunc("/publications/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<publication/>"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv.URL)

	pubs, err := c.FetchHistoricalPublications(context.Background(), 10)
	require.NoError(t, err)

	// 10 days at 7-day chunks means exactly two listing calls, oldest first,
	// contiguous and ending today.
	require.Len(t, windows, 2)
	assert.Len(t, pubs, 2)
	assert.Equal(t, "pub-1", pubs[0].ID)
	assert.Equal(t, "pub-2", pubs[1].ID)

	now := time.Now()
	assert.Equal(t, now.AddDate(0, 0, -10).Format(dateFormat), windows[0].start)
	assert.Equal(t, now.AddDate(0, 0, -4).Format(dateFormat), windows[0].end)
	assert.Equal(t, now.AddDate(0, 0, -3).Format(dateFormat), windows[1].start)
	assert.Equal(t, now.Format(dateFormat), windows[1].end)
}
