package shab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"gazette_fetcher/internal/domain"
)

const (
	SourceID   = "shab"
	SourceName = "Swiss Official Gazette"

	// subRubricAuction is the foreclosure-auction classification; the
	// client only ever asks for this sub-rubric.
	subRubricAuction  = "SB01"
	publicationStates = "PUBLISHED,CANCELLED"

	dateFormat = "2006-01-02"
)

// Config holds gazette API client configuration.
type Config struct {
	BaseURL     string
	PageSize    int
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	ChunkDays   int
	ChunkDelay  time.Duration
}

// Client talks to the gazette listing and XML endpoints.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	pageSize    int
	maxAttempts int
	retryDelay  time.Duration
	chunkDays   int
	chunkDelay  time.Duration
	logger      *slog.Logger
}

// New creates a gazette API client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		pageSize:    cfg.PageSize,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		chunkDays:   cfg.ChunkDays,
		chunkDelay:  cfg.ChunkDelay,
		logger:      logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (c *Client) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (c *Client) Name() string {
	return SourceName
}

// FetchPublications fetches one page of auction publications published in
// [start, end] and resolves each item's raw XML. The XML fetches for a page
// run concurrently; if any one of them fails the whole page call fails.
// Partial tolerance is the processor's job at the batch level, not ours.
func (c *Client) FetchPublications(ctx context.Context, start, end time.Time, page int) ([]domain.PublicationData, error) {
	q := url.Values{}
	q.Set("publicationStates", publicationStates)
	q.Set("subRubrics", subRubricAuction)
	q.Set("publicationDate.start", start.Format(dateFormat))
	q.Set("publicationDate.end", end.Format(dateFormat))
	q.Set("pageRequest.page", fmt.Sprintf("%d", page))
	q.Set("pageRequest.size", fmt.Sprintf("%d", c.pageSize))

	listURL := fmt.Sprintf("%s/publications?%s", c.baseURL, q.Encode())

	var resp listResponse
	if err := c.getJSON(ctx, listURL, &resp); err != nil {
		return nil, fmt.Errorf("fetch publications page %d: %w", page, err)
	}

	c.logger.Debug("fetched listing page",
		"page", page,
		"items", len(resp.Content),
		"total", resp.Total,
	)

	pubs := make([]domain.PublicationData, len(resp.Content))

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range resp.Content {
		i, item := i, item
		g.Go(func() error {
			xmlContent, err := c.FetchPublicationXML(gctx, item.Meta.ID)
			if err != nil {
				return fmt.Errorf("fetch xml for %s: %w", item.Meta.ID, err)
			}
			pubs[i] = c.transform(item.Meta, xmlContent)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pubs, nil
}

// FetchPublicationXML fetches the raw XML representation of one
// publication. XML fetches are not retried.
func (c *Client) FetchPublicationXML(ctx context.Context, id string) (string, error) {
	reqURL := fmt.Sprintf("%s/publications/%s/xml", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &APIError{Message: "fetch publication xml", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Message: "read publication xml", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			Message:    "fetch publication xml",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return string(body), nil
}

// FetchDailyPublications fetches today's auction publications.
func (c *Client) FetchDailyPublications(ctx context.Context) ([]domain.PublicationData, error) {
	today := time.Now()
	return c.FetchPublications(ctx, today, today, 0)
}

// FetchHistoricalPublications backfills the last daysBack days. The window
// is split into chunkDays-sized chunks, fetched oldest-first and
// sequentially, with a delay between chunks to stay polite with the API.
func (c *Client) FetchHistoricalPublications(ctx context.Context, daysBack int) ([]domain.PublicationData, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -daysBack)

	var all []domain.PublicationData

	for chunkStart := start; !chunkStart.After(end); chunkStart = chunkStart.AddDate(0, 0, c.chunkDays) {
		chunkEnd := chunkStart.AddDate(0, 0, c.chunkDays-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		pubs, err := c.FetchPublications(ctx, chunkStart, chunkEnd, 0)
		if err != nil {
			return nil, fmt.Errorf("fetch chunk %s..%s: %w",
				chunkStart.Format(dateFormat), chunkEnd.Format(dateFormat), err)
		}
		all = append(all, pubs...)

		c.logger.Debug("fetched historical chunk",
			"start", chunkStart.Format(dateFormat),
			"end", chunkEnd.Format(dateFormat),
			"publications", len(pubs),
			"total", len(all),
		)

		if !chunkEnd.Before(end) {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.chunkDelay):
		}
	}

	return all, nil
}

// getJSON performs a GET with retry: on transport error or non-2xx it backs
// off linearly (retryDelay x attempt) up to maxAttempts, then surfaces the
// last failure.
func (c *Client) getJSON(ctx context.Context, reqURL string, v any) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.doJSON(ctx, reqURL, v)
		if lastErr == nil {
			return nil
		}

		if attempt == c.maxAttempts {
			break
		}

		backoff := c.retryDelay * time.Duration(attempt)
		c.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return &APIError{
		Message: fmt.Sprintf("after %d attempts", c.maxAttempts),
		Err:     lastErr,
	}
}

func (c *Client) doJSON(ctx context.Context, reqURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: "execute request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Message:    "unexpected status",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// setBrowserHeaders mimics a browser; the gazette rejects bare clients.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept-Language", "de-CH,de;q=0.9,fr;q=0.8,it;q=0.7")
}

func (c *Client) transform(meta itemMeta, xmlContent string) domain.PublicationData {
	canton := "Unknown"
	if len(meta.Cantons) > 0 {
		canton = meta.Cantons[0]
	}

	number := meta.PublicationNumber
	if number == "" {
		number = meta.ID
	}

	publicationDate, err := time.Parse(dateFormat, meta.PublicationDate)
	if err != nil {
		c.logger.Warn("failed to parse publication date",
			"publication_id", meta.ID,
			"date", meta.PublicationDate,
		)
		publicationDate = time.Now()
	}

	return domain.PublicationData{
		ID:                meta.ID,
		PublicationNumber: number,
		PublicationDate:   publicationDate,
		XMLContent:        xmlContent,
		Canton:            canton,
		Rubric:            meta.Rubric,
		SubRubric:         meta.SubRubric,
		Language:          meta.Language,
	}
}
