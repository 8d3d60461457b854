// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package kitsu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kisetsu-app/kisetsu/internal/core/season"
	"github.com/kisetsu-app/kisetsu/internal/platform/constants"
)

// Client fetches paginated seasonal anime pages from the catalog API.
//
// # Request Lifecycle
//
// Every page fetch runs a small state machine:
//
//	ATTEMPT(n) → SUCCESS
//	           → RETRYABLE_FAILURE → backoff → ATTEMPT(n+1)
//	           → FATAL_FAILURE
//
// A rate-limiter slot is acquired before every attempt, retries included, so
// the minimum call spacing holds even while a single page is being retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *Limiter
	backoff    BackoffPolicy
	maxRetries int
	logger     *slog.Logger
}

// NewClient constructs a catalog API client.
//
// # Parameters
//   - httpClient: Transport to use; nil selects a default with the standard
//     per-request timeout. Tests inject their own.
//   - baseURL: API root, e.g. "https://kitsu.io/api/edge".
//   - limiter: The process-wide shared rate limiter.
//   - logger: Structured logger for retry/pagination events.
func NewClient(httpClient *http.Client, baseURL string, limiter *Limiter, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.KitsuRequestTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    limiter,
		backoff:    DefaultBackoffPolicy(),
		maxRetries: constants.KitsuMaxRetries,
		logger:     logger.With(slog.String("component", "kitsu_client")),
	}
}

// # Page Fetching

// FetchPage retrieves a single page of the seasonal anime collection,
// retrying transient failures with capped exponential backoff.
//
// Page numbers start at 1.
func (client *Client) FetchPage(ctx context.Context, filter season.Filter, page int) (*Document, error) {
	for attempt := 0; ; attempt++ {

		// Every attempt, including retries, waits for a rate-limiter slot.
		if err := client.limiter.WaitForSlot(ctx); err != nil {
			return nil, fmt.Errorf("kitsu: rate limiter wait aborted: %w", err)
		}

		document, err := client.doRequest(ctx, filter, page)
		if err == nil {
			return document, nil
		}

		if !IsRetryable(err) {
			return nil, err
		}

		if attempt >= client.maxRetries {
			return nil, fmt.Errorf("kitsu: page %d failed after %d attempts: %w", page, attempt+1, err)
		}

		delay := Backoff(attempt, client.backoff)
		client.logger.Warn("kitsu_retrying",
			slog.Int("page", page),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)

		if err := sleepContext(ctx, delay); err != nil {
			return nil, fmt.Errorf("kitsu: backoff aborted: %w", err)
		}
	}
}

// FetchAllPages walks the collection from page 1 until the API stops
// advertising a next page, or the safety ceiling is reached.
//
// Pagination is inherently sequential: page N+1's existence is only known
// from page N's links.
func (client *Client) FetchAllPages(ctx context.Context, filter season.Filter) ([]*Document, error) {
	pages := make([]*Document, 0, 8)

	for page := 1; page <= constants.KitsuMaxPages; page++ {
		document, err := client.FetchPage(ctx, filter, page)
		if err != nil {
			return nil, err
		}
		pages = append(pages, document)

		if !document.HasNextPage() {
			return pages, nil
		}
	}

	client.logger.Warn("kitsu_page_ceiling_reached",
		slog.Int("max_pages", constants.KitsuMaxPages),
		slog.String("season", filter.Season.KitsuParam()),
		slog.Int("year", filter.Year),
	)
	return pages, nil
}

// # HTTP Plumbing

// doRequest performs one HTTP attempt for one page.
func (client *Client) doRequest(ctx context.Context, filter season.Filter, page int) (*Document, error) {
	requestURL, err := client.pageURL(filter, page)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("kitsu: build request: %w", err)
	}
	request.Header.Set("Accept", "application/vnd.api+json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		// Transport-level failure: retried by the caller.
		return nil, fmt.Errorf("kitsu: request failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("kitsu: read response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, newAPIError(response.StatusCode, body)
	}

	document := &Document{}
	if err := json.Unmarshal(body, document); err != nil {
		return nil, &APIError{
			StatusCode: response.StatusCode,
			Detail:     fmt.Sprintf("malformed JSON body: %v", err),
			Retryable:  false,
		}
	}

	return document, nil
}

// maxResponseBytes bounds response bodies; a Kitsu page is a few hundred KB
// at most.
const maxResponseBytes = 8 << 20

// pageURL builds the collection URL with the fixed filter, sort, and
// pagination parameters.
func (client *Client) pageURL(filter season.Filter, page int) (string, error) {
	base, err := url.Parse(client.baseURL)
	if err != nil {
		return "", fmt.Errorf("kitsu: invalid base URL %q: %w", client.baseURL, err)
	}
	base = base.JoinPath("anime")

	query := url.Values{}
	query.Set("filter[season]", filter.Season.KitsuParam())
	query.Set("filter[seasonYear]", strconv.Itoa(filter.Year))
	query.Set("page[limit]", strconv.Itoa(constants.KitsuPageSize))
	query.Set("page[offset]", strconv.Itoa((page-1)*constants.KitsuPageSize))
	// Most-popular first, so partially failed runs still cover the titles
	// users are most likely to look up.
	query.Set("sort", "-userCount")
	query.Set("include", "genres,categories")

	base.RawQuery = query.Encode()
	return base.String(), nil
}
