// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

/*
Package notify pushes freshly synced catalog pages to search engines via the
IndexNow protocol.

Notification is strictly best-effort: it runs after a sync has already been
persisted, and no failure here may affect the sync outcome. Success means at
least one endpoint accepted the batch, since IndexNow endpoints share
submissions with each other.
*/
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// maxURLsPerBatch is the protocol's documented per-submission ceiling.
const maxURLsPerBatch = 10000

// defaultTimeout bounds one endpoint submission.
const defaultTimeout = 10 * time.Second

// DefaultEndpoints are the IndexNow ingestion hosts pinged when none are
// configured.
var DefaultEndpoints = []string{
	"https://api.indexnow.org/indexnow",
	"https://www.bing.com/indexnow",
}

// payload is the IndexNow submission body.
type payload struct {
	Host    string   `json:"host"`
	Key     string   `json:"key"`
	URLList []string `json:"urlList"`
}

// EndpointStatus reports one endpoint's response to a submission.
type EndpointStatus struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status_code"`
	Accepted   bool   `json:"accepted"`
}

// Result reports one notification run.
type Result struct {
	Submitted int              `json:"submitted"`
	Endpoints []EndpointStatus `json:"endpoints"`
	Success   bool             `json:"success"`
}

// Pinger submits URL batches to IndexNow endpoints.
type Pinger struct {
	httpClient *http.Client
	endpoints  []string
	host       string
	key        string
	logger     *slog.Logger
}

// NewPinger constructs a pinger for the given site host and IndexNow key.
// A nil httpClient selects a default with a short timeout; empty endpoints
// select [DefaultEndpoints].
func NewPinger(httpClient *http.Client, endpoints []string, host, key string, logger *slog.Logger) *Pinger {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	return &Pinger{
		httpClient: httpClient,
		endpoints:  endpoints,
		host:       host,
		key:        key,
		logger:     logger.With(slog.String("component", "indexnow")),
	}
}

// Ping submits the given URLs to every configured endpoint. Oversized
// batches are truncated to the protocol ceiling. An empty list is a no-op
// reported as success.
func (pinger *Pinger) Ping(ctx context.Context, urls []string) *Result {
	if len(urls) == 0 {
		return &Result{Success: true}
	}
	if len(urls) > maxURLsPerBatch {
		pinger.logger.Warn("url_batch_truncated",
			slog.Int("submitted", maxURLsPerBatch),
			slog.Int("dropped", len(urls)-maxURLsPerBatch),
		)
		urls = urls[:maxURLsPerBatch]
	}

	body, err := json.Marshal(payload{Host: pinger.host, Key: pinger.key, URLList: urls})
	if err != nil {
		return &Result{Submitted: len(urls)}
	}

	result := &Result{Submitted: len(urls)}
	for _, endpoint := range pinger.endpoints {
		status := pinger.submit(ctx, endpoint, body)
		result.Endpoints = append(result.Endpoints, status)
		if status.Accepted {
			result.Success = true
		}
	}

	pinger.logger.Info("indexnow_ping_done",
		slog.Int("urls", result.Submitted),
		slog.Bool("success", result.Success),
	)
	return result
}

// submit posts one batch to one endpoint.
func (pinger *Pinger) submit(ctx context.Context, endpoint string, body []byte) EndpointStatus {
	status := EndpointStatus{Endpoint: endpoint}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return status
	}
	request.Header.Set("Content-Type", "application/json; charset=utf-8")

	response, err := pinger.httpClient.Do(request)
	if err != nil {
		pinger.logger.Warn("indexnow_endpoint_unreachable",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return status
	}
	defer func() { _ = response.Body.Close() }()

	status.StatusCode = response.StatusCode
	status.Accepted = response.StatusCode == http.StatusOK || response.StatusCode == http.StatusAccepted
	if !status.Accepted {
		pinger.logger.Warn("indexnow_endpoint_rejected",
			slog.String("endpoint", endpoint),
			slog.Int("status", response.StatusCode),
		)
	}
	return status
}

// AnimeURLs builds the public page URLs for a set of anime slugs.
func AnimeURLs(siteHost string, slugs []string) []string {
	urls := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		urls = append(urls, fmt.Sprintf("https://%s/anime/%s", siteHost, slug))
	}
	return urls
}
