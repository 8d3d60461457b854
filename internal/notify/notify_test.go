// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestPing_SubmitsPayload: the submission body carries host, key, and the URL
list, and an accepting endpoint marks the run successful.
*/
func TestPing_SubmitsPayload(t *testing.T) {
	var received payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		assert.Equal(t, "application/json; charset=utf-8", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	pinger := NewPinger(server.Client(), []string{server.URL}, "kisetsu.app", "secret-key", slog.Default())
	result := pinger.Ping(context.Background(), []string{"https://kisetsu.app/anime/frieren"})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Submitted)
	assert.Equal(t, "kisetsu.app", received.Host)
	assert.Equal(t, "secret-key", received.Key)
	assert.Equal(t, []string{"https://kisetsu.app/anime/frieren"}, received.URLList)
}

/*
TestPing_OneAcceptingEndpointSuffices: endpoints share submissions, so one
202 among failures still counts as success.
*/
func TestPing_OneAcceptingEndpointSuffices(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer rejecting.Close()

	accepting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer accepting.Close()

	pinger := NewPinger(nil, []string{rejecting.URL, accepting.URL}, "kisetsu.app", "k", slog.Default())
	result := pinger.Ping(context.Background(), []string{"https://kisetsu.app/anime/a"})

	require.Len(t, result.Endpoints, 2)
	assert.False(t, result.Endpoints[0].Accepted)
	assert.True(t, result.Endpoints[1].Accepted)
	assert.True(t, result.Success)
}

/*
TestPing_AllEndpointsFailing: no accepting endpoint means no success, but
still no error or panic.
*/
func TestPing_AllEndpointsFailing(t *testing.T) {
	pinger := NewPinger(nil, []string{"http://127.0.0.1:1/indexnow"}, "kisetsu.app", "k", slog.Default())

	result := pinger.Ping(context.Background(), []string{"https://kisetsu.app/anime/a"})

	assert.False(t, result.Success)
	require.Len(t, result.Endpoints, 1)
	assert.False(t, result.Endpoints[0].Accepted)
}

/*
TestPing_EmptyList is a successful no-op.
*/
func TestPing_EmptyList(t *testing.T) {
	pinger := NewPinger(nil, nil, "kisetsu.app", "k", slog.Default())

	result := pinger.Ping(context.Background(), nil)

	assert.True(t, result.Success)
	assert.Zero(t, result.Submitted)
	assert.Empty(t, result.Endpoints)
}

/*
TestAnimeURLs builds canonical public page URLs.
*/
func TestAnimeURLs(t *testing.T) {
	urls := AnimeURLs("kisetsu.app", []string{"frieren", "dandadan"})

	assert.Equal(t, []string{
		"https://kisetsu.app/anime/frieren",
		"https://kisetsu.app/anime/dandadan",
	}, urls)
}
