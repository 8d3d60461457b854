// Copyright (c) 2026 Kisetsu. All rights reserved.
// Author: dev@kisetsu.app

package kitsu

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the catalog API.
//
// Retryable mirrors the HTTP taxonomy: 429 and 5xx are transient, every other
// 4xx is a caller mistake that repeating will not fix.
type APIError struct {
	// StatusCode is the HTTP status of the failed response.
	StatusCode int
	// Detail is the first 'errors[].detail' entry from the response body,
	// or "" when the body carried no parseable error document.
	Detail string
	// Retryable marks transient failures eligible for backoff-and-retry.
	Retryable bool
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("kitsu: API error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("kitsu: API error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// errorDocument is the JSON:API error body shape.
type errorDocument struct {
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// newAPIError classifies a non-2xx status and extracts the error detail from
// the body when one is present.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Retryable:  statusCode == http.StatusTooManyRequests || statusCode >= 500,
	}

	var doc errorDocument
	if err := json.Unmarshal(body, &doc); err == nil && len(doc.Errors) > 0 {
		if doc.Errors[0].Detail != "" {
			apiErr.Detail = doc.Errors[0].Detail
		} else {
			apiErr.Detail = doc.Errors[0].Title
		}
	}

	return apiErr
}

// IsRetryable reports whether err warrants backoff-and-retry.
//
// API errors carry an explicit flag. Anything else that reaches the retry
// loop is a transport-level failure (connection refused, timeout, DNS), which
// is transient by assumption.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return true
}
