// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"time"

	"github.com/pterm/pterm"

	"lodgeportal/cli/internal/manifest"
)

// Options tune the HTTP gateway.
type Options struct {
	Timeout   time.Duration
	Client    *http.Client
	UserAgent string
	Logger    *pterm.Logger
}

// New creates the REST gateway for the portal at baseURL.
func New(baseURL string, endpoints manifest.HTTPEndpoints, opts Options) API {
	return newHTTP(baseURL, endpoints, opts)
}
