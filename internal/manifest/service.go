package manifest

import (
	"context"
	"net/http"

	"github.com/pterm/pterm"
)

// Options tune GetEndpoints.
type Options struct {
	Client       *http.Client
	PublicKeyPEM string
	Logger       *pterm.Logger
}

// GetEndpoints returns the portal endpoints for baseURL, using the RAM cache if available.
// A portal that publishes no manifest (or one that fails verification) gets Defaults;
// the fallback is logged at debug level and cached so it is not retried in-process.
func GetEndpoints(ctx context.Context, baseURL string, opts Options) *Manifest {
	if cached := GetCached(baseURL); cached != nil {
		return cached
	}

	client := opts.Client
	if client == nil {
		client = defaultClient
	}

	m, err := fetchFromServer(ctx, client, baseURL, opts.PublicKeyPEM)
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.Debug("using default endpoints", opts.Logger.Args("reason", err.Error()))
		}
		m = Defaults()
	}

	SetCached(baseURL, m)
	return m
}
