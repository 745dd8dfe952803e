package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// HTTPClient paces provider requests. Each request is attempted once.
type HTTPClient struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// ClientOptions holds options for creating a new HTTPClient.
type ClientOptions struct {
	ProxyURL       string
	Timeout        time.Duration
	RequestsPerSec int
}

// NewHTTPClient creates a proxy-aware client with a request limiter.
func NewHTTPClient(opts ClientOptions) *HTTPClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 2
	}
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPClient{
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		Limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
	}
}

// Do waits for the limiter and sends the request.
func (c *HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.Client.Do(req.WithContext(ctx))
}
