package sdk

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

type options struct {
	timeout    time.Duration
	httpClient *http.Client
	userAgent  string
	requestID  func() string
}

func defaultOptions() options {
	return options{
		timeout:    30 * time.Second,
		httpClient: http.DefaultClient,
		userAgent:  "taskforce-sdk",
		requestID:  uuid.NewString,
	}
}

// Option configures the SDK client.
type Option func(*options)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithRequestIDGenerator overrides how X-Request-ID values are generated for
// calls whose context carries none.
func WithRequestIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.requestID = fn
		}
	}
}
