package wallet

import (
	"net/http"

	"go.uber.org/zap"
)

type options struct {
	backend    Backend
	logger     *zap.Logger
	httpClient *http.Client
	pageSize   int
}

// Option configures wallet construction.
type Option func(*options)

// WithBackend replaces the gateway client, e.g. with a test double.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithLogger sets the wallet logger. The default is zap.L().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used to reach the gateway.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithPageSize sets the payment sync page size.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

func collectOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.L()
	}
	return o
}
