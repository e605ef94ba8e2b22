package client

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"whisk-action-client/config"
)

// Client talks to the action control plane. It holds no state beyond its
// configuration and is safe for concurrent use; every call is an
// independent request/response exchange.
type Client struct {
	cfg        config.Config
	baseURL    string
	authUser   string
	authSecret string
	http       *http.Client
	logger     *zap.Logger
	metrics    *requestMetrics
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger attaches a structured logger; the default logs nothing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client, e.g. for an instrumented
// transport or custom connection pooling. Per-call timeouts still come from
// the configuration, so the supplied client should not set its own.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithMetrics registers request counters and latency histograms on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		if reg != nil {
			c.metrics = newRequestMetrics(reg)
		}
	}
}

// New builds a client from an explicit configuration.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultNamespace
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	if cfg.BlockingTimeout == 0 {
		cfg.BlockingTimeout = config.DefaultBlockingTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = config.DefaultUserAgent
	}

	user, secret := cfg.Credentials()
	c := &Client{
		cfg:        cfg,
		baseURL:    cfg.BaseURL(),
		authUser:   user,
		authSecret: secret,
		http:       &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Namespace returns the default namespace operations fall back to.
func (c *Client) Namespace() string {
	return c.cfg.Namespace
}

func (c *Client) namespaceOr(namespace string) string {
	if namespace != "" {
		return namespace
	}
	return c.cfg.Namespace
}
