// Package mockplane is an in-memory stand-in for the action control plane.
// It serves the namespace-scoped REST surface the client consumes on a
// loopback listener, so tests exercise the real transport end to end. It
// is test and local-development tooling, not a production server.
package mockplane

import (
	"encoding/base64"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	// DefaultWaitWindow is how long a blocking invocation is held before
	// the server falls back to the 202 timeout-with-identifier response.
	DefaultWaitWindow = 60 * time.Second
	// DefaultRetention bounds how long activation records stay readable.
	DefaultRetention = 5 * time.Minute
)

type Server struct {
	app        *fiber.App
	store      *store
	auth       string
	waitWindow time.Duration
	retention  time.Duration
	listener   net.Listener
	url        string
}

type Option func(*Server)

// WithAuth requires the given key:secret pair on every request.
func WithAuth(pair string) Option {
	return func(s *Server) { s.auth = pair }
}

// WithWaitWindow shrinks or grows the blocking wait window.
func WithWaitWindow(d time.Duration) Option {
	return func(s *Server) { s.waitWindow = d }
}

// WithRetention bounds activation record lifetime.
func WithRetention(d time.Duration) Option {
	return func(s *Server) { s.retention = d }
}

func New(opts ...Option) *Server {
	s := &Server{
		waitWindow: DefaultWaitWindow,
		retention:  DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = newStore(s.retention)

	app := fiber.New(fiber.Config{
		AppName:               "mockplane",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(s.requireAuth)

	api := app.Group("/api/v1")
	api.Get("/namespaces/:namespace/actions", s.listActions)
	api.Get("/namespaces/:namespace/activations/:id", s.getActivation)
	api.Get("/namespaces/:namespace/actions/+", s.getAction)
	api.Put("/namespaces/:namespace/actions/+", s.putAction)
	api.Delete("/namespaces/:namespace/actions/+", s.deleteAction)
	api.Post("/namespaces/:namespace/actions/+", s.invokeAction)

	s.app = app
	return s
}

// Start binds a loopback listener on an ephemeral port and serves in the
// background. It returns the base URL.
func (s *Server) Start() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	s.listener = listener
	s.url = "http://" + listener.Addr().String()
	go func() {
		_ = s.app.Listener(listener)
	}()
	return s.url, nil
}

// URL returns the base URL once Start has run.
func (s *Server) URL() string { return s.url }

// Stop shuts the server down.
func (s *Server) Stop() error { return s.app.Shutdown() }

func (s *Server) requireAuth(c *fiber.Ctx) error {
	if s.auth == "" {
		return c.Next()
	}
	header := c.Get(fiber.HeaderAuthorization)
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return unauthorized(c)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil || string(decoded) != s.auth {
		return unauthorized(c)
	}
	return c.Next()
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "authentication failed",
	})
}
