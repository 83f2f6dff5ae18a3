// Package engine is the facade over the Docker Engine API: one long-lived
// handle shared by every request, with connection-target resolution
// (local socket, tcp://, ssh:// with ssh-config alias rewriting) and a
// uniform error taxonomy at the boundary.
package engine

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/docker/cli/cli/connhelper"
	"github.com/docker/docker/client"
)

// Client is the single shared engine handle. It is constructed once at
// startup and is safe for concurrent use; the SDK's own transport
// guarantees apply to individual calls.
type Client struct {
	api  client.APIClient
	host string
}

type options struct {
	host              string
	acceptNewHostKeys bool
	lookup            sshLookup
}

// Option configures Connect.
type Option func(*options)

// WithHost sets an explicit connection target, overriding DOCKER_HOST.
func WithHost(host string) Option {
	return func(o *options) { o.host = host }
}

// WithAcceptNewHostKeys makes ssh:// connections trust previously unseen
// host keys (StrictHostKeyChecking=accept-new) instead of failing.
func WithAcceptNewHostKeys() Option {
	return func(o *options) { o.acceptNewHostKeys = true }
}

func withSSHLookup(lookup sshLookup) Option {
	return func(o *options) { o.lookup = lookup }
}

// Connect resolves the target, builds the SDK client and verifies the
// engine answers a ping. Target precedence: WithHost, then DOCKER_HOST,
// then the platform default socket. The handle is never re-created per
// request.
func Connect(ctx context.Context, opts ...Option) (*Client, error) {
	o := options{lookup: userSSHConfig}
	for _, opt := range opts {
		opt(&o)
	}
	if o.host == "" {
		o.host = hostFromEnv()
	}

	host, err := resolveTarget(o.host, o.lookup)
	if err != nil {
		return nil, err
	}

	api, err := newAPIClient(host, o.acceptNewHostKeys)
	if err != nil {
		return nil, &ConnectionError{Host: host, Err: err}
	}

	if _, err := api.Ping(ctx); err != nil {
		_ = api.Close()
		return nil, &ConnectionError{Host: host, Err: err}
	}

	slog.Debug("Connected to docker engine.", "host", displayHost(host))
	return &Client{api: api, host: host}, nil
}

// NewFromAPI wraps an existing SDK client. Used by tests and callers that
// manage their own connection.
func NewFromAPI(api client.APIClient, host string) *Client {
	return &Client{api: api, host: host}
}

func newAPIClient(host string, acceptNewHostKeys bool) (client.APIClient, error) {
	if host == "" {
		return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	}

	if strings.HasPrefix(host, "ssh://") {
		var sshFlags []string
		if acceptNewHostKeys {
			sshFlags = append(sshFlags, "-o", "StrictHostKeyChecking=accept-new")
		}
		helper, err := connhelper.GetConnectionHelperWithSSHOpts(host, sshFlags)
		if err != nil {
			return nil, err
		}
		httpClient := &http.Client{
			Transport: &http.Transport{DialContext: helper.Dialer},
		}
		return client.NewClientWithOpts(
			client.WithHTTPClient(httpClient),
			client.WithHost(helper.Host),
			client.WithDialContext(helper.Dialer),
			client.WithAPIVersionNegotiation(),
		)
	}

	return client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
}

// Ping verifies the engine still answers. Used by diagnostics.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.Ping(ctx); err != nil {
		return &EngineError{Op: "ping engine", Err: err}
	}
	return nil
}

// Host returns the resolved connection target, empty for the default
// socket.
func (c *Client) Host() string { return c.host }

func (c *Client) Close() error { return c.api.Close() }

func displayHost(host string) string {
	if host == "" {
		return "default socket"
	}
	return host
}

// ShortID truncates an engine-assigned id to the familiar 12-character
// form used in listings and results.
func ShortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
