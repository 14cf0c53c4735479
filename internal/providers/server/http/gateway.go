package http

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/crmarques/ddiconf/config"
	"github.com/crmarques/ddiconf/internal/providers/shared/tlsconfig"
	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/server"
)

const (
	defaultMediaType = "application/json"
	requestIDHeader  = "X-Request-ID"
)

var _ server.Client = (*Gateway)(nil)

// Gateway talks to the platform REST API. One Gateway may serve concurrent
// reconciliations; it holds no per-call state.
type Gateway struct {
	baseURL        *url.URL
	apiPrefix      string
	defaultHeaders map[string]string
	auth           authConfig
	client         *http.Client
	limiter        *rate.Limiter
	tlsDebug       tlsDebugInfo
	newRequestID   func() string
}

type GatewayOption func(*Gateway)

// WithHTTPClient replaces the client built from the platform settings. The
// configured timeout is kept when the replacement has none.
func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		if g == nil || client == nil {
			return
		}
		copied := *client
		if copied.Timeout == 0 {
			copied.Timeout = g.client.Timeout
		}
		g.client = &copied
	}
}

func WithRequestIDGenerator(generate func() string) GatewayOption {
	return func(g *Gateway) {
		if g == nil || generate == nil {
			return
		}
		g.newRequestID = generate
	}
}

func NewGateway(cfg config.Platform, opts ...GatewayOption) (*Gateway, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	auth, err := buildAuthConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := buildTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	apiPrefix := normalizeRequestPath(cfg.EffectiveAPIPrefix())

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	gateway := &Gateway{
		baseURL:        baseURL,
		apiPrefix:      apiPrefix,
		defaultHeaders: cloneStringMap(cfg.DefaultHeaders),
		auth:           auth,
		client: &http.Client{
			Timeout:   cfg.EffectiveTimeout(),
			Transport: transport,
		},
		limiter:      newLimiter(cfg.RequestsPerSecond, cfg.Burst),
		tlsDebug:     newTLSDebugInfo(cfg.TLS),
		newRequestID: newRequestID,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(gateway)
	}
	return gateway, nil
}

func (g *Gateway) Get(ctx context.Context, path string) (server.Response, error) {
	return g.execute(ctx, http.MethodGet, path, nil)
}

func (g *Gateway) Create(ctx context.Context, path string, body resource.Value) (server.Response, error) {
	return g.execute(ctx, http.MethodPost, path, body)
}

func (g *Gateway) Update(ctx context.Context, path string, body resource.Value) (server.Response, error) {
	return g.execute(ctx, http.MethodPatch, path, body)
}

func (g *Gateway) Delete(ctx context.Context, path string) (server.Response, error) {
	return g.execute(ctx, http.MethodDelete, path, nil)
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, validationError("platform.base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("platform.base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("platform.base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("platform.base-url host is required", nil)
	}

	if parsed.Path == "" {
		parsed.Path = "/"
	}
	parsed.RawQuery = ""

	return parsed, nil
}

func newLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func buildTLSConfig(tlsSettings *config.TLS) (*tls.Config, error) {
	return tlsconfig.BuildTLSConfig(tlsSettings, "platform")
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}

	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
