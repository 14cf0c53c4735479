package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/crmarques/ddiconf/config"
	"github.com/crmarques/ddiconf/debugctx"
)

type tlsDebugInfo struct {
	enabled            bool
	insecureSkipVerify bool
	caCertFile         string
	clientCertFile     string
	clientKeyFile      string
}

func newTLSDebugInfo(tlsSettings *config.TLS) tlsDebugInfo {
	if tlsSettings == nil {
		return tlsDebugInfo{}
	}

	return tlsDebugInfo{
		enabled:            true,
		insecureSkipVerify: tlsSettings.InsecureSkipVerify,
		caCertFile:         strings.TrimSpace(tlsSettings.CACertFile),
		clientCertFile:     strings.TrimSpace(tlsSettings.ClientCertFile),
		clientKeyFile:      strings.TrimSpace(tlsSettings.ClientKeyFile),
	}
}

func (info tlsDebugInfo) mTLSEnabled() bool {
	return info.clientCertFile != "" && info.clientKeyFile != ""
}

func (g *Gateway) doRequest(ctx context.Context, request *http.Request) (*http.Response, error) {
	logger := debugctx.Logger(ctx).WithName("http").WithValues(
		"method", request.Method,
		"url", redactURLForDebug(request.URL),
		"request_id", request.Header.Get(requestIDHeader),
	)
	logger.V(1).Info("tls settings",
		"tls_enabled", g.tlsDebug.enabled,
		"mtls_enabled", g.tlsDebug.mTLSEnabled(),
		"tls_insecure_skip_verify", g.tlsDebug.insecureSkipVerify,
		"tls_ca_cert_file", g.tlsDebug.caCertFile,
	)
	logger.Info("http request")

	response, err := g.client.Do(request)
	if err != nil {
		logger.Error(err, "http request failed")
		return nil, err
	}

	logger.Info("http response", "status", response.StatusCode)
	return response, nil
}

// redactURLForDebug drops userinfo and masks every query value.
func redactURLForDebug(value *url.URL) string {
	if value == nil {
		return ""
	}

	cloned := *value
	cloned.User = nil

	query := cloned.Query()
	if len(query) > 0 {
		for key, values := range query {
			redacted := make([]string, len(values))
			for idx := range values {
				redacted[idx] = "<redacted>"
			}
			query[key] = redacted
		}
		cloned.RawQuery = query.Encode()
	}

	return cloned.String()
}
