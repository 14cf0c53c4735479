package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crmarques/ddiconf/monitoring"
	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/server"
)

const maxResponseBytes = 1 << 20

// execute performs one request. Any response the platform produced is
// returned with its decoded body; only failures to exchange a request at all
// are errors.
func (g *Gateway) execute(ctx context.Context, method string, requestPath string, body resource.Value) (server.Response, error) {
	resolvedPath := normalizeRequestPath(requestPath)
	if resolvedPath == "" {
		return server.Response{}, validationError("request path is required", nil)
	}

	ctx, span := monitoring.StartRequestSpan(ctx, method, stripQuery(resolvedPath))
	defer span.End()

	started := time.Now()
	response, err := g.roundTrip(ctx, method, resolvedPath, body)
	monitoring.RecordRemoteRequest(method, response.StatusCode, err, time.Since(started))
	monitoring.RecordSpanError(span, err)
	return response, err
}

func (g *Gateway) roundTrip(ctx context.Context, method string, requestPath string, body resource.Value) (server.Response, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return server.Response{}, transportError("request rate limiter wait failed", err)
		}
	}

	request, err := g.newRequest(ctx, method, requestPath, body)
	if err != nil {
		return server.Response{}, err
	}

	response, err := g.doRequest(ctx, request)
	if err != nil {
		return server.Response{}, transportError("remote request failed", err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return server.Response{}, transportError("failed to read remote response body", err)
	}

	decoded, err := decodeResponseBody(payload)
	if err != nil {
		return server.Response{}, err
	}

	return server.Response{
		StatusCode: response.StatusCode,
		Body:       decoded,
		Header:     response.Header.Clone(),
	}, nil
}

func (g *Gateway) newRequest(ctx context.Context, method string, requestPath string, body resource.Value) (*http.Request, error) {
	targetURL := g.resolveRequestURL(requestPath)

	requestBody, err := encodeRequestBody(body)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if len(requestBody) > 0 {
		bodyReader = bytes.NewReader(requestBody)
	}

	request, err := http.NewRequestWithContext(ctx, method, targetURL, bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	if len(g.defaultHeaders) > 0 {
		keys := make([]string, 0, len(g.defaultHeaders))
		for key := range g.defaultHeaders {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			request.Header.Set(key, g.defaultHeaders[key])
		}
	}

	request.Header.Set("Accept", defaultMediaType)
	if len(requestBody) > 0 {
		request.Header.Set("Content-Type", defaultMediaType)
	}
	request.Header.Set(requestIDHeader, g.newRequestID())

	if err := g.applyAuth(request); err != nil {
		return nil, err
	}

	return request, nil
}

// resolveRequestURL places requestPath under the base URL and API prefix. The
// query part is expected to be encoded already.
func (g *Gateway) resolveRequestURL(requestPath string) string {
	pathPart, rawQuery, _ := strings.Cut(requestPath, "?")

	target := *g.baseURL
	target.Path = joinBaseAndRequestPath(joinBaseAndRequestPath(g.baseURL.Path, g.apiPrefix), pathPart)
	target.RawPath = ""
	target.RawQuery = rawQuery

	return target.String()
}

func normalizeRequestPath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}

	pathPart, rawQuery, hasQuery := strings.Cut(trimmed, "?")
	if pathPart != "/" {
		pathPart = strings.TrimSuffix(pathPart, "/")
	}
	if hasQuery {
		return pathPart + "?" + rawQuery
	}
	return pathPart
}

func joinBaseAndRequestPath(basePath string, requestPath string) string {
	normalizedBase := normalizeRequestPath(basePath)
	if normalizedBase == "" {
		normalizedBase = "/"
	}

	normalizedRequest := normalizeRequestPath(requestPath)
	if normalizedRequest == "" || normalizedRequest == "/" {
		return normalizedBase
	}

	joined := path.Join(normalizedBase, strings.TrimPrefix(normalizedRequest, "/"))
	if !strings.HasPrefix(joined, "/") {
		return "/" + joined
	}
	return joined
}

func stripQuery(requestPath string) string {
	pathPart, _, _ := strings.Cut(requestPath, "?")
	return pathPart
}

func newRequestID() string {
	return uuid.NewString()
}
