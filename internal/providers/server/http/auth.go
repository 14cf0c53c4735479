package http

import (
	"net/http"
	"strings"

	"github.com/crmarques/ddiconf/config"
)

type authMode int

const (
	authModeUnknown authMode = iota
	authModeAPIKey
	authModeBearer
	authModeCustomHeader
)

type authConfig struct {
	mode   authMode
	header string
	token  string
}

func buildAuthConfig(cfg *config.Auth) (authConfig, error) {
	if cfg == nil {
		return authConfig{}, validationError("platform.auth is required", nil)
	}

	setCount := 0
	for _, set := range []bool{cfg.APIKey != nil, cfg.BearerToken != nil, cfg.CustomHeader != nil} {
		if set {
			setCount++
		}
	}
	if setCount != 1 {
		return authConfig{}, validationError("platform.auth must define exactly one auth mode", nil)
	}

	switch {
	case cfg.APIKey != nil:
		token := strings.TrimSpace(cfg.APIKey.Token)
		if token == "" {
			return authConfig{}, validationError("platform.auth.api-key.token is required", nil)
		}
		return authConfig{mode: authModeAPIKey, header: "Authorization", token: "Token " + token}, nil
	case cfg.BearerToken != nil:
		token := strings.TrimSpace(cfg.BearerToken.Token)
		if token == "" {
			return authConfig{}, validationError("platform.auth.bearer-token.token is required", nil)
		}
		return authConfig{mode: authModeBearer, header: "Authorization", token: "Bearer " + token}, nil
	case cfg.CustomHeader != nil:
		header := strings.TrimSpace(cfg.CustomHeader.Header)
		if header == "" || cfg.CustomHeader.Token == "" {
			return authConfig{}, validationError("platform.auth.custom-header requires header and token", nil)
		}
		return authConfig{mode: authModeCustomHeader, header: header, token: cfg.CustomHeader.Token}, nil
	default:
		return authConfig{}, validationError("platform.auth is invalid", nil)
	}
}

func (g *Gateway) applyAuth(request *http.Request) error {
	if g.auth.mode == authModeUnknown {
		return validationError("platform.auth mode is not configured", nil)
	}
	request.Header.Set(g.auth.header, g.auth.token)
	return nil
}
