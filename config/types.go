package config

import "time"

type ContextSelection struct {
	Name      string
	Overrides map[string]string
}

const (
	ContextFileEnvVar         = "DDICONF_CONTEXTS_FILE"
	BaseURLEnvVar             = "DDICONF_BASE_URL"
	APIKeyEnvVar              = "DDICONF_API_KEY"
	DefaultContextCatalogPath = "~/.ddiconf/contexts.yaml"
	DefaultAPIPrefix          = "/api/ddi/v1"
	DefaultTimeout            = 30 * time.Second

	OverrideBaseURL = "platform.base-url"
	OverrideAPIKey  = "platform.auth.api-key.token"
)

type ContextCatalog struct {
	Contexts   []Context `yaml:"contexts" validate:"dive"`
	CurrentCtx string    `yaml:"current-ctx"`
}

type Context struct {
	Name     string   `yaml:"name" validate:"required"`
	Platform Platform `yaml:"platform"`
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// Platform describes how to reach one DDI management platform.
type Platform struct {
	BaseURL           string            `yaml:"base-url" validate:"required,url"`
	APIPrefix         string            `yaml:"api-prefix,omitempty" validate:"omitempty,startswith=/"`
	Timeout           Duration          `yaml:"timeout,omitempty"`
	RequestsPerSecond float64           `yaml:"requests-per-second,omitempty" validate:"gte=0"`
	Burst             int               `yaml:"burst,omitempty" validate:"gte=0"`
	DefaultHeaders    map[string]string `yaml:"default-headers,omitempty"`
	Auth              *Auth             `yaml:"auth,omitempty" validate:"required"`
	TLS               *TLS              `yaml:"tls,omitempty"`
}

func (p Platform) EffectiveAPIPrefix() string {
	if p.APIPrefix == "" {
		return DefaultAPIPrefix
	}
	return p.APIPrefix
}

func (p Platform) EffectiveTimeout() time.Duration {
	if p.Timeout.Duration <= 0 {
		return DefaultTimeout
	}
	return p.Timeout.Duration
}

// Auth holds exactly one authentication mode.
type Auth struct {
	APIKey       *TokenAuth       `yaml:"api-key,omitempty"`
	BearerToken  *TokenAuth       `yaml:"bearer-token,omitempty"`
	CustomHeader *HeaderTokenAuth `yaml:"custom-header,omitempty"`
}

type TokenAuth struct {
	Token string `yaml:"token" validate:"required"`
}

type HeaderTokenAuth struct {
	Header string `yaml:"header" validate:"required"`
	Token  string `yaml:"token" validate:"required"`
}

type TLS struct {
	CACertFile         string `yaml:"ca-cert-file,omitempty"`
	ClientCertFile     string `yaml:"client-cert-file,omitempty"`
	ClientKeyFile      string `yaml:"client-key-file,omitempty"`
	ServerName         string `yaml:"server-name,omitempty"`
	MinVersion         string `yaml:"min-version,omitempty" validate:"omitempty,oneof=1.2 1.3"`
	InsecureSkipVerify bool   `yaml:"insecure-skip-verify,omitempty"`
}

type Defaults struct {
	Ambiguity string `yaml:"ambiguity,omitempty" validate:"omitempty,oneof=take-first error"`
}

// Duration decodes Go duration strings such as `30s`.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	if d.Duration == 0 {
		return []byte{}, nil
	}
	return []byte(d.Duration.String()), nil
}

func (d Duration) IsZero() bool {
	return d.Duration == 0
}
