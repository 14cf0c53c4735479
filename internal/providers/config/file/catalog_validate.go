package file

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/crmarques/ddiconf/config"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

func validateCatalog(contextCatalog config.ContextCatalog) error {
	if len(contextCatalog.Contexts) == 0 {
		if contextCatalog.CurrentCtx != "" {
			return validationError("current-ctx must be empty when contexts list is empty", nil)
		}
		return nil
	}

	seen := map[string]struct{}{}
	for _, item := range contextCatalog.Contexts {
		if item.Name == "" {
			return validationError("context name must not be empty", nil)
		}
		if _, exists := seen[item.Name]; exists {
			return validationError(fmt.Sprintf("duplicate context name %q", item.Name), nil)
		}
		seen[item.Name] = struct{}{}

		if err := validateConfig(item); err != nil {
			return err
		}
	}

	if contextCatalog.CurrentCtx == "" {
		return validationError("current-ctx must be set when contexts are defined", nil)
	}
	if _, exists := seen[contextCatalog.CurrentCtx]; !exists {
		return validationError(fmt.Sprintf("current-ctx %q does not match any context", contextCatalog.CurrentCtx), nil)
	}

	return nil
}

func validateConfig(cfg config.Context) error {
	cfg = normalizeConfig(cfg)

	if err := structValidator.Struct(cfg); err != nil {
		return validationError(fmt.Sprintf("context %q is invalid", cfg.Name), describeValidation(err))
	}

	auth := cfg.Platform.Auth
	if countSet(auth.APIKey != nil, auth.BearerToken != nil, auth.CustomHeader != nil) != 1 {
		return validationError("platform.auth must define exactly one of api-key, bearer-token, custom-header", nil)
	}

	if tls := cfg.Platform.TLS; tls != nil {
		if (tls.ClientCertFile == "") != (tls.ClientKeyFile == "") {
			return validationError("platform.tls client-cert-file and client-key-file must be set together", nil)
		}
	}

	return nil
}

// describeValidation flattens validator field errors into one readable cause.
func describeValidation(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	parts := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		rule := fieldError.Tag()
		if fieldError.Param() != "" {
			rule += "=" + fieldError.Param()
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fieldError.Namespace(), rule))
	}
	return errors.New(strings.Join(parts, "; "))
}

func normalizeConfig(cfg config.Context) config.Context {
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Platform.BaseURL = strings.TrimSpace(cfg.Platform.BaseURL)
	cfg.Platform.APIPrefix = strings.TrimSpace(cfg.Platform.APIPrefix)
	cfg.Defaults.Ambiguity = strings.TrimSpace(cfg.Defaults.Ambiguity)
	return cfg
}

func applyConfigDefaults(cfg config.Context) config.Context {
	cfg = normalizeConfig(cfg)
	if cfg.Platform.APIPrefix == "" {
		cfg.Platform.APIPrefix = config.DefaultAPIPrefix
	}
	if cfg.Platform.Timeout.Duration <= 0 {
		cfg.Platform.Timeout = config.Duration{Duration: config.DefaultTimeout}
	}
	if cfg.Defaults.Ambiguity == "" {
		cfg.Defaults.Ambiguity = "take-first"
	}
	return cfg
}

// environmentOverrides reads the process-level overrides. Explicit selection
// overrides win over the environment.
func environmentOverrides(explicit map[string]string) map[string]string {
	merged := map[string]string{}
	if value := strings.TrimSpace(os.Getenv(config.BaseURLEnvVar)); value != "" {
		merged[config.OverrideBaseURL] = value
	}
	if value := strings.TrimSpace(os.Getenv(config.APIKeyEnvVar)); value != "" {
		merged[config.OverrideAPIKey] = value
	}
	for key, value := range explicit {
		merged[key] = value
	}
	return merged
}

func applyOverrides(cfg config.Context, overrides map[string]string) (config.Context, error) {
	for _, key := range sortedOverrideKeys(overrides) {
		value := overrides[key]
		switch key {
		case config.OverrideBaseURL:
			cfg.Platform.BaseURL = value
		case config.OverrideAPIKey:
			// an api key replaces whatever auth mode the catalog configured
			cfg.Platform.Auth = &config.Auth{APIKey: &config.TokenAuth{Token: value}}
		case "platform.api-prefix":
			cfg.Platform.APIPrefix = value
		case "defaults.ambiguity":
			cfg.Defaults.Ambiguity = value
		default:
			return config.Context{}, unknownOverrideError(key)
		}
	}

	return cfg, nil
}

func sortedOverrideKeys(overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func countSet(values ...bool) int {
	count := 0
	for _, value := range values {
		if value {
			count++
		}
	}
	return count
}
