package tlsconfig

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/crmarques/ddiconf/config"
	"github.com/crmarques/ddiconf/faults"
)

func TestBuildTLSConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil_settings_use_defaults", func(t *testing.T) {
		t.Parallel()

		tlsConfig, err := BuildTLSConfig(nil, "platform")
		if err != nil || tlsConfig != nil {
			t.Fatalf("expected nil config and error, got %#v %v", tlsConfig, err)
		}
	})

	t.Run("server_name_and_min_version", func(t *testing.T) {
		t.Parallel()

		tlsConfig, err := BuildTLSConfig(&config.TLS{
			ServerName:         " csp.example.com ",
			MinVersion:         "1.3",
			InsecureSkipVerify: true,
		}, "platform")
		if err != nil {
			t.Fatalf("BuildTLSConfig returned error: %v", err)
		}
		if tlsConfig.ServerName != "csp.example.com" {
			t.Fatalf("unexpected server name %q", tlsConfig.ServerName)
		}
		if tlsConfig.MinVersion != tls.VersionTLS13 {
			t.Fatalf("expected TLS 1.3 minimum, got %x", tlsConfig.MinVersion)
		}
		if !tlsConfig.InsecureSkipVerify {
			t.Fatal("expected insecure skip verify to be carried")
		}
	})

	t.Run("default_min_version", func(t *testing.T) {
		t.Parallel()

		tlsConfig, err := BuildTLSConfig(&config.TLS{}, "platform")
		if err != nil {
			t.Fatalf("BuildTLSConfig returned error: %v", err)
		}
		if tlsConfig.MinVersion != tls.VersionTLS12 {
			t.Fatalf("expected TLS 1.2 minimum, got %x", tlsConfig.MinVersion)
		}
	})

	t.Run("rejects_unknown_min_version", func(t *testing.T) {
		t.Parallel()

		_, err := BuildTLSConfig(&config.TLS{MinVersion: "1.1"}, "platform")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects_invalid_ca_pem", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ca.pem")
		if err := os.WriteFile(path, []byte("not a certificate"), 0o600); err != nil {
			t.Fatalf("failed to write ca file: %v", err)
		}
		_, err := BuildTLSConfig(&config.TLS{CACertFile: path}, "platform")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects_missing_ca_file", func(t *testing.T) {
		t.Parallel()

		_, err := BuildTLSConfig(&config.TLS{CACertFile: filepath.Join(t.TempDir(), "missing.pem")}, "platform")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects_cert_without_key", func(t *testing.T) {
		t.Parallel()

		_, err := BuildTLSConfig(&config.TLS{ClientCertFile: "/tmp/client.pem"}, "platform")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
