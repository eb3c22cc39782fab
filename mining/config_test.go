package mining

import (
	"strings"
	"testing"
)

// validEnv returns a full set of env values LoadEnvConfig accepts; each
// test case starts from this and mutates or deletes one field.
func validEnv() map[string]string {
	return map[string]string{
		"DOMAIN":          "example.com",
		"DOMAIN_PRIV_KEY": strings.Repeat("11", 32),
		"COINBASE_PKH":    strings.Repeat("22", 32),
		"ADMIN_PUB_KEY":   strings.Repeat("33", 32),
		"DATABASE_URL":    "test.db",
	}
}

func setEnv(t *testing.T, env map[string]string, unset string) {
	t.Helper()
	for k, v := range env {
		if k == unset {
			continue
		}
		t.Setenv(k, v)
	}
}

func TestLoadEnvConfigOK(t *testing.T) {
	setEnv(t, validEnv(), "")

	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.Domain != "example.com" {
		t.Fatalf("Domain = %q, want example.com", cfg.Domain)
	}
	if cfg.DatabaseURL != "test.db" {
		t.Fatalf("DatabaseURL = %q, want test.db", cfg.DatabaseURL)
	}
}

func TestLoadEnvConfigMissingField(t *testing.T) {
	cases := []string{
		"DOMAIN",
		"DOMAIN_PRIV_KEY",
		"COINBASE_PKH",
		"ADMIN_PUB_KEY",
		"DATABASE_URL",
	}
	for _, missing := range cases {
		t.Run(missing, func(t *testing.T) {
			setEnv(t, validEnv(), missing)
			if _, err := LoadEnvConfig(); err == nil {
				t.Fatalf("expected error with %s missing", missing)
			}
		})
	}
}

func TestLoadEnvConfigMalformedField(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"bad domain", "DOMAIN", "not a domain"},
		{"short domain priv key", "DOMAIN_PRIV_KEY", "abcd"},
		{"non-hex domain priv key", "DOMAIN_PRIV_KEY", "zz" + strings.Repeat("11", 31)},
		{"short coinbase pkh", "COINBASE_PKH", "1234"},
		{"non-hex coinbase pkh", "COINBASE_PKH", "zz" + strings.Repeat("22", 31)},
		{"short admin pub key", "ADMIN_PUB_KEY", "5678"},
		{"non-hex admin pub key", "ADMIN_PUB_KEY", "zz" + strings.Repeat("33", 31)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := validEnv()
			env[c.key] = c.val
			setEnv(t, env, "")
			if _, err := LoadEnvConfig(); err == nil {
				t.Fatalf("expected error for %s=%q", c.key, c.val)
			}
		})
	}
}

// TestLoadEnvConfigValidatesFieldsInOrder pins the order LoadEnvConfig
// checks fields in: with every field missing, the error must name DOMAIN
// first, since that's the first field validated.
func TestLoadEnvConfigValidatesFieldsInOrder(t *testing.T) {
	for k := range validEnv() {
		t.Setenv(k, "")
	}
	_, err := LoadEnvConfig()
	if err == nil {
		t.Fatalf("expected error with no env set")
	}
	if !strings.Contains(err.Error(), "DOMAIN is required") {
		t.Fatalf("expected error to name DOMAIN first, got %v", err)
	}
}
