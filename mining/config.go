package mining

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"earthbucks.dev/ebx-miner/domain"
	"earthbucks.dev/ebx-miner/keys"
)

// EnvConfig is the mining loop's startup configuration, read entirely from
// the process environment. Every field is mandatory; a missing or
// malformed value fails startup before any loop iteration runs.
type EnvConfig struct {
	Domain      string
	DomainPriv  keys.PrivKey
	CoinbasePkh keys.Pkh
	AdminPub    keys.PubKey
	DatabaseURL string
}

// LoadEnvConfig loads a .env file if present (silently ignoring its
// absence) and then reads DOMAIN, DOMAIN_PRIV_KEY, COINBASE_PKH,
// ADMIN_PUB_KEY, and DATABASE_URL, validating each. The returned error
// names the first invalid field.
func LoadEnvConfig() (EnvConfig, error) {
	_ = godotenv.Load()

	var cfg EnvConfig

	d, ok := os.LookupEnv("DOMAIN")
	if !ok || d == "" {
		return EnvConfig{}, fmt.Errorf("config: DOMAIN is required")
	}
	if !domain.IsValidDomain(d) {
		return EnvConfig{}, fmt.Errorf("config: DOMAIN %q is not a valid domain name", d)
	}
	cfg.Domain = d

	privHex, ok := os.LookupEnv("DOMAIN_PRIV_KEY")
	if !ok || privHex == "" {
		return EnvConfig{}, fmt.Errorf("config: DOMAIN_PRIV_KEY is required")
	}
	priv, err := keys.ParsePrivKeyHex(privHex)
	if err != nil {
		return EnvConfig{}, fmt.Errorf("config: DOMAIN_PRIV_KEY invalid: %w", err)
	}
	cfg.DomainPriv = priv

	pkhHex, ok := os.LookupEnv("COINBASE_PKH")
	if !ok || pkhHex == "" {
		return EnvConfig{}, fmt.Errorf("config: COINBASE_PKH is required")
	}
	pkh, err := keys.ParsePkhHex(pkhHex)
	if err != nil {
		return EnvConfig{}, fmt.Errorf("config: COINBASE_PKH invalid: %w", err)
	}
	cfg.CoinbasePkh = pkh

	adminHex, ok := os.LookupEnv("ADMIN_PUB_KEY")
	if !ok || adminHex == "" {
		return EnvConfig{}, fmt.Errorf("config: ADMIN_PUB_KEY is required")
	}
	admin, err := keys.ParsePubKeyHex(adminHex)
	if err != nil {
		return EnvConfig{}, fmt.Errorf("config: ADMIN_PUB_KEY invalid: %w", err)
	}
	cfg.AdminPub = admin

	dbURL, ok := os.LookupEnv("DATABASE_URL")
	if !ok || dbURL == "" {
		return EnvConfig{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	cfg.DatabaseURL = dbURL

	return cfg, nil
}
