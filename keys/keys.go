// Package keys parses the ed25519 key material and public-key-hash value
// the mining loop's configuration carries: DOMAIN_PRIV_KEY, ADMIN_PUB_KEY,
// and COINBASE_PKH.
package keys

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/ed25519"
)

// PrivKey wraps an ed25519 private key parsed from a hex string.
type PrivKey struct {
	raw ed25519.PrivateKey
}

// ParsePrivKeyHex decodes a hex-encoded ed25519 seed or full private key.
func ParsePrivKeyHex(s string) (PrivKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return PrivKey{}, fmt.Errorf("keys: invalid private key hex: %w", err)
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return PrivKey{raw: ed25519.NewKeyFromSeed(raw)}, nil
	case ed25519.PrivateKeySize:
		return PrivKey{raw: ed25519.PrivateKey(raw)}, nil
	default:
		return PrivKey{}, fmt.Errorf("keys: private key must be %d or %d bytes, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}

func (p PrivKey) Public() PubKey {
	pub := p.raw.Public().(ed25519.PublicKey)
	return PubKey{raw: pub}
}

func (p PrivKey) Sign(msg []byte) []byte {
	return ed25519.Sign(p.raw, msg)
}

// PubKey wraps an ed25519 public key parsed from a hex string.
type PubKey struct {
	raw ed25519.PublicKey
}

func ParsePubKeyHex(s string) (PubKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return PubKey{}, fmt.Errorf("keys: invalid public key hex: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return PubKey{}, fmt.Errorf("keys: public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return PubKey{raw: raw}, nil
}

func (p PubKey) Verify(msg, sig []byte) bool {
	return ed25519.Verify(p.raw, msg, sig)
}

func (p PubKey) Bytes() []byte {
	return append([]byte(nil), p.raw...)
}

// Pkh is a 32-byte public-key-hash identifying a coinbase payout target.
type Pkh [32]byte

func ParsePkhHex(s string) (Pkh, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Pkh{}, fmt.Errorf("keys: invalid pkh hex: %w", err)
	}
	if len(raw) != 32 {
		return Pkh{}, fmt.Errorf("keys: pkh must be 32 bytes, got %d", len(raw))
	}
	var out Pkh
	copy(out[:], raw)
	return out, nil
}
