package consensus

import "github.com/zeebo/blake3"

// Blake3Hash returns the 32-byte blake3 digest of b.
func Blake3Hash(b []byte) [32]byte {
	return blake3.Sum256(b)
}

// DoubleBlake3Hash returns blake3(blake3(b)), the digest used for header
// identity and proof-of-work comparison.
func DoubleBlake3Hash(b []byte) [32]byte {
	first := blake3.Sum256(b)
	return blake3.Sum256(first[:])
}
