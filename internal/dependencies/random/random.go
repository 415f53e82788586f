package random

import (
	"crypto/rand"
	"math/big"
)

// Random picks codes for matches opened without an explicit id.
// It can be mocked for testing.
type Random interface {
	// String returns length characters drawn from alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String returns length characters drawn uniformly from alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	n := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			idx = big.NewInt(0)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}
