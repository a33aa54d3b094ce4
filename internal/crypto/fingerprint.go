package crypto

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"

	"olmkit/internal/domain"
)

// Fingerprint returns a short base58 fingerprint of a public key.
//
// It hashes with SHA-256 and truncates to 10 bytes.
func Fingerprint(pub []byte) domain.Fingerprint {
	sum := sha256.Sum256(pub)
	return domain.Fingerprint(base58.Encode(sum[:10]))
}
