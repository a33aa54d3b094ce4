package interfaces

import domaintypes "olmkit/internal/domain/types"

// Primitives is the narrow boundary to the cryptography library. Every
// method is a pure function apart from the randomness it draws.
type Primitives interface {
	GenerateX25519() (domaintypes.X25519Private, domaintypes.X25519Public, error)
	// X25519 rejects peer keys that produce an all-zero shared secret.
	X25519(priv domaintypes.X25519Private, pub domaintypes.X25519Public) ([32]byte, error)

	GenerateEd25519() (domaintypes.Ed25519Private, domaintypes.Ed25519Public, error)
	SignEd25519(priv domaintypes.Ed25519Private, msg []byte) []byte
	VerifyEd25519(pub domaintypes.Ed25519Public, msg, sig []byte) bool

	HKDF(secret, salt, info []byte, n int) ([]byte, error)
	// ChainStep advances a chain key and returns the message key for the
	// position it leaves.
	ChainStep(chainKey [32]byte) (next, messageKey [32]byte)

	Seal(key, nonce, aad, plaintext []byte) ([]byte, error)
	Open(key, nonce, aad, ciphertext []byte) ([]byte, error)

	SHA256(b []byte) [32]byte
	Random(n int) ([]byte, error)
}
