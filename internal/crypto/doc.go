// Package crypto implements the primitives the core is built on.
//
// Contents
//
//   - X25519 key generation and Diffie–Hellman with low-order rejection
//     (GenerateX25519, X25519)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - HKDF-SHA256 and the HMAC chain step used by the ratchet (HKDF, ChainStep)
//   - ChaCha20-Poly1305 sealing (Seal, Open) and SHA-256
//   - Explicit entropy reads that fail with ErrEntropyUnavailable (Random)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short base58 public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Default satisfies domain.Primitives. Its Rand field is the only source of
// randomness; when nil, crypto/rand is used. All key material is returned
// as fixed-size array types defined in internal/domain to avoid accidental
// reallocations. Callers should treat returned secrets as sensitive and
// rely on Wipe when practical to reduce lifetime in memory.
package crypto
