// Package pickle serialises accounts and sessions into passphrase-encrypted
// blobs.
//
// # Format
//
//	version(1) | nonce(24) | ciphertext | tag(16)
//
// The ciphertext is XChaCha20-Poly1305 over a deterministic CBOR record of
// the entity's full state. The key is Argon2id over the passphrase with a
// fixed salt, since the blob carries no salt of its own; the version byte
// and the entity kind are bound as additional data so an account blob never
// unpickles as a session.
//
// An empty passphrase is accepted for compatibility. It degrades to a fixed
// key with no confidentiality, and the codec logs a warning each time.
//
// # Errors
//
// ErrUnsupportedVersion for any version byte other than Version,
// ErrBadPassphrase when the blob is truncated or the tag does not verify
// (wrong passphrase or corruption), and ErrMalformedKeyMaterial when the
// decrypted state does not describe a valid entity. No entity is returned
// alongside an error.
package pickle
