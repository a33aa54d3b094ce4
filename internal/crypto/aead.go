package crypto

import (
	"golang.org/x/crypto/chacha20poly1305"

	"olmkit/internal/domain/types"
)

// Seal encrypts and authenticates plaintext with ChaCha20-Poly1305.
func (d *Default) Seal(key, nonce, aad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, types.NewError(types.KindMalformedKeyMaterial, "aead_encrypt", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, types.NewError(types.KindMalformedKeyMaterial, "aead_encrypt", errNonceSize)
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open reverses Seal. Any tampering yields ErrAuthenticationFailed.
func (d *Default) Open(key, nonce, aad, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, types.NewError(types.KindMalformedKeyMaterial, "aead_decrypt", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, types.NewError(types.KindMalformedKeyMaterial, "aead_decrypt", errNonceSize)
	}
	pt, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, types.NewError(types.KindAuthenticationFailed, "aead_decrypt", err)
	}
	return pt, nil
}
