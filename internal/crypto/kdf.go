package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"olmkit/internal/domain/types"
)

var (
	messageKeySeed = []byte{0x01}
	chainKeySeed   = []byte{0x02}
)

// HKDF expands secret into n bytes with HKDF-SHA256. A nil salt is treated
// as a block of zeroes, as RFC 5869 specifies.
func (d *Default) HKDF(secret, salt, info []byte, n int) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, salt, info)
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, types.NewError(types.KindMalformedKeyMaterial, "hkdf", err)
	}
	return out, nil
}

// ChainStep derives the message key for the current chain position and the
// chain key for the next one.
func (d *Default) ChainStep(chainKey [32]byte) (next, messageKey [32]byte) {
	copy(next[:], hmacSum(chainKey[:], chainKeySeed))
	copy(messageKey[:], hmacSum(chainKey[:], messageKeySeed))
	return next, messageKey
}

func hmacSum(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
