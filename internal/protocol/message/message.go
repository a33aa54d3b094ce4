package message

import (
	"encoding/binary"
	"errors"
	"fmt"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
)

// Version is the only frame version this package reads or writes.
const Version byte = 0x01

const (
	// OrdinaryPrefixSize is version, type, ratchet key and index.
	OrdinaryPrefixSize = 1 + 1 + 32 + 4
	// HandshakePrefixSize is version, type, identity, base, otk id and otk key.
	HandshakePrefixSize = 1 + 1 + 32 + 32 + 4 + 32
	// minCiphertext is the AEAD tag alone.
	minCiphertext = 16
)

var (
	errTruncated = errors.New("frame truncated")
	errType      = errors.New("frame type mismatch")
)

// Ordinary is a decoded ordinary frame.
type Ordinary struct {
	Header     domain.RatchetHeader
	Ciphertext []byte
	// AAD is the additional data the ciphertext was sealed with.
	AAD []byte
}

// Handshake is a decoded handshake frame.
type Handshake struct {
	domain.Handshake
	Inner Ordinary
}

// Type peeks at the frame type without decoding the rest.
func Type(frame []byte) (domain.MessageType, error) {
	if len(frame) < 2 {
		return 0, malformed(errTruncated)
	}
	if frame[0] != Version {
		return 0, malformed(fmt.Errorf("unknown version %d", frame[0]))
	}
	switch t := domain.MessageType(frame[1]); t {
	case domain.MessageHandshake, domain.MessageOrdinary:
		return t, nil
	default:
		return 0, malformed(fmt.Errorf("unknown type %d", frame[1]))
	}
}

// OrdinaryAAD returns the additional data for a standalone ordinary frame.
func OrdinaryAAD(h domain.RatchetHeader) []byte { return ordinaryPrefix(h) }

// HandshakeAAD returns the additional data for an ordinary frame wrapped in
// a handshake.
func HandshakeAAD(hs domain.Handshake, h domain.RatchetHeader) []byte {
	return append(handshakePrefix(hs), ordinaryPrefix(h)...)
}

// EncodeOrdinary frames a ratchet ciphertext.
func EncodeOrdinary(h domain.RatchetHeader, ciphertext []byte) []byte {
	out := make([]byte, 0, OrdinaryPrefixSize+len(ciphertext))
	out = append(out, ordinaryPrefix(h)...)
	return append(out, ciphertext...)
}

// EncodeHandshake wraps an encoded ordinary frame.
func EncodeHandshake(hs domain.Handshake, inner []byte) []byte {
	out := make([]byte, 0, HandshakePrefixSize+len(inner))
	out = append(out, handshakePrefix(hs)...)
	return append(out, inner...)
}

// DecodeOrdinary parses a standalone ordinary frame.
func DecodeOrdinary(frame []byte) (Ordinary, error) {
	if err := expect(frame, domain.MessageOrdinary); err != nil {
		return Ordinary{}, err
	}
	return decodeOrdinary(frame, nil)
}

// DecodeHandshake parses a handshake frame and its inner ordinary frame.
func DecodeHandshake(frame []byte) (Handshake, error) {
	if err := expect(frame, domain.MessageHandshake); err != nil {
		return Handshake{}, err
	}
	if len(frame) < HandshakePrefixSize {
		return Handshake{}, malformed(errTruncated)
	}
	var out Handshake
	off := 2
	copy(out.IdentityKey[:], frame[off:off+32])
	off += 32
	copy(out.BaseKey[:], frame[off:off+32])
	off += 32
	out.OneTimeKeyID = domain.KeyID(binary.BigEndian.Uint32(frame[off : off+4]))
	off += 4
	copy(out.OneTimeKey[:], frame[off:off+32])
	off += 32

	inner := frame[off:]
	if err := expect(inner, domain.MessageOrdinary); err != nil {
		return Handshake{}, err
	}
	o, err := decodeOrdinary(inner, frame[:HandshakePrefixSize])
	if err != nil {
		return Handshake{}, err
	}
	out.Inner = o
	return out, nil
}

func decodeOrdinary(frame, outerPrefix []byte) (Ordinary, error) {
	if len(frame) < OrdinaryPrefixSize+minCiphertext {
		return Ordinary{}, malformed(errTruncated)
	}
	var o Ordinary
	copy(o.Header.RatchetKey[:], frame[2:34])
	o.Header.MessageIndex = binary.BigEndian.Uint32(frame[34:38])
	o.Ciphertext = append([]byte(nil), frame[OrdinaryPrefixSize:]...)
	o.AAD = make([]byte, 0, len(outerPrefix)+OrdinaryPrefixSize)
	o.AAD = append(o.AAD, outerPrefix...)
	o.AAD = append(o.AAD, frame[:OrdinaryPrefixSize]...)
	return o, nil
}

func expect(frame []byte, want domain.MessageType) error {
	got, err := Type(frame)
	if err != nil {
		return err
	}
	if got != want {
		return malformed(fmt.Errorf("%w: got %s, want %s", errType, got, want))
	}
	return nil
}

func ordinaryPrefix(h domain.RatchetHeader) []byte {
	out := make([]byte, 0, OrdinaryPrefixSize)
	out = append(out, Version, byte(domain.MessageOrdinary))
	out = append(out, h.RatchetKey[:]...)
	return binary.BigEndian.AppendUint32(out, h.MessageIndex)
}

func handshakePrefix(hs domain.Handshake) []byte {
	out := make([]byte, 0, HandshakePrefixSize)
	out = append(out, Version, byte(domain.MessageHandshake))
	out = append(out, hs.IdentityKey[:]...)
	out = append(out, hs.BaseKey[:]...)
	out = binary.BigEndian.AppendUint32(out, uint32(hs.OneTimeKeyID))
	return append(out, hs.OneTimeKey[:]...)
}

func malformed(err error) error {
	return types.NewError(types.KindMalformedMessage, "decode_message", err)
}
