// Package message frames ratchet output for the wire.
//
// Every frame starts with a version byte (Version) and a type byte. An
// ordinary frame is
//
//	version | 0x01 | ratchet_key[32] | index u32be | ciphertext
//
// and its 38-byte prefix is the additional data of the ciphertext. A
// handshake frame wraps an ordinary frame behind the key-agreement material
// the responder needs:
//
//	version | 0x00 | identity_key[32] | base_key[32] | otk_id u32be | otk_key[32] | ordinary frame
//
// For a wrapped frame the additional data is the handshake prefix followed
// by the inner ordinary prefix, so neither part can be swapped.
package message
