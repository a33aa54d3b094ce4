// Package x3dh implements the triple Diffie–Hellman key agreement used to
// bootstrap a ratchet session between two parties.
//
// # Overview
//
// The responder publishes an identity key (X25519) and a pool of one-time
// keys. The initiator combines its identity key and a fresh base key with
// the responder's identity key and one claimed one-time key. There is no
// signed prekey; the one-time key takes its place in every DH term.
//
// # Flows
//
// Initiator:
//  1. Generate a base (ephemeral) X25519 key pair.
//  2. Compute DH(IKa, OTKb) || DH(EKa, IKb) || DH(EKa, OTKb).
//  3. HKDF the transcript into a 32-byte root key and a 32-byte chain key.
//  4. Send the identity key, base key and one-time key id with the first
//     message.
//
// Responder:
//  1. Receive the handshake (initiator IK, base EK, OTK id).
//  2. Look up the one-time key, then compute the mirrored transcript
//     DH(OTKb, IKa) || DH(IKb, EKa) || DH(OTKb, EKa).
//  3. HKDF the same transcript to the identical keys.
//
// # Errors
//
// ErrMalformedKeyMaterial is returned when any peer key is of low order.
// The caller consumes the one-time key only after agreement succeeds.
package x3dh
