// Package session establishes and runs pairwise encrypted sessions.
//
// A session is created either as the initiator, from the local account and
// the peer's identity and one-time keys, or as the responder, from the local
// account and the peer's first handshake message. Both paths finish key
// agreement before returning.
//
// The initiator frames every message as a handshake until it decrypts a
// reply, so the responder can establish its side from whichever of those
// messages arrives first. After that every message is ordinary.
//
// Sessions are not safe for concurrent use. A failed Decrypt leaves the
// session unchanged.
package session
