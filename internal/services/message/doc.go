// Package message sends and receives encrypted messages.
//
// It creates sessions on demand: outbound from a claimed one-time key of
// the peer, inbound from the peer's first handshake message. Session state
// is pickled per peer and envelopes travel through the RelayClient.
package message
