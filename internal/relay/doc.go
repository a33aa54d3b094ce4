// Package relay provides an HTTP implementation of the domain.RelayClient
// interface used by olmkit.
//
// The relay is a store-and-forward service for encrypted envelopes and a
// directory of published identity and one-time keys. It never sees
// plaintext or private keys.
//
// Supported operations include:
//   - Publishing our identity keys and unpublished one-time keys.
//   - Fetching a peer's published keys.
//   - Claiming (removing) one of a peer's one-time keys.
//   - Sending envelopes to a peer and fetching our own.
//   - Acknowledging received messages.
//
// All requests are JSON over HTTP and accept a context for cancellation and
// deadlines. A 404 surfaces as ErrNotFound, except on claim where it means
// the peer ran out of one-time keys and is reported as
// domain.ErrOneTimeKeyExhausted. Other non-2xx statuses are returned with
// the method, path and status text.
package relay
