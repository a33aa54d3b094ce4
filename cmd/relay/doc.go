// Package main runs the in-memory HTTP relay used by olmkit during
// development and tests. It stores published identity and one-time keys and
// queues encrypted envelopes for recipients until they fetch them.
//
// HTTP API
//
//	POST /keys/{user}
//	    Publish identity keys and one-time keys. A changed identity replaces
//	    the previous entry; claimed key ids are never accepted again.
//
//	GET /keys/{user}
//	    Return the identity keys and any unclaimed one-time keys.
//
//	POST /keys/{user}/claim
//	    Remove and return the oldest unclaimed one-time key. 404 when none
//	    are left.
//
//	POST /msg/{user}
//	    Enqueue an Envelope destined to {user}. The server assigns a uuid and
//	    fills a zero Timestamp with the current Unix time.
//
//	GET /msg/{user}?limit=N
//	    Return up to N queued Envelopes for {user}. If limit is absent or
//	    greater than the queue length, all queued envelopes are returned.
//
//	POST /msg/{user}/ack { "count": N }
//	    Drop the first N queued envelopes for {user}.
//
//	GET /metrics
//	    Prometheus metrics.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Requests are rate limited per remote host.
//   - Each request gets one access log line with method, path, remote,
//     status, bytes and duration.
//   - The default listen address is :8080.
//
// The relay never sees plaintext or private keys; it only stores ciphertext
// and public keys.
package main
