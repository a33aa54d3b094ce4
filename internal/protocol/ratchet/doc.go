// Package ratchet implements the root/chain ratchet that carries a session
// after the initial key agreement.
//
// The ratchet maintains a root key, one sending chain and a short list of
// receiving chains, one per remote ratchet key seen. Each message advances
// an HMAC chain so that keys are forward secure. The first send after a new
// remote ratchet key arrives generates a fresh local ratchet key and mixes a
// new DH result into the root.
//
// Out-of-order delivery is tolerated within a bounded window: at most
// MaxSkippedKeys stored message keys, MaxReceiverChains remembered remote
// ratchet keys and a gap of MaxMessageGap messages per chain. A message
// index behind its chain with no stored key is a replay and fails with
// ErrAlreadyDecrypted.
//
// Encrypt and Decrypt operate on a copy of the state and only commit it on
// success, so a failed call leaves the state untouched.
//
// Concurrency: RatchetState is NOT safe for concurrent use. Callers must
// serialise access per session.
package ratchet
