// Package bridge exposes accounts, sessions and utilities to a host runtime
// as opaque handles.
//
// A Registry is created explicitly with NewRegistry and torn down with Close.
// Each entity lives in its own slot behind a stable Handle; handles count up
// from 1 and are never reused, so a stale handle can never reach a newer
// entity. Calls on one handle are serialised by the slot's mutex while calls
// on distinct handles run in parallel.
//
// Release tears a slot down exactly once, zeroing the entity's secrets
// before returning. Releasing an unknown or already released handle fails
// with ErrStaleHandle and touches nothing. Hosts with a garbage collector can
// hold a *Ref instead of a bare Handle: Ref.Close is idempotent and a
// finalizer releases refs that were never closed.
//
// Keys cross the boundary in the same unpadded base64 form the key JSON
// uses; ciphertexts, pickles and messages are raw bytes.
package bridge
