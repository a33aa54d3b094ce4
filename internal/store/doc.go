// Package store persists pickled accounts and sessions.
//
// A store holds opaque, already-encrypted blobs under short names such as
// "account" or "session/bob"; it never sees key material in the clear.
// Two backends implement domain.PickleStore:
//   - FileStore writes one file per blob under a directory.
//   - LevelDBStore keeps every blob in a single goleveldb database.
//
// Both are safe for concurrent use.
package store
