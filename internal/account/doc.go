// Package account owns a participant's long-term identity and its pool of
// one-time keys.
//
// An Account is created once with fresh randomness, or restored from a
// pickled AccountState, and its identity never changes afterwards. One-time
// keys move from unpublished to published to used; a used key keeps its id
// and public half for bookkeeping but its private half is zeroed and it is
// never offered again. Ids are assigned in increasing order and are never
// reissued.
//
// Every mutating call either succeeds completely or leaves the account as it
// was. Accounts are not safe for concurrent use.
package account
