package store

import "olmkit/internal/domain"

// AccountName is the blob name of the local account pickle.
const AccountName = "account"

// SessionPrefix prefixes every session pickle name.
const SessionPrefix = "session/"

// SessionName is the blob name of the session with peer.
func SessionName(peer domain.Username) string { return SessionPrefix + string(peer) }
