// Package account manages creation, loading and publishing of the local
// account.
//
// It enforces passphrase policy, keeps the account pickled in a
// domain.PickleStore and publishes identity and one-time keys through the
// domain.RelayClient.
package account
