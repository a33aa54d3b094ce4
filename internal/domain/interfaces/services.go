package interfaces

import (
	"context"

	domaintypes "olmkit/internal/domain/types"
)

// AccountService creates, loads and publishes the local account.
type AccountService interface {
	Create(passphrase string) (domaintypes.IdentityKeys, domaintypes.Fingerprint, error)
	IdentityKeys(passphrase string) (domaintypes.IdentityKeys, error)
	OneTimeKeys(passphrase string) (map[domaintypes.KeyID]domaintypes.X25519Public, error)
	GenerateOneTimeKeys(passphrase string, count int) error
	Publish(ctx context.Context, passphrase string, username domaintypes.Username) (int, error)
	Fingerprint(passphrase string) (domaintypes.Fingerprint, error)
}

// MessageService encrypts, sends, fetches and decrypts messages.
type MessageService interface {
	SendMessage(
		ctx context.Context,
		passphrase string,
		from domaintypes.Username,
		to domaintypes.Username,
		plaintext []byte,
	) error
	ReceiveMessages(
		ctx context.Context,
		passphrase string,
		me domaintypes.Username,
		limit int,
	) ([]domaintypes.DecryptedMessage, error)
}
