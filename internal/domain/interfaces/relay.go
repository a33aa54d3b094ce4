package interfaces

import (
	"context"

	domaintypes "olmkit/internal/domain/types"
)

// RelayClient is how we talk to the central relay server, all with context.
type RelayClient interface {
	PublishKeys(ctx context.Context, username domaintypes.Username, keys domaintypes.PublishedKeys) error
	FetchKeys(ctx context.Context, username domaintypes.Username) (domaintypes.PublishedKeys, error)
	// ClaimOneTimeKey removes one published key for username. It fails with
	// ErrOneTimeKeyExhausted when none are left.
	ClaimOneTimeKey(ctx context.Context, username domaintypes.Username) (domaintypes.ClaimedKey, error)

	SendMessage(ctx context.Context, envelope domaintypes.Envelope) error
	FetchMessages(
		ctx context.Context,
		username domaintypes.Username,
		limit int,
	) ([]domaintypes.Envelope, error)
	AckMessages(ctx context.Context, username domaintypes.Username, count int) error
}
