package account

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"olmkit/internal/account"
	"olmkit/internal/crypto"
	"olmkit/internal/domain"
	"olmkit/internal/logging"
	"olmkit/internal/pickle"
	"olmkit/internal/store"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
	// ErrNoAccount means no account has been created in this home yet.
	ErrNoAccount = errors.New("no account; run 'account create' first")
	// ErrAccountExists guards against overwriting an existing account.
	ErrAccountExists = errors.New("account already exists")
)

// Service loads the account from the store for every call and writes it
// back after each mutation, so no key material outlives a call.
type Service struct {
	prim  domain.Primitives
	codec *pickle.Codec
	store domain.PickleStore
	relay domain.RelayClient
	log   *logging.Logger
}

// New returns an account service. relay may be nil for offline use; Publish
// then fails.
func New(
	p domain.Primitives,
	codec *pickle.Codec,
	s domain.PickleStore,
	relay domain.RelayClient,
	log *logging.Logger,
) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{prim: p, codec: codec, store: s, relay: relay, log: log}
}

// Create generates a new account, saves it encrypted with the passphrase and
// returns its public keys plus a short fingerprint of the Curve25519 key.
func (s *Service) Create(passphrase string) (domain.IdentityKeys, domain.Fingerprint, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.IdentityKeys{}, "", ErrWeakPassphrase
	}
	if _, ok, err := s.store.Get(store.AccountName); err != nil {
		return domain.IdentityKeys{}, "", err
	} else if ok {
		return domain.IdentityKeys{}, "", ErrAccountExists
	}

	acct, err := account.New(s.prim)
	if err != nil {
		return domain.IdentityKeys{}, "", err
	}
	defer acct.Wipe()
	if err := s.Save(acct, passphrase); err != nil {
		return domain.IdentityKeys{}, "", err
	}
	keys := acct.IdentityKeys()
	fp := crypto.Fingerprint(keys.Curve25519.Slice())
	s.log.Info("account created", "fingerprint", fp)
	return keys, fp, nil
}

// IdentityKeys returns the public identity keys.
func (s *Service) IdentityKeys(passphrase string) (domain.IdentityKeys, error) {
	acct, err := s.Load(passphrase)
	if err != nil {
		return domain.IdentityKeys{}, err
	}
	defer acct.Wipe()
	return acct.IdentityKeys(), nil
}

// OneTimeKeys returns the public halves of every unused one-time key.
func (s *Service) OneTimeKeys(passphrase string) (map[domain.KeyID]domain.X25519Public, error) {
	acct, err := s.Load(passphrase)
	if err != nil {
		return nil, err
	}
	defer acct.Wipe()
	return acct.OneTimeKeys(), nil
}

// GenerateOneTimeKeys adds count fresh one-time keys to the pool.
func (s *Service) GenerateOneTimeKeys(passphrase string, count int) error {
	acct, err := s.Load(passphrase)
	if err != nil {
		return err
	}
	defer acct.Wipe()
	if err := acct.GenerateOneTimeKeys(count); err != nil {
		return err
	}
	s.log.Debug("one-time keys generated", "count", count, "outstanding", acct.Outstanding())
	return s.Save(acct, passphrase)
}

// Publish uploads identity keys and every unpublished one-time key, then
// marks them published. It returns the number of keys uploaded.
func (s *Service) Publish(ctx context.Context, passphrase string, username domain.Username) (int, error) {
	if s.relay == nil {
		return 0, errors.New("no relay configured")
	}
	acct, err := s.Load(passphrase)
	if err != nil {
		return 0, err
	}
	defer acct.Wipe()

	pending := acct.UnpublishedKeys()
	keys := domain.PublishedKeys{IdentityKeys: acct.IdentityKeys()}
	if len(pending) > 0 {
		keys.OneTimeKeys = make(map[string]string, len(pending))
		for _, k := range pending {
			keys.OneTimeKeys[k.ID.String()] = domain.EncodeKey(k.Key.Slice())
		}
	}
	if err := s.relay.PublishKeys(ctx, username, keys); err != nil {
		return 0, fmt.Errorf("publish keys: %w", err)
	}
	// Only mark after the relay accepted them; a failed upload is retried in full.
	n := acct.MarkKeysAsPublished()
	if err := s.Save(acct, passphrase); err != nil {
		return 0, err
	}
	s.log.Info("keys published", "user", username, "one_time_keys", n)
	return n, nil
}

// Fingerprint returns a short fingerprint of the Curve25519 identity key.
func (s *Service) Fingerprint(passphrase string) (domain.Fingerprint, error) {
	keys, err := s.IdentityKeys(passphrase)
	if err != nil {
		return "", err
	}
	return crypto.Fingerprint(keys.Curve25519.Slice()), nil
}

// Load unpickles the stored account. Callers own the result and should Wipe it.
func (s *Service) Load(passphrase string) (*account.Account, error) {
	blob, ok, err := s.store.Get(store.AccountName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoAccount
	}
	return s.codec.UnpickleAccount(blob, []byte(passphrase))
}

// Save pickles acct under the account name.
func (s *Service) Save(acct *account.Account, passphrase string) error {
	blob, err := s.codec.PickleAccount(acct, []byte(passphrase))
	if err != nil {
		return err
	}
	return s.store.Put(store.AccountName, blob)
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.AccountService.
var _ domain.AccountService = (*Service)(nil)
