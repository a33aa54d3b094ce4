package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"olmkit/internal/account"
	"olmkit/internal/domain"
	"olmkit/internal/logging"
	"olmkit/internal/pickle"
	"olmkit/internal/session"
	"olmkit/internal/store"
)

// Accounts loads and saves the local account.
type Accounts interface {
	Load(passphrase string) (*account.Account, error)
	Save(acct *account.Account, passphrase string) error
}

// Service sends and receives messages over the relay.
//
// High-level flow:
//   - Send: if no session exists, claim one of the peer's one-time keys and
//     start an outbound session, then encrypt and post via the relay. The
//     session is saved before the envelope leaves.
//   - Receive: fetch envelopes, start an inbound session when a handshake
//     does not match the stored one, decrypt in order, persist state, then
//     ack processed messages.
type Service struct {
	accounts Accounts
	codec    *pickle.Codec
	store    domain.PickleStore
	relay    domain.RelayClient
	log      *logging.Logger
	now      func() time.Time
}

// New constructs a message service.
func New(
	accounts Accounts,
	codec *pickle.Codec,
	s domain.PickleStore,
	relay domain.RelayClient,
	log *logging.Logger,
) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{accounts: accounts, codec: codec, store: s, relay: relay, log: log, now: time.Now}
}

// SendMessage encrypts plaintext for to and posts it.
func (s *Service) SendMessage(
	ctx context.Context,
	passphrase string,
	from domain.Username,
	to domain.Username,
	plaintext []byte,
) error {
	sess, ok, err := s.loadSession(to, passphrase)
	if err != nil {
		return err
	}
	if !ok {
		if sess, err = s.startOutbound(ctx, passphrase, to); err != nil {
			return err
		}
	}
	defer sess.Wipe()

	typ, ct, err := sess.Encrypt(plaintext)
	if err != nil {
		return err
	}
	// Persist before sending so a crash cannot reuse a message key.
	if err := s.saveSession(to, sess, passphrase); err != nil {
		return err
	}

	env := domain.Envelope{
		From:      from,
		To:        to,
		Type:      typ,
		Body:      ct,
		Timestamp: s.now().Unix(),
	}
	if err := s.relay.SendMessage(ctx, env); err != nil {
		return fmt.Errorf("send to %q: %w", to, err)
	}
	return nil
}

func (s *Service) startOutbound(ctx context.Context, passphrase string, to domain.Username) (*session.Session, error) {
	keys, err := s.relay.FetchKeys(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("fetch keys for %q: %w", to, err)
	}
	claimed, err := s.relay.ClaimOneTimeKey(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("claim one-time key of %q: %w", to, err)
	}
	otk, err := parseClaimed(claimed)
	if err != nil {
		return nil, err
	}

	acct, err := s.accounts.Load(passphrase)
	if err != nil {
		return nil, err
	}
	defer acct.Wipe()

	sess, err := session.CreateOutbound(acct, keys.IdentityKeys.Curve25519, otk)
	if err != nil {
		return nil, err
	}
	s.log.Info("outbound session created", "peer", to, "session", sess.ID())
	return sess, nil
}

func parseClaimed(c domain.ClaimedKey) (domain.OneTimeKeyPublic, error) {
	id, err := domain.ParseKeyID(c.KeyID)
	if err != nil {
		return domain.OneTimeKeyPublic{}, err
	}
	raw, err := domain.DecodeKey(c.Key)
	if err != nil {
		return domain.OneTimeKeyPublic{}, err
	}
	pub, err := domain.ParseX25519Public(raw)
	if err != nil {
		return domain.OneTimeKeyPublic{}, err
	}
	return domain.OneTimeKeyPublic{ID: id, Key: pub}, nil
}

// ReceiveMessages fetches pending messages for me and decrypts them.
//
// Envelopes are processed in order and only the processed prefix is acked.
// Replays are dropped and acked. Any other failure stops processing and
// leaves the failing envelope and everything after it queued.
func (s *Service) ReceiveMessages(
	ctx context.Context,
	passphrase string,
	me domain.Username,
	limit int,
) ([]domain.DecryptedMessage, error) {
	envs, err := s.relay.FetchMessages(ctx, me, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DecryptedMessage, 0, len(envs))
	processed := 0

	var procErr error
	for _, env := range envs {
		plain, err := s.receiveOne(ctx, passphrase, env)
		if errors.Is(err, domain.ErrAlreadyDecrypted) {
			s.log.Warn("dropping replayed message", "from", env.From, "id", env.ID)
			processed++
			continue
		}
		if err != nil {
			procErr = fmt.Errorf("decrypt from %q failed: %w", env.From, err)
			break
		}
		out = append(out, domain.DecryptedMessage{
			From:      env.From,
			To:        env.To,
			Plaintext: plain,
			Timestamp: env.Timestamp,
		})
		processed++
	}

	// Ack only what we processed. If zero, do nothing.
	if processed > 0 {
		if err := s.relay.AckMessages(ctx, me, processed); err != nil {
			return out, errors.Join(procErr, fmt.Errorf("ack %d messages: %w", processed, err))
		}
	}
	return out, procErr
}

func (s *Service) receiveOne(ctx context.Context, passphrase string, env domain.Envelope) ([]byte, error) {
	sess, ok, err := s.loadSession(env.From, passphrase)
	if err != nil {
		return nil, err
	}

	var acct *account.Account
	if env.Type == domain.MessageHandshake && (!ok || !sess.MatchesInbound(env.Body)) {
		if ok {
			// the peer restarted; the new handshake replaces the old session
			sess.Wipe()
		}
		acct, sess, err = s.startInbound(ctx, passphrase, env)
		if err != nil {
			return nil, err
		}
		defer acct.Wipe()
	} else if !ok {
		return nil, fmt.Errorf("%w: no session with %q", domain.ErrMalformedMessage, env.From)
	}
	defer sess.Wipe()

	plain, err := sess.Decrypt(env.Type, env.Body)
	if err != nil {
		return nil, err
	}
	if err := s.saveSession(env.From, sess, passphrase); err != nil {
		return nil, err
	}
	// The one-time key is only gone for good once its first message decrypted.
	if acct != nil {
		if err := s.accounts.Save(acct, passphrase); err != nil {
			return nil, err
		}
	}
	return plain, nil
}

func (s *Service) startInbound(
	ctx context.Context,
	passphrase string,
	env domain.Envelope,
) (*account.Account, *session.Session, error) {
	keys, err := s.relay.FetchKeys(ctx, env.From)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch keys for %q: %w", env.From, err)
	}
	acct, err := s.accounts.Load(passphrase)
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.CreateInboundFrom(acct, keys.IdentityKeys.Curve25519, env.Body)
	if err != nil {
		acct.Wipe()
		return nil, nil, err
	}
	s.log.Info("inbound session created", "peer", env.From, "session", sess.ID())
	return acct, sess, nil
}

func (s *Service) loadSession(peer domain.Username, passphrase string) (*session.Session, bool, error) {
	blob, ok, err := s.store.Get(store.SessionName(peer))
	if err != nil || !ok {
		return nil, false, err
	}
	sess, err := s.codec.UnpickleSession(blob, []byte(passphrase))
	if err != nil {
		return nil, false, fmt.Errorf("load session with %q: %w", peer, err)
	}
	return sess, true, nil
}

func (s *Service) saveSession(peer domain.Username, sess *session.Session, passphrase string) error {
	blob, err := s.codec.PickleSession(sess, []byte(passphrase))
	if err != nil {
		return err
	}
	return s.store.Put(store.SessionName(peer), blob)
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
