package message_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"olmkit/internal/crypto"
	"olmkit/internal/domain"
	"olmkit/internal/logging"
	"olmkit/internal/pickle"
	"olmkit/internal/relay"
	accountsvc "olmkit/internal/services/account"
	"olmkit/internal/services/message"
	"olmkit/internal/store"
)

const pass = "Correct-Horse-9!"

type user struct {
	name     domain.Username
	accounts *accountsvc.Service
	messages *message.Service
	store    domain.PickleStore
}

func newUser(t *testing.T, name domain.Username, rc domain.RelayClient) *user {
	t.Helper()
	p := crypto.New()
	codec, err := pickle.New(p, logging.Nop())
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	accts := accountsvc.New(p, codec, st, rc, logging.Nop())
	if _, _, err := accts.Create(pass); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if err := accts.GenerateOneTimeKeys(pass, 3); err != nil {
		t.Fatalf("generate %s: %v", name, err)
	}
	if _, err := accts.Publish(context.Background(), pass, name); err != nil {
		t.Fatalf("publish %s: %v", name, err)
	}
	return &user{
		name:     name,
		accounts: accts,
		messages: message.New(accts, codec, st, rc, logging.Nop()),
		store:    st,
	}
}

func newRelay(t *testing.T) domain.RelayClient {
	t.Helper()
	ts := httptest.NewServer(relay.NewServer(relay.ServerOptions{}))
	t.Cleanup(ts.Close)
	return relay.NewHTTP(ts.URL, ts.Client())
}

func recvOne(t *testing.T, u *user) string {
	t.Helper()
	msgs, err := u.messages.ReceiveMessages(context.Background(), pass, u.name, 0)
	if err != nil {
		t.Fatalf("%s receive: %v", u.name, err)
	}
	if len(msgs) != 1 {
		t.Fatalf("%s: want 1 message, got %d", u.name, len(msgs))
	}
	return string(msgs[0].Plaintext)
}

func TestConversation_RoundTrip(t *testing.T) {
	rc := newRelay(t)
	alice := newUser(t, "alice", rc)
	bob := newUser(t, "bob", rc)
	ctx := context.Background()

	if err := alice.messages.SendMessage(ctx, pass, "alice", "bob", []byte("hi bob")); err != nil {
		t.Fatalf("alice send: %v", err)
	}
	if got := recvOne(t, bob); got != "hi bob" {
		t.Fatalf("bob got %q", got)
	}

	if err := bob.messages.SendMessage(ctx, pass, "bob", "alice", []byte("hi alice")); err != nil {
		t.Fatalf("bob send: %v", err)
	}
	if got := recvOne(t, alice); got != "hi alice" {
		t.Fatalf("alice got %q", got)
	}

	if err := alice.messages.SendMessage(ctx, pass, "alice", "bob", []byte("second")); err != nil {
		t.Fatalf("alice send 2: %v", err)
	}
	envs, err := rc.FetchMessages(ctx, "bob", 0)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if len(envs) != 1 || envs[0].Type != domain.MessageOrdinary {
		t.Fatalf("after a reply alice must send ordinary messages, got %+v", envs)
	}
	if got := recvOne(t, bob); got != "second" {
		t.Fatalf("bob got %q", got)
	}
}

func TestHandshakeBeforeReply(t *testing.T) {
	rc := newRelay(t)
	alice := newUser(t, "alice", rc)
	bob := newUser(t, "bob", rc)
	ctx := context.Background()

	for _, m := range []string{"one", "two"} {
		if err := alice.messages.SendMessage(ctx, pass, "alice", "bob", []byte(m)); err != nil {
			t.Fatalf("send %s: %v", m, err)
		}
	}
	envs, _ := rc.FetchMessages(ctx, "bob", 0)
	for i, e := range envs {
		if e.Type != domain.MessageHandshake {
			t.Fatalf("envelope %d: want handshake, got %v", i, e.Type)
		}
	}

	msgs, err := bob.messages.ReceiveMessages(ctx, pass, "bob", 0)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(msgs) != 2 || string(msgs[0].Plaintext) != "one" || string(msgs[1].Plaintext) != "two" {
		t.Fatalf("unexpected messages %+v", msgs)
	}

	// bob's one-time key was consumed by the first handshake only
	keys, err := bob.accounts.OneTimeKeys(pass)
	if err != nil {
		t.Fatalf("otks: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("want 2 unused one-time keys, got %d", len(keys))
	}
}

func TestReplay_DroppedAndAcked(t *testing.T) {
	rc := newRelay(t)
	alice := newUser(t, "alice", rc)
	bob := newUser(t, "bob", rc)
	ctx := context.Background()

	if err := alice.messages.SendMessage(ctx, pass, "alice", "bob", []byte("once")); err != nil {
		t.Fatalf("send: %v", err)
	}
	envs, _ := rc.FetchMessages(ctx, "bob", 0)
	recvOne(t, bob)

	replay := envs[0]
	replay.ID = ""
	if err := rc.SendMessage(ctx, replay); err != nil {
		t.Fatalf("resend: %v", err)
	}
	msgs, err := bob.messages.ReceiveMessages(ctx, pass, "bob", 0)
	if err != nil {
		t.Fatalf("receive replay: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("replay must not be delivered, got %d", len(msgs))
	}
	if left, _ := rc.FetchMessages(ctx, "bob", 0); len(left) != 0 {
		t.Fatal("replay must be acked")
	}
}

func TestTampered_LeftQueued(t *testing.T) {
	rc := newRelay(t)
	alice := newUser(t, "alice", rc)
	bob := newUser(t, "bob", rc)
	ctx := context.Background()

	if err := alice.messages.SendMessage(ctx, pass, "alice", "bob", []byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}
	envs, _ := rc.FetchMessages(ctx, "bob", 0)
	_ = rc.AckMessages(ctx, "bob", 1)

	bad := envs[0]
	bad.Body = append([]byte(nil), bad.Body...)
	bad.Body[len(bad.Body)-1] ^= 0xff
	_ = rc.SendMessage(ctx, bad)

	_, err := bob.messages.ReceiveMessages(ctx, pass, "bob", 0)
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected authentication failure, got %v", err)
	}
	if left, _ := rc.FetchMessages(ctx, "bob", 0); len(left) != 1 {
		t.Fatal("failed envelope must stay queued")
	}
	// the bogus handshake must not burn the one-time key
	keys, _ := bob.accounts.OneTimeKeys(pass)
	if len(keys) != 3 {
		t.Fatalf("want 3 unused one-time keys, got %d", len(keys))
	}
	if _, ok, _ := bob.store.Get(store.SessionName("alice")); ok {
		t.Fatal("no session may be stored for a failed handshake")
	}
}

func TestSend_NoOneTimeKeys(t *testing.T) {
	rc := newRelay(t)
	_ = newUser(t, "alice", rc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := rc.ClaimOneTimeKey(ctx, "alice"); err != nil {
			t.Fatalf("drain %d: %v", i, err)
		}
	}
	bob := newUser(t, "bob", rc)
	err := bob.messages.SendMessage(ctx, pass, "bob", "alice", []byte("x"))
	if !errors.Is(err, domain.ErrOneTimeKeyExhausted) {
		t.Fatalf("expected one-time key exhausted, got %v", err)
	}
}

func TestWrongPassphrase(t *testing.T) {
	rc := newRelay(t)
	alice := newUser(t, "alice", rc)
	_ = newUser(t, "bob", rc)
	err := alice.messages.SendMessage(context.Background(), "Wrong-Horse-9!", "alice", "bob", []byte("x"))
	if !errors.Is(err, domain.ErrBadPassphrase) {
		t.Fatalf("expected bad passphrase, got %v", err)
	}
}
