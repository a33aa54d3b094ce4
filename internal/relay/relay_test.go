package relay_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"olmkit/internal/domain"
	"olmkit/internal/relay"
)

func newPair(t *testing.T, opts relay.ServerOptions) (*relay.Server, *relay.HTTP) {
	t.Helper()
	srv := relay.NewServer(opts)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, relay.NewHTTP(ts.URL, ts.Client())
}

func sampleKeys() domain.PublishedKeys {
	return domain.PublishedKeys{
		IdentityKeys: domain.IdentityKeys{
			Curve25519: domain.X25519Public{1},
			Ed25519:    domain.Ed25519Public{2},
		},
		OneTimeKeys: map[string]string{
			domain.KeyID(1).String(): "a2V5MQ",
			domain.KeyID(2).String(): "a2V5Mg",
		},
	}
}

func TestPublishFetchClaim(t *testing.T) {
	_, c := newPair(t, relay.ServerOptions{})
	ctx := context.Background()

	if err := c.PublishKeys(ctx, "bob", sampleKeys()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got, err := c.FetchKeys(ctx, "bob")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.IdentityKeys != sampleKeys().IdentityKeys {
		t.Fatal("identity keys mismatch")
	}
	if len(got.OneTimeKeys) != 2 {
		t.Fatalf("want 2 one-time keys, got %d", len(got.OneTimeKeys))
	}

	first, err := c.ClaimOneTimeKey(ctx, "bob")
	if err != nil {
		t.Fatalf("claim 1: %v", err)
	}
	if first.KeyID != domain.KeyID(1).String() || first.Key != "a2V5MQ" {
		t.Fatalf("claimed %+v, want key id 1", first)
	}
	if _, err := c.ClaimOneTimeKey(ctx, "bob"); err != nil {
		t.Fatalf("claim 2: %v", err)
	}
	_, err = c.ClaimOneTimeKey(ctx, "bob")
	if !errors.Is(err, domain.ErrOneTimeKeyExhausted) {
		t.Fatalf("expected exhausted, got %v", err)
	}
}

func TestRepublish_KeepsUnclaimedOnly(t *testing.T) {
	_, c := newPair(t, relay.ServerOptions{})
	ctx := context.Background()

	_ = c.PublishKeys(ctx, "bob", sampleKeys())
	if _, err := c.ClaimOneTimeKey(ctx, "bob"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	// republishing the same batch must not resurrect the claimed key
	more := sampleKeys()
	more.OneTimeKeys[domain.KeyID(3).String()] = "a2V5Mw"
	if err := c.PublishKeys(ctx, "bob", more); err != nil {
		t.Fatalf("republish: %v", err)
	}
	got, _ := c.FetchKeys(ctx, "bob")
	if len(got.OneTimeKeys) != 2 {
		t.Fatalf("want 2 keys after republish, got %d", len(got.OneTimeKeys))
	}
	if _, ok := got.OneTimeKeys[domain.KeyID(1).String()]; ok {
		t.Fatal("claimed key reappeared")
	}
}

func TestFetchKeys_Unknown(t *testing.T) {
	_, c := newPair(t, relay.ServerOptions{})
	_, err := c.FetchKeys(context.Background(), "nobody")
	if !errors.Is(err, relay.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMessages_SendFetchAck(t *testing.T) {
	srv, c := newPair(t, relay.ServerOptions{})
	ctx := context.Background()

	for i, body := range []string{"one", "two", "three"} {
		env := domain.Envelope{From: "alice", To: "bob", Type: domain.MessageOrdinary, Body: []byte(body)}
		if err := c.SendMessage(ctx, env); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if n, err := testutil.GatherAndCount(srv.Registry(), "olmkit_relay_queued_envelopes"); err != nil || n != 1 {
		t.Fatalf("queued gauge missing: %d %v", n, err)
	}

	envs, err := c.FetchMessages(ctx, "bob", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(envs) != 2 || string(envs[0].Body) != "one" {
		t.Fatalf("unexpected envelopes %+v", envs)
	}
	if envs[0].ID == "" || envs[0].ID == envs[1].ID {
		t.Fatal("envelope ids must be set and unique")
	}
	if envs[0].Timestamp == 0 {
		t.Fatal("timestamp not filled")
	}

	if err := c.AckMessages(ctx, "bob", 2); err != nil {
		t.Fatalf("ack: %v", err)
	}
	envs, _ = c.FetchMessages(ctx, "bob", 0)
	if len(envs) != 1 || string(envs[0].Body) != "three" {
		t.Fatalf("after ack: %+v", envs)
	}
	if err := c.AckMessages(ctx, "bob", 10); err != nil {
		t.Fatalf("over-ack: %v", err)
	}
	envs, _ = c.FetchMessages(ctx, "bob", 0)
	if len(envs) != 0 {
		t.Fatalf("queue not cleared: %d", len(envs))
	}
}

func TestRateLimit(t *testing.T) {
	_, c := newPair(t, relay.ServerOptions{Limit: relay.LimitConfig{RPS: 0.001, Burst: 1}})
	ctx := context.Background()

	if _, err := c.FetchMessages(ctx, "bob", 0); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := c.FetchMessages(ctx, "bob", 0)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected 429, got %v", err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := relay.NewServer(relay.ServerOptions{})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	c := relay.NewHTTP(ts.URL, ts.Client())

	if err := c.SendMessage(context.Background(), domain.Envelope{From: "a", To: "b"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %s", resp.Status)
	}
	if n, err := testutil.GatherAndCount(srv.Registry(), "olmkit_relay_requests_total"); err != nil || n != 1 {
		t.Fatalf("requests_total series = %d, err %v", n, err)
	}
}

func TestContextCancelled(t *testing.T) {
	_, c := newPair(t, relay.ServerOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.SendMessage(ctx, domain.Envelope{To: "bob"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
