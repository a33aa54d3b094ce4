package commands_test

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"

	"olmkit/cmd/olmkit/commands"
	"olmkit/internal/relay"
)

const pass = "Correct-Horse-9!"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := commands.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "olmkit 1.0.0" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSHA256(t *testing.T) {
	out, err := run(t, "sha256", "hello")
	if err != nil {
		t.Fatalf("sha256: %v", err)
	}
	if strings.TrimSpace(out) != "LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ" {
		t.Fatalf("unexpected digest %q", out)
	}
}

func TestVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	sig := ed25519.Sign(priv, []byte("msg"))
	key := base64.RawStdEncoding.EncodeToString(pub)
	s := base64.RawStdEncoding.EncodeToString(sig)

	if _, err := run(t, "verify", key, "msg", s); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if _, err := run(t, "verify", key, "other", s); err == nil {
		t.Fatal("expected failure for wrong message")
	}
}

func TestAccountLifecycle(t *testing.T) {
	ts := httptest.NewServer(relay.NewServer(relay.ServerOptions{}))
	defer ts.Close()
	home := t.TempDir()
	common := []string{"--home", home, "--relay", ts.URL, "-p", pass}

	out, err := run(t, append([]string{"account", "create"}, common...)...)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "Fingerprint: ") {
		t.Fatalf("create output %q", out)
	}
	fp := strings.TrimSpace(out[strings.Index(out, "Fingerprint: ")+len("Fingerprint: "):])

	out, err = run(t, append([]string{"account", "fingerprint"}, common...)...)
	if err != nil || strings.TrimSpace(out) != "Fingerprint: "+fp {
		t.Fatalf("fingerprint %q err %v", out, err)
	}

	if _, err := run(t, append([]string{"account", "generate", "-n", "2"}, common...)...); err != nil {
		t.Fatalf("generate: %v", err)
	}
	out, err = run(t, append([]string{"account", "publish", "-u", "alice"}, common...)...)
	if err != nil || !strings.Contains(out, "Published 2 one-time keys") {
		t.Fatalf("publish %q err %v", out, err)
	}

	out, err = run(t, append([]string{"account", "keys"}, common...)...)
	if err != nil || !strings.Contains(out, `"curve25519"`) {
		t.Fatalf("keys %q err %v", out, err)
	}
}

func TestMissingPassphrase(t *testing.T) {
	if _, err := run(t, "account", "create", "--home", t.TempDir()); err == nil {
		t.Fatal("expected error without passphrase")
	}
}
