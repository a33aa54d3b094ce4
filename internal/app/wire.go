package app

import (
	"net/http"
	"os"
	"path/filepath"

	"olmkit/internal/crypto"
	"olmkit/internal/domain"
	"olmkit/internal/logging"
	"olmkit/internal/pickle"
	"olmkit/internal/relay"
	accountsvc "olmkit/internal/services/account"
	messagesvc "olmkit/internal/services/message"
	"olmkit/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Log      *logging.Logger
	Store    domain.PickleStore
	Accounts *accountsvc.Service
	Messages *messagesvc.Service
	Relay    domain.RelayClient
	HTTP     *http.Client
}

// NewWire constructs the dependency graph from cfg. Close releases the store.
func NewWire(cfg Config) (*Wire, error) {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}

	dir := filepath.Join(cfg.Home, "store")
	if cfg.Store.Backend == "leveldb" {
		dir = filepath.Join(cfg.Home, "store.db")
	}
	ps, err := store.Open(cfg.Store.Backend, dir)
	if err != nil {
		return nil, err
	}

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	rc := relay.NewHTTP(cfg.RelayURL, httpClient)

	prim := crypto.New()
	codec, err := pickle.New(prim, log.Named("pickle"))
	if err != nil {
		_ = ps.Close()
		return nil, err
	}

	accounts := accountsvc.New(prim, codec, ps, rc, log.Named("account"))
	messages := messagesvc.New(accounts, codec, ps, rc, log.Named("message"))

	return &Wire{
		Log:      log,
		Store:    ps,
		Accounts: accounts,
		Messages: messages,
		Relay:    rc,
		HTTP:     httpClient,
	}, nil
}

// Close closes the store and flushes the logger.
func (w *Wire) Close() error {
	err := w.Store.Close()
	// Sync on stderr returns EINVAL on some platforms; ignore it.
	_ = w.Log.Sync()
	return err
}
