package bridge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"olmkit/internal/account"
	"olmkit/internal/crypto"
	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
	"olmkit/internal/logging"
	"olmkit/internal/pickle"
	"olmkit/internal/session"
	"olmkit/internal/utility"
)

// Handle names one live entity in a Registry.
type Handle uint64

// Kind is the type of entity behind a handle.
type Kind uint8

const (
	KindAccount Kind = iota + 1
	KindSession
	KindUtility
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindSession:
		return "session"
	case KindUtility:
		return "utility"
	default:
		return "unknown"
	}
}

var (
	errClosed   = errors.New("registry closed")
	errReleased = errors.New("handle released")
	errNoHandle = errors.New("no such handle")
)

// Options configures a Registry. Zero values pick sensible defaults.
type Options struct {
	// Primitives backs every entity. Nil means crypto.New().
	Primitives domain.Primitives
	Logger     *logging.Logger
	// Registerer receives the bridge metrics when non-nil.
	Registerer prometheus.Registerer
}

type slot struct {
	mu       sync.Mutex
	kind     Kind
	acct     *account.Account
	sess     *session.Session
	util     *utility.Utility
	released bool
}

// wipe zeroes the entity's secrets. The caller holds s.mu.
func (s *slot) wipe() {
	switch {
	case s.acct != nil:
		s.acct.Wipe()
	case s.sess != nil:
		s.sess.Wipe()
	}
	s.acct, s.sess, s.util = nil, nil, nil
	s.released = true
}

// Registry is the process-wide handle table.
type Registry struct {
	prim    domain.Primitives
	codec   *pickle.Codec
	log     *logging.Logger
	metrics *metrics

	mu     sync.Mutex
	slots  map[Handle]*slot
	next   Handle
	closed bool
}

// NewRegistry builds an empty registry and registers its metrics.
func NewRegistry(opts Options) (*Registry, error) {
	if opts.Primitives == nil {
		opts.Primitives = crypto.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	log := opts.Logger.Named("bridge")
	codec, err := pickle.New(opts.Primitives, opts.Logger)
	if err != nil {
		return nil, err
	}
	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}
	return &Registry{
		prim:    opts.Primitives,
		codec:   codec,
		log:     log,
		metrics: m,
		slots:   make(map[Handle]*slot),
		next:    1,
	}, nil
}

// Close releases every live handle. Later calls on the registry fail with
// ErrStaleHandle; a second Close is a no-op.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	slots := r.slots
	r.slots = make(map[Handle]*slot)
	r.mu.Unlock()

	for h, s := range slots {
		s.mu.Lock()
		if !s.released {
			s.wipe()
			r.metrics.live.WithLabelValues(s.kind.String()).Dec()
		}
		s.mu.Unlock()
		r.log.Debug("released on close", "handle", uint64(h), "kind", s.kind.String())
	}
	r.log.Info("registry closed", "released", len(slots))
	return nil
}

// Live reports how many handles are currently held.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Release tears down h exactly once.
func (r *Registry) Release(h Handle) (err error) {
	defer r.observe("release", &err)

	r.mu.Lock()
	s, ok := r.slots[h]
	if ok {
		delete(r.slots, h)
	}
	closed := r.closed
	r.mu.Unlock()
	if !ok {
		if closed {
			return stale(h, errClosed)
		}
		return stale(h, errNoHandle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return stale(h, errReleased)
	}
	s.wipe()
	r.metrics.live.WithLabelValues(s.kind.String()).Dec()
	r.log.Debug("released", "handle", uint64(h), "kind", s.kind.String())
	return nil
}

// insert stores a new entity and returns its handle.
func (r *Registry) insert(s *slot) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		s.wipe()
		return 0, types.NewError(types.KindStaleHandle, "insert", errClosed)
	}
	h := r.next
	r.next++
	r.slots[h] = s
	r.metrics.live.WithLabelValues(s.kind.String()).Inc()
	return h, nil
}

// acquire locks the slot for h after checking its kind. The returned
// function unlocks it.
func (r *Registry) acquire(h Handle, want Kind) (*slot, func(), error) {
	r.mu.Lock()
	s, ok := r.slots[h]
	closed := r.closed
	r.mu.Unlock()
	if !ok {
		if closed {
			return nil, nil, stale(h, errClosed)
		}
		return nil, nil, stale(h, errNoHandle)
	}

	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil, nil, stale(h, errReleased)
	}
	if s.kind != want {
		s.mu.Unlock()
		return nil, nil, stale(h, fmt.Errorf("handle is a %s, want %s", s.kind, want))
	}
	return s, s.mu.Unlock, nil
}

// observe counts op by outcome. It takes a pointer so it can be deferred.
func (r *Registry) observe(op string, err *error) {
	result := "ok"
	if *err != nil {
		result = types.KindOf(*err).String()
		r.log.Debug("operation failed", "op", op, "kind", result)
	}
	r.metrics.ops.WithLabelValues(op, result).Inc()
}

func stale(h Handle, cause error) error {
	return types.NewError(types.KindStaleHandle, fmt.Sprintf("handle %d", h), cause)
}
