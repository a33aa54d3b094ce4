package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"olmkit/internal/domain"
	"olmkit/internal/logging"
)

// maxBody caps request bodies the server will decode.
const maxBody = 1 << 20

var errEmptyUser = errors.New("empty username")

type directoryEntry struct {
	identity domain.IdentityKeys
	// one-time keys in publish order; claims pop from the front
	oneTime []domain.ClaimedKey
	claimed map[string]bool
}

// Server is the in-memory relay: a key directory plus per-user envelope
// queues. All state is lost when the process exits.
type Server struct {
	log     *logging.Logger
	limiter *limiter
	now     func() time.Time

	mu     sync.Mutex
	keys   map[domain.Username]*directoryEntry
	queues map[domain.Username][]domain.Envelope

	requests *prometheus.CounterVec
	queued   prometheus.Gauge
	registry *prometheus.Registry
	mux      *http.ServeMux
}

// ServerOptions configures NewServer. Zero values are usable.
type ServerOptions struct {
	Logger *logging.Logger
	Limit  LimitConfig
}

// NewServer builds a relay with its own metrics registry.
func NewServer(opts ServerOptions) *Server {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{
		log:     log,
		limiter: newLimiter(opts.Limit),
		now:     time.Now,
		keys:    make(map[domain.Username]*directoryEntry),
		queues:  make(map[domain.Username][]domain.Envelope),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olmkit",
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Relay requests by route and status code.",
		}, []string{"route", "code"}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "olmkit",
			Subsystem: "relay",
			Name:      "queued_envelopes",
			Help:      "Envelopes waiting to be fetched.",
		}),
		registry: prometheus.NewRegistry(),
		mux:      http.NewServeMux(),
	}
	s.registry.MustRegister(s.requests, s.queued)

	s.route("POST /keys/{user}", "publish_keys", s.handlePublishKeys)
	s.route("GET /keys/{user}", "fetch_keys", s.handleFetchKeys)
	s.route("POST /keys/{user}/claim", "claim_key", s.handleClaim)
	s.route("POST /msg/{user}", "send", s.handleSend)
	s.route("GET /msg/{user}", "fetch", s.handleFetch)
	s.route("POST /msg/{user}/ack", "ack", s.handleAck)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s
}

// Registry exposes the server's metrics registry.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// route wraps h with rate limiting, an access log line and the request counter.
func (s *Server) route(pattern, name string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		sw := &statusWriter{ResponseWriter: w}
		if !s.limiter.allow(remoteKey(r), start) {
			http.Error(sw, "rate limited", http.StatusTooManyRequests)
		} else {
			r.Body = http.MaxBytesReader(sw, r.Body, maxBody)
			h(sw, r)
		}
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		s.requests.WithLabelValues(name, strconv.Itoa(sw.status)).Inc()
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", sw.status,
			"bytes", sw.bytes,
			"duration", time.Since(start),
		)
	})
}

func pathUser(r *http.Request) (domain.Username, error) {
	u := r.PathValue("user")
	if u == "" {
		return "", errEmptyUser
	}
	return domain.Username(u), nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handlePublishKeys(w http.ResponseWriter, r *http.Request) {
	user, err := pathUser(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var in domain.PublishedKeys
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ids := make([]string, 0, len(in.OneTimeKeys))
	for id := range in.OneTimeKeys {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	s.mu.Lock()
	e, ok := s.keys[user]
	if !ok || e.identity != in.IdentityKeys {
		// a new identity invalidates whatever the old one published
		e = &directoryEntry{identity: in.IdentityKeys, claimed: make(map[string]bool)}
		s.keys[user] = e
	}
	have := make(map[string]bool, len(e.oneTime))
	for _, k := range e.oneTime {
		have[k.KeyID] = true
	}
	for _, id := range ids {
		if !have[id] && !e.claimed[id] {
			e.oneTime = append(e.oneTime, domain.ClaimedKey{KeyID: id, Key: in.OneTimeKeys[id]})
		}
	}
	total := len(e.oneTime)
	s.mu.Unlock()

	s.log.Debug("keys published", "user", user, "one_time_keys", total)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFetchKeys(w http.ResponseWriter, r *http.Request) {
	user, err := pathUser(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	e, ok := s.keys[user]
	var out domain.PublishedKeys
	if ok {
		out.IdentityKeys = e.identity
		if len(e.oneTime) > 0 {
			out.OneTimeKeys = make(map[string]string, len(e.oneTime))
			for _, k := range e.oneTime {
				out.OneTimeKeys[k.KeyID] = k.Key
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	user, err := pathUser(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	var (
		k  domain.ClaimedKey
		ok bool
	)
	if e := s.keys[user]; e != nil && len(e.oneTime) > 0 {
		k, ok = e.oneTime[0], true
		e.oneTime = e.oneTime[1:]
		e.claimed[k.KeyID] = true
	}
	s.mu.Unlock()
	if !ok {
		http.Error(w, "no one-time keys", http.StatusNotFound)
		return
	}
	writeJSON(w, k)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	user, err := pathUser(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var env domain.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	env.To = user
	env.ID = uuid.NewString()
	if env.Timestamp == 0 {
		env.Timestamp = s.now().Unix()
	}
	s.mu.Lock()
	s.queues[user] = append(s.queues[user], env)
	s.queued.Inc()
	s.mu.Unlock()
	writeJSON(w, struct {
		ID string `json:"id"`
	}{env.ID})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	user, err := pathUser(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
	}
	s.mu.Lock()
	q := s.queues[user]
	if limit == 0 || limit > len(q) {
		limit = len(q)
	}
	out := append([]domain.Envelope{}, q[:limit]...)
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	user, err := pathUser(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var in struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Count < 0 {
		http.Error(w, "bad ack", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	q := s.queues[user]
	n := min(in.Count, len(q))
	s.queues[user] = q[n:]
	if len(s.queues[user]) == 0 {
		delete(s.queues, user)
	}
	s.queued.Sub(float64(n))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
