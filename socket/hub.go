package socket

import (
	"context"
	"sync"
	"time"

	"opentalk_server/models"

	log "github.com/sirupsen/logrus"
)

// Options tune the hub. Zero values fall back to DefaultOptions.
type Options struct {
	PersistTimeout  time.Duration
	FollowThreshold time.Duration
	FeedThreshold   time.Duration
	Now             func() time.Time
}

func DefaultOptions() Options {
	return Options{
		PersistTimeout:  10 * time.Second,
		FollowThreshold: models.DefaultFollowThreshold * time.Second,
		FeedThreshold:   models.DefaultFeedThreshold * time.Second,
		Now:             time.Now,
	}
}

// Hub owns presence, matchmaking queues and call sessions. Every mutation
// happens under mu; emits are delivered and persistence is started after unlock.
// Presence writes are queued per user under mu so they land in table order.
type Hub struct {
	mu      sync.Mutex
	online  map[string]Conn
	queues  map[QueueKey][]*queueEntry
	pending map[string]*pendingCall
	active  map[string]*models.ActiveCall

	users    UserDirectory
	calls    CallRecorder
	feed     FeedPublisher
	presence PresenceMirror
	avatars  AvatarResolver

	opts     Options
	inflight sync.WaitGroup

	lanesMu sync.Mutex
	lanes   map[string][]task
}

// task is one unit of background persistence
type task struct {
	op     string
	fields log.Fields
	fn     func(ctx context.Context) error
}

// NewHub creates a hub. deps.Users, deps.Calls and deps.Feed are required.
func NewHub(deps Deps, opts Options) *Hub {
	defaults := DefaultOptions()
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaults.PersistTimeout
	}
	if opts.FollowThreshold <= 0 {
		opts.FollowThreshold = defaults.FollowThreshold
	}
	if opts.FeedThreshold <= 0 {
		opts.FeedThreshold = defaults.FeedThreshold
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}

	queues := make(map[QueueKey][]*queueEntry, len(QueueKeys))
	for _, key := range QueueKeys {
		queues[key] = nil
	}

	return &Hub{
		online:   make(map[string]Conn),
		queues:   queues,
		pending:  make(map[string]*pendingCall),
		active:   make(map[string]*models.ActiveCall),
		lanes:    make(map[string][]task),
		users:    deps.Users,
		calls:    deps.Calls,
		feed:     deps.Feed,
		presence: deps.Presence,
		avatars:  deps.Avatars,
		opts:     opts,
	}
}

func (h *Hub) now() time.Time {
	return h.opts.Now()
}

// RequestContext bounds a blocking lookup made on behalf of a socket event
func (h *Hub) RequestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.opts.PersistTimeout)
}

// background runs fn outside the lock with its own deadline. Failures are logged, never retried.
func (h *Hub) background(op string, fields log.Fields, fn func(ctx context.Context) error) {
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.run(task{op: op, fields: fields, fn: fn})
	}()
}

// serial is background for work that must not overtake earlier work queued
// under the same key. Tasks for one key run one at a time in submission order.
func (h *Hub) serial(key, op string, fields log.Fields, fn func(ctx context.Context) error) {
	h.lanesMu.Lock()
	defer h.lanesMu.Unlock()

	h.inflight.Add(1)
	t := task{op: op, fields: fields, fn: fn}
	if queued, busy := h.lanes[key]; busy {
		h.lanes[key] = append(queued, t)
		return
	}
	h.lanes[key] = nil
	go h.drain(key, t)
}

func (h *Hub) drain(key string, t task) {
	for {
		h.run(t)
		h.inflight.Done()

		h.lanesMu.Lock()
		queued := h.lanes[key]
		if len(queued) == 0 {
			delete(h.lanes, key)
			h.lanesMu.Unlock()
			return
		}
		t = queued[0]
		h.lanes[key] = queued[1:]
		h.lanesMu.Unlock()
	}
}

func (h *Hub) run(t task) {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.PersistTimeout)
	defer cancel()

	if err := t.fn(ctx); err != nil {
		log.WithFields(t.fields).WithError(err).Errorf("❌ %s failed", t.op)
	}
}

// Wait blocks until all background persistence has finished
func (h *Hub) Wait() {
	h.inflight.Wait()
}

// Stats is a point-in-time view of the live tables
type Stats struct {
	Online       int              `json:"online"`
	Queues       map[QueueKey]int `json:"queues"`
	PendingCalls int              `json:"pendingCalls"`
	ActiveCalls  int              `json:"activeCalls"`
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	queues := make(map[QueueKey]int, len(h.queues))
	for key, entries := range h.queues {
		queues[key] = len(entries)
	}
	return Stats{
		Online:       len(h.online),
		Queues:       queues,
		PendingCalls: len(h.pending),
		ActiveCalls:  len(h.active),
	}
}
