package socket

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"opentalk_server/models"
)

type emitted struct {
	event   string
	payload interface{}
}

type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []emitted
}

func newConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var payload interface{}
	if len(v) > 0 {
		payload = v[0]
	}
	c.events = append(c.events, emitted{event: event, payload: payload})
}

func (c *fakeConn) received(event string) []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []interface{}
	for _, e := range c.events {
		if e.event == event {
			out = append(out, e.payload)
		}
	}
	return out
}

func (c *fakeConn) eventNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.events))
	for _, e := range c.events {
		names = append(names, e.event)
	}
	return names
}

var errNoProfile = errors.New("no such profile")

type fakeUsers struct {
	mu           sync.Mutex
	profiles     map[string]*models.UserProfile
	online       map[string]string
	offlineCalls []string
	currentMatch map[string]string
	inCall       map[string]bool
	minutes      map[string]int
	expired      []string
}

func newFakeUsers(profiles ...*models.UserProfile) *fakeUsers {
	u := &fakeUsers{
		profiles:     make(map[string]*models.UserProfile),
		online:       make(map[string]string),
		currentMatch: make(map[string]string),
		inCall:       make(map[string]bool),
		minutes:      make(map[string]int),
	}
	for _, p := range profiles {
		u.profiles[p.UserID] = p
	}
	return u
}

func (u *fakeUsers) GetUserProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.profiles[userID]
	if !ok {
		return nil, errNoProfile
	}
	clone := *p
	return &clone, nil
}

func (u *fakeUsers) SetOnline(_ context.Context, userID, socketID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.online[userID] = socketID
	return nil
}

func (u *fakeUsers) SetOffline(_ context.Context, userID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.online, userID)
	u.offlineCalls = append(u.offlineCalls, userID)
	return nil
}

func (u *fakeUsers) SetCurrentMatch(_ context.Context, userID, matchedUserID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.currentMatch[userID] = matchedUserID
	return nil
}

func (u *fakeUsers) StartCall(_ context.Context, userID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inCall[userID] = true
	delete(u.currentMatch, userID)
	return nil
}

func (u *fakeUsers) FinishCall(_ context.Context, userID string, minutes int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inCall[userID] = false
	delete(u.currentMatch, userID)
	u.minutes[userID] += minutes
	return nil
}

func (u *fakeUsers) ExpirePremium(_ context.Context, userID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.expired = append(u.expired, userID)
	if p, ok := u.profiles[userID]; ok {
		p.IsPremium = false
	}
	return nil
}

// userState is a copy of what fakeUsers recorded
type userState struct {
	online       map[string]string
	offlineCalls []string
	currentMatch map[string]string
	inCall       map[string]bool
	minutes      map[string]int
	expired      []string
}

func (u *fakeUsers) snapshot() userState {
	u.mu.Lock()
	defer u.mu.Unlock()
	copyStrings := func(m map[string]string) map[string]string {
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	inCall := make(map[string]bool, len(u.inCall))
	for k, v := range u.inCall {
		inCall[k] = v
	}
	minutes := make(map[string]int, len(u.minutes))
	for k, v := range u.minutes {
		minutes[k] = v
	}
	return userState{
		online:       copyStrings(u.online),
		offlineCalls: append([]string(nil), u.offlineCalls...),
		currentMatch: copyStrings(u.currentMatch),
		inCall:       inCall,
		minutes:      minutes,
		expired:      append([]string(nil), u.expired...),
	}
}

type fakeCalls struct {
	mu      sync.Mutex
	history []models.CallHistory
}

func (c *fakeCalls) RecordCall(_ context.Context, call models.CallHistory) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, call)
	return nil
}

func (c *fakeCalls) recorded() []models.CallHistory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CallHistory(nil), c.history...)
}

type fakeFeed struct {
	mu         sync.Mutex
	activities []models.FeedActivity
}

func (f *fakeFeed) PublishActivity(_ context.Context, activity models.FeedActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = append(f.activities, activity)
	return nil
}

func (f *fakeFeed) published() []models.FeedActivity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.FeedActivity(nil), f.activities...)
}

type fakePresence struct {
	mu     sync.Mutex
	online map[string]string
}

func (p *fakePresence) MarkOnline(_ context.Context, userID, socketID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.online == nil {
		p.online = make(map[string]string)
	}
	p.online[userID] = socketID
	return nil
}

func (p *fakePresence) MarkOffline(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
	return nil
}

// gate holds the next call it is armed for until release is closed
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) pass() {
	if g == nil {
		return
	}
	close(g.entered)
	<-g.release
}

type gatedUsers struct {
	*fakeUsers
	gateMu      sync.Mutex
	profileGate *gate
	onlineGate  *gate
}

func (g *gatedUsers) arm(slot **gate) *gate {
	g.gateMu.Lock()
	defer g.gateMu.Unlock()
	*slot = newGate()
	return *slot
}

func (g *gatedUsers) take(slot **gate) *gate {
	g.gateMu.Lock()
	defer g.gateMu.Unlock()
	armed := *slot
	*slot = nil
	return armed
}

func (g *gatedUsers) armProfile() *gate { return g.arm(&g.profileGate) }
func (g *gatedUsers) armOnline() *gate  { return g.arm(&g.onlineGate) }

func (g *gatedUsers) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	g.take(&g.profileGate).pass()
	return g.fakeUsers.GetUserProfile(ctx, userID)
}

func (g *gatedUsers) SetOnline(ctx context.Context, userID, socketID string) error {
	g.take(&g.onlineGate).pass()
	return g.fakeUsers.SetOnline(ctx, userID, socketID)
}

type prefixAvatars struct{}

func (prefixAvatars) ResolveAvatar(_ context.Context, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return "https://signed.example/" + ref
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	hub      *Hub
	users    *fakeUsers
	calls    *fakeCalls
	feed     *fakeFeed
	presence *fakePresence
	clock    *fakeClock
}

func newHarness(t *testing.T, profiles ...*models.UserProfile) *harness {
	t.Helper()
	h := baseHarness(profiles...)
	h.start(t, h.users)
	return h
}

// newGatedHarness routes directory calls through gatedUsers so a test can hold one open
func newGatedHarness(t *testing.T, profiles ...*models.UserProfile) (*harness, *gatedUsers) {
	t.Helper()
	h := baseHarness(profiles...)
	gated := &gatedUsers{fakeUsers: h.users}
	h.start(t, gated)
	return h, gated
}

func baseHarness(profiles ...*models.UserProfile) *harness {
	return &harness{
		users:    newFakeUsers(profiles...),
		calls:    &fakeCalls{},
		feed:     &fakeFeed{},
		presence: &fakePresence{},
		clock:    &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
}

func (h *harness) start(t *testing.T, users UserDirectory) {
	h.hub = NewHub(Deps{
		Users:    users,
		Calls:    h.calls,
		Feed:     h.feed,
		Presence: h.presence,
		Avatars:  prefixAvatars{},
	}, Options{Now: h.clock.Now})
	t.Cleanup(h.hub.Wait)
}

func profile(id, username, gender string) *models.UserProfile {
	return &models.UserProfile{UserID: id, Username: username, Gender: gender}
}

func premiumProfile(id, username, gender string) *models.UserProfile {
	p := profile(id, username, gender)
	p.IsPremium = true
	return p
}

// online connects userID with a fresh fake connection
func (h *harness) online(userID string) *fakeConn {
	conn := newConn("sock-" + userID)
	h.hub.SetOnline(userID, conn)
	return conn
}

func (h *harness) findMatch(t *testing.T, conn Conn, userID, filter string) error {
	t.Helper()
	return h.hub.FindMatch(context.Background(), conn, userID, filter)
}

// startCall drives both call_started reports for a matched pair
func (h *harness) startCall(callID, a, b string) {
	participants := []string{a, b}
	h.hub.CallStarted(a, CallStartedPayload{CallID: callID, Participants: participants})
	h.hub.CallStarted(b, CallStartedPayload{CallID: callID, Participants: participants})
}
