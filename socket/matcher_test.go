package socket

import (
	"context"
	"testing"
	"time"

	"opentalk_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		filter string
		want   QueueKey
		err    error
	}{
		{"", QueueFree, nil},
		{"none", QueueFree, nil},
		{"free", QueueFree, nil},
		{"male", QueueMale, nil},
		{"female", QueueFemale, nil},
		{"robots", "", ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := ParseFilter(tt.filter)
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFindMatchPairsWithOtherPartyInfo(t *testing.T) {
	h := newHarness(t,
		&models.UserProfile{UserID: "a", Username: "alice", Gender: models.GenderFemale, Avatar: "profile-pics/a.png"},
		&models.UserProfile{UserID: "b", Username: "bob", Gender: models.GenderMale, Avatar: "https://cdn.example/b.png"},
	)
	connA := h.online("a")
	connB := h.online("b")

	require.NoError(t, h.findMatch(t, connA, "a", "free"))
	searching := connA.received(EventSearchingMatch)
	require.Len(t, searching, 1)
	assert.Equal(t, 1, searching[0].(SearchingMatch).QueuePosition)
	assert.Empty(t, connA.received(EventMatchFound))

	require.NoError(t, h.findMatch(t, connB, "b", "free"))

	foundA := connA.received(EventMatchFound)
	foundB := connB.received(EventMatchFound)
	require.Len(t, foundA, 1)
	require.Len(t, foundB, 1)

	matchA := foundA[0].(MatchFound)
	matchB := foundB[0].(MatchFound)
	assert.Equal(t, matchA.CallID, matchB.CallID)
	assert.Regexp(t, `^call_\d+_[0-9a-f]{9}$`, matchA.CallID)

	assert.Equal(t, models.MatchedUser{UserID: "b", Username: "bob", Avatar: "https://cdn.example/b.png", Gender: models.GenderMale}, matchA.MatchedUser)
	assert.Equal(t, "a", matchB.MatchedUser.UserID)
	assert.Equal(t, "alice", matchB.MatchedUser.Username)
	assert.Equal(t, "https://signed.example/profile-pics/a.png", matchB.MatchedUser.Avatar)

	assert.Equal(t, 0, h.hub.QueueLength(QueueFree))

	h.hub.Wait()
	users := h.users.snapshot()
	assert.Equal(t, "b", users.currentMatch["a"])
	assert.Equal(t, "a", users.currentMatch["b"])
}

func TestFindMatchSearchingBeforeMatchFound(t *testing.T) {
	h := newHarness(t, profile("a", "alice", "female"), profile("b", "bob", "male"))
	connA := h.online("a")
	connB := h.online("b")

	require.NoError(t, h.findMatch(t, connA, "a", ""))
	require.NoError(t, h.findMatch(t, connB, "b", ""))

	assert.Equal(t, []string{EventSearchingMatch, EventMatchFound}, connB.eventNames())
}

func TestFindMatchRejectsDuplicateSearch(t *testing.T) {
	h := newHarness(t, premiumProfile("a", "alice", "female"), premiumProfile("b", "bea", "female"), premiumProfile("c", "cleo", "female"))
	connA := h.online("a")

	// a single user never matches themselves
	require.NoError(t, h.findMatch(t, connA, "a", "male"))
	err := h.findMatch(t, connA, "a", "male")
	assert.ErrorIs(t, err, ErrAlreadySearching)
	assert.Equal(t, []string{"a"}, h.hub.Queued(QueueMale))

	errs := connA.received(EventMatchError)
	require.Len(t, errs, 1)
	assert.Equal(t, MatchErrorPayload{Message: "Already searching for match", Reason: "already_searching"}, errs[0])
}

func TestUserIsInAtMostOneQueue(t *testing.T) {
	h := newHarness(t, premiumProfile("a", "alice", "female"))
	conn := h.online("a")

	require.NoError(t, h.findMatch(t, conn, "a", "free"))
	assert.ErrorIs(t, h.findMatch(t, conn, "a", "female"), ErrAlreadySearching)
	assert.ErrorIs(t, h.findMatch(t, conn, "a", "male"), ErrAlreadySearching)

	assert.Equal(t, 1, h.hub.QueueLength(QueueFree))
	assert.Equal(t, 0, h.hub.QueueLength(QueueFemale))
	assert.Equal(t, 0, h.hub.QueueLength(QueueMale))
}

func TestMatchPairsOldestEntriesFirst(t *testing.T) {
	h := newHarness(t, profile("a", "alice", "female"), profile("b", "bob", "male"), profile("c", "cat", "female"))
	connA := h.online("a")
	connB := h.online("b")
	connC := h.online("c")

	require.NoError(t, h.findMatch(t, connA, "a", "free"))
	require.NoError(t, h.findMatch(t, connB, "b", "free"))
	require.NoError(t, h.findMatch(t, connC, "c", "free"))

	require.Len(t, connA.received(EventMatchFound), 1)
	assert.Equal(t, "b", connA.received(EventMatchFound)[0].(MatchFound).MatchedUser.UserID)
	assert.Empty(t, connC.received(EventMatchFound))
	assert.Equal(t, []string{"c"}, h.hub.Queued(QueueFree))
}

func TestFilteredQueueRequiresPremium(t *testing.T) {
	h := newHarness(t, profile("a", "alice", "female"))
	conn := h.online("a")

	err := h.findMatch(t, conn, "a", "male")
	assert.ErrorIs(t, err, ErrPremiumRequired)
	assert.Equal(t, 0, h.hub.QueueLength(QueueMale))

	errs := conn.received(EventMatchError)
	require.Len(t, errs, 1)
	assert.Equal(t, "premium_required", errs[0].(MatchErrorPayload).Reason)
	assert.Empty(t, conn.received(EventSearchingMatch))
}

func TestLapsedPremiumIsRejectedAndExpired(t *testing.T) {
	expired := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p := premiumProfile("a", "alice", "female")
	p.PremiumExpiresAt = &expired

	h := newHarness(t, p)
	conn := h.online("a")

	assert.ErrorIs(t, h.findMatch(t, conn, "a", "female"), ErrPremiumRequired)
	assert.Equal(t, 0, h.hub.QueueLength(QueueFemale))

	h.hub.Wait()
	assert.Equal(t, []string{"a"}, h.users.snapshot().expired)
}

func TestFreeQueueDoesNotNeedPremium(t *testing.T) {
	h := newHarness(t, profile("a", "alice", "female"))
	conn := h.online("a")

	require.NoError(t, h.findMatch(t, conn, "a", "free"))
	assert.Equal(t, 1, h.hub.QueueLength(QueueFree))
}

func TestInvalidFilterRejected(t *testing.T) {
	h := newHarness(t, profile("a", "alice", "female"))
	conn := h.online("a")

	assert.ErrorIs(t, h.findMatch(t, conn, "a", "robots"), ErrInvalidFilter)
	for _, key := range QueueKeys {
		assert.Equal(t, 0, h.hub.QueueLength(key))
	}
}

func TestUnknownProfileRejected(t *testing.T) {
	h := newHarness(t)
	conn := newConn("sock-ghost")

	assert.ErrorIs(t, h.findMatch(t, conn, "ghost", "free"), ErrProfileUnavailable)
	assert.Equal(t, 0, h.hub.QueueLength(QueueFree))
}

func TestFindMatchRequiresRegisteredConnection(t *testing.T) {
	h := newHarness(t, profile("a", "alice", "female"), profile("ghost", "casper", "male"))

	ghost := newConn("sock-ghost")
	assert.ErrorIs(t, h.findMatch(t, ghost, "ghost", "free"), ErrNotOnline)
	errs := ghost.received(EventMatchError)
	require.Len(t, errs, 1)
	assert.Equal(t, "not_online", errs[0].(MatchErrorPayload).Reason)

	h.online("a")
	other := newConn("sock-other")
	assert.ErrorIs(t, h.findMatch(t, other, "a", "free"), ErrNotOnline)

	assert.Empty(t, h.hub.Queued(QueueFree))
	assert.Empty(t, ghost.received(EventSearchingMatch))
}

func TestGenderFilteredQueueMatchesCompatibleSecond(t *testing.T) {
	h := newHarness(t, premiumProfile("a", "alice", "female"), premiumProfile("b", "bob", "male"))
	connA := h.online("a")
	connB := h.online("b")

	require.NoError(t, h.findMatch(t, connA, "a", "male"))
	require.NoError(t, h.findMatch(t, connB, "b", "male"))

	require.Len(t, connA.received(EventMatchFound), 1)
	assert.Equal(t, models.GenderMale, connA.received(EventMatchFound)[0].(MatchFound).MatchedUser.Gender)
	assert.Equal(t, 0, h.hub.QueueLength(QueueMale))
}

func TestGenderFilteredQueueReordersOnMismatch(t *testing.T) {
	h := newHarness(t,
		premiumProfile("a", "andy", "male"),
		premiumProfile("b", "bea", "female"),
		premiumProfile("c", "carl", "male"),
	)
	connA := h.online("a")
	connB := h.online("b")
	connC := h.online("c")

	require.NoError(t, h.findMatch(t, connA, "a", "male"))
	require.NoError(t, h.findMatch(t, connB, "b", "male"))

	assert.Empty(t, connA.received(EventMatchFound))
	assert.Empty(t, connB.received(EventMatchFound))
	assert.Equal(t, []string{"b", "a"}, h.hub.Queued(QueueMale))

	require.NoError(t, h.findMatch(t, connC, "c", "male"))

	found := connB.received(EventMatchFound)
	require.Len(t, found, 1)
	assert.Equal(t, "a", found[0].(MatchFound).MatchedUser.UserID)
	assert.Equal(t, []string{"c"}, h.hub.Queued(QueueMale))
	assert.Empty(t, connC.received(EventMatchFound))
}

func TestCancelMatchRemovesFromQueue(t *testing.T) {
	h := newHarness(t, profile("a", "alice", "female"))
	conn := h.online("a")

	require.NoError(t, h.findMatch(t, conn, "a", "free"))
	h.hub.CancelMatch("a", conn)
	assert.Equal(t, 0, h.hub.QueueLength(QueueFree))
	require.Len(t, conn.received(EventMatchCancelled), 1)

	// idempotent
	h.hub.CancelMatch("a", conn)
	assert.Len(t, conn.received(EventMatchCancelled), 2)

	require.NoError(t, h.findMatch(t, conn, "a", "free"))
	assert.Equal(t, 1, h.hub.QueueLength(QueueFree))
}

func TestMatchWithoutAvatarResolver(t *testing.T) {
	users := newFakeUsers(
		&models.UserProfile{UserID: "a", Username: "alice", Avatar: "profile-pics/a.png"},
		&models.UserProfile{UserID: "b", Username: "bob"},
	)
	hub := NewHub(Deps{Users: users, Calls: &fakeCalls{}, Feed: &fakeFeed{}}, Options{})
	t.Cleanup(hub.Wait)

	connA, connB := newConn("1"), newConn("2")
	hub.SetOnline("a", connA)
	hub.SetOnline("b", connB)
	require.NoError(t, hub.FindMatch(context.Background(), connA, "a", "free"))
	require.NoError(t, hub.FindMatch(context.Background(), connB, "b", "free"))

	found := connB.received(EventMatchFound)
	require.Len(t, found, 1)
	assert.Equal(t, "profile-pics/a.png", found[0].(MatchFound).MatchedUser.Avatar)
}
