package polls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoll(t *testing.T, creatorID string) (string, *Poll) {
	t.Helper()

	poll, err := NewPoll("Lunch?", []string{"Pizza", "Tacos"}, 10, false, creatorID)
	require.NoError(t, err)
	return GenerateID(creatorID), poll
}

func TestStoreCreateGetDelete(t *testing.T) {
	store := NewStore()
	id, poll := testPoll(t, "u1")

	_, ok := store.Get(id)
	assert.False(t, ok)

	store.Create(id, poll)
	assert.Equal(t, id, poll.ID)

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, poll, got)

	assert.True(t, store.Delete(id))
	assert.False(t, store.Delete(id))

	_, ok = store.Get(id)
	assert.False(t, ok)
}

func TestStoreListActiveIDs(t *testing.T) {
	store := NewStore()

	assert.Empty(t, store.ListActiveIDs())

	idA, pollA := testPoll(t, "u1")
	idB, pollB := testPoll(t, "u2")
	store.Create(idA, pollA)
	store.Create(idB, pollB)

	assert.ElementsMatch(t, []string{idA, idB}, store.ListActiveIDs())

	store.EndPoll(idA)
	assert.Equal(t, []string{idB}, store.ListActiveIDs())
}

func TestStoreEndPoll(t *testing.T) {
	store := NewStore()
	id, poll := testPoll(t, "u1")
	store.Create(id, poll)

	ended, ok := store.EndPoll(id)
	require.True(t, ok)
	assert.False(t, ended.Active)

	// Ending twice stays ended, never re-activates.
	ended, ok = store.EndPoll(id)
	require.True(t, ok)
	assert.False(t, ended.Active)

	_, ok = store.EndPoll("poll_0_nobody_0_0")
	assert.False(t, ok)

	// Ended polls stay resident until explicitly deleted.
	_, ok = store.Get(id)
	assert.True(t, ok)
}

func TestStoreSnapshot(t *testing.T) {
	store := NewStore()
	id, poll := testPoll(t, "u1")
	store.Create(id, poll)
	store.AddVote(id, "u2", 0)

	snap, ok := store.Snapshot(id)
	require.True(t, ok)
	assert.NotSame(t, poll, snap)
	assert.Equal(t, 1, snap.TotalVotes())

	// Later votes don't leak into an existing snapshot.
	store.AddVote(id, "u3", 1)
	assert.Equal(t, 1, snap.TotalVotes())

	// And mutating the snapshot never touches the stored poll.
	snap.Votes["u9"] = 0
	snap.Options[0] = "mutated"
	assert.Equal(t, 2, poll.TotalVotes())
	assert.Equal(t, "Pizza", poll.Options[0])

	_, ok = store.Snapshot("missing")
	assert.False(t, ok)
}

func TestStoreCastVote(t *testing.T) {
	store := NewStore()
	id, poll := testPoll(t, "u1")
	store.Create(id, poll)

	_, err := store.CastVote("missing", "u2", 0)
	assert.ErrorIs(t, err, ErrPollNotFound)

	_, err = store.CastVote(id, "u2", 5)
	assert.ErrorIs(t, err, ErrInvalidOption)

	snap, err := store.CastVote(id, "u2", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalVotes())

	// Voting again replaces in the same critical section.
	snap, err = store.CastVote(id, "u2", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalVotes())
	assert.Equal(t, 1, snap.Votes["u2"])

	store.EndPoll(id)
	_, err = store.CastVote(id, "u2", 0)
	assert.ErrorIs(t, err, ErrPollEnded)
}

func TestStoreVotes(t *testing.T) {
	store := NewStore()
	id, poll := testPoll(t, "u1")
	store.Create(id, poll)

	assert.False(t, store.HasVoted(id, "u2"))
	assert.True(t, store.AddVote(id, "u2", 0))
	assert.True(t, store.HasVoted(id, "u2"))

	// Re-voting replaces, the voter count never grows.
	assert.True(t, store.AddVote(id, "u2", 1))
	assert.Equal(t, 1, poll.TotalVotes())
	assert.Equal(t, 1, poll.Votes["u2"])

	assert.True(t, store.RemoveVote(id, "u2"))
	assert.False(t, store.RemoveVote(id, "u2"))
	assert.Equal(t, 0, poll.TotalVotes())

	// Unknown ids fail instead of panicking.
	assert.False(t, store.AddVote("missing", "u2", 0))
	assert.False(t, store.RemoveVote("missing", "u2"))
	assert.False(t, store.HasVoted("missing", "u2"))
}
