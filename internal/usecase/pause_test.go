package usecase

import (
	"context"
	"testing"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPauseStore() *fakeStore {
	store := newFakeStore()
	store.channels[7] = &models.Channel{ID: 1, ModeratorID: 7, Connectivity: models.ChannelConnected}
	store.sessions["s1"] = &models.MessageSession{
		ID: "s1", QueueID: 1, ModeratorID: 7, Status: models.SessionActive,
		TotalMessages: 2, OngoingMessages: 2,
	}
	store.messages["m1"] = &models.Message{ID: "m1", SessionID: "s1", PatientID: 1, Status: models.MessageQueued}
	store.messages["m2"] = &models.Message{ID: "m2", SessionID: "s1", PatientID: 2, Status: models.MessageSending}
	return store
}

func newPauser(store *fakeStore) *PauseUseCase {
	return NewPauseUseCase(
		&fakeChannels{store: store},
		&fakeSessions{store: store},
		&fakeMessages{store: store},
		testLogger(),
	)
}

func effective(store *fakeStore, messageID string) bool {
	message := store.messages[messageID]
	session := store.sessions[message.SessionID]
	channel := store.channels[session.ModeratorID]
	return models.EffectivePause(channel, session, message)
}

func TestPauseChannelBlocksEveryMessage(t *testing.T) {
	store := seedPauseStore()
	pauser := newPauser(store)

	require.NoError(t, pauser.PauseChannel(context.Background(), 7, models.PauseManual, 42))

	assert.True(t, effective(store, "m1"))
	assert.True(t, effective(store, "m2"))
	// The toggle wrote the channel row only.
	assert.False(t, store.sessions["s1"].IsPaused)
	assert.False(t, store.messages["m1"].IsPaused)

	require.NoError(t, pauser.ResumeChannel(context.Background(), 7))
	assert.False(t, effective(store, "m1"))
}

func TestPauseSessionBlocksItsMessagesOnly(t *testing.T) {
	store := seedPauseStore()
	store.sessions["s2"] = &models.MessageSession{ID: "s2", QueueID: 1, ModeratorID: 7, Status: models.SessionActive}
	store.messages["m3"] = &models.Message{ID: "m3", SessionID: "s2", PatientID: 3, Status: models.MessageQueued}
	pauser := newPauser(store)

	require.NoError(t, pauser.PauseSession(context.Background(), "s1", models.PauseManual, 42))

	assert.True(t, effective(store, "m1"))
	assert.False(t, effective(store, "m3"))
	assert.Equal(t, models.SessionPaused, store.sessions["s1"].Status)
	// No message row was touched.
	assert.False(t, store.messages["m1"].IsPaused)
}

func TestResumeSessionDoesNotCascadeToPausedMessages(t *testing.T) {
	store := seedPauseStore()
	pauser := newPauser(store)

	require.NoError(t, pauser.PauseMessage(context.Background(), "m1", models.PauseManual, 42))
	require.NoError(t, pauser.PauseSession(context.Background(), "s1", models.PauseManual, 42))
	require.NoError(t, pauser.ResumeSession(context.Background(), "s1"))

	// m1 carries its own pause and stays blocked after the session resume.
	assert.True(t, effective(store, "m1"))
	assert.False(t, effective(store, "m2"))
	assert.Equal(t, models.SessionActive, store.sessions["s1"].Status)
}

func TestPauseMessageDemotesSendingToQueued(t *testing.T) {
	store := seedPauseStore()
	pauser := newPauser(store)

	require.NoError(t, pauser.PauseMessage(context.Background(), "m2", models.PauseManual, 42))
	assert.Equal(t, models.MessageQueued, store.messages["m2"].Status)
	assert.True(t, store.messages["m2"].IsPaused)

	// A queued message keeps its status when paused.
	require.NoError(t, pauser.PauseMessage(context.Background(), "m1", models.PauseManual, 42))
	assert.Equal(t, models.MessageQueued, store.messages["m1"].Status)
}

func TestResumeMessageClearsOwnFlagOnly(t *testing.T) {
	store := seedPauseStore()
	pauser := newPauser(store)

	require.NoError(t, pauser.PauseChannel(context.Background(), 7, models.PauseSystem, 0))
	require.NoError(t, pauser.PauseMessage(context.Background(), "m1", models.PauseManual, 42))
	require.NoError(t, pauser.ResumeMessage(context.Background(), "m1"))

	assert.False(t, store.messages["m1"].IsPaused)
	assert.Nil(t, store.messages["m1"].PauseReason)
	// Still blocked through the channel level.
	assert.True(t, effective(store, "m1"))
}

func TestPauseSessionUnknownIDFails(t *testing.T) {
	store := seedPauseStore()
	pauser := newPauser(store)

	assert.Error(t, pauser.PauseSession(context.Background(), "missing", models.PauseManual, 42))
	assert.Error(t, pauser.ResumeSession(context.Background(), "missing"))
}

func TestDispatchableSelectionHonoursEffectivePause(t *testing.T) {
	store := seedPauseStore()
	pauser := newPauser(store)
	messages := &fakeMessages{store: store}

	dispatchable, err := messages.ListDispatchable(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, dispatchable, 1) // m1 queued, m2 sending

	require.NoError(t, pauser.PauseChannel(context.Background(), 7, models.PauseManual, 42))
	dispatchable, err = messages.ListDispatchable(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, dispatchable)
}
