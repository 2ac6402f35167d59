package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	access "github.com/promanage/go-access"
)

func TestManagerEstablishRoundTrip(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)
	payload := staffSession()

	require.NoError(t, manager.Establish(context.Background(), payload))

	assert.Equal(t, payload, manager.Current())

	stored := store.stored()
	require.NotNil(t, stored)
	assert.Equal(t, payload, *stored)
}

func TestManagerEstablishRejectsInvalidPayload(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)

	payload := staffSession()
	payload.CredentialToken = ""

	err := manager.Establish(context.Background(), payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, access.ErrInvalidSessionPayload)
	assert.True(t, manager.Current().IsAnonymous())
	assert.Equal(t, 0, store.saveCalls)
}

func TestManagerEstablishNotifiesSubscribersBeforeReturning(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)

	var seen []access.Session
	manager.Subscribe(func(s access.Session) {
		seen = append(seen, s)
	})

	require.NoError(t, manager.Establish(context.Background(), staffSession()))
	require.Len(t, seen, 1)
	assert.Equal(t, staffSession(), seen[0])

	require.NoError(t, manager.Clear(context.Background()))
	require.Len(t, seen, 2)
	assert.True(t, seen[1].IsAnonymous())
}

func TestManagerSubscriberMayReadCurrent(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)

	var observed access.Session
	manager.Subscribe(func(s access.Session) {
		// the mutation is visible to observers at notification time
		observed = manager.Current()
	})

	require.NoError(t, manager.Establish(context.Background(), staffSession()))
	assert.Equal(t, staffSession(), observed)
}

func TestManagerUnsubscribeStopsNotifications(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)

	calls := 0
	id := manager.Subscribe(func(access.Session) { calls++ })

	require.NoError(t, manager.Establish(context.Background(), staffSession()))
	manager.Unsubscribe(id)
	require.NoError(t, manager.Clear(context.Background()))

	assert.Equal(t, 1, calls)
}

func TestManagerClearIsIdempotent(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)

	require.NoError(t, manager.Establish(context.Background(), staffSession()))

	require.NoError(t, manager.Clear(context.Background()))
	assert.True(t, manager.Current().IsAnonymous())
	assert.Nil(t, store.stored())

	// second clear is a no-op, not an error
	require.NoError(t, manager.Clear(context.Background()))
	assert.True(t, manager.Current().IsAnonymous())
	assert.Equal(t, 1, store.clearCalls)
}

func TestManagerUpdateIdentityPreservesCredential(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)
	require.NoError(t, manager.Establish(context.Background(), staffSession()))

	require.NoError(t, manager.UpdateIdentity(context.Background(), access.IdentityUpdate{Name: "X"}))

	current := manager.Current()
	assert.Equal(t, "X", current.Name)
	assert.Equal(t, "tok-staff-1", current.CredentialToken)
	assert.Equal(t, access.RoleStaff, current.Role)

	stored := store.stored()
	require.NotNil(t, stored)
	assert.Equal(t, current, *stored)
}

func TestManagerUpdateIdentityAcceptsRotatedToken(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)
	require.NoError(t, manager.Establish(context.Background(), staffSession()))

	update := access.IdentityUpdate{Email: "renamed@promanage.test", CredentialToken: "tok-rotated"}
	require.NoError(t, manager.UpdateIdentity(context.Background(), update))

	current := manager.Current()
	assert.Equal(t, "renamed@promanage.test", current.Email)
	assert.Equal(t, "tok-rotated", current.CredentialToken)
}

func TestManagerUpdateIdentityWhileAnonymous(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)

	err := manager.UpdateIdentity(context.Background(), access.IdentityUpdate{Name: "X"})
	require.Error(t, err)
	assert.ErrorIs(t, err, access.ErrNoActiveSession)
}

func TestManagerInitializeFromStoredSession(t *testing.T) {
	session := staffSession()
	store := &memoryStore{session: &session}
	manager := access.NewManager(store)

	require.NoError(t, manager.Initialize(context.Background()))

	current := manager.Current()
	assert.Equal(t, access.RoleStaff, current.Role)

	// the booted session drives navigation decisions
	assert.Equal(t, access.DecisionRedirectDefault, access.Decide(current, access.RoleAdmin))
	assert.Equal(t, access.DecisionAllow, access.Decide(current))
}

func TestManagerInitializeFromEmptyStore(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)

	require.NoError(t, manager.Initialize(context.Background()))

	current := manager.Current()
	assert.True(t, current.IsAnonymous())
	assert.Equal(t, access.DecisionRedirectLogin, access.Decide(current, access.RoleAdmin))
	assert.Equal(t, access.DecisionRedirectLogin, access.Decide(current))
}

func TestManagerInitializeRecoversFromUnreadableStore(t *testing.T) {
	store := &memoryStore{loadErr: assert.AnError}
	manager := access.NewManager(store)

	require.NoError(t, manager.Initialize(context.Background()))
	assert.True(t, manager.Current().IsAnonymous())
}

func TestManagerInitializeIsIdempotent(t *testing.T) {
	session := staffSession()
	store := &memoryStore{session: &session}
	manager := access.NewManager(store)

	require.NoError(t, manager.Initialize(context.Background()))
	require.NoError(t, manager.Initialize(context.Background()))
	assert.Equal(t, session, manager.Current())

	// a later Initialize re-reads the store as ground truth
	store.session = nil
	require.NoError(t, manager.Initialize(context.Background()))
	assert.True(t, manager.Current().IsAnonymous())
}

func TestManagerCurrentReturnsSnapshot(t *testing.T) {
	store := &memoryStore{}
	manager := access.NewManager(store)
	require.NoError(t, manager.Establish(context.Background(), staffSession()))

	before := manager.Current()
	require.NoError(t, manager.UpdateIdentity(context.Background(), access.IdentityUpdate{Name: "Changed"}))
	after := manager.Current()

	assert.Equal(t, "Sam Field", before.Name)
	assert.Equal(t, "Changed", after.Name)
}

func TestManagerEmitsActivityEvents(t *testing.T) {
	store := &memoryStore{}
	sink := &recordingSink{}
	manager := access.NewManager(store, access.WithManagerActivitySink(sink))

	require.NoError(t, manager.Establish(context.Background(), staffSession()))
	require.NoError(t, manager.UpdateIdentity(context.Background(), access.IdentityUpdate{Name: "X"}))
	require.NoError(t, manager.Clear(context.Background()))

	assert.Equal(t, []access.ActivityEventType{
		access.ActivityEventSessionEstablished,
		access.ActivityEventIdentityUpdated,
		access.ActivityEventSessionCleared,
	}, sink.types())
}
