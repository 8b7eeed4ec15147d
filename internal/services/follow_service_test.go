package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SketchShifter/social_backend/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFollowFixture(t *testing.T) (*memStore, *mockEventPublisher, FollowService, models.User, models.User) {
	t.Helper()
	store := newMemStore()
	alice := store.addUser("alice")
	bob := store.addUser("bob")
	events := &mockEventPublisher{}
	svc := NewFollowService(store, store, events, newTestMetrics(), testLog)
	return store, events, svc, alice, bob
}

func TestFollowService_ToggleFollow(t *testing.T) {
	ctx := context.Background()
	store, events, svc, alice, bob := newFollowFixture(t)

	events.On("PublishFollowed", mock.Anything, alice.ID, bob.ID).Return(nil).Once()
	events.On("PublishUnfollowed", mock.Anything, alice.ID, bob.ID).Return(nil).Once()

	// 1回目: フォロー
	state, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFollowed, state)

	a, _ := store.FindByID(ctx, alice.ID)
	b, _ := store.FindByID(ctx, bob.ID)
	assert.Equal(t, []uint{bob.ID}, a.Following)
	assert.Equal(t, []uint{alice.ID}, b.Followers)
	assert.Empty(t, a.Followers)
	assert.Empty(t, b.Following)

	notifications := store.notificationsFor(bob.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationFollow, notifications[0].Type)
	assert.Equal(t, alice.ID, notifications[0].FromID)
	assert.False(t, notifications[0].Read)
	require.NotNil(t, notifications[0].From)
	assert.Equal(t, "alice", notifications[0].From.Username)
	assert.Empty(t, store.notificationsFor(alice.ID))

	// 2回目: フォロー解除（通知は増えず、既存の通知も残る）
	state, err = svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StateUnfollowed, state)

	a, _ = store.FindByID(ctx, alice.ID)
	b, _ = store.FindByID(ctx, bob.ID)
	assert.Empty(t, a.Following)
	assert.Empty(t, b.Followers)
	assert.Len(t, store.notificationsFor(bob.ID), 1)

	events.AssertExpectations(t)
}

func TestFollowService_ToggleFollow_Refollow(t *testing.T) {
	ctx := context.Background()
	store, events, svc, alice, bob := newFollowFixture(t)
	events.On("PublishFollowed", mock.Anything, alice.ID, bob.ID).Return(nil)
	events.On("PublishUnfollowed", mock.Anything, alice.ID, bob.ID).Return(nil)

	for i := 0; i < 3; i++ {
		_, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
	}

	// フォロー → 解除 → フォローで通知は2件
	a, _ := store.FindByID(ctx, alice.ID)
	assert.Equal(t, []uint{bob.ID}, a.Following)
	assert.Len(t, store.notificationsFor(bob.ID), 2)
	events.AssertNumberOfCalls(t, "PublishFollowed", 2)
	events.AssertNumberOfCalls(t, "PublishUnfollowed", 1)
}

func TestFollowService_ToggleFollow_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		actor    func(alice, bob models.User) uint
		target   func(alice, bob models.User) uint
		wantKind error
	}{
		{
			name:     "self follow",
			actor:    func(alice, _ models.User) uint { return alice.ID },
			target:   func(alice, _ models.User) uint { return alice.ID },
			wantKind: ErrSelfReference,
		},
		{
			name:     "target not found",
			actor:    func(alice, _ models.User) uint { return alice.ID },
			target:   func(_, _ models.User) uint { return 999 },
			wantKind: ErrNotFound,
		},
		{
			name:     "actor not found",
			actor:    func(_, _ models.User) uint { return 999 },
			target:   func(_, bob models.User) uint { return bob.ID },
			wantKind: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, events, svc, alice, bob := newFollowFixture(t)

			state, err := svc.ToggleFollow(ctx, tt.actor(alice, bob), tt.target(alice, bob))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantKind))
			assert.Empty(t, state)

			var svcErr *ServiceError
			assert.True(t, errors.As(err, &svcErr))

			// 何も変化しない
			assert.Empty(t, store.edges)
			assert.Empty(t, store.notifications)
			events.AssertNotCalled(t, "PublishFollowed", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestFollowService_ToggleFollow_RepositoryError(t *testing.T) {
	ctx := context.Background()
	store, events, svc, alice, bob := newFollowFixture(t)
	store.failSetFollow = errors.New("connection reset")

	_, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.Error(t, err)

	var svcErr *ServiceError
	assert.False(t, errors.As(err, &svcErr))
	assert.Empty(t, store.edges)
	assert.Empty(t, store.notifications)
	events.AssertNotCalled(t, "PublishFollowed", mock.Anything, mock.Anything, mock.Anything)
}

func TestFollowService_ToggleFollow_PublishFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	store, events, svc, alice, bob := newFollowFixture(t)
	events.On("PublishFollowed", mock.Anything, alice.ID, bob.ID).Return(errors.New("nats: connection closed"))

	state, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFollowed, state)
	assert.Len(t, store.notificationsFor(bob.ID), 1)
}

// staleFollowRepo 同時リクエストに先を越された状態を再現する
type staleFollowRepo struct {
	*memStore
}

func (staleFollowRepo) SetFollowState(context.Context, uint, uint, bool) (bool, error) {
	return false, nil
}

func TestFollowService_ToggleFollow_Unchanged(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	alice := store.addUser("alice")
	bob := store.addUser("bob")
	events := &mockEventPublisher{}
	m := newTestMetrics()
	svc := NewFollowService(store, staleFollowRepo{store}, events, m, testLog)

	state, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFollowed, state)

	events.AssertNotCalled(t, "PublishFollowed", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.FollowToggles.WithLabelValues(string(StateFollowed))))
}

func TestFollowService_ToggleFollow_Metrics(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	alice := store.addUser("alice")
	bob := store.addUser("bob")
	events := &mockEventPublisher{}
	events.On("PublishFollowed", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	events.On("PublishUnfollowed", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m := newTestMetrics()
	svc := NewFollowService(store, store, events, m, testLog)

	_, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.FollowToggles.WithLabelValues(string(StateFollowed))))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FollowToggles.WithLabelValues(string(StateUnfollowed))))
}

// edgeLookupRepo フォロー状態の確認結果を差し替える
type edgeLookupRepo struct {
	*memStore
	following bool
	err       error
}

func (r edgeLookupRepo) IsFollowing(context.Context, uint, uint) (bool, error) {
	return r.following, r.err
}

func TestFollowService_ToggleFollow_UsesEdgeLookup(t *testing.T) {
	tests := []struct {
		name        string
		following   bool
		lookupErr   error
		wantState   FollowState
		expectError bool
	}{
		{name: "edge present unfollows", following: true, wantState: StateUnfollowed},
		{name: "edge absent follows", following: false, wantState: StateFollowed},
		{name: "lookup error", lookupErr: errors.New("connection refused"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newMemStore()
			alice := store.addUser("alice")
			bob := store.addUser("bob")
			events := &mockEventPublisher{}
			events.On("PublishFollowed", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			repo := edgeLookupRepo{memStore: store, following: tt.following, err: tt.lookupErr}
			svc := NewFollowService(store, repo, events, newTestMetrics(), testLog)

			state, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
			if tt.expectError {
				require.Error(t, err)
				assert.Empty(t, store.notificationsFor(bob.ID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, state)
		})
	}
}
