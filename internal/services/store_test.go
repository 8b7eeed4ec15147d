package services

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/SketchShifter/social_backend/internal/logger"
	"github.com/SketchShifter/social_backend/internal/metrics"
	"github.com/SketchShifter/social_backend/internal/models"
	"github.com/SketchShifter/social_backend/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// memStore UserRepository / FollowRepository / NotificationRepository のインメモリ実装
type memStore struct {
	mu            sync.Mutex
	users         map[uint]models.User
	edges         []models.Follow
	notifications []models.Notification
	nextUserID    uint
	nextNotifID   uint

	// 次の SetFollowState / Update を失敗させる
	failSetFollow error
	failUpdate    error
}

var (
	_ repository.UserRepository         = (*memStore)(nil)
	_ repository.FollowRepository       = (*memStore)(nil)
	_ repository.NotificationRepository = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{users: map[uint]models.User{}}
}

// addUser パスワード "password" のユーザーを追加
func (s *memStore) addUser(username string) models.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	u := &models.User{
		Username: username,
		FullName: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	if err := s.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return *u
}

func (s *memStore) withFollowSets(u models.User) *models.User {
	u.Followers = []uint{}
	u.Following = []uint{}
	for _, e := range s.edges {
		if e.FollowerID == u.ID {
			u.Following = append(u.Following, e.FollowingID)
		}
		if e.FollowingID == u.ID {
			u.Followers = append(u.Followers, e.FollowerID)
		}
	}
	return &u
}

func (s *memStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	stored.Followers, stored.Following = nil, nil
	s.users[user.ID] = stored
	return nil
}

func (s *memStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s.withFollowSets(u), nil
}

func (s *memStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return s.withFollowSets(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) FindByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, *s.withFollowSets(u))
		}
	}
	return users, nil
}

func (s *memStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		err := s.failUpdate
		s.failUpdate = nil
		return err
	}
	for id, u := range s.users {
		if id != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return repository.ErrDuplicate
		}
	}
	stored := *user
	stored.Followers, stored.Following = nil, nil
	stored.UpdatedAt = time.Now()
	s.users[user.ID] = stored
	return nil
}

// SampleExcluding ID順の先頭n件（無作為性は randomSampler で与える）
func (s *memStore) SampleExcluding(_ context.Context, excludeID uint, n int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.sortedUsers(excludeID)
	if len(users) > n {
		users = users[:n]
	}
	return users, nil
}

func (s *memStore) sortedUsers(excludeID uint) []models.User {
	users := make([]models.User, 0, len(s.users))
	for id, u := range s.users {
		if id != excludeID {
			users = append(users, *s.withFollowSets(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *memStore) IsFollowing(_ context.Context, followerID, followingID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edgeIndex(followerID, followingID) >= 0, nil
}

func (s *memStore) edgeIndex(followerID, followingID uint) int {
	for i, e := range s.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			return i
		}
	}
	return -1
}

func (s *memStore) SetFollowState(_ context.Context, actorID, targetID uint, follow bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSetFollow != nil {
		err := s.failSetFollow
		s.failSetFollow = nil
		return false, err
	}

	idx := s.edgeIndex(actorID, targetID)
	if !follow {
		if idx < 0 {
			return false, nil
		}
		s.edges = append(s.edges[:idx], s.edges[idx+1:]...)
		return true, nil
	}
	if idx >= 0 {
		return false, nil
	}
	s.edges = append(s.edges, models.Follow{FollowerID: actorID, FollowingID: targetID, CreatedAt: time.Now()})
	s.nextNotifID++
	s.notifications = append(s.notifications, models.Notification{
		ID:     s.nextNotifID,
		Type:   models.NotificationFollow,
		FromID: actorID,
		ToID:   targetID,
	})
	return true, nil
}

func (s *memStore) ListByRecipient(_ context.Context, userID uint) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.ToID != userID {
			continue
		}
		if u, ok := s.users[n.FromID]; ok {
			n.From = &models.Sender{ID: u.ID, Username: u.Username, ProfileImage: u.ProfileImage}
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *memStore) MarkRead(_ context.Context, userID uint, ids []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		marked[id] = struct{}{}
	}
	for i, n := range s.notifications {
		if _, ok := marked[n.ID]; ok && n.ToID == userID {
			s.notifications[i].Read = true
		}
	}
	return nil
}

func (s *memStore) DeleteByRecipient(_ context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notifications[:0]
	var deleted int64
	for _, n := range s.notifications {
		if n.ToID == userID {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return deleted, nil
}

func (s *memStore) notificationsFor(userID uint) []models.Notification {
	list, _ := s.ListByRecipient(context.Background(), userID)
	return list
}

// randomSampler シード付きの無作為抽出
type randomSampler struct {
	store *memStore
	rng   *rand.Rand
}

func (r *randomSampler) SampleExcluding(_ context.Context, excludeID uint, n int) ([]models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	users := r.store.sortedUsers(excludeID)
	r.rng.Shuffle(len(users), func(i, j int) { users[i], users[j] = users[j], users[i] })
	if len(users) > n {
		users = users[:n]
	}
	return users, nil
}

// mockEventPublisher EventPublisherのモック
type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishFollowed(ctx context.Context, actorID, targetID uint) error {
	args := m.Called(ctx, actorID, targetID)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishUnfollowed(ctx context.Context, actorID, targetID uint) error {
	args := m.Called(ctx, actorID, targetID)
	return args.Error(0)
}

// mockMediaService MediaServiceのモック
type mockMediaService struct {
	mock.Mock
}

func (m *mockMediaService) Upload(ctx context.Context, data string) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

func (m *mockMediaService) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

var testLog = logger.Discard()
