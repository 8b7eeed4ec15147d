package repository

import (
	"context"
	"errors"

	"github.com/SketchShifter/social_backend/internal/models"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrDuplicate 一意制約違反
var ErrDuplicate = errors.New("duplicate entry")

// mysqlErrDuplicateEntry ER_DUP_ENTRY
const mysqlErrDuplicateEntry = 1062

// UserRepository ユーザーに関するデータベース操作を行うインターフェース
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	SampleExcluding(ctx context.Context, excludeID uint, n int) ([]models.User, error)
}

// userRepository UserRepositoryの実装
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository UserRepositoryを作成
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 新しいユーザーを作成
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// FindByID IDでユーザーを検索
func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	if err := r.loadFollowSets(ctx, []*models.User{&user}); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername ユーザー名でユーザーを検索
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	if err := r.loadFollowSets(ctx, []*models.User{&user}); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail メールアドレスでユーザーを検索
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs 複数IDでユーザーを一括取得
func (r *userRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	if err := r.loadFollowSets(ctx, pointers(users)); err != nil {
		return nil, err
	}
	return users, nil
}

// Update ユーザー情報を更新
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Save(user).Error)
}

// SampleExcluding excludeID以外のユーザーを無作為にn件取得
func (r *userRepository) SampleExcluding(ctx context.Context, excludeID uint, n int) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Order("RAND()").
		Limit(n).
		Find(&users).Error; err != nil {
		return nil, err
	}
	if err := r.loadFollowSets(ctx, pointers(users)); err != nil {
		return nil, err
	}
	return users, nil
}

// loadFollowSets followsテーブルから followers / following を埋める
func (r *userRepository) loadFollowSets(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(users))
	byID := make(map[uint]*models.User, len(users))
	for _, u := range users {
		u.Followers = []uint{}
		u.Following = []uint{}
		ids = append(ids, u.ID)
		byID[u.ID] = u
	}

	var edges []models.Follow
	if err := r.db.WithContext(ctx).
		Select("follower_id", "following_id").
		Where("follower_id IN ? OR following_id IN ?", ids, ids).
		Order("created_at").
		Find(&edges).Error; err != nil {
		return err
	}

	for _, e := range edges {
		if u, ok := byID[e.FollowerID]; ok {
			u.Following = append(u.Following, e.FollowingID)
		}
		if u, ok := byID[e.FollowingID]; ok {
			u.Followers = append(u.Followers, e.FollowerID)
		}
	}
	return nil
}

func pointers(users []models.User) []*models.User {
	out := make([]*models.User, len(users))
	for i := range users {
		out[i] = &users[i]
	}
	return out
}

// translateError MySQLの一意制約違反を ErrDuplicate に変換
func translateError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
		return ErrDuplicate
	}
	return err
}
