package models

import (
	"time"
)

// User ユーザーモデル
type User struct {
	ID           uint      `json:"_id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	FullName     string    `json:"fullName" gorm:"size:100"`
	Email        string    `json:"email" gorm:"size:191;uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"not null"`
	ProfileImage string    `json:"profileImage"`
	CoverImage   string    `json:"coverImage"`
	Bio          string    `json:"bio"`
	Link         string    `json:"link"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// followsテーブルからの射影（JSONレスポンス用）
	Followers []uint `json:"followers" gorm:"-"`
	Following []uint `json:"following" gorm:"-"`
}

// Strip 認証情報を取り除いたコピーを返す
func (u User) Strip() User {
	u.Password = ""
	if u.Followers == nil {
		u.Followers = []uint{}
	}
	if u.Following == nil {
		u.Following = []uint{}
	}
	return u
}

// IsFollowing targetIDをフォロー中か
func (u *User) IsFollowing(targetID uint) bool {
	for _, id := range u.Following {
		if id == targetID {
			return true
		}
	}
	return false
}

// Follow フォロー関係（follower -> following の有向辺）。
// 自己フォローの禁止はFollowServiceで行う（MySQLは外部キーの参照アクション列にCHECK制約を置けない）。
type Follow struct {
	FollowerID  uint      `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FollowingID uint      `json:"following_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt   time.Time `json:"created_at"`

	// リレーション
	Follower  User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following User `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}
