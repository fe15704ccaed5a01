package models

import "time"

// Post is a piece of content in the author's personal feed, or inside a group
// when GroupID is set.
//
// LikesCount and CommentsCount are cached values; the Like and Comment rows
// are the source of truth. They are only changed through store.AdjustCounter.
type Post struct {
	ID            uint   `gorm:"primaryKey"`
	AuthorID      uint   `gorm:"not null;index"`
	GroupID       *uint  `gorm:"index"`
	Content       string `gorm:"type:text;not null"`
	CreatedAt     time.Time
	LikesCount    int64 `gorm:"not null;default:0;index;check:chk_posts_likes_count,likes_count >= 0"`
	CommentsCount int64 `gorm:"not null;default:0;index;check:chk_posts_comments_count,comments_count >= 0"`

	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE;"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
}

// Like marks that a user liked a post. It is a toggle: unique per (user, post).
type Like struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_like_user_post"`
	PostID    uint `gorm:"not null;uniqueIndex:idx_like_user_post;index"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
}

// Comment on a post.
type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	PostID    uint   `gorm:"not null;index"`
	AuthorID  uint   `gorm:"not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Friendship{},
		&FriendRequest{},
		&Group{},
		&GroupMembership{},
		&Post{},
		&Like{},
		&Comment{},
	}
}
