package store

import (
	"context"
	"fmt"

	"socialhub/backend/internal/models"

	"gorm.io/gorm"
)

// Counter names a denormalized counter column on posts.
type Counter string

const (
	LikesCount    Counter = "likes_count"
	CommentsCount Counter = "comments_count"
)

func (c Counter) valid() bool {
	return c == LikesCount || c == CommentsCount
}

// AdjustCounter atomically adds delta to the post's counter in the database.
// A negative delta only applies when the counter stays non-negative, so
// concurrent or repeated decrements never drive it below zero. It reports
// whether the row was updated.
func (s *Store) AdjustCounter(ctx context.Context, postID uint, counter Counter, delta int) (bool, error) {
	if !counter.valid() {
		return false, fmt.Errorf("store: unknown counter %q", counter)
	}
	col := string(counter)

	q := s.DB(ctx).Model(&models.Post{}).Where("id = ?", postID)
	if delta < 0 {
		q = q.Where(col+" >= ?", -delta)
	}
	res := q.UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Counters reloads both counters of a post.
func (s *Store) Counters(ctx context.Context, postID uint) (likes, comments int64, err error) {
	var post models.Post
	err = s.DB(ctx).Select("id", "likes_count", "comments_count").First(&post, postID).Error
	return post.LikesCount, post.CommentsCount, err
}
