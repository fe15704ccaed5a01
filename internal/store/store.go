// Package store holds the persistence primitives that carry invariants the
// services depend on: the symmetric friend edge set, the guarded post
// counters and batched lookups. Plain CRUD stays in the services.
package store

import (
	"context"
	"errors"

	"socialhub/backend/internal/models"

	"gorm.io/gorm"
)

// Store wraps a *gorm.DB, which may be a transaction.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle bound to ctx.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn inside one database transaction. The Store passed to fn
// is bound to the transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Membership returns the (group, user) membership, or nil when there is none.
func (s *Store) Membership(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error) {
	var m models.GroupMembership
	err := s.DB(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LikedPostIDs reports which of postIDs userID has liked, with one query.
func (s *Store) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}

	var ids []uint
	err := s.DB(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
