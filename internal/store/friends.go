package store

import (
	"context"
	"errors"

	"socialhub/backend/internal/models"

	"gorm.io/gorm/clause"
)

// ErrSelfFriendship is returned when both ends of a pair are the same user.
var ErrSelfFriendship = errors.New("store: a user cannot be their own friend")

// AddFriendPair makes a and b friends by writing both directed edges in one
// statement. Adding an existing pair is a no-op.
func (s *Store) AddFriendPair(ctx context.Context, a, b uint) error {
	if a == b {
		return ErrSelfFriendship
	}
	edges := []models.Friendship{
		{UserID: a, FriendID: b},
		{UserID: b, FriendID: a},
	}
	return s.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error
}

// RemoveFriendPair deletes both directed edges between a and b. It reports
// whether the pair existed.
func (s *Store) RemoveFriendPair(ctx context.Context, a, b uint) (bool, error) {
	res := s.DB(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// LockUsers takes row locks on the given users in id order, so transactions
// that touch the same pair of users run one after the other. It returns the
// ids that exist.
func (s *Store) LockUsers(ctx context.Context, ids ...uint) ([]uint, error) {
	var found []uint
	err := s.DB(ctx).Model(&models.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Pluck("id", &found).Error
	return found, err
}

// AreFriends reports whether a and b are friends.
func (s *Store) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := s.DB(ctx).Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

// FriendIDs returns the ids of userID's friends.
func (s *Store) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.DB(ctx).Model(&models.Friendship{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &ids).Error
	return ids, err
}

// Friends returns userID's friends ordered by username.
func (s *Store) Friends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.DB(ctx).
		Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, err
}
