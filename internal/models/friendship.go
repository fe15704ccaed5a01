package models

import "time"

// Friendship is one directed edge of the symmetric friends relation.
// The primary key is a composite of (UserID, FriendID). Every edge (a, b) has a
// twin (b, a); edges are only written in pairs by the store (AddFriendPair, RemoveFriendPair).
type Friendship struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	FriendID  uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time

	User   User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Friend User `gorm:"foreignKey:FriendID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
