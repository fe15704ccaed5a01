package models

import "time"

// FriendRequestStatus defines the state of a friend request.
type FriendRequestStatus string

const (
	// StatusPending means the request was sent and the receiver has not answered yet.
	StatusPending FriendRequestStatus = "pending"

	// StatusAccepted means the receiver accepted and both users are now friends.
	StatusAccepted FriendRequestStatus = "accepted"

	// StatusRejected means the receiver declined. The sender may send again,
	// which reopens this same row.
	StatusRejected FriendRequestStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s FriendRequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// FriendRequest is a request from Sender to Receiver.
// At most one row exists per ordered (sender, receiver) pair.
type FriendRequest struct {
	ID          uint                `gorm:"primaryKey"`
	SenderID    uint                `gorm:"not null;uniqueIndex:idx_friend_request_pair;check:chk_friend_request_not_self,sender_id <> receiver_id"`
	ReceiverID  uint                `gorm:"not null;uniqueIndex:idx_friend_request_pair;index"`
	Status      FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt   time.Time
	RespondedAt *time.Time

	Sender   User `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Receiver User `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
