package models

import "time"

// GroupRole is a member's role inside a group.
type GroupRole string

const (
	RoleOwner  GroupRole = "owner"
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)

// Group is a named community owned by one user.
type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	OwnerID     uint   `gorm:"not null;index"`
	CreatedAt   time.Time

	Owner       User              `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;"`
	Memberships []GroupMembership `gorm:"foreignKey:GroupID"`
}

// GroupMembership links a user to a group. Exactly one row exists per
// (group, user); the owner's row has RoleOwner and is never removed.
type GroupMembership struct {
	ID       uint      `gorm:"primaryKey"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_member"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_group_member;index"`
	Role     GroupRole `gorm:"type:varchar(20);not null;default:'member'"`
	JoinedAt time.Time `gorm:"not null"`

	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE;"`
	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}
