package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"socialhub/backend/internal/apperr"
	"socialhub/backend/internal/metrics"
	"socialhub/backend/internal/models"
	"socialhub/backend/internal/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupSummary is a group with its owner loaded and its member count.
type GroupSummary struct {
	Group        models.Group
	MembersCount int64
}

// GroupService manages groups and memberships.
type GroupService struct {
	store *store.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewGroupService(db *gorm.DB, log logrus.FieldLogger) *GroupService {
	return &GroupService{store: store.New(db), log: log, now: time.Now}
}

// CreateGroup creates a group and its owner membership together.
func (s *GroupService) CreateGroup(ctx context.Context, ownerID uint, name, description string) (*GroupSummary, error) {
	if blank(name) {
		return nil, apperr.Validationf("Name cannot be blank.")
	}
	name = strings.TrimSpace(name)

	group := models.Group{Name: name, Description: description, OwnerID: ownerID}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var taken int64
		if err := tx.DB(ctx).Model(&models.Group{}).Where("name = ?", name).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return apperr.Validationf("A group with this name already exists.")
		}

		err := tx.DB(ctx).Create(&group).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Validationf("A group with this name already exists.")
		}
		if err != nil {
			return err
		}

		return tx.DB(ctx).Create(&models.GroupMembership{
			GroupID:  group.ID,
			UserID:   ownerID,
			Role:     models.RoleOwner,
			JoinedAt: s.now(),
		}).Error
	})
	if err != nil {
		return nil, wrap("create group", err)
	}

	metrics.RecordMembership("created")
	s.log.WithFields(logrus.Fields{"group_id": group.ID, "owner_id": ownerID}).Info("group created")
	return s.Get(ctx, group.ID)
}

// List returns one page of groups ordered by name.
func (s *GroupService) List(ctx context.Context, page, limit int) (store.Page[GroupSummary], error) {
	groups, err := store.Paginate[models.Group](s.store.DB(ctx), page, limit, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Owner").Order("name")
	})
	if err != nil {
		return store.Page[GroupSummary]{}, wrap("list groups", err)
	}

	summaries, err := s.summarize(ctx, groups.Items)
	if err != nil {
		return store.Page[GroupSummary]{}, err
	}
	return store.Page[GroupSummary]{Items: summaries, Total: groups.Total}, nil
}

// Get returns a single group.
func (s *GroupService) Get(ctx context.Context, groupID uint) (*GroupSummary, error) {
	var group models.Group
	if err := s.store.DB(ctx).Preload("Owner").First(&group, groupID).Error; err != nil {
		return nil, wrap("load group", notFound(err, "Group not found."))
	}
	summaries, err := s.summarize(ctx, []models.Group{group})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// Join adds the user as a member. Joining again is a no-op: an existing
// membership keeps its role.
func (s *GroupService) Join(ctx context.Context, userID, groupID uint) (*GroupSummary, error) {
	if _, err := s.group(ctx, s.store, groupID); err != nil {
		return nil, err
	}

	membership := models.GroupMembership{
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: s.now(),
	}
	res := s.store.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "group_id"}, {Name: "user_id"}}, DoNothing: true}).
		Create(&membership)
	if res.Error != nil {
		return nil, wrap("join group", res.Error)
	}
	if res.RowsAffected > 0 {
		metrics.RecordMembership("joined")
		s.log.WithFields(logrus.Fields{"group_id": groupID, "user_id": userID}).Info("joined group")
	}

	return s.Get(ctx, groupID)
}

// Leave removes the user's own membership. Owners cannot leave.
func (s *GroupService) Leave(ctx context.Context, userID, groupID uint) error {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.group(ctx, tx, groupID); err != nil {
			return err
		}
		m, err := tx.Membership(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.Conflictf("You are not a member of this group.")
		}
		if m.Role == models.RoleOwner {
			return apperr.Conflictf("Group owners cannot leave their own group.")
		}
		return tx.DB(ctx).Delete(m).Error
	})
	if err != nil {
		return wrap("leave group", err)
	}

	metrics.RecordMembership("left")
	return nil
}

// RemoveMember lets the group owner remove another member. The owner's own
// membership can never be removed.
func (s *GroupService) RemoveMember(ctx context.Context, actingUserID, groupID, targetUserID uint) error {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		group, err := s.group(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if group.OwnerID != actingUserID {
			return apperr.Forbiddenf("Only the group owner can remove members.")
		}
		m, err := tx.Membership(ctx, groupID, targetUserID)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.NotFoundf("Membership not found.")
		}
		if m.Role == models.RoleOwner {
			return apperr.Conflictf("You cannot remove the group owner.")
		}
		return tx.DB(ctx).Delete(m).Error
	})
	if err != nil {
		return wrap("remove member", err)
	}

	metrics.RecordMembership("removed")
	s.log.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  targetUserID,
		"by":       actingUserID,
	}).Info("member removed")
	return nil
}

// ListMembers returns the memberships of a group ordered by username.
// Only current members may list them.
func (s *GroupService) ListMembers(ctx context.Context, actingUserID, groupID uint) ([]models.GroupMembership, error) {
	if _, err := s.group(ctx, s.store, groupID); err != nil {
		return nil, err
	}
	if err := requireMembership(ctx, s.store, groupID, actingUserID, "You must join this group to view members."); err != nil {
		return nil, wrap("list members", err)
	}

	members := []models.GroupMembership{}
	err := s.store.DB(ctx).
		Joins("JOIN users ON users.id = group_memberships.user_id").
		Where("group_memberships.group_id = ?", groupID).
		Order("users.username").
		Preload("User").
		Find(&members).Error
	if err != nil {
		return nil, wrap("list members", err)
	}
	return members, nil
}

func (s *GroupService) group(ctx context.Context, st *store.Store, groupID uint) (*models.Group, error) {
	var group models.Group
	if err := st.DB(ctx).First(&group, groupID).Error; err != nil {
		return nil, wrap("load group", notFound(err, "Group not found."))
	}
	return &group, nil
}

func (s *GroupService) summarize(ctx context.Context, groups []models.Group) ([]GroupSummary, error) {
	summaries := make([]GroupSummary, 0, len(groups))
	if len(groups) == 0 {
		return summaries, nil
	}

	ids := make([]uint, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}

	var rows []struct {
		GroupID uint
		Count   int64
	}
	err := s.store.DB(ctx).Model(&models.GroupMembership{}).
		Select("group_id, COUNT(*) AS count").
		Where("group_id IN ?", ids).
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("count members", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.GroupID] = r.Count
	}

	for _, g := range groups {
		summaries = append(summaries, GroupSummary{Group: g, MembersCount: counts[g.ID]})
	}
	return summaries, nil
}
