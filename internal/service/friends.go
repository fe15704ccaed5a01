package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"socialhub/backend/internal/apperr"
	"socialhub/backend/internal/metrics"
	"socialhub/backend/internal/models"
	"socialhub/backend/internal/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SuggestionLimit caps the "people you may know" list returned by an empty search.
const SuggestionLimit = 25

// Direction selects which side of a friend request the acting user is on.
type Direction string

const (
	Incoming      Direction = "incoming"
	Outgoing      Direction = "outgoing"
	AllDirections Direction = "all"
)

// ParseDirection maps a query value to a Direction, defaulting to Incoming.
func ParseDirection(s string) Direction {
	switch Direction(s) {
	case Outgoing:
		return Outgoing
	case AllDirections:
		return AllDirections
	default:
		return Incoming
	}
}

// Action is a receiver's answer to a friend request.
type Action string

const (
	Accept Action = "accept"
	Reject Action = "reject"
)

// RelationshipStatus describes how a user relates to the acting user.
type RelationshipStatus string

const (
	RelationshipSelf            RelationshipStatus = "self"
	RelationshipFriends         RelationshipStatus = "friends"
	RelationshipPendingOutgoing RelationshipStatus = "pending_outgoing"
	RelationshipPendingIncoming RelationshipStatus = "pending_incoming"
	RelationshipNone            RelationshipStatus = "none"
)

// SearchResult is a user annotated with their relationship to the searcher.
type SearchResult struct {
	User   models.User
	Status RelationshipStatus
}

// FriendService runs the friend request state machine.
type FriendService struct {
	store *store.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewFriendService(db *gorm.DB, log logrus.FieldLogger) *FriendService {
	return &FriendService{store: store.New(db), log: log, now: time.Now}
}

// Send creates a pending request from sender to receiver, or reopens the
// pair's rejected request. It always returns the pair's single canonical row.
func (s *FriendService) Send(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, apperr.Validationf("You cannot send a friend request to yourself.")
	}

	var requestID uint
	event := "sent"
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		// Both users are locked so a crossed A->B / B->A send cannot slip
		// past the pending checks below.
		found, err := tx.LockUsers(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if !slices.Contains(found, receiverID) {
			return apperr.NotFoundf("User not found.")
		}

		friends, err := tx.AreFriends(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if friends {
			return apperr.Validationf("You are already friends.")
		}

		existing, err := findRequest(ctx, tx, senderID, receiverID)
		if err != nil {
			return err
		}
		if existing != nil {
			switch existing.Status {
			case models.StatusPending:
				return apperr.Validationf("Friend request already pending.")
			case models.StatusAccepted:
				return apperr.Validationf("Friend request already accepted.")
			}
		}

		var incoming int64
		err = tx.DB(ctx).Model(&models.FriendRequest{}).
			Where("sender_id = ? AND receiver_id = ? AND status = ?", receiverID, senderID, models.StatusPending).
			Count(&incoming).Error
		if err != nil {
			return err
		}
		if incoming > 0 {
			return apperr.Validationf("You already have a pending request from this user.")
		}

		if existing != nil {
			res := tx.DB(ctx).Model(&models.FriendRequest{}).
				Where("id = ? AND status = ?", existing.ID, models.StatusRejected).
				Updates(map[string]any{"status": models.StatusPending, "responded_at": nil})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.Conflictf("Friend request changed concurrently, please retry.")
			}
			requestID = existing.ID
			event = "resent"
			return nil
		}

		request := models.FriendRequest{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Status:     models.StatusPending,
		}
		err = tx.DB(ctx).Create(&request).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Validationf("Friend request already pending.")
		}
		if err != nil {
			return err
		}
		requestID = request.ID
		return nil
	})
	if err != nil {
		return nil, wrap("send friend request", err)
	}

	metrics.RecordFriendRequest(event)
	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"event":       event,
	}).Info("friend request sent")

	return s.load(ctx, requestID)
}

// Respond lets the receiver accept or reject a pending request. Accepting
// makes both users friends in the same transaction.
func (s *FriendService) Respond(ctx context.Context, requestID, actingUserID uint, action Action) (*models.FriendRequest, error) {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var request models.FriendRequest
		if err := tx.DB(ctx).First(&request, requestID).Error; err != nil {
			return notFound(err, "Friend request not found.")
		}
		if request.ReceiverID != actingUserID {
			return apperr.Forbiddenf("Only the receiver can respond to a friend request.")
		}
		if request.Status != models.StatusPending {
			return apperr.Conflictf("This friend request has already been processed.")
		}

		var status models.FriendRequestStatus
		switch action {
		case Accept:
			status = models.StatusAccepted
		case Reject:
			status = models.StatusRejected
		default:
			return apperr.Validationf("Action must be one of: accept, reject.")
		}

		// Compare-and-update: a concurrent responder sees zero rows affected.
		res := tx.DB(ctx).Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", request.ID, models.StatusPending).
			Updates(map[string]any{"status": status, "responded_at": s.now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflictf("This friend request has already been processed.")
		}

		if status == models.StatusAccepted {
			return tx.AddFriendPair(ctx, request.SenderID, request.ReceiverID)
		}
		return nil
	})
	if err != nil {
		return nil, wrap("respond to friend request", err)
	}

	if action == Accept {
		metrics.RecordFriendRequest("accepted")
	} else {
		metrics.RecordFriendRequest("rejected")
	}
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    actingUserID,
		"action":     action,
	}).Info("friend request answered")

	return s.load(ctx, requestID)
}

// Cancel deletes a pending request. Either participant may cancel; resolved
// requests are kept as history.
func (s *FriendService) Cancel(ctx context.Context, requestID, actingUserID uint) error {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var request models.FriendRequest
		if err := tx.DB(ctx).First(&request, requestID).Error; err != nil {
			return notFound(err, "Friend request not found.")
		}
		if !isParticipant(&request, actingUserID) {
			return apperr.Forbiddenf("You do not have access to this friend request.")
		}
		if request.Status != models.StatusPending {
			return apperr.Forbiddenf("Only pending requests can be cancelled.")
		}

		res := tx.DB(ctx).Where("id = ? AND status = ?", request.ID, models.StatusPending).Delete(&models.FriendRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Forbiddenf("Only pending requests can be cancelled.")
		}
		return nil
	})
	if err != nil {
		return wrap("cancel friend request", err)
	}

	metrics.RecordFriendRequest("cancelled")
	return nil
}

// Get returns one request; only its participants may see it.
func (s *FriendService) Get(ctx context.Context, requestID, actingUserID uint) (*models.FriendRequest, error) {
	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(request, actingUserID) {
		return nil, apperr.Forbiddenf("You do not have access to this friend request.")
	}
	return request, nil
}

// List returns the acting user's requests, newest first. An invalid status
// filter is ignored.
func (s *FriendService) List(ctx context.Context, userID uint, direction Direction, status models.FriendRequestStatus) ([]models.FriendRequest, error) {
	q := s.store.DB(ctx).Preload("Sender").Preload("Receiver")
	switch direction {
	case Outgoing:
		q = q.Where("sender_id = ?", userID)
	case AllDirections:
		q = q.Where("sender_id = ? OR receiver_id = ?", userID, userID)
	default:
		q = q.Where("receiver_id = ?", userID)
	}
	if status.Valid() {
		q = q.Where("status = ?", status)
	}

	requests := []models.FriendRequest{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&requests).Error; err != nil {
		return nil, wrap("list friend requests", err)
	}
	return requests, nil
}

// Search finds users by username, first or last name. Without a query it
// suggests up to SuggestionLimit users who are neither the searcher nor
// their friends.
func (s *FriendService) Search(ctx context.Context, userID uint, query string) ([]SearchResult, error) {
	friendIDs, err := s.store.FriendIDs(ctx, userID)
	if err != nil {
		return nil, wrap("load friends", err)
	}

	q := s.store.DB(ctx).Model(&models.User{})
	query = strings.TrimSpace(query)
	if query != "" {
		pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
		q = q.Where(
			`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	} else {
		q = q.Where("id <> ?", userID)
		if len(friendIDs) > 0 {
			q = q.Where("id NOT IN ?", friendIDs)
		}
		q = q.Limit(SuggestionLimit)
	}

	var users []models.User
	if err := q.Order("username").Find(&users).Error; err != nil {
		return nil, wrap("search users", err)
	}

	outgoing, err := s.pendingIDs(ctx, "receiver_id", "sender_id = ?", userID)
	if err != nil {
		return nil, wrap("load outgoing requests", err)
	}
	incoming, err := s.pendingIDs(ctx, "sender_id", "receiver_id = ?", userID)
	if err != nil {
		return nil, wrap("load incoming requests", err)
	}
	friends := toSet(friendIDs)

	results := make([]SearchResult, 0, len(users))
	for _, u := range users {
		status := RelationshipNone
		switch {
		case u.ID == userID:
			status = RelationshipSelf
		case friends[u.ID]:
			status = RelationshipFriends
		case outgoing[u.ID]:
			status = RelationshipPendingOutgoing
		case incoming[u.ID]:
			status = RelationshipPendingIncoming
		}
		results = append(results, SearchResult{User: u, Status: status})
	}
	return results, nil
}

// ListFriends returns the user's friends ordered by username.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	users, err := s.store.Friends(ctx, userID)
	if err != nil {
		return nil, wrap("list friends", err)
	}
	return users, nil
}

// Unfriend dissolves a friendship. The accepted requests between the two
// users are removed with it, so either may send a fresh request later.
func (s *FriendService) Unfriend(ctx context.Context, userID, friendID uint) error {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		removed, err := tx.RemoveFriendPair(ctx, userID, friendID)
		if err != nil {
			return err
		}
		if !removed {
			return apperr.Validationf("You are not friends with this user.")
		}
		return tx.DB(ctx).
			Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
				userID, friendID, friendID, userID, models.StatusAccepted).
			Delete(&models.FriendRequest{}).Error
	})
	if err != nil {
		return wrap("unfriend", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "friend_id": friendID}).Info("friendship removed")
	return nil
}

func (s *FriendService) load(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := s.store.DB(ctx).Preload("Sender").Preload("Receiver").First(&request, requestID).Error
	if err != nil {
		return nil, wrap("load friend request", notFound(err, "Friend request not found."))
	}
	return &request, nil
}

func (s *FriendService) pendingIDs(ctx context.Context, column, where string, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := s.store.DB(ctx).Model(&models.FriendRequest{}).
		Where(where, userID).
		Where("status = ?", models.StatusPending).
		Pluck(column, &ids).Error
	return toSet(ids), err
}

func findRequest(ctx context.Context, tx *store.Store, senderID, receiverID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := tx.DB(ctx).Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func isParticipant(r *models.FriendRequest, userID uint) bool {
	return r.SenderID == userID || r.ReceiverID == userID
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
