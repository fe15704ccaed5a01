package service

import (
	"context"
	"strings"

	"socialhub/backend/internal/apperr"
	"socialhub/backend/internal/models"
	"socialhub/backend/internal/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CommentService manages comments. Creating or deleting a comment moves the
// post's comment counter in the same transaction.
type CommentService struct {
	store *store.Store
	posts *PostService
	log   logrus.FieldLogger
}

func NewCommentService(db *gorm.DB, log logrus.FieldLogger) *CommentService {
	return &CommentService{store: store.New(db), posts: NewPostService(db, log), log: log}
}

// ListComments returns the comments of a post, oldest first.
func (s *CommentService) ListComments(ctx context.Context, viewerID, postID uint) ([]models.Comment, error) {
	if _, err := s.posts.accessible(ctx, s.store, viewerID, postID); err != nil {
		return nil, err
	}

	comments := []models.Comment{}
	err := s.store.DB(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at").Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, wrap("list comments", err)
	}
	return comments, nil
}

func (s *CommentService) CreateComment(ctx context.Context, authorID, postID uint, content string) (*models.Comment, error) {
	if blank(content) {
		return nil, apperr.Validationf("Content cannot be blank.")
	}

	comment := models.Comment{PostID: postID, AuthorID: authorID, Content: strings.TrimSpace(content)}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.posts.accessible(ctx, tx, authorID, postID); err != nil {
			return err
		}
		if err := tx.DB(ctx).Create(&comment).Error; err != nil {
			return err
		}
		_, err := tx.AdjustCounter(ctx, postID, store.CommentsCount, 1)
		return err
	})
	if err != nil {
		return nil, wrap("create comment", err)
	}

	s.log.WithFields(logrus.Fields{"comment_id": comment.ID, "post_id": postID}).Debug("comment created")
	return s.load(ctx, comment.ID)
}

// GetComment returns one comment if the viewer can see its post.
func (s *CommentService) GetComment(ctx context.Context, viewerID, commentID uint) (*models.Comment, error) {
	comment, err := s.load(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.accessible(ctx, s.store, viewerID, comment.PostID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, actingUserID, commentID uint, content string) (*models.Comment, error) {
	if blank(content) {
		return nil, apperr.Validationf("Content cannot be blank.")
	}

	comment, err := s.GetComment(ctx, actingUserID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actingUserID {
		return nil, apperr.Forbiddenf("You can only edit your own comments.")
	}

	err = s.store.DB(ctx).Model(&models.Comment{}).Where("id = ?", commentID).
		Update("content", strings.TrimSpace(content)).Error
	if err != nil {
		return nil, wrap("update comment", err)
	}
	return s.load(ctx, commentID)
}

// DeleteComment removes the acting user's own comment and decrements the
// post's counter, never below zero.
func (s *CommentService) DeleteComment(ctx context.Context, actingUserID, commentID uint) error {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var comment models.Comment
		if err := tx.DB(ctx).First(&comment, commentID).Error; err != nil {
			return notFound(err, "Comment not found.")
		}
		if _, err := s.posts.accessible(ctx, tx, actingUserID, comment.PostID); err != nil {
			return err
		}
		if comment.AuthorID != actingUserID {
			return apperr.Forbiddenf("You can only delete your own comments.")
		}

		res := tx.DB(ctx).Delete(&models.Comment{}, commentID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFoundf("Comment not found.")
		}
		_, err := tx.AdjustCounter(ctx, comment.PostID, store.CommentsCount, -1)
		return err
	})
	return wrap("delete comment", err)
}

func (s *CommentService) load(ctx context.Context, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.store.DB(ctx).Preload("Author").First(&comment, commentID).Error; err != nil {
		return nil, wrap("load comment", notFound(err, "Comment not found."))
	}
	return &comment, nil
}
