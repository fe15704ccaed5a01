package service

import (
	"context"
	"strings"

	"socialhub/backend/internal/apperr"
	"socialhub/backend/internal/metrics"
	"socialhub/backend/internal/models"
	"socialhub/backend/internal/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const groupContentMsg = "You must join this group to access its posts."

// PostView is a post as seen by one viewer.
type PostView struct {
	Post               models.Post
	LikedByCurrentUser bool
}

// LikeResult is the outcome of ToggleLike.
type LikeResult struct {
	Liked      bool
	LikesCount int64
}

// PostService manages posts and likes.
type PostService struct {
	store *store.Store
	log   logrus.FieldLogger
}

func NewPostService(db *gorm.DB, log logrus.FieldLogger) *PostService {
	return &PostService{store: store.New(db), log: log}
}

// CreatePost publishes a post to the author's personal feed.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, content string) (*PostView, error) {
	return s.create(ctx, authorID, nil, content)
}

// CreateGroupPost publishes a post inside a group the author belongs to.
func (s *PostService) CreateGroupPost(ctx context.Context, authorID, groupID uint, content string) (*PostView, error) {
	if err := s.groupAccess(ctx, s.store, groupID, authorID); err != nil {
		return nil, err
	}
	return s.create(ctx, authorID, &groupID, content)
}

// Feed returns personal posts, newest first.
func (s *PostService) Feed(ctx context.Context, viewerID uint, page, limit int) (store.Page[PostView], error) {
	base := s.store.DB(ctx).Model(&models.Post{}).Where("group_id IS NULL")
	return s.page(ctx, viewerID, base, page, limit)
}

// ListGroupPosts returns the posts of a group, newest first. Members only.
func (s *PostService) ListGroupPosts(ctx context.Context, viewerID, groupID uint, page, limit int) (store.Page[PostView], error) {
	if err := s.groupAccess(ctx, s.store, groupID, viewerID); err != nil {
		return store.Page[PostView]{}, err
	}
	base := s.store.DB(ctx).Model(&models.Post{}).Where("group_id = ?", groupID)
	return s.page(ctx, viewerID, base, page, limit)
}

// GetPost returns one post with its comments.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*PostView, error) {
	if _, err := s.accessible(ctx, s.store, viewerID, postID); err != nil {
		return nil, err
	}
	return s.view(ctx, viewerID, postID)
}

// UpdatePost replaces the content of the viewer's own post.
func (s *PostService) UpdatePost(ctx context.Context, actingUserID, postID uint, content string) (*PostView, error) {
	if blank(content) {
		return nil, apperr.Validationf("Content cannot be blank.")
	}

	post, err := s.accessible(ctx, s.store, actingUserID, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actingUserID {
		return nil, apperr.Forbiddenf("You can only edit your own posts.")
	}

	err = s.store.DB(ctx).Model(&models.Post{}).Where("id = ?", postID).
		Update("content", strings.TrimSpace(content)).Error
	if err != nil {
		return nil, wrap("update post", err)
	}
	return s.view(ctx, actingUserID, postID)
}

// DeletePost removes the viewer's own post with its likes and comments.
func (s *PostService) DeletePost(ctx context.Context, actingUserID, postID uint) error {
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		post, err := s.accessible(ctx, tx, actingUserID, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != actingUserID {
			return apperr.Forbiddenf("You can only delete your own posts.")
		}

		db := tx.DB(ctx)
		if err := db.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := db.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return db.Delete(&models.Post{}, postID).Error
	})
	if err != nil {
		return wrap("delete post", err)
	}

	s.log.WithFields(logrus.Fields{"post_id": postID, "user_id": actingUserID}).Info("post deleted")
	return nil
}

// ToggleLike likes the post, or removes the like if the user already liked
// it. The counter moves through guarded atomic updates only.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	var liked bool
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.accessible(ctx, tx, userID, postID); err != nil {
			return err
		}

		db := tx.DB(ctx)
		res := db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			_, err := tx.AdjustCounter(ctx, postID, store.LikesCount, -1)
			return err
		}

		res = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&models.Like{UserID: userID, PostID: postID})
		if res.Error != nil {
			return res.Error
		}
		liked = true
		if res.RowsAffected == 0 {
			// A concurrent toggle inserted the same like; it owns the increment.
			return nil
		}
		_, err := tx.AdjustCounter(ctx, postID, store.LikesCount, 1)
		return err
	})
	if err != nil {
		return nil, wrap("toggle like", err)
	}

	likes, _, err := s.store.Counters(ctx, postID)
	if err != nil {
		return nil, wrap("reload likes", err)
	}

	metrics.RecordLikeToggle(liked)
	return &LikeResult{Liked: liked, LikesCount: likes}, nil
}

func (s *PostService) create(ctx context.Context, authorID uint, groupID *uint, content string) (*PostView, error) {
	if blank(content) {
		return nil, apperr.Validationf("Content cannot be blank.")
	}

	post := models.Post{AuthorID: authorID, GroupID: groupID, Content: strings.TrimSpace(content)}
	if err := s.store.DB(ctx).Create(&post).Error; err != nil {
		return nil, wrap("create post", err)
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "author_id": authorID}).Debug("post created")
	return s.view(ctx, authorID, post.ID)
}

// accessible loads a post and re-checks group membership for group posts.
func (s *PostService) accessible(ctx context.Context, st *store.Store, userID, postID uint) (*models.Post, error) {
	var post models.Post
	if err := st.DB(ctx).First(&post, postID).Error; err != nil {
		return nil, wrap("load post", notFound(err, "Post not found."))
	}
	if post.GroupID != nil {
		if err := requireMembership(ctx, st, *post.GroupID, userID, groupContentMsg); err != nil {
			return nil, wrap("check group access", err)
		}
	}
	return &post, nil
}

func (s *PostService) groupAccess(ctx context.Context, st *store.Store, groupID, userID uint) error {
	var group models.Group
	if err := st.DB(ctx).Select("id").First(&group, groupID).Error; err != nil {
		return wrap("load group", notFound(err, "Group not found."))
	}
	return wrap("check group access", requireMembership(ctx, st, groupID, userID, groupContentMsg))
}

func (s *PostService) view(ctx context.Context, viewerID, postID uint) (*PostView, error) {
	var post models.Post
	if err := withPostDetail(s.store.DB(ctx)).First(&post, postID).Error; err != nil {
		return nil, wrap("load post", notFound(err, "Post not found."))
	}
	views, err := s.annotate(ctx, viewerID, []models.Post{post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *PostService) page(ctx context.Context, viewerID uint, base *gorm.DB, page, limit int) (store.Page[PostView], error) {
	posts, err := store.Paginate[models.Post](base, page, limit, func(db *gorm.DB) *gorm.DB {
		return withPostDetail(db).Order("created_at DESC").Order("id DESC")
	})
	if err != nil {
		return store.Page[PostView]{}, wrap("list posts", err)
	}
	views, err := s.annotate(ctx, viewerID, posts.Items)
	if err != nil {
		return store.Page[PostView]{}, err
	}
	return store.Page[PostView]{Items: views, Total: posts.Total}, nil
}

// annotate marks which posts the viewer liked, with one query per batch.
func (s *PostService) annotate(ctx context.Context, viewerID uint, posts []models.Post) ([]PostView, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked, err := s.store.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, wrap("load likes", err)
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{Post: p, LikedByCurrentUser: liked[p.ID]}
	}
	return views, nil
}

func withPostDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at").Order("id")
		}).
		Preload("Comments.Author")
}
