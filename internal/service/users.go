package service

import (
	"context"
	"errors"
	"strings"

	"socialhub/backend/internal/apperr"
	"socialhub/backend/internal/models"
	"socialhub/backend/internal/store"
	"socialhub/backend/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// RegisterParams is the input of UserService.Register.
type RegisterParams struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Bio             string
}

// ProfileUpdate holds the optional fields of a profile update; nil means unchanged.
type ProfileUpdate struct {
	Username  *string
	FirstName *string
	LastName  *string
	Bio       *string
}

// Profile is a user together with the ids of their friends.
type Profile struct {
	User      models.User
	FriendIDs []uint
}

// UserService handles accounts and authentication.
type UserService struct {
	store  *store.Store
	tokens *jwt.Manager
	log    logrus.FieldLogger
}

func NewUserService(db *gorm.DB, tokens *jwt.Manager, log logrus.FieldLogger) *UserService {
	return &UserService{store: store.New(db), tokens: tokens, log: log}
}

// Register creates an account and issues a token pair for it.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (*Profile, jwt.Pair, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = normalizeEmail(p.Email)

	if p.Username == "" {
		return nil, jwt.Pair{}, apperr.Validationf("Username is required.")
	}
	if p.Email == "" {
		return nil, jwt.Pair{}, apperr.Validationf("Email is required.")
	}
	if len(p.Password) < minPasswordLength {
		return nil, jwt.Pair{}, apperr.Validationf("Password must be at least %d characters.", minPasswordLength)
	}
	if p.Password != p.ConfirmPassword {
		return nil, jwt.Pair{}, apperr.Validationf("Passwords do not match.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, jwt.Pair{}, apperr.Validationf("Password is too long.")
	}
	if err != nil {
		return nil, jwt.Pair{}, wrap("hash password", err)
	}

	user := models.User{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		Bio:          p.Bio,
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		var count int64
		if err := tx.DB(ctx).Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("A user with this email already exists.")
		}
		if err := tx.DB(ctx).Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("A user with that username already exists.")
		}

		err := tx.DB(ctx).Create(&user).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Validationf("Username or email already exists.")
		}
		return err
	})
	if err != nil {
		return nil, jwt.Pair{}, wrap("register user", err)
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, jwt.Pair{}, wrap("generate token", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return &Profile{User: user, FriendIDs: []uint{}}, pair, nil
}

// Login checks email and password and issues a fresh token pair.
func (s *UserService) Login(ctx context.Context, email, password string) (*Profile, jwt.Pair, error) {
	var user models.User
	err := s.store.DB(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, jwt.Pair{}, apperr.Unauthorizedf("Invalid email or password.")
	}
	if err != nil {
		return nil, jwt.Pair{}, wrap("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, jwt.Pair{}, apperr.Unauthorizedf("Invalid email or password.")
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, jwt.Pair{}, wrap("generate token", err)
	}

	profile, err := s.profile(ctx, user)
	if err != nil {
		return nil, jwt.Pair{}, err
	}
	return profile, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (jwt.Pair, error) {
	userID, err := s.tokens.Parse(refreshToken, jwt.RefreshToken)
	if err != nil {
		return jwt.Pair{}, apperr.Unauthorizedf("Token is invalid or expired.")
	}

	var count int64
	if err := s.store.DB(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return jwt.Pair{}, wrap("load user", err)
	}
	if count == 0 {
		return jwt.Pair{}, apperr.Unauthorizedf("User not found.")
	}

	pair, err := s.tokens.GeneratePair(userID)
	if err != nil {
		return jwt.Pair{}, wrap("generate token", err)
	}
	return pair, nil
}

// Get returns a user's profile.
func (s *UserService) Get(ctx context.Context, userID uint) (*Profile, error) {
	var user models.User
	if err := s.store.DB(ctx).First(&user, userID).Error; err != nil {
		return nil, wrap("load user", notFound(err, "User not found."))
	}
	return s.profile(ctx, user)
}

// UpdateProfile applies the non-nil fields of upd. Email cannot be changed.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*Profile, error) {
	var user models.User
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.DB(ctx).First(&user, userID).Error; err != nil {
			return notFound(err, "User not found.")
		}

		changes := map[string]any{}
		if upd.Username != nil {
			username := strings.TrimSpace(*upd.Username)
			if username == "" {
				return apperr.Validationf("Username cannot be blank.")
			}
			if username != user.Username {
				var count int64
				if err := tx.DB(ctx).Model(&models.User{}).Where("username = ? AND id <> ?", username, userID).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return apperr.Validationf("A user with that username already exists.")
				}
			}
			changes["username"] = username
		}
		if upd.FirstName != nil {
			changes["first_name"] = strings.TrimSpace(*upd.FirstName)
		}
		if upd.LastName != nil {
			changes["last_name"] = strings.TrimSpace(*upd.LastName)
		}
		if upd.Bio != nil {
			changes["bio"] = *upd.Bio
		}
		if len(changes) == 0 {
			return nil
		}

		err := tx.DB(ctx).Model(&user).Updates(changes).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Validationf("A user with that username already exists.")
		}
		if err != nil {
			return err
		}
		return tx.DB(ctx).First(&user, userID).Error
	})
	if err != nil {
		return nil, wrap("update profile", err)
	}
	return s.profile(ctx, user)
}

func (s *UserService) profile(ctx context.Context, user models.User) (*Profile, error) {
	ids, err := s.store.FriendIDs(ctx, user.ID)
	if err != nil {
		return nil, wrap("load friends", err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return &Profile{User: user, FriendIDs: ids}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
