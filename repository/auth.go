package repository

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
	"github.com/kevinaaaquil/bookreflect/backend/models"
	"github.com/kevinaaaquil/bookreflect/backend/service"
	"github.com/kevinaaaquil/bookreflect/backend/utils"
)

const (
	MinPasswordLength = 6
	ResetTokenTTL     = time.Hour
)

// resetClaims is the sealed payload of a password reset token. PasswordTag ties the token
// to the password hash it was issued against, so it stops working once the password changes.
type resetClaims struct {
	UserID      string `json:"uid"`
	Expires     int64  `json:"exp"`
	PasswordTag string `json:"pwd"`
}

func passwordTag(hashed string) string {
	sum := sha256.Sum256([]byte(hashed))
	return hex.EncodeToString(sum[:8])
}

// AuthRepository is the identity provider: accounts, passwords and profiles.
type AuthRepository struct {
	users    UserStore
	mailer   ResetMailer
	storage  ObjectStorage // nil when object storage is not configured
	resetKey []byte
	baseURL  string
	log      *zap.Logger

	now        func() time.Time
	bcryptCost int
}

func NewAuthRepository(users UserStore, mailer ResetMailer, storage ObjectStorage, resetKey []byte, baseURL string, log *zap.Logger) *AuthRepository {
	return &AuthRepository{
		users:      users,
		mailer:     mailer,
		storage:    storage,
		resetKey:   resetKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseUserID(userID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("invalid user id")
	}
	return id, nil
}

func (r *AuthRepository) hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperr.Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if err != nil {
		return "", apperr.Internal("failed to hash password", err)
	}
	return string(hashed), nil
}

// Register creates an account. The email must not be taken.
func (r *AuthRepository) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	existing, err := r.users.UserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("an account with this email already exists")
	}
	hashed, err := r.hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:      strings.TrimSpace(name),
		Email:     email,
		Password:  hashed,
		CreatedAt: r.now(),
	}
	id, err := r.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// Login returns the user whose email and password match.
func (r *AuthRepository) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	return user, nil
}

// SendPasswordResetEmail mails a reset link to a known address. Unknown addresses succeed
// without sending anything.
func (r *AuthRepository) SendPasswordResetEmail(ctx context.Context, email string) error {
	if r.resetKey == nil {
		return apperr.Unavailable("password reset is not configured")
	}
	user, err := r.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		r.log.Debug("password reset for unknown email")
		return nil
	}
	payload, err := json.Marshal(resetClaims{
		UserID:      user.ID.Hex(),
		Expires:     r.now().Add(ResetTokenTTL).Unix(),
		PasswordTag: passwordTag(user.Password),
	})
	if err != nil {
		return apperr.Internal("failed to build reset token", err)
	}
	token, err := utils.Seal(payload, r.resetKey)
	if err != nil {
		return apperr.Internal("failed to seal reset token", err)
	}
	link := r.baseURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := r.mailer.SendPasswordReset(ctx, user.Email, user.Name, link); err != nil {
		return apperr.Internal("failed to send reset email", err)
	}
	return nil
}

// ResetPassword sets a new password for the user named by a reset token. A token works once:
// the new hash no longer matches its password tag.
func (r *AuthRepository) ResetPassword(ctx context.Context, token, newPassword string) error {
	if r.resetKey == nil {
		return apperr.Unavailable("password reset is not configured")
	}
	payload, err := utils.Open(token, r.resetKey)
	if err != nil {
		return apperr.Unauthorized("invalid reset token")
	}
	var claims resetClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return apperr.Unauthorized("invalid reset token")
	}
	if r.now().Unix() > claims.Expires {
		return apperr.ErrTokenExpired
	}
	id, err := parseUserID(claims.UserID)
	if err != nil {
		return err
	}
	user, err := r.users.UserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return apperr.NotFound("user not found")
	}
	if subtle.ConstantTimeCompare([]byte(claims.PasswordTag), []byte(passwordTag(user.Password))) != 1 {
		return apperr.Unauthorized("reset token is no longer valid")
	}
	hashed, err := r.hash(newPassword)
	if err != nil {
		return err
	}
	ok, err := r.users.UpdateUserPassword(ctx, id, hashed)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if !ok {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *AuthRepository) user(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := r.users.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// GetUserProfile returns the profile view of the user.
func (r *AuthRepository) GetUserProfile(ctx context.Context, userID string) (models.Profile, error) {
	user, err := r.user(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return user.Profile(), nil
}

func (r *AuthRepository) UpdateUserName(ctx context.Context, userID, name string) (models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Profile{}, apperr.Validation("name is required")
	}
	user, err := r.user(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	if _, err := r.users.UpdateUserName(ctx, user.ID, name); err != nil {
		return models.Profile{}, fmt.Errorf("update name: %w", err)
	}
	user.Name = name
	return user.Profile(), nil
}

// UpdateAvatar stores the image in object storage and points the user's avatar at it.
// The previous avatar object is deleted best-effort.
func (r *AuthRepository) UpdateAvatar(ctx context.Context, userID, filename string, body io.Reader, contentType string) (models.Profile, error) {
	if r.storage == nil {
		return models.Profile{}, apperr.Unavailable("object storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return models.Profile{}, apperr.Validation("avatar must be an image")
	}
	user, err := r.user(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	key, err := r.storage.Upload(ctx, service.PrefixAvatars, filename, body, contentType)
	if err != nil {
		return models.Profile{}, apperr.Internal("failed to store avatar", err)
	}
	avatarURL := service.MediaURL(key)
	if _, err := r.users.UpdateUserAvatar(ctx, user.ID, avatarURL); err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.log.Warn("orphaned avatar object", zap.String("key", key), zap.Error(delErr))
		}
		return models.Profile{}, fmt.Errorf("update avatar: %w", err)
	}
	if oldKey, ok := service.MediaKey(user.AvatarURL); ok {
		if err := r.storage.Delete(ctx, oldKey); err != nil {
			r.log.Warn("old avatar delete failed", zap.String("key", oldKey), zap.Error(err))
		}
	}
	user.AvatarURL = avatarURL
	return user.Profile(), nil
}
