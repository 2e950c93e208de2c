package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/storefront-data/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// AuthOptions holds the token signing settings
type AuthOptions struct {
	Secret []byte
	TTL    time.Duration
}

// AdminClaims are the claims carried by an admin session token
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginResult is returned by a successful Authenticate
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateAdminUser stores a new admin with a bcrypt password hash
func CreateAdminUser(ctx context.Context, db *gorm.DB, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if err := requireText("username", username); err != nil {
		return "", err
	}
	if len(password) < minPasswordLength {
		return "", invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.AdminUser{Username: username, PasswordHash: string(hash)}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.AdminUser{}, "username = ?", username)
		if err != nil {
			return err
		}
		if found {
			return newError(ErrDuplicate, "Admin user %q already exists", username)
		}
		return writeError(tx.Create(&user).Error, "Admin user %q already exists", username)
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Authenticate checks the credentials, records the login and issues a signed token
func Authenticate(ctx context.Context, db *gorm.DB, opts AuthOptions, username, password string) (*LoginResult, error) {
	var user models.AdminUser
	err := quiet(ctx, db).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, newError(ErrUnauthorized, "Invalid username or password")
	}

	now := time.Now().UTC()
	if err := db.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}

	expiresAt := now.Add(opts.TTL)
	claims := AdminClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(opts.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and verifies an admin session token
func ValidateToken(opts AuthOptions, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, newError(ErrUnauthorized, "Session expired")
		}
		return nil, newError(ErrUnauthorized, "Invalid session token")
	}
	return claims, nil
}

// EnsureAdminUser creates the bootstrap admin when it does not exist yet.
// An existing user keeps its password.
func EnsureAdminUser(ctx context.Context, db *gorm.DB, username, password string) error {
	if username == "" {
		return nil
	}

	found, err := exists(quiet(ctx, db), &models.AdminUser{}, "username = ?", username)
	if err != nil {
		return fmt.Errorf("failed to query admin user: %w", err)
	}
	if found {
		return nil
	}

	if _, err := CreateAdminUser(ctx, db, username, password); err != nil {
		// another instance created it first
		if errors.Is(err, ErrDuplicate) {
			return nil
		}
		return err
	}
	zap.L().Info("initialized bootstrap admin account", zap.String("username", username))
	return nil
}
