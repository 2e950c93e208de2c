package testutil

import (
	"context"
	"crypto/rand"
	"math/big"
	"testing"
	"time"

	"github.com/localnerve/storefront-data/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func randInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GeneratePassword generates a 12 character password with a capital, a digit and a special char
func GeneratePassword() string {
	const (
		lower   = "abcdefghijklmnopqrstuvwxyz"
		upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		special = "!@#$%^&*"
		numbers = "0123456789"
		all     = lower + upper + special + numbers
	)

	password := make([]byte, 12)
	password[0] = upper[randInt(len(upper))]
	password[1] = special[randInt(len(special))]
	password[2] = numbers[randInt(len(numbers))]

	for i := 3; i < len(password); i++ {
		password[i] = all[randInt(len(all))]
	}

	for i := range password {
		j := randInt(len(password))
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

// AuthOptions are the token settings matching Config
func AuthOptions() services.AuthOptions {
	return services.AuthOptions{Secret: []byte(TestJWTSecret), TTL: time.Hour}
}

// AcquireAdminToken creates an admin user and logs in, returning the bearer token
func AcquireAdminToken(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()
	ctx := context.Background()
	password := GeneratePassword()

	_, err := services.CreateAdminUser(ctx, db, username, password)
	require.NoError(t, err, "Failed to create admin user")

	result, err := services.Authenticate(ctx, db, AuthOptions(), username, password)
	require.NoError(t, err, "Login failed")
	require.NotEmpty(t, result.Token, "Access token is empty")

	return result.Token
}
