package auth

import (
	"context"
	"errors"
	"fmt"

	"banking-backend-go/internal/models"
	"banking-backend-go/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("unable to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the plaintext password matches the stored hash.
func VerifyPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// Authenticate checks a username/password pair against the identity store.
// An unknown username and a wrong password return the same error so callers
// cannot probe for registered usernames.
func Authenticate(ctx context.Context, users store.IdentityStore, username, password string) (*models.User, error) {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, store.ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, user.HashedPassword) {
		return nil, store.ErrInvalidCredentials
	}
	return user, nil
}
