package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"banking-backend-go/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cachedIdentity is the subset of a user stored in Redis. The password hash
// never leaves the database.
type cachedIdentity struct {
	Id          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	CustomerOID string    `json:"customer_oid"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// IdentityCache caches resolved identities in Redis. A nil *IdentityCache is
// valid and disables caching, so callers never need to branch.
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityCache connects to Redis when an address is configured. When the
// address is empty or Redis is unreachable the cache is disabled and nil is
// returned.
func NewIdentityCache(cfg models.RedisConfig) *IdentityCache {
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("Identity cache unavailable, continuing without it",
			zap.String("addr", cfg.Addr), zap.Error(err))
		return nil
	}

	zap.L().Info("Identity cache connected", zap.String("addr", cfg.Addr))
	return &IdentityCache{client: client, ttl: cfg.IdentityCacheTTL}
}

func identityKey(username string) string {
	return fmt.Sprintf("user:%s:identity", username)
}

func (ic *IdentityCache) Get(ctx context.Context, username string) (*models.User, bool) {
	if ic == nil {
		return nil, false
	}

	raw, err := ic.client.Get(ctx, identityKey(username)).Result()
	if err != nil {
		return nil, false
	}

	var cached cachedIdentity
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		zap.L().Warn("Discarding corrupt cached identity", zap.String("username", username), zap.Error(err))
		ic.Invalidate(ctx, username)
		return nil, false
	}

	return &models.User{
		Id:          cached.Id,
		Username:    cached.Username,
		Email:       cached.Email,
		FullName:    cached.FullName,
		CustomerOID: cached.CustomerOID,
		IsActive:    cached.IsActive,
		CreatedAt:   cached.CreatedAt,
	}, true
}

func (ic *IdentityCache) Set(ctx context.Context, user *models.User) {
	if ic == nil {
		return
	}

	cached := cachedIdentity{
		Id:          user.Id,
		Username:    user.Username,
		Email:       user.Email,
		FullName:    user.FullName,
		CustomerOID: user.CustomerOID,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}

	if err := ic.client.Set(ctx, identityKey(user.Username), raw, ic.ttl).Err(); err != nil {
		zap.L().Warn("Failed to cache identity", zap.String("username", user.Username), zap.Error(err))
	}
}

// Invalidate drops a cached identity, e.g. after the user record changed.
func (ic *IdentityCache) Invalidate(ctx context.Context, username string) {
	if ic == nil {
		return
	}
	if err := ic.client.Del(ctx, identityKey(username)).Err(); err != nil {
		zap.L().Warn("Failed to invalidate cached identity", zap.String("username", username), zap.Error(err))
	}
}

func (ic *IdentityCache) Close() {
	if ic == nil {
		return
	}
	if err := ic.client.Close(); err != nil {
		zap.L().Warn("Failed to close identity cache connection", zap.Error(err))
	}
}
