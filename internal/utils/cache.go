package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key assembly
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache key builders. All cached marketplace reads derive their keys here so
// the handlers that write through a cache and the handlers that invalidate it
// can never disagree on the format.

// WalletCacheKey is the key for a user's cached wallet snapshot
func WalletCacheKey(userID uint) string {
	return "wallet:user:" + strconv.Itoa(int(userID))
}

// TxHistoryCacheKey is the key for a user's cached transaction history
func TxHistoryCacheKey(userID uint) string {
	return "txhistory:user:" + strconv.Itoa(int(userID))
}

// AdminUsersCacheKey is the key for a page of the admin user listing
func AdminUsersCacheKey(page, pageSize int) string {
	return "admin:users:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
}

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// InvalidateWalletCaches drops a user's wallet and transaction history cache
// entries after a write that changes either
func InvalidateWalletCaches(ctx context.Context, rdb *redis.Client, userID uint) {
	_ = DeleteCache(ctx, rdb, WalletCacheKey(userID))    // Wallet snapshot
	_ = DeleteCache(ctx, rdb, TxHistoryCacheKey(userID)) // Transaction history
}
