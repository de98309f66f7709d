package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/metrics"
	"github.com/lalithlochan/officebell/internal/notify"
	"github.com/lalithlochan/officebell/internal/prefs"
)

// DefaultPreferencesTTL is used when the cache is built with a zero TTL.
const DefaultPreferencesTTL = 10 * time.Minute

// absentMarker caches "this user has no stored preferences".
const absentMarker = "absent"

// PreferenceCache is a read-through cache in front of a prefs.Store.
// Writes go to the backing store and then drop the cached entry.
// Redis failures on read fall back to the backing store.
type PreferenceCache struct {
	client  *Client
	backing prefs.Store
	ttl     time.Duration
	logger  *zap.Logger
}

// NewPreferenceCache wraps backing with a cache of the given ttl.
func NewPreferenceCache(client *Client, backing prefs.Store, ttl time.Duration, logger *zap.Logger) *PreferenceCache {
	if ttl <= 0 {
		ttl = DefaultPreferencesTTL
	}
	return &PreferenceCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
		logger:  logger.Named("prefs-cache"),
	}
}

func (c *PreferenceCache) buildKey(userID string) string {
	return fmt.Sprintf("prefs:%s", userID)
}

// GetPreferences implements notify.PreferenceStore.
func (c *PreferenceCache) GetPreferences(ctx context.Context, userID string) (*notify.Preferences, error) {
	key := c.buildKey(userID)

	val, err := c.client.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.RecordPreferencesCache("hit")
		if val == absentMarker {
			return nil, nil
		}
		var p notify.Preferences
		if err := json.Unmarshal([]byte(val), &p); err == nil {
			return &p, nil
		}
		c.logger.Warn("dropping unreadable cached preferences", zap.String("user_id", userID))
		c.client.rdb.Del(ctx, key)
	case errors.Is(err, redis.Nil):
		metrics.RecordPreferencesCache("miss")
	default:
		metrics.RecordPreferencesCache("error")
		c.logger.Warn("preference cache read failed, using store",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return c.backing.GetPreferences(ctx, userID)
	}

	p, err := c.backing.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := []byte(absentMarker)
	if p != nil {
		if data, err = json.Marshal(p); err != nil {
			return p, nil
		}
	}
	if err := c.client.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("preference cache write failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	return p, nil
}

// SavePreferences writes through to the backing store and invalidates the
// cached copy.
func (c *PreferenceCache) SavePreferences(ctx context.Context, userID string, p notify.Preferences) error {
	if err := c.backing.SavePreferences(ctx, userID, p); err != nil {
		return err
	}
	return c.Invalidate(ctx, userID)
}

// Invalidate drops the cached entry for userID.
func (c *PreferenceCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.rdb.Del(ctx, c.buildKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
