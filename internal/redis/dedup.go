package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// ShowDedupTTL is how long the outcome of a keyed show request is kept.
	ShowDedupTTL = 24 * time.Hour

	// inFlightTTL bounds the marker held while a show is being delivered.
	inFlightTTL = time.Minute

	inFlightMarker = "in-flight"
)

// ErrShowInFlight means another request with the same key is being handled.
var ErrShowInFlight = errors.New("show request with this idempotency key is in flight")

// ShowRecord is the remembered outcome of a keyed show request.
type ShowRecord struct {
	ID        string `json:"id,omitempty"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// ShowDeduper makes show requests carrying an Idempotency-Key replay their
// first outcome instead of notifying the user twice.
type ShowDeduper struct {
	client *Client
	logger *zap.Logger
}

func NewShowDeduper(client *Client, logger *zap.Logger) *ShowDeduper {
	return &ShowDeduper{
		client: client,
		logger: logger.Named("show-dedup"),
	}
}

func (d *ShowDeduper) buildKey(userID, key string) string {
	return fmt.Sprintf("show:%s:%s", userID, key)
}

// Check returns the stored record for key, (nil, nil) when there is none,
// or ErrShowInFlight while the first request is still running.
func (d *ShowDeduper) Check(ctx context.Context, userID, key string) (*ShowRecord, error) {
	val, err := d.client.rdb.Get(ctx, d.buildKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	if val == inFlightMarker {
		return nil, ErrShowInFlight
	}

	var rec ShowRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		d.logger.Error("failed to unmarshal show record", zap.Error(err))
		return nil, fmt.Errorf("invalid show record: %w", err)
	}

	d.logger.Debug("replaying show outcome",
		zap.String("user_id", userID),
		zap.String("id", rec.ID),
	)
	return &rec, nil
}

// CheckOrReserve returns a stored record if there is one. Otherwise it
// claims key with SET NX and returns (nil, nil); the caller must then call
// Store or Release.
func (d *ShowDeduper) CheckOrReserve(ctx context.Context, userID, key string) (*ShowRecord, error) {
	rec, err := d.Check(ctx, userID, key)
	if err != nil || rec != nil {
		return rec, err
	}

	set, err := d.client.rdb.SetNX(ctx, d.buildKey(userID, key), inFlightMarker, inFlightTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx failed: %w", err)
	}
	if !set {
		return nil, ErrShowInFlight
	}
	return nil, nil
}

// Store records the outcome for key.
func (d *ShowDeduper) Store(ctx context.Context, userID, key string, rec ShowRecord) error {
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal show record: %w", err)
	}
	if err := d.client.rdb.Set(ctx, d.buildKey(userID, key), data, ShowDedupTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Release drops an in-flight claim so the request can be retried.
func (d *ShowDeduper) Release(ctx context.Context, userID, key string) error {
	if err := d.client.rdb.Del(ctx, d.buildKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
