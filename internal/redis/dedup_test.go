package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestShowDeduper_NewRequest(t *testing.T) {
	client, _ := setupTestRedis(t)
	d := NewShowDeduper(client, zap.NewNop())

	rec, err := d.CheckOrReserve(context.Background(), "u-1", "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record for new request, got %+v", rec)
	}
}

func TestShowDeduper_InFlight(t *testing.T) {
	client, _ := setupTestRedis(t)
	d := NewShowDeduper(client, zap.NewNop())
	ctx := context.Background()

	if _, err := d.CheckOrReserve(ctx, "u-1", "key-1"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := d.CheckOrReserve(ctx, "u-1", "key-1"); !errors.Is(err, ErrShowInFlight) {
		t.Fatalf("expected ErrShowInFlight, got %v", err)
	}
}

func TestShowDeduper_ReplaysStoredOutcome(t *testing.T) {
	client, mr := setupTestRedis(t)
	d := NewShowDeduper(client, zap.NewNop())
	ctx := context.Background()

	if _, err := d.CheckOrReserve(ctx, "u-1", "key-1"); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := d.Store(ctx, "u-1", "key-1", ShowRecord{ID: "notif_123", Status: "delivered"}); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	rec, err := d.CheckOrReserve(ctx, "u-1", "key-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if rec == nil || rec.ID != "notif_123" || rec.Status != "delivered" {
		t.Fatalf("expected stored record, got %+v", rec)
	}
	if rec.CreatedAt == 0 {
		t.Error("expected CreatedAt to be set")
	}
	if ttl := mr.TTL("show:u-1:key-1"); ttl != ShowDedupTTL {
		t.Errorf("expected ttl %v, got %v", ShowDedupTTL, ttl)
	}
}

func TestShowDeduper_ReleaseAllowsRetry(t *testing.T) {
	client, _ := setupTestRedis(t)
	d := NewShowDeduper(client, zap.NewNop())
	ctx := context.Background()

	d.CheckOrReserve(ctx, "u-1", "key-1")
	if err := d.Release(ctx, "u-1", "key-1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, err := d.CheckOrReserve(ctx, "u-1", "key-1"); err != nil {
		t.Fatalf("expected key to be claimable again, got %v", err)
	}
}

func TestShowDeduper_InFlightMarkerExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	d := NewShowDeduper(client, zap.NewNop())
	ctx := context.Background()

	d.CheckOrReserve(ctx, "u-1", "key-1")
	mr.FastForward(inFlightTTL + time.Second)

	if _, err := d.CheckOrReserve(ctx, "u-1", "key-1"); err != nil {
		t.Fatalf("expected stale claim to expire, got %v", err)
	}
}

func TestShowDeduper_UserIsolation(t *testing.T) {
	client, _ := setupTestRedis(t)
	d := NewShowDeduper(client, zap.NewNop())
	ctx := context.Background()

	if _, err := d.CheckOrReserve(ctx, "u-A", "same-key"); err != nil {
		t.Fatalf("user A failed: %v", err)
	}
	rec, err := d.CheckOrReserve(ctx, "u-B", "same-key")
	if err != nil {
		t.Fatalf("user B should succeed: %v", err)
	}
	if rec != nil {
		t.Fatal("user B should get nil (new request)")
	}
}
