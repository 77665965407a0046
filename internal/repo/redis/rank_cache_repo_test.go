package redis

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestRankCacheMissReturnsNil(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewRankCacheRepo(client)

	payload, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("get on empty cache: %v", err)
	}
	if payload != nil {
		t.Fatalf("expected nil payload on miss, got %q", payload)
	}
}

func TestRankCacheSetAndGet(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewRankCacheRepo(client)
	ctx := context.Background()
	want := []byte(`[{"user_id":1,"match_qty":3}]`)

	if err := repo.Set(ctx, want, 30*time.Second); err != nil {
		t.Fatalf("set rank cache: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get rank cache: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("unexpected cached payload: got %q want %q", got, want)
	}
}

func TestRankCacheExpires(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewRankCacheRepo(client)
	ctx := context.Background()

	if err := repo.Set(ctx, []byte(`[]`), time.Second); err != nil {
		t.Fatalf("set rank cache: %v", err)
	}

	mr.FastForward(2 * time.Second)

	payload, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if payload != nil {
		t.Fatalf("expected expired payload to be nil, got %q", payload)
	}
}
