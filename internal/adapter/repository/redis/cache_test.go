package redis

import (
	"context"
	"testing"
	"time"

	"github.com/cajafin/ledger/internal/usecase"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, usecase.LoanScheduleKey("loan-1"), "[]", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, usecase.LoanScheduleKey("loan-1"))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if val != "[]" {
		t.Fatalf("expected [], got %s", val)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, usecase.LoanScheduleKey("loan-1"), "[]", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, usecase.LoanScheduleKey("loan-1")); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, usecase.LoanScheduleKey("loan-1")); err == nil {
		t.Fatalf("expected error getting deleted key")
	}
}

func TestCacheNamespacesKeys(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "loan:loan-1:schedule", "[]", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := client.Get(ctx, cache.prefix+"loan:loan-1:schedule").Result()
	if err != nil || val != "[]" {
		t.Fatalf("expected namespaced key, got val=%s err=%v", val, err)
	}
}
