package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, Config) {
	s := miniredis.RunT(t)
	return s, Config{Addr: s.Addr(), Timeout: time.Second}
}

func TestConnect(t *testing.T) {
	_, cfg := setupTestRedis(t)

	client, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()
}

func TestConnect_Unreachable(t *testing.T) {
	s, cfg := setupTestRedis(t)
	s.Close()

	if _, err := Connect(context.Background(), cfg); err == nil {
		t.Fatalf("expected ping failure against a closed server")
	}
}

func TestTokenStore_SaveGetDelete(t *testing.T) {
	s, cfg := setupTestRedis(t)
	client, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	store := NewTokenStore(client)
	ctx := context.Background()

	if v, err := store.Get(ctx, "userToken"); err != nil || v != "" {
		t.Fatalf("expected empty value for missing key, got %q err=%v", v, err)
	}

	if err := store.Save(ctx, "userToken", "abc"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "userToken", "def"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if v, _ := store.Get(ctx, "userToken"); v != "def" {
		t.Errorf("expected last write to win, got %q", v)
	}
	if got, _ := s.Get(tokenPrefix + "userToken"); got != "def" {
		t.Errorf("unexpected raw value %q", got)
	}
	if s.TTL(tokenPrefix+"userToken") != 0 {
		t.Errorf("token must not expire")
	}

	if err := store.Delete(ctx, "userToken"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Exists(tokenPrefix + "userToken") {
		t.Errorf("expected key deleted")
	}
	if err := store.Delete(ctx, "userToken"); err != nil {
		t.Errorf("deleting a missing key must succeed, got %v", err)
	}
}

func TestAcceptLock(t *testing.T) {
	s, cfg := setupTestRedis(t)
	client, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	lock := NewAcceptLock(client, 10*time.Second)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, "o1")
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, ok=%v err=%v", ok, err)
	}
	if ok, _ := lock.Acquire(ctx, "o1"); ok {
		t.Errorf("expected second acquire to fail while held")
	}
	if ok, _ := lock.Acquire(ctx, "o2"); !ok {
		t.Errorf("locks must be per order")
	}

	s.FastForward(11 * time.Second)
	if ok, _ := lock.Acquire(ctx, "o1"); !ok {
		t.Errorf("expected lock to expire")
	}

	if err := lock.Release(ctx, "o1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if ok, _ := lock.Acquire(ctx, "o1"); !ok {
		t.Errorf("expected acquire after release")
	}
}

func TestAcceptLock_ReleaseKeepsAnotherHoldersLock(t *testing.T) {
	s, cfg := setupTestRedis(t)
	client, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	first := NewAcceptLock(client, 10*time.Second)
	second := NewAcceptLock(client, 10*time.Second)

	if ok, err := first.Acquire(ctx, "o1"); err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, ok=%v err=%v", ok, err)
	}
	s.FastForward(11 * time.Second)
	if ok, err := second.Acquire(ctx, "o1"); err != nil || !ok {
		t.Fatalf("expected acquire after expiry, ok=%v err=%v", ok, err)
	}

	if err := first.Release(ctx, "o1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if !s.Exists("accept:o1") {
		t.Fatalf("expired holder released a lock it no longer owns")
	}
	if ok, _ := first.Acquire(ctx, "o1"); ok {
		t.Errorf("expected the lock to stay held by the second holder")
	}

	if err := second.Release(ctx, "o1"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if s.Exists("accept:o1") {
		t.Errorf("expected the holder's release to delete the lock")
	}
}
