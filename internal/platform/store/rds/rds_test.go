package rds

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpen_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestGetSet_RoundTripAndMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	r, err := Open(ctx, Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = r.Close() }()

	if _, found, err := r.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("miss: found=%v err=%v", found, err)
	}

	if err := r.Set(ctx, "probe:k", "1", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, found, err := r.Get(ctx, "probe:k")
	if err != nil || !found || v != "1" {
		t.Fatalf("Get = %q found=%v err=%v", v, found, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, found, _ := r.Get(ctx, "probe:k"); found {
		t.Fatalf("expected key to expire")
	}

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestOpen_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Open(ctx, Config{Addr: addr}); err == nil {
		t.Fatalf("expected ping failure against closed server")
	}
}
