package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != "v" {
		t.Fatalf("expected v, got %s", got)
	}
}

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Second)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"))

	now = now.Add(2 * time.Second)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestMemory_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	_ = c.Set(ctx, "a", []byte("1"))
	_ = c.Set(ctx, "b", []byte("2"))

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	for _, k := range []string{"a", "b"} {
		if _, ok, _ := c.Get(ctx, k); ok {
			t.Fatalf("expected %s to be gone", k)
		}
	}
}

func TestRedis_ItemKeyScopedByGeneration(t *testing.T) {
	c := NewRedis(nil, "libraryhub:books", time.Minute)

	if got := c.itemKey(0, "list"); got != "libraryhub:books:g0:list" {
		t.Fatalf("unexpected key %s", got)
	}
	if c.itemKey(1, "list") == c.itemKey(2, "list") {
		t.Fatalf("generations must not share keys")
	}
}
