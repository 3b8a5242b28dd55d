package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type testValue struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	want := testValue{Name: "AAPL", Price: 187.5}
	if err := mc.Set(ctx, "quote:AAPL", want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got testValue
	if err := mc.Get(ctx, "quote:AAPL", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got testValue
	if err := mc.Get(context.Background(), "nope", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "short", testValue{Name: "X"}, 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var got testValue
	if err := mc.Get(ctx, "short", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired key: err = %v, want ErrCacheMiss", err)
	}

	ok, err := mc.Exists(ctx, "short")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Error("expired key reported as existing")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	mc.Set(ctx, "a", testValue{}, time.Minute)
	mc.Set(ctx, "b", testValue{}, time.Minute)
	if err := mc.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	ok, _ := mc.Exists(ctx, "a", "b")
	if ok {
		t.Error("deleted keys still exist")
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMaxSize(3))
	defer mc.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mc.Set(ctx, fmt.Sprintf("k%d", i), testValue{Price: float64(i)}, time.Minute)
		time.Sleep(time.Millisecond)
	}

	// Touch k0 so k1 becomes the least recently used.
	var v testValue
	mc.Get(ctx, "k0", &v)

	mc.Set(ctx, "k3", testValue{}, time.Minute)

	if ok, _ := mc.Exists(ctx, "k1"); ok {
		t.Error("LRU key survived eviction")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if ok, _ := mc.Exists(ctx, k); !ok {
			t.Errorf("key %s was evicted unexpectedly", k)
		}
	}
}
