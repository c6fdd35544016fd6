package spacetraveling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eringen/spacetraveling/blog"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*PageCache[string], *fakeClock) {
	clock := &fakeClock{now: time.Date(2021, 3, 25, 12, 0, 0, 0, time.UTC)}
	c := NewPageCache[string](ttl)
	c.now = clock.Now
	return c, clock
}

func TestPageCacheReusesFreshValue(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	ctx := context.Background()
	var calls int
	load := func(context.Context) (string, error) {
		calls++
		return "v" + string(rune('0'+calls)), nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Get(ctx, "home", load)
		if err != nil || v != "v1" {
			t.Fatalf("Get #%d = %q, %v", i, v, err)
		}
	}
	if calls != 1 {
		t.Errorf("load calls = %d, want 1", calls)
	}

	clock.Advance(2 * time.Minute)
	v, err := c.Get(ctx, "home", load)
	if err != nil || v != "v2" {
		t.Fatalf("Get after ttl = %q, %v", v, err)
	}
}

func TestPageCacheServesStaleOnFailure(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	ctx := context.Background()
	var staleKey string
	c.OnStale = func(key string, err error) { staleKey = key }

	if _, err := c.Get(ctx, "post", func(context.Context) (string, error) { return "good", nil }); err != nil {
		t.Fatalf("initial Get: %v", err)
	}
	clock.Advance(2 * time.Minute)

	v, err := c.Get(ctx, "post", func(context.Context) (string, error) { return "", errors.New("cms down") })
	if err != nil || v != "good" {
		t.Fatalf("stale Get = %q, %v", v, err)
	}
	if staleKey != "post" {
		t.Errorf("OnStale key = %q", staleKey)
	}

	_, err = c.Get(ctx, "other", func(context.Context) (string, error) { return "", errors.New("cms down") })
	if err == nil {
		t.Error("expected error without a previous value")
	}
}

func TestPageCacheDoesNotKeepNotFound(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	ctx := context.Background()

	if _, err := c.Get(ctx, "gone", func(context.Context) (string, error) { return "was here", nil }); err != nil {
		t.Fatalf("initial Get: %v", err)
	}
	clock.Advance(2 * time.Minute)

	_, err := c.Get(ctx, "gone", func(context.Context) (string, error) { return "", blog.ErrNotFound })
	if !errors.Is(err, blog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("not-found key should be evicted, Len = %d", c.Len())
	}
}

func TestPageCacheCoalescesLoads(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := c.Get(context.Background(), "home", load)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("load calls = %d, want 1", n)
	}
	for i, v := range results {
		if v != "shared" {
			t.Errorf("results[%d] = %q", i, v)
		}
	}
}

func TestPageCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		c.Get(ctx, k, func(context.Context) (string, error) { return k, nil })
	}
	c.Invalidate("a")
	if c.Len() != 2 {
		t.Errorf("Len after Invalidate(a) = %d, want 2", c.Len())
	}
	c.Invalidate()
	if c.Len() != 0 {
		t.Errorf("Len after Invalidate() = %d, want 0", c.Len())
	}
}
