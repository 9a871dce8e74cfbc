package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stlplant/tankview/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.APIKey("get", "/customers/?limit=1000"); got != "api:GET:/customers/?limit=1000" {
		t.Errorf("APIKey = %s", got)
	}

	rk1 := k.RenderKey("abc", RenderKeyOpts{Preset: "basic", Format: "png", Width: 800})
	rk2 := k.RenderKey("abc", RenderKeyOpts{Preset: "basic", Format: "svg", Width: 800})
	if rk1 == rk2 {
		t.Error("different formats should produce different keys")
	}
	if rk1 != k.RenderKey("abc", RenderKeyOpts{Preset: "basic", Format: "png", Width: 800}) {
		t.Error("RenderKey should be deterministic")
	}
	if !strings.HasPrefix(rk1, "render:") {
		t.Errorf("RenderKey = %s", rk1)
	}

	if k.TopologyKey(1, 2, "svg") == k.TopologyKey(1, 3, "svg") {
		t.Error("different plants should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "backend-a:")
	if got := scoped.APIKey("GET", "/plants/"); got != "backend-a:api:GET:/plants/" {
		t.Errorf("APIKey = %s", got)
	}
	if rk := scoped.RenderKey("h", RenderKeyOpts{}); !strings.HasPrefix(rk, "backend-a:render:") {
		t.Errorf("RenderKey should be prefixed: %s", rk)
	}

	if got := NewScopedKeyer(nil, "p:").APIKey("GET", "/x"); got != "p:api:GET:/x" {
		t.Errorf("nil inner keyer: %s", got)
	}
}

func TestKindOf(t *testing.T) {
	k := NewScopedKeyer(nil, "tenant:")
	tests := map[string]string{
		k.APIKey("GET", "/lines/1"):       KindAPI,
		k.RenderKey("h", RenderKeyOpts{}): KindRender,
		k.TopologyKey(1, 1, "dot"):        KindTopology,
		"something-else":                  "other",
	}
	for key, want := range tests {
		if got := KindOf(key); got != want {
			t.Errorf("KindOf(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("missing key: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("cleared %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
	kinds              []string
}

func (h *countingHooks) OnCacheHit(_ context.Context, kind string) {
	h.hits++
	h.kinds = append(h.kinds, kind)
}
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(fc)
	key := NewDefaultKeyer().APIKey("GET", "/customers/")

	_, _, _ = c.Get(ctx, key)
	_ = c.Set(ctx, key, []byte("[]"), time.Minute)
	_, _, _ = c.Get(ctx, key)

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hits=%d misses=%d sets=%d", hooks.hits, hooks.misses, hooks.sets)
	}
	if len(hooks.kinds) != 1 || hooks.kinds[0] != KindAPI {
		t.Errorf("kinds = %v", hooks.kinds)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TANKVIEW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TANKVIEW_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: addr}), "tankview-test:")
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("TANKVIEW_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TANKVIEW_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	c, err := NewMongoCache(ctx, MongoConfig{URI: uri, Database: "tankview_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
}
