package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("null cache must always miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("null cache must not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "absent"); hit {
		t.Error("empty cache must miss")
	}

	if err := c.Set(ctx, "svg", []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "svg")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || string(data) != "<svg/>" {
		t.Errorf("Get = %q, %v", data, hit)
	}

	if err := c.Delete(ctx, "svg"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("deleted key must miss")
	}
	if err := c.Delete(ctx, "svg"); err != nil {
		t.Errorf("deleting an absent key must not fail: %v", err)
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "short", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	// A negative ttl is treated as no expiration (ttl <= 0).
	if _, hit, _ := c.Get(ctx, "short"); !hit {
		t.Error("non-positive ttl must mean no expiration")
	}

	fc := c.(*FileCache)
	if err := fc.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("cleared cache must miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("hash must be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs must hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	svg := k.ArtifactKey([]byte("script"), []byte("cfg"), "svg")
	if !strings.HasPrefix(svg, "artifact:svg:") {
		t.Errorf("ArtifactKey = %q, want artifact:svg: prefix", svg)
	}

	// Same inputs, same key; any changed input changes the key.
	if svg != k.ArtifactKey([]byte("script"), []byte("cfg"), "svg") {
		t.Error("keyer must be deterministic")
	}
	if svg == k.ArtifactKey([]byte("script"), []byte("cfg"), "json") {
		t.Error("format must enter the key")
	}
	if svg == k.ArtifactKey([]byte("script2"), []byte("cfg"), "svg") {
		t.Error("script content must enter the key")
	}
	if svg == k.ArtifactKey([]byte("script"), []byte("cfg2"), "svg") {
		t.Error("configuration must enter the key")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:7:")
	key := scoped.ArtifactKey([]byte("s"), nil, "svg")
	if !strings.HasPrefix(key, "tenant:7:artifact:svg:") {
		t.Errorf("scoped key = %q", key)
	}

	// A nil inner keyer falls back to the default.
	fallback := NewScopedKeyer(nil, "p:")
	if !strings.HasPrefix(fallback.ArtifactKey([]byte("s"), nil, "svg"), "p:artifact:svg:") {
		t.Error("nil inner keyer must use the default keyer")
	}
}
