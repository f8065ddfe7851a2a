package nodle

import "testing"

func TestCacheManagerPutGet(t *testing.T) {
	cache := NewCacheManager()
	cache.Put("decoded-image", 42, Float64(3.14))

	val, ok := cache.Get("decoded-image", 42)
	if !ok || val.Float != 3.14 {
		t.Errorf("Get = %+v, %v, want 3.14, true", val, ok)
	}

	if _, ok := cache.Get("decoded-image", 43); ok {
		t.Error("Get should miss for an unwritten node")
	}
	if _, ok := cache.Get("unregistered", 42); ok {
		t.Error("Get should miss for an unregistered cache")
	}
}

func TestCacheManagerInvalidateNode(t *testing.T) {
	cache := NewCacheManager()
	cache.Put("a", 1, Float64(1))
	cache.Put("b", 1, Float64(2))
	cache.Put("a", 2, Float64(3))

	cache.InvalidateNode(1)

	if _, ok := cache.Get("a", 1); ok {
		t.Error("node 1 entry in cache a should be invalidated")
	}
	if _, ok := cache.Get("b", 1); ok {
		t.Error("node 1 entry in cache b should be invalidated")
	}
	if _, ok := cache.Get("a", 2); !ok {
		t.Error("node 2 entry in cache a should survive invalidating node 1")
	}
}

func TestCacheManagerClearKeepsRegistration(t *testing.T) {
	cache := NewCacheManager()
	cache.Put("a", 1, Float64(1))
	cache.Clear()

	if _, ok := cache.Get("a", 1); ok {
		t.Error("Clear should remove all entries")
	}
	cache.Put("a", 5, Float64(9))
	if v, ok := cache.Get("a", 5); !ok || v.Float != 9 {
		t.Error("cache should still accept writes after Clear")
	}
}
