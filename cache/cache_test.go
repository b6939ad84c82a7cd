package cache

import (
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New(1 * time.Second)

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New(100 * time.Millisecond)

	c.Set("key1", "value1")

	// Should exist immediately
	_, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1 immediately")
	}

	// Wait for expiration
	time.Sleep(150 * time.Millisecond)

	_, found = c.Get("key1")
	if found {
		t.Error("Expected key1 to be expired")
	}
}

func TestCache_SetWithTTL_OverridesDefault(t *testing.T) {
	c := New(1 * time.Hour)

	c.SetWithTTL("short", "value", 50*time.Millisecond)
	c.Set("long", "value")

	time.Sleep(80 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("Expected short-TTL entry to be expired")
	}
	if _, found := c.Get("long"); !found {
		t.Error("Expected default-TTL entry to survive")
	}
}

func TestCache_OverwriteReplacesValue(t *testing.T) {
	c := New(1 * time.Second)

	c.Set("key1", "old")
	c.Set("key1", "new")

	val, found := c.Get("key1")
	if !found || val != "new" {
		t.Errorf("Expected overwritten value, got %v (found=%v)", val, found)
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(1 * time.Second)

	c.Set("key1", "value1")
	c.Clear("key1")

	_, found := c.Get("key1")
	if found {
		t.Error("Expected key1 to be cleared")
	}
}
