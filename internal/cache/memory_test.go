package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Hour)

	if err := c.Set("key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	val, found := c.Get("key1")
	if !found {
		t.Fatal("Expected a hit")
	}
	if string(val) != "value1" {
		t.Errorf("Expected value1, got %s", val)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Hour)

	if _, found := c.Get("absent"); found {
		t.Error("Expected a miss for an absent key")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Hour)

	c.Set("short", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("Expected the entry to expire")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Hour)

	c.Set("key1", []byte("v"), 0)
	if err := c.Delete("key1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, found := c.Get("key1"); found {
		t.Error("Expected the entry to be gone")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Hour)

	c.Set("a", []byte("1"), 0)
	c.Set("b", []byte("2"), 0)
	if err := c.Clear(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, found := c.Get("a"); found {
		t.Error("Expected a cleared cache")
	}
	if _, found := c.Get("b"); found {
		t.Error("Expected a cleared cache")
	}
}
