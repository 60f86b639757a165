package cache

import (
	"testing"
	"time"
)

func TestLayeredCache_WritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Hour, dir, time.Hour)

	if err := c.Set("key", []byte("value"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Visible through the layered view.
	if val, found := c.Get("key"); !found || string(val) != "value" {
		t.Errorf("Expected a layered hit, got %q found=%v", val, found)
	}

	// And directly on disk, for the next process.
	disk := NewDiskCache(dir, time.Hour)
	if _, found := disk.Get("key"); !found {
		t.Error("Expected the value persisted to disk")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Seed disk only, as a previous run would have.
	seed := NewDiskCache(dir, time.Hour)
	seed.Set("key", []byte("from-disk"), 0)

	c := NewLayeredCache(time.Hour, dir, time.Hour)

	val, found := c.Get("key")
	if !found || string(val) != "from-disk" {
		t.Fatalf("Expected a disk hit through the layers, got %q found=%v", val, found)
	}

	// A second read must be served by memory even if the disk copy vanishes.
	seed.Clear()
	if val, found := c.Get("key"); !found || string(val) != "from-disk" {
		t.Errorf("Expected the promoted entry in memory, got %q found=%v", val, found)
	}
}

func TestLayeredCache_DeleteRemovesBothLayers(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Hour, dir, time.Hour)

	c.Set("key", []byte("value"), 0)
	if err := c.Delete("key"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, found := c.Get("key"); found {
		t.Error("Expected the entry gone from both layers")
	}
}

func TestLayeredCache_Miss(t *testing.T) {
	c := NewLayeredCache(time.Hour, t.TempDir(), time.Hour)

	if _, found := c.Get("absent"); found {
		t.Error("Expected a miss")
	}
}
