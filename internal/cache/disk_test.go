package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDiskCache_SetGet(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("papercheck:v1:abc", []byte("payload"), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	val, found := c.Get("papercheck:v1:abc")
	if !found {
		t.Fatal("Expected a hit")
	}
	if string(val) != "payload" {
		t.Errorf("Expected payload, got %s", val)
	}
}

func TestDiskCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewDiskCache(dir, time.Hour)
	first.Set("key", []byte("durable"), 0)

	second := NewDiskCache(dir, time.Hour)
	val, found := second.Get("key")
	if !found {
		t.Fatal("Expected the entry to survive a new instance")
	}
	if string(val) != "durable" {
		t.Errorf("Expected durable, got %s", val)
	}
}

func TestDiskCache_ExpiryRemovesFile(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	c.Set("short", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Fatal("Expected the entry to expire")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected the expired file removed, found %d files", len(entries))
	}
}

func TestDiskCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	c.Set("key", []byte("v"), 0)

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 cache file, got %d", len(entries))
	}
	path := filepath.Join(dir, entries[0].Name())
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, found := c.Get("key"); found {
		t.Error("Expected a corrupt entry to read as a miss")
	}
}

func TestDiskCache_KeyFlattening(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	c.Set("papercheck:v1:deadbeef", []byte("v"), 0)

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 cache file, got %d", len(entries))
	}
	name := entries[0].Name()
	if strings.Contains(name, ":") {
		t.Errorf("Expected colons flattened in the filename, got %q", name)
	}
	if !strings.HasSuffix(name, ".json") {
		t.Errorf("Expected a .json filename, got %q", name)
	}
}

func TestDiskCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	c.Set("a", []byte("1"), 0)
	if err := c.Clear(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Error("Expected a cleared cache")
	}
}
