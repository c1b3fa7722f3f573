package config

import (
	"path/filepath"
	"testing"
)

func TestContextsUpsertAddsThenReplaces(t *testing.T) {
	var c Contexts
	c.Upsert(StarContext{Name: "home", Address: "127.0.0.1:7420"})
	c.Upsert(StarContext{Name: "home", Address: "127.0.0.1:9999"})

	if len(c.Contexts) != 1 {
		t.Fatalf("len(Contexts) = %d, want 1", len(c.Contexts))
	}
	got, ok := c.Find("home")
	if !ok || got.Address != "127.0.0.1:9999" {
		t.Errorf("Find(home) = %+v, %v", got, ok)
	}
}

func TestContextsCurrentContext(t *testing.T) {
	var c Contexts
	c.Upsert(StarContext{Name: "home", Address: "127.0.0.1:7420"})
	c.Current = "home"

	got, ok := c.CurrentContext()
	if !ok || got.Name != "home" {
		t.Errorf("CurrentContext() = %+v, %v", got, ok)
	}

	c.Current = "missing"
	if _, ok := c.CurrentContext(); ok {
		t.Error("CurrentContext() found a context for an unknown name")
	}
}

func TestSaveThenLoadContextsRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contexts.toml")

	var c Contexts
	c.Upsert(StarContext{Name: "home", Address: "127.0.0.1:7420"})
	c.Upsert(StarContext{Name: "lab", Address: "10.0.0.5:7420"})
	c.Current = "lab"

	if err := SaveContexts(c, path); err != nil {
		t.Fatalf("SaveContexts() error: %v", err)
	}

	loaded, err := LoadContexts(path)
	if err != nil {
		t.Fatalf("LoadContexts() error: %v", err)
	}
	if loaded.Current != "lab" {
		t.Errorf("Current = %q, want lab", loaded.Current)
	}
	if len(loaded.Contexts) != 2 {
		t.Fatalf("len(Contexts) = %d, want 2", len(loaded.Contexts))
	}
}

func TestLoadContextsMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	c, err := LoadContexts(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadContexts() error: %v", err)
	}
	if len(c.Contexts) != 0 {
		t.Errorf("expected no contexts, got %v", c.Contexts)
	}
}
