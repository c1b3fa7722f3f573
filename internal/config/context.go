package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// StarContext names a remote star's address for client tooling (currently
// `starlane term`): "list/select/add a named (star address, auth) context".
type StarContext struct {
	Name    string `toml:"name"`
	Address string `toml:"address"` // host:port the star's hyperlane listener binds
}

// Contexts is the set of named star contexts and which one is selected.
type Contexts struct {
	Current  string       `toml:"current"`
	Contexts []StarContext `toml:"context"`
}

// Find returns the context named name, if any.
func (c Contexts) Find(name string) (StarContext, bool) {
	for _, ctx := range c.Contexts {
		if ctx.Name == name {
			return ctx, true
		}
	}
	return StarContext{}, false
}

// CurrentContext returns the selected context, if Current names one that
// exists.
func (c Contexts) CurrentContext() (StarContext, bool) {
	if c.Current == "" {
		return StarContext{}, false
	}
	return c.Find(c.Current)
}

// Upsert adds ctx, replacing any existing context with the same name.
func (c *Contexts) Upsert(ctx StarContext) {
	for i, existing := range c.Contexts {
		if existing.Name == ctx.Name {
			c.Contexts[i] = ctx
			return
		}
	}
	c.Contexts = append(c.Contexts, ctx)
}

// ContextsPath returns the default contexts file location, alongside the
// main config file.
func ContextsPath() string {
	return filepath.Join(StarHome(), "contexts.toml")
}

// LoadContexts reads the named contexts file, returning an empty set if it
// doesn't exist yet.
func LoadContexts(path string) (Contexts, error) {
	if path == "" {
		path = ContextsPath()
	}
	var c Contexts
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return c, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

// SaveContexts writes c to path (or the default contexts file).
func SaveContexts(c Contexts, path string) error {
	if path == "" {
		path = ContextsPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}
