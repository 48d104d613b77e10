// Package catalog maps collection names to the schemas their documents must
// satisfy.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/schemata/pkg/schema"
)

// ErrUnknownSchema is returned when no schema is registered under a name.
var ErrUnknownSchema = errors.New("unknown schema")

// Catalog is a named set of compiled schemas. Safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Node
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		schemas: make(map[string]*schema.Node),
	}
}

// Register compiles node and stores it under name.
// If a schema with the same name exists, it is overwritten.
func (c *Catalog) Register(name string, node *schema.Node) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}
	if node == nil {
		return fmt.Errorf("schema %s: node is nil", name)
	}
	if err := node.Compile(); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[name] = node
	return nil
}

// Lookup returns the schema registered under name.
func (c *Catalog) Lookup(name string) (*schema.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	node, ok := c.schemas[name]
	return node, ok
}

// Get is Lookup with an error for unknown names.
func (c *Catalog) Get(name string) (*schema.Node, error) {
	node, ok := c.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return node, nil
}

// Names returns the registered names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered schemas.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schemas)
}

// Merge copies every schema from other into c, overriding same-named entries.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil || other == c {
		return
	}
	other.mu.RLock()
	snapshot := make(map[string]*schema.Node, len(other.schemas))
	for name, node := range other.schemas {
		snapshot[name] = node
	}
	other.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, node := range snapshot {
		c.schemas[name] = node
	}
}

// Replace swaps the whole content of c for the given schemas, compiling
// each. Nothing is changed if any schema fails to compile.
func (c *Catalog) Replace(schemas map[string]*schema.Node) error {
	for name, node := range schemas {
		if node == nil {
			return fmt.Errorf("schema %s: node is nil", name)
		}
		if err := node.Compile(); err != nil {
			return fmt.Errorf("schema %s: %w", name, err)
		}
	}

	next := make(map[string]*schema.Node, len(schemas))
	for name, node := range schemas {
		next[name] = node
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas = next
	return nil
}

// Snapshot returns a copy of the name to schema mapping.
func (c *Catalog) Snapshot() map[string]*schema.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*schema.Node, len(c.schemas))
	for name, node := range c.schemas {
		out[name] = node
	}
	return out
}

// LoadFile parses a YAML or JSON schema file and registers it under the
// file name without extension.
func (c *Catalog) LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read schema file: %w", err)
	}
	node, err := schema.ParseSchema(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	name := NameFromPath(path)
	if err := c.Register(name, node); err != nil {
		return "", err
	}
	return name, nil
}

// NameFromPath derives a collection name from a file path: the base name
// without its extension.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
