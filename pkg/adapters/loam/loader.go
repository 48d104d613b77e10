// Package loam loads a directory of schema documents through a Loam repository.
//
// Any file Loam can read (Markdown with frontmatter, JSON, YAML) is a schema
// document. Its metadata holds the schema keywords; the collection name is the
// "collection" key or the file name without extension.
package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/loam"
	"github.com/aretw0/schemata/pkg/schema"
)

// WatchPattern selects the files that trigger a reload.
const WatchPattern = "**/*.{md,json,yaml,yml}"

// Loader reads schema documents from a Loam repository.
type Loader struct {
	Repo *loam.TypedRepository[SchemaMetadata]

	mu     sync.Mutex
	owners map[string]string // document ID -> collection
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[SchemaMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only repository at dir.
// Strict mode keeps numbers as json.Number instead of float64.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[SchemaMetadata](repo)), nil
}

// Load decodes every document into a compiled schema keyed by collection.
// Two documents resolving to the same collection is an error.
func (l *Loader) Load(ctx context.Context) (map[string]*schema.Node, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	schemas := make(map[string]*schema.Node, len(docs))
	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		name := CollectionName(doc.ID, doc.Data)
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: collection '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID

		node, err := schema.Decode(doc.Data.raw())
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", doc.ID, err)
		}
		schemas[name] = node
	}

	owners := make(map[string]string, len(seen))
	for name, id := range seen {
		owners[id] = name
	}
	l.mu.Lock()
	l.owners = owners
	l.mu.Unlock()
	return schemas, nil
}

// Get loads a single schema document by ID. It fails when another known
// document already defines the same collection.
func (l *Loader) Get(ctx context.Context, id string) (string, *schema.Node, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return "", nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	node, err := schema.Decode(doc.Data.raw())
	if err != nil {
		return "", nil, fmt.Errorf("schema %s: %w", doc.ID, err)
	}
	name := CollectionName(doc.ID, doc.Data)

	l.mu.Lock()
	defer l.mu.Unlock()
	for other, owned := range l.owners {
		if owned == name && other != id {
			return "", nil, fmt.Errorf("collision detected: collection '%s' is defined in both '%s' and '%s'", name, other, id)
		}
	}
	if l.owners == nil {
		l.owners = make(map[string]string)
	}
	l.owners[id] = name
	return name, node, nil
}

// Owner returns the collection document id defined when it was last read.
func (l *Loader) Owner(id string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name, ok := l.owners[id]
	return name, ok
}

// CollectionName resolves the collection a document describes.
func CollectionName(docID string, meta SchemaMetadata) string {
	if meta.Collection != "" {
		return meta.Collection
	}
	return path.Base(trimExtension(docID))
}

func trimExtension(id string) string {
	id = filepath.ToSlash(id)
	if ext := path.Ext(id); ext != "" {
		return strings.TrimSuffix(id, ext)
	}
	return id
}

// Watch emits the ID of each changed schema document until ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, WatchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
