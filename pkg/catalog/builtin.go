package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/aretw0/schemata/pkg/schema"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin returns a catalog holding the bundled collection schemas
// (restaurants, users, orders). Each call returns a fresh catalog.
func Builtin() *Catalog {
	c, err := FromFS(builtinFS, "builtin")
	if err != nil {
		// The bundled files are covered by tests; failing here is a build defect.
		panic(fmt.Sprintf("catalog: bundled schemas: %v", err))
	}
	return c
}

// FromFS loads every *.yaml, *.yml and *.json file directly under dir.
func FromFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	c := New()
	for _, entry := range entries {
		if entry.IsDir() || !isSchemaFile(entry.Name()) {
			continue
		}
		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		node, err := schema.ParseSchema(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if err := c.Register(NameFromPath(entry.Name()), node); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadDir loads the schema files of a directory on disk.
func LoadDir(dir string) (*Catalog, error) {
	return FromFS(os.DirFS(dir), ".")
}

func isSchemaFile(name string) bool {
	switch path.Ext(name) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
