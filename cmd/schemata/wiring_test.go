package main

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/schemata/internal/config"
	"github.com/aretw0/schemata/internal/testutils"
	loamAdapter "github.com/aretw0/schemata/pkg/adapters/loam"
	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSchemaLoader(t *testing.T, files map[string]string) (string, *loamAdapter.Loader) {
	t.Helper()
	dir, repo := testutils.SetupTestRepo(t, loam.WithStrict(true))
	testutils.WriteFiles(t, dir, files)
	return dir, loamAdapter.New(loam.NewTypedRepository[loamAdapter.SchemaMetadata](repo))
}

func docID(t *testing.T, loader *loamAdapter.Loader, collection string) string {
	t.Helper()
	docs, err := loader.Repo.List(context.Background())
	require.NoError(t, err)
	for _, doc := range docs {
		if loamAdapter.CollectionName(doc.ID, doc.Data) == collection {
			return doc.ID
		}
	}
	t.Fatalf("no document defines %s", collection)
	return ""
}

func TestRefreshCatalog_SingleDocument(t *testing.T) {
	ctx := context.Background()
	dir, loader := newSchemaLoader(t, map[string]string{
		"customers.md": "---\nkind: object\nrequired: [email]\n---",
		"invoices.md":  "---\nkind: object\n---",
	})
	cat := catalog.New()
	require.NoError(t, reloadCatalog(ctx, cat, loader))
	id := docID(t, loader, "customers")

	testutils.WriteFiles(t, dir, map[string]string{
		"customers.md": "---\nkind: object\nrequired: [name]\n---",
	})
	require.NoError(t, refreshCatalog(ctx, cat, loader, id))

	node, err := cat.Get("customers")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, node.Required)
	_, ok := cat.Lookup("invoices")
	assert.True(t, ok)
	_, ok = cat.Lookup("users")
	assert.True(t, ok, "built-in schemas survive a refresh")
}

func TestRefreshCatalog_RenamedCollectionReloads(t *testing.T) {
	ctx := context.Background()
	dir, loader := newSchemaLoader(t, map[string]string{
		"customers.md": "---\nkind: object\n---",
	})
	cat := catalog.New()
	require.NoError(t, reloadCatalog(ctx, cat, loader))
	id := docID(t, loader, "customers")

	testutils.WriteFiles(t, dir, map[string]string{
		"customers.md": "---\ncollection: clients\nkind: array\n---",
	})
	require.NoError(t, refreshCatalog(ctx, cat, loader, id))

	_, ok := cat.Lookup("customers")
	assert.False(t, ok)
	node, err := cat.Get("clients")
	require.NoError(t, err)
	assert.Equal(t, schema.KindArray, node.Kind)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		kind        string
		longRunning bool
		wantStore   bool
		wantErr     bool
	}{
		{name: "none", kind: config.StoreNone},
		{name: "memory in serve", kind: config.StoreMemory, longRunning: true, wantStore: true},
		{name: "memory in validate", kind: config.StoreMemory, wantErr: true},
		{name: "file", kind: config.StoreFile, wantStore: true},
		{name: "unknown", kind: "etcd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.StoreConfig{Kind: tt.kind, Path: t.TempDir()}
			store, closer, err := openStore(ctx, cfg, tt.longRunning)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer closer.Close()
			assert.Equal(t, tt.wantStore, store != nil)
		})
	}
}
