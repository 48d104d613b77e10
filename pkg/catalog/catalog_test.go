package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/aretw0/schemata/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	c := Builtin()
	assert.Equal(t, []string{"orders", "restaurants", "users"}, c.Names())

	users, ok := c.Lookup("users")
	require.True(t, ok)
	assert.Equal(t, schema.KindObject, users.Kind)

	doc, err := schema.ParseJSON([]byte(`{
		"user_id": 1, "name": "Jan", "email": "jan@example.cz",
		"preferences": {"vegan": false, "allergies": ["nuts"]},
		"joined": "2023-04-01T10:00:00Z"
	}`))
	require.NoError(t, err)
	assert.Empty(t, schema.Validate(doc, users, ""))

	bad, err := schema.ParseJSON([]byte(`{
		"user_id": "1", "name": "Jan", "email": "jan",
		"preferences": {"vegan": "no"},
		"joined": "someday"
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"user_id: expected integer",
		"email: pattern mismatch",
		"preferences.allergies: required",
		"preferences.vegan: expected boolean",
		"joined: expected date",
	}, schema.Validate(bad, users, "").Strings())
}

func TestBuiltin_Orders(t *testing.T) {
	orders, err := Builtin().Get("orders")
	require.NoError(t, err)

	doc, err := schema.ParseJSON([]byte(`{
		"order_id": 10, "user_id": 1, "restaurant_id": 2,
		"items": [], "total": -1,
		"ordered_at": "2024-02-01T18:00:00Z", "delivered_at": "2024-02-01T18:40:00Z"
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"items: minItems 1", "total: minimum 0"},
		schema.Validate(doc, orders, "").Strings())
}

func TestBuiltin_FreshCopies(t *testing.T) {
	a := Builtin()
	b := Builtin()
	require.NoError(t, a.Register("extra", schema.StringSchema()))
	_, ok := b.Lookup("extra")
	assert.False(t, ok)
}

func TestCatalog_RegisterAndGet(t *testing.T) {
	c := New()

	assert.Error(t, c.Register("", schema.StringSchema()))
	assert.Error(t, c.Register("x", nil))
	assert.Error(t, c.Register("x", &schema.Node{Kind: "uuid"}))

	require.NoError(t, c.Register("x", schema.StringSchema().WithPattern("^a")))
	node, err := c.Get("x")
	require.NoError(t, err)
	assert.Equal(t, schema.KindString, node.Kind)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownSchema)
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_MergeAndReplace(t *testing.T) {
	base := New()
	require.NoError(t, base.Register("a", schema.StringSchema()))
	require.NoError(t, base.Register("b", schema.StringSchema()))

	override := New()
	require.NoError(t, override.Register("b", schema.NumberSchema()))
	base.Merge(override)

	b, _ := base.Lookup("b")
	assert.Equal(t, schema.KindNumber, b.Kind)
	assert.Equal(t, []string{"a", "b"}, base.Names())

	err := base.Replace(map[string]*schema.Node{"c": {Kind: "nope"}})
	assert.Error(t, err)
	assert.Equal(t, []string{"a", "b"}, base.Names(), "failed replace must not change content")

	require.NoError(t, base.Replace(map[string]*schema.Node{"c": schema.BooleanSchema()}))
	assert.Equal(t, []string{"c"}, base.Names())
	assert.Len(t, base.Snapshot(), 1)
}

func TestCatalog_LoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "menus.yaml")
	require.NoError(t, os.WriteFile(p, []byte("kind: object\nrequired: [title]\n"), 0o644))

	c := New()
	name, err := c.LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "menus", name)

	_, err = c.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"kind": 3}`), 0o644))
	_, err = c.LoadFile(broken)
	assert.Error(t, err)
}

func TestFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"schemas/a.yaml":    {Data: []byte("kind: string")},
		"schemas/b.json":    {Data: []byte(`{"kind": "array", "items": {"kind": "integer"}}`)},
		"schemas/notes.txt": {Data: []byte("ignored")},
	}

	c, err := FromFS(fsys, "schemas")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.Names())

	_, err = FromFS(fsys, "nowhere")
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tags.yml"), []byte("kind: array\nitems:\n  kind: string\n"), 0o644))

	c, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"tags"}, c.Names())

	_, err = LoadDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCatalog_ConcurrentAccess(t *testing.T) {
	c := Builtin()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = c.Lookup("users")
			_ = c.Names()
		}()
		go func() {
			defer wg.Done()
			_ = c.Register("tmp", schema.StringSchema())
		}()
	}
	wg.Wait()
	assert.Contains(t, c.Names(), "tmp")
}
