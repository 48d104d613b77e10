package openapi

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		node   *schema.Node
		typ    string
		format string
	}{
		{"string", schema.StringSchema(), openapi3.TypeString, ""},
		{"number", schema.NumberSchema(), openapi3.TypeNumber, ""},
		{"integer", schema.IntegerSchema(), openapi3.TypeInteger, ""},
		{"boolean", schema.BooleanSchema(), openapi3.TypeBoolean, ""},
		{"date", schema.DateSchema(), openapi3.TypeString, "date-time"},
		{"object", schema.ObjectSchema(), openapi3.TypeObject, ""},
		{"array", schema.ArraySchema(nil), openapi3.TypeArray, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Schema(tt.node)
			assert.True(t, s.Type.Is(tt.typ), "got %v", s.Type)
			if tt.format != "" {
				assert.Equal(t, tt.format, s.Format)
			}
		})
	}
}

func TestSchema_Constraints(t *testing.T) {
	node := schema.ObjectSchema(
		schema.Prop("email", schema.StringSchema().WithPattern("^.+@.+$")),
		schema.Prop("qty", schema.IntegerSchema().WithMinimum(1).WithMaximum(10)),
		schema.Prop("tags", schema.ArraySchema(schema.StringSchema()).WithMinItems(1)),
	).Require("email").WithDescription("thing")

	s := Schema(node)
	assert.Equal(t, "thing", s.Description)
	assert.Equal(t, []string{"email"}, s.Required)
	assert.Equal(t, "^.+@.+$", s.Properties["email"].Value.Pattern)

	qty := s.Properties["qty"].Value
	require.NotNil(t, qty.Min)
	require.NotNil(t, qty.Max)
	assert.Equal(t, 1.0, *qty.Min)
	assert.Equal(t, 10.0, *qty.Max)

	tags := s.Properties["tags"].Value
	assert.Equal(t, uint64(1), tags.MinItems)
	assert.True(t, tags.Items.Value.Type.Is(openapi3.TypeString))
}

func TestComponents_Builtin(t *testing.T) {
	comps := Components(catalog.Builtin())
	for _, name := range []string{"restaurants", "users", "orders", ViolationSchema, ResultSchema, ErrorSchema} {
		assert.Contains(t, comps.Schemas, name)
	}

	joined := comps.Schemas["users"].Value.Properties["joined"].Value
	assert.Equal(t, "date-time", joined.Format)
}

func TestDocument_Validates(t *testing.T) {
	doc := Document(catalog.Builtin(), "v0.0.0-test")
	require.NoError(t, doc.Validate(context.Background()))

	assert.NotNil(t, doc.Paths.Value("/validate/orders"))
	assert.NotNil(t, doc.Paths.Value("/schemas"))
	assert.Nil(t, doc.Paths.Value("/validate/unknown"))

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"$ref":"#/components/schemas/ValidationResult"`)
}
