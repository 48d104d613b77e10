package loam

// SchemaMetadata is the header of a schema document.
// It uses "mapstructure" tags to match the Frontmatter/YAML keywords of a schema file.
type SchemaMetadata struct {
	// Collection overrides the collection name derived from the document ID.
	Collection string `json:"collection,omitempty" mapstructure:"collection"`

	Kind        string         `json:"kind,omitempty" mapstructure:"kind"`
	BSONType    string         `json:"bsonType,omitempty" mapstructure:"bsonType"`
	Description string         `json:"description,omitempty" mapstructure:"description"`
	Required    []string       `json:"required,omitempty" mapstructure:"required"`
	Properties  map[string]any `json:"properties,omitempty" mapstructure:"properties"`
	Items       any            `json:"items,omitempty" mapstructure:"items"`
	Pattern     string         `json:"pattern,omitempty" mapstructure:"pattern"`

	// Numeric keywords stay untyped; strict mode yields json.Number.
	MinItems any `json:"minItems,omitempty" mapstructure:"minItems"`
	Minimum  any `json:"minimum,omitempty" mapstructure:"minimum"`
	Maximum  any `json:"maximum,omitempty" mapstructure:"maximum"`
}

// raw rebuilds the keyword map understood by schema.Decode.
func (m SchemaMetadata) raw() map[string]any {
	out := make(map[string]any)
	set := func(key string, v any, ok bool) {
		if ok {
			out[key] = v
		}
	}
	set("kind", m.Kind, m.Kind != "")
	set("bsonType", m.BSONType, m.BSONType != "")
	set("description", m.Description, m.Description != "")
	set("required", m.Required, len(m.Required) > 0)
	set("properties", m.Properties, len(m.Properties) > 0)
	set("items", m.Items, m.Items != nil)
	set("pattern", m.Pattern, m.Pattern != "")
	set("minItems", m.MinItems, m.MinItems != nil)
	set("minimum", m.Minimum, m.Minimum != nil)
	set("maximum", m.Maximum, m.Maximum != nil)
	return out
}
