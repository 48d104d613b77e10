package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ParseSchema parses a schema document written in YAML or JSON (JSON is
// accepted as YAML flow syntax). Properties keep the order they are written
// in. The returned node is compiled.
func ParseSchema(data []byte) (*Node, error) {
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := n.Compile(); err != nil {
		return nil, err
	}
	return &n, nil
}

// UnmarshalYAML decodes a schema mapping. Unknown keywords are ignored.
// "bsonType" is accepted in place of "kind".
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.AliasNode && value.Alias != nil {
		value = value.Alias
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: schema must be a mapping", value.Line)
	}

	var kindName, bsonType string
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i].Value, value.Content[i+1]

		var err error
		switch key {
		case "kind":
			err = val.Decode(&kindName)
		case "bsonType":
			err = val.Decode(&bsonType)
		case "description":
			err = val.Decode(&n.Description)
		case "required":
			err = val.Decode(&n.Required)
		case "pattern":
			err = val.Decode(&n.Pattern)
		case "minItems":
			var count int
			if err = val.Decode(&count); err == nil {
				n.MinItems = &count
			}
		case "minimum":
			var f float64
			if err = val.Decode(&f); err == nil {
				n.Minimum = &f
			}
		case "maximum":
			var f float64
			if err = val.Decode(&f); err == nil {
				n.Maximum = &f
			}
		case "items":
			child := &Node{}
			if err = child.UnmarshalYAML(val); err == nil {
				n.Items = child
			}
		case "properties":
			n.Properties, err = decodeYAMLProperties(val)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	return n.setKind(kindName, bsonType)
}

func decodeYAMLProperties(value *yaml.Node) ([]Property, error) {
	if value.Kind == yaml.AliasNode && value.Alias != nil {
		value = value.Alias
	}
	if value.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: properties must be a mapping", value.Line)
	}
	props := make([]Property, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		child := &Node{}
		if err := child.UnmarshalYAML(value.Content[i+1]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		props = append(props, Prop(name, child))
	}
	return props, nil
}

func (n *Node) setKind(kindName, bsonType string) error {
	name := kindName
	if name == "" {
		name = bsonType
	}
	if name == "" {
		return fmt.Errorf("kind is required")
	}
	k, err := ParseKind(name)
	if err != nil {
		return err
	}
	n.Kind = k
	return nil
}

// rawNode mirrors the schema keywords for mapstructure decoding.
type rawNode struct {
	Kind        string         `mapstructure:"kind"`
	BSONType    string         `mapstructure:"bsonType"`
	Description string         `mapstructure:"description"`
	Required    []string       `mapstructure:"required"`
	Properties  map[string]any `mapstructure:"properties"`
	Items       any            `mapstructure:"items"`
	MinItems    *int           `mapstructure:"minItems"`
	Pattern     string         `mapstructure:"pattern"`
	Minimum     *float64       `mapstructure:"minimum"`
	Maximum     *float64       `mapstructure:"maximum"`
}

// Decode builds a compiled node from an already decoded map, such as
// document metadata or a JSON object decoded into map[string]any. Map
// iteration order is lost in that form, so properties are sorted by name.
func Decode(raw any) (*Node, error) {
	n, err := decodeRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := n.Compile(); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeRaw(raw any) (*Node, error) {
	var r rawNode
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &r,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	n := &Node{
		Description: r.Description,
		Required:    r.Required,
		MinItems:    r.MinItems,
		Pattern:     r.Pattern,
		Minimum:     r.Minimum,
		Maximum:     r.Maximum,
	}
	if err := n.setKind(r.Kind, r.BSONType); err != nil {
		return nil, err
	}

	if r.Items != nil {
		child, err := decodeRaw(r.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		n.Items = child
	}

	names := make([]string, 0, len(r.Properties))
	for name := range r.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		child, err := decodeRaw(r.Properties[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		n.Properties = append(n.Properties, Prop(name, child))
	}

	return n, nil
}

// MarshalJSON encodes the node with properties in declared order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(data)
		return nil
	}

	for _, f := range n.fields() {
		if f.key == "properties" {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.WriteString(`"properties":{`)
			for i, p := range n.Properties {
				if i > 0 {
					buf.WriteByte(',')
				}
				k, _ := json.Marshal(p.Name)
				buf.Write(k)
				buf.WriteByte(':')
				child, err := p.Schema.MarshalJSON()
				if err != nil {
					return nil, fmt.Errorf("%s: %w", p.Name, err)
				}
				buf.Write(child)
			}
			buf.WriteByte('}')
			continue
		}
		if err := write(f.key, f.value); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON schema object, keeping property order.
func (n *Node) UnmarshalJSON(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		return n.UnmarshalYAML(doc.Content[0])
	}
	return n.UnmarshalYAML(&doc)
}

// MarshalYAML encodes the node with properties in declared order.
func (n *Node) MarshalYAML() (interface{}, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range n.fields() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.key}

		if f.key == "properties" {
			props := &yaml.Node{Kind: yaml.MappingNode}
			for _, p := range n.Properties {
				child, err := p.Schema.MarshalYAML()
				if err != nil {
					return nil, err
				}
				props.Content = append(props.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Name},
					child.(*yaml.Node))
			}
			out.Content = append(out.Content, key, props)
			continue
		}

		var val yaml.Node
		if items, ok := f.value.(*Node); ok {
			child, err := items.MarshalYAML()
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, key, child.(*yaml.Node))
			continue
		}
		if err := val.Encode(f.value); err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
		out.Content = append(out.Content, key, &val)
	}
	return out, nil
}

type nodeField struct {
	key   string
	value any
}

// fields lists the keywords that are set, in canonical output order.
func (n *Node) fields() []nodeField {
	fs := []nodeField{{"kind", string(n.Kind)}}
	if n.Description != "" {
		fs = append(fs, nodeField{"description", n.Description})
	}
	if len(n.Required) > 0 {
		fs = append(fs, nodeField{"required", n.Required})
	}
	if len(n.Properties) > 0 {
		fs = append(fs, nodeField{"properties", nil})
	}
	if n.Items != nil {
		fs = append(fs, nodeField{"items", n.Items})
	}
	if n.MinItems != nil {
		fs = append(fs, nodeField{"minItems", *n.MinItems})
	}
	if n.Pattern != "" {
		fs = append(fs, nodeField{"pattern", n.Pattern})
	}
	if n.Minimum != nil {
		fs = append(fs, nodeField{"minimum", *n.Minimum})
	}
	if n.Maximum != nil {
		fs = append(fs, nodeField{"maximum", *n.Maximum})
	}
	return fs
}
