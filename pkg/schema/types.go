package schema

import (
	"fmt"
	"regexp"
)

// Node is a declarative constraint tree. Kind is mandatory; every other field
// only has meaning for the kind it is documented against and is ignored
// otherwise (a Pattern on an object node is a no-op, not an error).
type Node struct {
	Kind        Kind
	Description string

	// Object constraints.
	Required   []string
	Properties []Property

	// Array constraints.
	Items    *Node
	MinItems *int

	// String constraints.
	Pattern string

	// Numeric constraints (number, integer). Both bounds are inclusive.
	Minimum *float64
	Maximum *float64

	re *regexp.Regexp
}

// Property is a named child schema. Properties keep their declared order,
// which is the order nested violations are reported in.
type Property struct {
	Name   string
	Schema *Node
}

// --- Factory Functions ---

// ObjectSchema creates an object node with the given properties.
func ObjectSchema(props ...Property) *Node {
	return &Node{Kind: KindObject, Properties: props}
}

// ArraySchema creates an array node whose elements must match items.
func ArraySchema(items *Node) *Node {
	return &Node{Kind: KindArray, Items: items}
}

// StringSchema creates a string node.
func StringSchema() *Node { return &Node{Kind: KindString} }

// NumberSchema creates a number node.
func NumberSchema() *Node { return &Node{Kind: KindNumber} }

// IntegerSchema creates an integer node.
func IntegerSchema() *Node { return &Node{Kind: KindInteger} }

// BooleanSchema creates a boolean node.
func BooleanSchema() *Node { return &Node{Kind: KindBoolean} }

// DateSchema creates a date node.
func DateSchema() *Node { return &Node{Kind: KindDate} }

// Prop pairs a property name with its schema.
func Prop(name string, node *Node) Property {
	return Property{Name: name, Schema: node}
}

// Require appends required keys and returns n.
func (n *Node) Require(keys ...string) *Node {
	n.Required = append(n.Required, keys...)
	return n
}

// WithPattern sets the string pattern and returns n.
func (n *Node) WithPattern(pattern string) *Node {
	n.Pattern = pattern
	n.re = nil
	return n
}

// WithMinimum sets the inclusive lower bound and returns n.
func (n *Node) WithMinimum(min float64) *Node {
	n.Minimum = &min
	return n
}

// WithMaximum sets the inclusive upper bound and returns n.
func (n *Node) WithMaximum(max float64) *Node {
	n.Maximum = &max
	return n
}

// WithMinItems sets the minimum array length and returns n.
func (n *Node) WithMinItems(count int) *Node {
	n.MinItems = &count
	return n
}

// WithDescription sets a free-form description and returns n.
func (n *Node) WithDescription(desc string) *Node {
	n.Description = desc
	return n
}

// Property returns the child schema declared for name.
func (n *Node) Property(name string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// Compile checks that the tree is well formed and precompiles string
// patterns. It must be called before the node is shared between goroutines;
// Validate works on uncompiled nodes too, at the cost of compiling patterns
// on every call.
func (n *Node) Compile() error {
	return n.compile("")
}

func (n *Node) compile(path string) error {
	if n == nil {
		return nil
	}
	if !n.Kind.Valid() {
		return fmt.Errorf("%s: unsupported kind %q", locate(path), n.Kind)
	}

	if n.Kind == KindString && n.Pattern != "" {
		re, err := regexp.Compile(n.Pattern)
		if err != nil {
			return fmt.Errorf("%s: invalid pattern: %w", locate(path), err)
		}
		n.re = re
	}

	// Inverted bounds are allowed; no value satisfies both.

	seen := make(map[string]bool, len(n.Properties))
	for _, p := range n.Properties {
		if seen[p.Name] {
			return fmt.Errorf("%s: duplicate property %q", locate(path), p.Name)
		}
		seen[p.Name] = true
		if p.Schema == nil {
			return fmt.Errorf("%s: property %q has no schema", locate(path), p.Name)
		}
		if err := p.Schema.compile(JoinKey(path, p.Name)); err != nil {
			return err
		}
	}

	if n.Items != nil {
		if err := n.Items.compile(path + "[]"); err != nil {
			return err
		}
	}
	return nil
}

// matcher returns the compiled pattern, compiling a private copy when the
// node was never compiled. A pattern that does not compile matches nothing
// and reports ok=false so the check is skipped.
func (n *Node) matcher() (*regexp.Regexp, bool) {
	if n.re != nil {
		return n.re, true
	}
	re, err := regexp.Compile(n.Pattern)
	if err != nil {
		return nil, false
	}
	return re, true
}

func locate(path string) string {
	if path == "" {
		return "schema root"
	}
	return path
}
