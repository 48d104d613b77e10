package schema

import (
	"strconv"
	"time"
)

// dateLayouts are the textual encodings accepted for the date kind.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
}

// Validate checks value against node and returns every violation found,
// depth-first in pre-order. path is the locator of value within the whole
// document; pass "" for a top-level document.
//
// A kind mismatch is reported once at path and nothing below it is checked.
// All other checks are cumulative. A nil node accepts anything.
func Validate(value Value, node *Node, path string) Violations {
	var out Violations
	validate(value, node, path, &out)
	return out
}

func validate(value Value, node *Node, path string, out *Violations) {
	if node == nil {
		return
	}

	if !matchesKind(value, node.Kind) {
		*out = append(*out, Violation{
			Path:    path,
			Message: "expected " + string(node.Kind),
			Code:    CodeKind,
		})
		return
	}

	switch node.Kind {
	case KindObject:
		validateObject(value, node, path, out)
	case KindArray:
		validateArray(value, node, path, out)
	case KindString:
		validateString(value, node, path, out)
	case KindNumber, KindInteger:
		validateBounds(value, node, path, out)
	}
}

func validateObject(value Value, node *Node, path string, out *Violations) {
	fields := value.Fields()

	for _, key := range node.Required {
		if _, ok := fields[key]; !ok {
			*out = append(*out, Violation{
				Path:    JoinKey(path, key),
				Message: "required",
				Code:    CodeRequired,
			})
		}
	}

	// Keys without a declared property are accepted as-is.
	for _, p := range node.Properties {
		child, ok := fields[p.Name]
		if !ok {
			continue
		}
		validate(child, p.Schema, JoinKey(path, p.Name), out)
	}
}

func validateArray(value Value, node *Node, path string, out *Violations) {
	items := value.Items()

	if node.Items != nil {
		for i, item := range items {
			validate(item, node.Items, JoinIndex(path, i), out)
		}
	}

	if node.MinItems != nil && len(items) < *node.MinItems {
		*out = append(*out, Violation{
			Path:    path,
			Message: "minItems " + strconv.Itoa(*node.MinItems),
			Code:    CodeMinItems,
		})
	}
}

func validateString(value Value, node *Node, path string, out *Violations) {
	if node.Pattern == "" {
		return
	}
	re, ok := node.matcher()
	if !ok {
		return
	}
	s, _ := value.AsString()
	if !re.MatchString(s) {
		*out = append(*out, Violation{
			Path:    path,
			Message: "pattern mismatch",
			Code:    CodePattern,
		})
	}
}

func validateBounds(value Value, node *Node, path string, out *Violations) {
	f, _ := value.AsFloat()

	if node.Minimum != nil && f < *node.Minimum {
		*out = append(*out, Violation{
			Path:    path,
			Message: "minimum " + formatBound(*node.Minimum),
			Code:    CodeMinimum,
		})
	}
	if node.Maximum != nil && f > *node.Maximum {
		*out = append(*out, Violation{
			Path:    path,
			Message: "maximum " + formatBound(*node.Maximum),
			Code:    CodeMaximum,
		})
	}
}

// matchesKind reports whether the runtime shape of value fits kind.
// Only plain key/value mappings count as objects.
func matchesKind(value Value, kind Kind) bool {
	switch kind {
	case KindObject:
		return value.Kind() == ObjectValue
	case KindArray:
		return value.Kind() == ArrayValue
	case KindString:
		return value.Kind() == StringValue
	case KindBoolean:
		return value.Kind() == BoolValue
	case KindNumber:
		return value.Kind() == NumberValue
	case KindInteger:
		return value.IsInteger()
	case KindDate:
		switch value.Kind() {
		case TimeValue:
			return true
		case StringValue:
			s, _ := value.AsString()
			_, ok := ParseDate(s)
			return ok
		}
		return false
	}
	// Unknown kinds only reach here on nodes that skipped Compile; they
	// constrain nothing.
	return true
}

// ParseDate parses s with the layouts accepted by the date kind.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
