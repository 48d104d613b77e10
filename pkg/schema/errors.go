package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Code classifies the constraint a Violation failed.
type Code string

const (
	CodeKind     Code = "kind"
	CodeRequired Code = "required"
	CodePattern  Code = "pattern"
	CodeMinimum  Code = "minimum"
	CodeMaximum  Code = "maximum"
	CodeMinItems Code = "minItems"
)

// Violation is a single constraint failure at a location in the document.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    Code   `json:"code"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

func (v Violation) Error() string { return v.String() }

// Violations is the ordered result of one validation call.
// A non-empty Violations can be returned as an error.
type Violations []Violation

func (vs Violations) Error() string {
	if len(vs) == 1 {
		return vs[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d violations:\n", len(vs))
	for i, v := range vs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, v.String())
	}
	return b.String()
}

// Err returns vs as an error, or nil when empty.
func (vs Violations) Err() error {
	if len(vs) == 0 {
		return nil
	}
	return vs
}

// Has reports whether any violation is located at path.
func (vs Violations) Has(path string) bool {
	for _, v := range vs {
		if v.Path == path {
			return true
		}
	}
	return false
}

// Paths returns the path of every violation, in order.
func (vs Violations) Paths() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Path
	}
	return out
}

// Strings renders each violation as "path: message".
func (vs Violations) Strings() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

// JoinKey extends path with an object key.
func JoinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// JoinIndex extends path with an array index.
func JoinIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
