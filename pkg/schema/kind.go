package schema

import (
	"fmt"
	"strings"
)

// Kind is the expected structural category of a value.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
)

// kindAliases maps the BSON type names accepted by MongoDB $jsonSchema
// validators onto the canonical kinds.
var kindAliases = map[string]Kind{
	"object":  KindObject,
	"array":   KindArray,
	"string":  KindString,
	"number":  KindNumber,
	"double":  KindNumber,
	"decimal": KindNumber,
	"integer": KindInteger,
	"int":     KindInteger,
	"long":    KindInteger,
	"boolean": KindBoolean,
	"bool":    KindBoolean,
	"date":    KindDate,
}

// ParseKind resolves a kind name, accepting BSON aliases (int, long, double,
// decimal, bool).
func ParseKind(name string) (Kind, error) {
	k, ok := kindAliases[strings.TrimSpace(name)]
	if !ok {
		return "", fmt.Errorf("unsupported kind: %q", name)
	}
	return k, nil
}

// Valid reports whether k is one of the canonical kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindObject, KindArray, KindString, KindNumber, KindInteger, KindBoolean, KindDate:
		return true
	}
	return false
}

// Numeric reports whether bounds apply to k.
func (k Kind) Numeric() bool {
	return k == KindNumber || k == KindInteger
}

func (k Kind) String() string { return string(k) }
