// Package schema provides a structural validator for JSON-like documents.
//
// A document is represented as a Value, a closed variant over null, boolean,
// number, string, array, object and native date-time. A schema is a tree of
// Node values, each with a mandatory Kind and optional constraints that only
// apply to that kind (required keys and properties for objects, items and
// minItems for arrays, pattern for strings, minimum/maximum for numbers).
//
// Basic usage:
//
//	node, err := schema.ParseSchema([]byte(`
//	kind: object
//	required: [email]
//	properties:
//	  email: {kind: string, pattern: "^.+@.+\\..+$"}
//	`))
//	if err != nil {
//	    // malformed schema
//	}
//
//	doc, err := schema.ParseJSON([]byte(`{"email": "bad-email"}`))
//	if err != nil {
//	    // unreadable document
//	}
//
//	for _, v := range schema.Validate(doc, node, "") {
//	    fmt.Println(v) // email: pattern mismatch
//	}
//
// Validate never fails: every mismatch is reported as a Violation and the
// walk continues, so a single call returns the complete list. Only a kind
// mismatch stops the descent below the mismatched value.
//
// Validate holds no state between calls and never mutates its inputs, so
// independent documents can be validated from concurrent goroutines.
package schema
