// Package openapi exports catalog schemas as an OpenAPI 3 document.
package openapi

import (
	"fmt"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

// Names of the shared component schemas.
const (
	ViolationSchema = "Violation"
	ResultSchema    = "ValidationResult"
	ErrorSchema     = "Error"
)

// Schema converts a node to an OpenAPI schema.
// date becomes a date-time string; arrays without items accept anything.
func Schema(n *schema.Node) *openapi3.Schema {
	if n == nil {
		return openapi3.NewSchema()
	}

	var s *openapi3.Schema
	switch n.Kind {
	case schema.KindObject:
		s = openapi3.NewObjectSchema()
		for _, p := range n.Properties {
			s.WithProperty(p.Name, Schema(p.Schema))
		}
		if len(n.Required) > 0 {
			s.Required = append([]string(nil), n.Required...)
		}
	case schema.KindArray:
		s = openapi3.NewArraySchema()
		if n.Items != nil {
			s.WithItems(Schema(n.Items))
		} else {
			s.WithItems(openapi3.NewSchema())
		}
		if n.MinItems != nil {
			s.WithMinItems(int64(*n.MinItems))
		}
	case schema.KindString:
		s = openapi3.NewStringSchema()
		if n.Pattern != "" {
			s.WithPattern(n.Pattern)
		}
	case schema.KindNumber:
		s = openapi3.NewFloat64Schema()
	case schema.KindInteger:
		s = openapi3.NewIntegerSchema()
	case schema.KindBoolean:
		s = openapi3.NewBoolSchema()
	case schema.KindDate:
		s = openapi3.NewDateTimeSchema()
	default:
		s = openapi3.NewSchema()
	}

	if n.Kind.Numeric() {
		if n.Minimum != nil {
			s.WithMin(*n.Minimum)
		}
		if n.Maximum != nil {
			s.WithMax(*n.Maximum)
		}
	}
	s.Description = n.Description
	return s
}

// Components maps every catalog schema, plus the response shapes of the
// HTTP API, to component schemas.
func Components(c *catalog.Catalog) openapi3.Components {
	schemas := openapi3.Schemas{}
	for name, node := range c.Snapshot() {
		schemas[name] = openapi3.NewSchemaRef("", Schema(node))
	}
	for name, s := range sharedSchemas() {
		schemas[name] = openapi3.NewSchemaRef("", s)
	}
	return openapi3.Components{Schemas: schemas}
}

func sharedSchemas() map[string]*openapi3.Schema {
	violation := openapi3.NewObjectSchema().
		WithProperty("path", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("code", openapi3.NewStringSchema().WithEnum(
			string(schema.CodeKind), string(schema.CodeRequired), string(schema.CodePattern),
			string(schema.CodeMinimum), string(schema.CodeMaximum), string(schema.CodeMinItems),
		))
	violation.Required = []string{"path", "message", "code"}

	document := openapi3.NewObjectSchema().
		WithProperty("index", openapi3.NewIntegerSchema()).
		WithPropertyRef("violations", &openapi3.SchemaRef{Value: openapi3.NewArraySchema().
			WithItems(violation)})

	result := openapi3.NewObjectSchema().
		WithProperty("collection", openapi3.NewStringSchema()).
		WithProperty("valid", openapi3.NewBoolSchema()).
		WithProperty("documents", openapi3.NewArraySchema().WithItems(document))
	result.Required = []string{"collection", "valid", "documents"}

	errSchema := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
	errSchema.Required = []string{"error"}

	return map[string]*openapi3.Schema{
		ViolationSchema: violation,
		ResultSchema:    result,
		ErrorSchema:     errSchema,
	}
}

// Document builds a complete OpenAPI description of the HTTP API for the
// schemas in c: one validate operation per collection.
func Document(c *catalog.Catalog, version string) *openapi3.T {
	components := Components(c)
	ref := func(name string) *openapi3.SchemaRef {
		return openapi3.NewSchemaRef("#/components/schemas/"+name, components.Schemas[name].Value)
	}
	jsonResponse := func(desc string, s *openapi3.SchemaRef) *openapi3.ResponseRef {
		return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchemaRef(s)}
	}

	paths := openapi3.NewPaths()

	health := openapi3.NewOperation()
	health.OperationID = "healthz"
	health.Summary = "Liveness probe"
	health.Responses = openapi3.NewResponses(openapi3.WithStatus(200,
		&openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Service is up")}))
	paths.Set("/healthz", &openapi3.PathItem{Get: health})

	list := openapi3.NewOperation()
	list.OperationID = "listSchemas"
	list.Summary = "List collection names"
	list.Responses = openapi3.NewResponses(openapi3.WithStatus(200,
		jsonResponse("Collection names", openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())))))
	paths.Set("/schemas", &openapi3.PathItem{Get: list})

	for _, name := range c.Names() {
		body := openapi3.NewSchema()
		body.OneOf = openapi3.SchemaRefs{
			ref(name),
			openapi3.NewSchemaRef("", openapi3.NewArraySchema().WithItems(components.Schemas[name].Value)),
		}

		op := openapi3.NewOperation()
		op.OperationID = "validate_" + name
		op.Summary = fmt.Sprintf("Validate %s documents", name)
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithDescription("One document or an array of documents").
			WithJSONSchema(body)}
		op.Responses = openapi3.NewResponses(
			openapi3.WithStatus(200, jsonResponse("Validation result", ref(ResultSchema))),
			openapi3.WithStatus(400, jsonResponse("Unreadable body", ref(ErrorSchema))),
		)
		paths.Set("/validate/"+name, &openapi3.PathItem{Post: op})
	}

	return &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       "schemata",
			Description: "Structural validation of collection documents",
			Version:     version,
		},
		Paths:      paths,
		Components: &components,
	}
}
