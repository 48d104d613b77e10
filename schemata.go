package schemata

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/report"
	"github.com/aretw0/schemata/pkg/runner"
	"github.com/aretw0/schemata/pkg/schema"
)

// Validator is the high-level entry point for the schemata library.
// It wraps a catalog and a runner behind a small API for consumers.
type Validator struct {
	catalog    *catalog.Catalog
	schemaDir  string
	logger     *slog.Logger
	runnerOpts []runner.Option
}

// Option configures a Validator.
type Option func(*Validator)

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(v *Validator) {
		v.catalog = c
	}
}

// WithSchemaDir merges the schema files of dir over the catalog.
func WithSchemaDir(dir string) Option {
	return func(v *Validator) {
		v.schemaDir = dir
	}
}

// WithLogger sets the logger used by dataset runs.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithRunnerOptions passes extra options (store, publisher, hooks) to every
// dataset run.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(v *Validator) {
		v.runnerOpts = append(v.runnerOpts, opts...)
	}
}

// New creates a Validator over the built-in schemas unless WithCatalog is given.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.catalog == nil {
		v.catalog = catalog.Builtin()
	}
	if v.schemaDir != "" {
		extra, err := catalog.LoadDir(v.schemaDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema dir: %w", err)
		}
		// The caller's catalog is left untouched.
		merged := catalog.New()
		merged.Merge(v.catalog)
		merged.Merge(extra)
		v.catalog = merged
	}
	return v, nil
}

// Catalog returns the schemas in use.
func (v *Validator) Catalog() *catalog.Catalog {
	return v.catalog
}

// Validate checks one decoded document (maps, slices and scalars as produced
// by encoding/json or yaml.v3, or a schema.Value) against collection.
// Violations are data, not errors: err is only set for an unknown collection
// or a host value that cannot be represented.
func (v *Validator) Validate(collection string, doc any) (schema.Violations, error) {
	node, err := v.catalog.Get(collection)
	if err != nil {
		return nil, err
	}
	value, err := schema.FromAny(doc)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return schema.Validate(value, node, ""), nil
}

// ValidateJSON checks raw JSON, one document or an array of documents.
func (v *Validator) ValidateJSON(collection string, data []byte) (*runner.Result, error) {
	return runner.Check(v.catalog, collection, data)
}

// ValidateDataset runs over every collection file of dir.
func (v *Validator) ValidateDataset(ctx context.Context, dir string) (*report.Report, error) {
	opts := append([]runner.Option{
		runner.WithCatalog(v.catalog),
		runner.WithLogger(v.logger),
	}, v.runnerOpts...)
	return runner.New(opts...).Run(ctx, dir)
}
