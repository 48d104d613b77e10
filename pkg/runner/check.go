package runner

import (
	"fmt"

	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/dataset"
	"github.com/aretw0/schemata/pkg/report"
	"github.com/aretw0/schemata/pkg/schema"
)

// Result is the outcome of validating raw documents against one collection.
// Documents holds every document, valid ones with an empty violation list.
type Result struct {
	Collection string                  `json:"collection"`
	Valid      bool                    `json:"valid"`
	Documents  []report.DocumentResult `json:"documents"`
}

// Check validates raw JSON (one document or an array of documents) against
// the schema of collection. It fails with catalog.ErrUnknownSchema or
// dataset.ErrUnreadable.
func Check(cat *catalog.Catalog, collection string, data []byte) (*Result, error) {
	node, err := cat.Get(collection)
	if err != nil {
		return nil, err
	}
	docs, err := dataset.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrUnreadable, err)
	}

	res := &Result{
		Collection: collection,
		Valid:      true,
		Documents:  make([]report.DocumentResult, 0, len(docs)),
	}
	for i, doc := range docs {
		vs := schema.Validate(doc, node, "")
		if vs == nil {
			vs = schema.Violations{}
		}
		if len(vs) > 0 {
			res.Valid = false
		}
		res.Documents = append(res.Documents, report.DocumentResult{Index: i, Violations: vs})
	}
	return res, nil
}
