// Package source supplies the raw ordered record collections for each
// dataset. All implementations satisfy the same contract: a single fetch
// attempt per call, returning the dataset in source order or a retrieval
// error. No retries, no caching.
package source

import (
	"context"

	"github.com/markmhendrickson/site-mcp/internal/record"
)

// Dataset names a queryable collection.
type Dataset string

const (
	Posts    Dataset = "posts"
	Links    Dataset = "links"
	Timeline Dataset = "timeline"
)

// All lists every dataset, in the order get_all_content reports them.
var All = []Dataset{Posts, Links, Timeline}

// Valid reports whether d names a known dataset.
func (d Dataset) Valid() bool {
	return d == Posts || d == Links || d == Timeline
}

// Source is the record-source contract the query layer depends on.
type Source interface {
	Fetch(ctx context.Context, dataset Dataset) ([]record.Record, error)
}
