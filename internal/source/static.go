package source

import (
	"context"

	"github.com/markmhendrickson/site-mcp/internal/record"
)

// Static serves fixed in-memory datasets. It exists so the query layer can
// run against a fake source in tests.
type Static struct {
	Data map[Dataset][]record.Record
	Errs map[Dataset]error
}

func (s *Static) Fetch(ctx context.Context, dataset Dataset) ([]record.Record, error) {
	if err := s.Errs[dataset]; err != nil {
		return nil, err
	}
	return s.Data[dataset], nil
}
