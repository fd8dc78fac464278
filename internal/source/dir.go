package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/markmhendrickson/site-mcp/internal/record"
)

// DirSource reads dataset snapshots from a local data directory:
// <dir>/posts.json, or <dir>/posts.json.gz when only the compressed
// snapshot is present. A missing snapshot is a retrieval error.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Fetch(ctx context.Context, dataset Dataset) ([]record.Record, error) {
	data, err := s.readSnapshot(string(dataset))
	if err != nil {
		return nil, fmt.Errorf("read %s snapshot: %w", dataset, err)
	}

	records, err := record.ParseList(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", dataset, err)
	}
	return records, nil
}

func (s *DirSource) readSnapshot(name string) ([]byte, error) {
	plain := filepath.Join(s.dir, name+".json")
	data, err := os.ReadFile(plain)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	f, gzErr := os.Open(plain + ".gz")
	if gzErr != nil {
		if os.IsNotExist(gzErr) {
			// Report the uncompressed path; it is the primary location.
			return nil, err
		}
		return nil, gzErr
	}
	defer f.Close()

	gz, gzErr := gzip.NewReader(f)
	if gzErr != nil {
		return nil, fmt.Errorf("gzip: %w", gzErr)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
