package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/markmhendrickson/site-mcp/internal/record"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://markmhendrickson.com/api"

// HTTPSource fetches dataset documents from the production JSON endpoints
// (<base>/posts.json and friends).
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch retrieves one dataset with a single GET. Non-200 statuses and
// malformed bodies are retrieval errors.
func (s *HTTPSource) Fetch(ctx context.Context, dataset Dataset) ([]record.Record, error) {
	url := fmt.Sprintf("%s/%s.json", s.baseURL, dataset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", dataset, err)
	}
	// Requesting gzip explicitly disables the transport's transparent
	// decoding, so the response is decompressed here.
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", dataset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", dataset, resp.StatusCode)
	}

	body := resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: gzip: %w", dataset, err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", dataset, err)
	}

	records, err := record.ParseList(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", dataset, err)
	}
	return records, nil
}
