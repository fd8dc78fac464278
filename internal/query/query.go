// Package query implements the filter-and-shape layer between record sources
// and tool clients: fetch a dataset, apply an optional exact-match filter,
// and package the matches into a uniform response envelope. The layer holds
// no state across calls, so every operation is idempotent against an
// unchanged source.
package query

import (
	"context"

	"github.com/markmhendrickson/site-mcp/internal/record"
	"github.com/markmhendrickson/site-mcp/internal/source"
)

// AboutSlug identifies the home post returned by GetAbout.
const AboutSlug = "professional-mission"

// AboutMissing is the error message reported when no post carries AboutSlug.
const AboutMissing = "home post not found"

// ListResult is the envelope for the three list operations.
type ListResult struct {
	Success bool            `json:"success"`
	Data    []record.Record `json:"data"`
	Count   int             `json:"count"`
	Error   string          `json:"error,omitempty"`
}

// AboutResult is the envelope for GetAbout.
type AboutResult struct {
	Success bool           `json:"success"`
	Data    *record.Record `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Slug    string         `json:"slug,omitempty"`
}

// Counts reports per-dataset record counts in the GetAllContent envelope.
type Counts struct {
	Posts    int `json:"posts"`
	Links    int `json:"links"`
	Timeline int `json:"timeline"`
}

// AllContentResult is the envelope for GetAllContent. Errors carries one
// message per failed dataset; Success is true only when all three fetches
// succeeded, so a partial failure is never reported as overall success.
type AllContentResult struct {
	Success  bool              `json:"success"`
	Posts    []record.Record   `json:"posts"`
	Links    []record.Record   `json:"links"`
	Timeline []record.Record   `json:"timeline"`
	Counts   Counts            `json:"counts"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Service answers the five content operations against an injected source.
type Service struct {
	src source.Source
}

func New(src source.Source) *Service {
	return &Service{src: src}
}

// GetPosts returns post records, optionally filtered.
func (s *Service) GetPosts(ctx context.Context, filter record.Filter) ListResult {
	return s.list(ctx, source.Posts, filter)
}

// GetLinks returns link records, optionally filtered.
func (s *Service) GetLinks(ctx context.Context, filter record.Filter) ListResult {
	return s.list(ctx, source.Links, filter)
}

// GetTimeline returns timeline records, optionally filtered.
func (s *Service) GetTimeline(ctx context.Context, filter record.Filter) ListResult {
	return s.list(ctx, source.Timeline, filter)
}

func (s *Service) list(ctx context.Context, dataset source.Dataset, filter record.Filter) ListResult {
	records, err := s.src.Fetch(ctx, dataset)
	if err != nil {
		return ListResult{Success: false, Error: err.Error(), Data: []record.Record{}}
	}

	matches := record.Apply(records, filter)
	if matches == nil {
		matches = []record.Record{}
	}
	return ListResult{Success: true, Data: matches, Count: len(matches)}
}

// GetAllContent fetches all three datasets in a single envelope. Each
// dataset is fetched independently; a failure in one leaves the others
// intact and is reported per dataset.
func (s *Service) GetAllContent(ctx context.Context) AllContentResult {
	out := AllContentResult{
		Success:  true,
		Posts:    []record.Record{},
		Links:    []record.Record{},
		Timeline: []record.Record{},
	}

	for _, dataset := range source.All {
		records, err := s.src.Fetch(ctx, dataset)
		if err != nil {
			out.Success = false
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[string(dataset)] = err.Error()
			continue
		}
		switch dataset {
		case source.Posts:
			out.Posts = append(out.Posts, records...)
			out.Counts.Posts = len(records)
		case source.Links:
			out.Links = append(out.Links, records...)
			out.Counts.Links = len(records)
		case source.Timeline:
			out.Timeline = append(out.Timeline, records...)
			out.Counts.Timeline = len(records)
		}
	}
	return out
}

// GetAbout returns the home post: the first post in source order whose slug
// is AboutSlug.
func (s *Service) GetAbout(ctx context.Context) AboutResult {
	res := s.list(ctx, source.Posts, record.Filter{"slug": AboutSlug})
	if !res.Success {
		return AboutResult{Success: false, Error: res.Error, Slug: AboutSlug}
	}
	if res.Count == 0 {
		return AboutResult{Success: false, Error: AboutMissing, Slug: AboutSlug}
	}

	first := res.Data[0]
	return AboutResult{Success: true, Data: &first}
}
