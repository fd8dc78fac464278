package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/markmhendrickson/site-mcp/internal/query"
	"github.com/markmhendrickson/site-mcp/internal/record"
	"github.com/markmhendrickson/site-mcp/internal/source"
)

type Handlers struct {
	svc        *query.Service
	sourceKind string
}

func NewHandlers(svc *query.Service, sourceKind string) *Handlers {
	return &Handlers{
		svc:        svc,
		sourceKind: sourceKind,
	}
}

func (h *Handlers) HandlePosts(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, h.svc.GetPosts)
}

func (h *Handlers) HandleLinks(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, h.svc.GetLinks)
}

func (h *Handlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, h.svc.GetTimeline)
}

func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request, op func(context.Context, record.Filter) query.ListResult) {
	filter, err := parseFilters(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res := op(r.Context(), filter)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, res)
}

func (h *Handlers) HandleContent(w http.ResponseWriter, r *http.Request) {
	res := h.svc.GetAllContent(r.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, res)
}

func (h *Handlers) HandleAbout(w http.ResponseWriter, r *http.Request) {
	res := h.svc.GetAbout(r.Context())
	status := http.StatusOK
	if !res.Success {
		if res.Error == query.AboutMissing {
			status = http.StatusNotFound
		} else {
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, res)
}

type statusResponse struct {
	Source   string   `json:"source"`
	Datasets []string `json:"datasets"`
}

func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	datasets := make([]string, 0, len(source.All))
	for _, d := range source.All {
		datasets = append(datasets, string(d))
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Source:   h.sourceKind,
		Datasets: datasets,
	})
}

// parseFilters decodes the optional `filters` query parameter, a URL-encoded
// JSON object of flat key-to-scalar pairs.
func parseFilters(r *http.Request) (record.Filter, error) {
	raw := r.URL.Query().Get("filters")
	if raw == "" {
		return nil, nil
	}

	var f record.Filter
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("invalid filters parameter: %w", err)
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
