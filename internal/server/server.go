package server

import (
	"log"
	"net/http"

	"github.com/markmhendrickson/site-mcp/internal/query"
)

// New builds the HTTP facade: one endpoint per content operation plus a
// status probe.
func New(port string, sourceKind string, svc *query.Service) *http.Server {
	handlers := NewHandlers(svc, sourceKind)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts", handlers.HandlePosts)
	mux.HandleFunc("/api/links", handlers.HandleLinks)
	mux.HandleFunc("/api/timeline", handlers.HandleTimeline)
	mux.HandleFunc("/api/content", handlers.HandleContent)
	mux.HandleFunc("/api/about", handlers.HandleAbout)
	mux.HandleFunc("/api/status", handlers.HandleStatus)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	log.Printf("Server listening on http://localhost:%s", port)
	return srv
}
