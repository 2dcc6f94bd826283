package reportserver

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"flowtap/internal/store"
	"flowtap/internal/stream"
)

// NewHandler builds the HTTP handler for the run history UI and its JSON
// endpoints.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.DB == nil {
		return nil, errors.New("reportserver: db is required")
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	h := &handler{cfg: cfg, pages: pages}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.serveIndex)
	mux.HandleFunc("GET /runs/{id}", h.serveRun)
	mux.HandleFunc("GET /api/runs", h.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.getRun)
	mux.HandleFunc("GET /api/workflows", h.listWorkflows)
	if cfg.DBPath != "" {
		mux.Handle("GET /data/db.duckdb", serveDatabase(cfg.DBPath))
	}
	return mux, nil
}

type handler struct {
	cfg   Config
	pages *template.Template
}

// serveIndex renders the archived run listing.
func (h *handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns(r.Context(), h.cfg.DB)
	if err != nil {
		http.Error(w, "list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	workflows, err := store.ListWorkflows(r.Context(), h.cfg.DB)
	if err != nil {
		http.Error(w, "list workflows: "+err.Error(), http.StatusInternalServerError)
		return
	}
	renderPage(w, h.pages, "index", indexData{Runs: runs, Workflows: workflows})
}

// serveRun renders one archived run with its blocks and channel text.
func (h *handler) serveRun(w http.ResponseWriter, r *http.Request) {
	snap, err := store.LoadRun(r.Context(), h.cfg.DB, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "load run: "+err.Error(), http.StatusInternalServerError)
		return
	}
	renderPage(w, h.pages, "run", runData{Snapshot: snap})
}

// listRuns returns the archived run listing as JSON.
func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns(r.Context(), h.cfg.DB)
	if err != nil {
		http.Error(w, "list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// getRun returns one archived run snapshot as JSON.
func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	snap, err := store.LoadRun(r.Context(), h.cfg.DB, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "load run: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, snap)
}

// listWorkflows returns stored workflow metadata as JSON.
func (h *handler) listWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := store.ListWorkflows(r.Context(), h.cfg.DB)
	if err != nil {
		http.Error(w, "list workflows: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, workflows)
}

// serveDatabase serves the raw database file from disk.
func serveDatabase(dbPath string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeFile(w, r, dbPath)
	})
}

type indexData struct {
	Runs      []store.RunListItem
	Workflows []store.WorkflowListItem
}

type runData struct {
	Snapshot stream.RunSnapshot
}

// writeJSON encodes a payload as a JSON response.
func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "encode response: "+err.Error(), http.StatusInternalServerError)
	}
}

// renderPage executes a named page template.
func renderPage(w http.ResponseWriter, pages *template.Template, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, "render page: "+err.Error(), http.StatusInternalServerError)
	}
}

// parsePages compiles the page templates.
func parsePages() (*template.Template, error) {
	pages := template.New("pages").Funcs(template.FuncMap{
		"joinText": func(parts []string) string { return strings.Join(parts, "") },
	})
	if _, err := pages.New("index").Parse(indexHTML); err != nil {
		return nil, err
	}
	if _, err := pages.New("run").Parse(runHTML); err != nil {
		return nil, err
	}
	return pages, nil
}
