package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/export"
	"github.com/matzehuels/graphview/pkg/statecache"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// graphResponse is the body of GET /api/graph.
type graphResponse struct {
	Nodes []graphNode `json:"nodes"`
	Edges []graphEdge `json:"edges"`
}

type graphNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Parent string `json:"parent,omitempty"`
}

type graphEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// errorResponse carries a machine-readable code alongside the message.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.version})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	elements := s.canvas.Elements()
	s.mu.Unlock()

	resp := graphResponse{Nodes: []graphNode{}, Edges: []graphEdge{}}
	for _, el := range elements {
		if el.IsEdge() {
			resp.Edges = append(resp.Edges, graphEdge{
				ID:     el.ID,
				Source: el.Source,
				Target: el.Target,
				Label:  el.Label,
			})
			continue
		}
		resp.Nodes = append(resp.Nodes, graphNode{
			ID:     el.ID,
			Label:  el.Label,
			Parent: el.Parent,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetViewState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	vs := viewstate.Collect(s.canvas)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, vs)
}

// handlePutViewState applies the posted view state to the live canvas and
// persists it so the next session starts from it.
func (s *Server) handlePutViewState(w http.ResponseWriter, r *http.Request) {
	var vs viewstate.ViewState
	if err := json.NewDecoder(r.Body).Decode(&vs); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeDecode, err, "decode view state"))
		return
	}

	s.mu.Lock()
	viewstate.Apply(s.canvas, vs)
	merged := viewstate.Collect(s.canvas)
	s.mu.Unlock()

	if s.states != nil {
		if err := s.writePersisted(r, merged); err != nil {
			writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "persist view state"))
			return
		}
	}
	writeJSON(w, http.StatusOK, merged)
}

// handleReload pulls a fresh data set from the configured source and
// rebuilds the canvas. The persisted view state for the source is applied
// under whatever the user adjusted in this session.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	justLoaded := viewstate.Empty()
	if s.states != nil {
		justLoaded = s.readPersisted(r)
	}

	s.mu.Lock()
	err := s.reloader.Reload(r.Context(), s.load, justLoaded)
	s.mu.Unlock()

	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	s.handleGraph(w, r)
}

func (s *Server) handleExportDOT(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	dot := export.ToDOT(s.canvas)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(dot))
}

func (s *Server) handleExportSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	dot := export.ToDOT(s.canvas)
	s.mu.Unlock()

	svg, err := export.RenderSVG(dot)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "render SVG"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

// statusForError maps the failure taxonomy onto HTTP statuses. A source
// failure is the upstream's fault, a structural failure is the data's, and a
// stale reload is a benign conflict.
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeSource, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	case errors.ErrCodeStructural, errors.ErrCodeInvalidDataSet:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeStale:
		return http.StatusConflict
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// readPersisted resolves the persisted view state for the configured source,
// falling back to an empty state.
func (s *Server) readPersisted(r *http.Request) viewstate.ViewState {
	return statecache.Read(s.states, r.Context(), s.stateKey, viewstate.Decode, viewstate.Empty)
}

func (s *Server) writePersisted(r *http.Request, vs viewstate.ViewState) error {
	return statecache.Write(s.states, r.Context(), s.stateKey, vs, viewstate.Encode)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}
