package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/statecache"
	"github.com/matzehuels/graphview/pkg/storage"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

func quietLogger() *log.Logger {
	l := log.New(os.Stderr)
	l.SetLevel(log.FatalLevel)
	return l
}

// testServer wires a server around an in-memory canvas preloaded from ds.
func testServer(t *testing.T, ds *graphsync.DataSet, loadErr error) (*Server, canvas.Canvas) {
	t.Helper()

	logger := quietLogger()
	c := canvas.NewMemory()
	n := 0
	engine := graphsync.NewEngine(logger, graphsync.WithEdgeID(func() string {
		n++
		return fmt.Sprintf("edge-%d", n)
	}))
	reloader := graphsync.NewReloader(engine, c, logger)

	load := func(ctx context.Context) (*graphsync.DataSet, error) {
		if loadErr != nil {
			return nil, loadErr
		}
		return ds, nil
	}

	states := statecache.New(storage.NewMemoryStore(), logger)
	srv := NewServer(Config{
		Canvas:   c,
		Reloader: reloader,
		Load:     load,
		States:   states,
		StateKey: "viewstate/test",
		Version:  "1.2.3",
		Logger:   logger,
	})

	if loadErr == nil {
		if err := reloader.Reload(context.Background(), load, viewstate.Empty()); err != nil {
			t.Fatalf("seed reload: %v", err)
		}
	}
	return srv, c
}

func sampleDataSet() *graphsync.DataSet {
	return &graphsync.DataSet{
		Nodes: map[string]graphsync.Node{
			"a": {Label: "Alpha"},
			"b": {Label: "Beta", Parent: "a"},
		},
		Edges: []graphsync.Edge{{Source: "a", Target: "b"}},
	}
}

func doRequest(t *testing.T, srv *Server, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t, sampleDataSet(), nil)

	w := doRequest(t, srv, "GET", "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp healthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.3" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestGetGraph(t *testing.T) {
	srv, _ := testServer(t, sampleDataSet(), nil)

	w := doRequest(t, srv, "GET", "/api/graph", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp graphResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(resp.Nodes))
	}
	if len(resp.Edges) != 1 {
		t.Errorf("expected 1 edge, got %d", len(resp.Edges))
	}
	if resp.Edges[0].Source != "a" || resp.Edges[0].Target != "b" {
		t.Errorf("unexpected edge: %+v", resp.Edges[0])
	}
}

func TestViewStateRoundTrip(t *testing.T) {
	srv, c := testServer(t, sampleDataSet(), nil)

	vs := viewstate.ViewState{
		Positions: map[string]viewstate.Point{"a": {X: 10, Y: 20}},
		Selected:  []string{"b"},
	}
	body, _ := json.Marshal(vs)

	w := doRequest(t, srv, "PUT", "/api/viewstate", bytes.NewReader(body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if p, ok := c.Position("a"); !ok || p.X != 10 || p.Y != 20 {
		t.Errorf("position not applied to canvas: %v %v", p, ok)
	}

	w = doRequest(t, srv, "GET", "/api/viewstate", nil)
	var got viewstate.ViewState
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Positions["a"].X != 10 {
		t.Errorf("expected persisted position, got %+v", got.Positions)
	}
	if len(got.Selected) != 1 || got.Selected[0] != "b" {
		t.Errorf("expected selection [b], got %v", got.Selected)
	}
}

func TestPutViewState_BadBody(t *testing.T) {
	srv, _ := testServer(t, sampleDataSet(), nil)

	w := doRequest(t, srv, "PUT", "/api/viewstate", strings.NewReader("not json"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "DECODE_ERROR" {
		t.Errorf("expected DECODE_ERROR, got %q", resp.Code)
	}
}

func TestReload(t *testing.T) {
	srv, c := testServer(t, sampleDataSet(), nil)

	// Adjust a position in-session; it must survive the reload.
	c.SetPosition("a", canvas.Point{X: 5, Y: 5})

	w := doRequest(t, srv, "POST", "/api/reload", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if p, ok := c.Position("a"); !ok || p.X != 5 {
		t.Errorf("in-session position lost across reload: %v %v", p, ok)
	}
}

func TestReload_SourceError(t *testing.T) {
	srv, _ := testServer(t, nil, fmt.Errorf("connection refused"))

	w := doRequest(t, srv, "POST", "/api/reload", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "SOURCE_ERROR" {
		t.Errorf("expected SOURCE_ERROR, got %q", resp.Code)
	}
}

func TestReload_StructuralError(t *testing.T) {
	bad := &graphsync.DataSet{
		Nodes: map[string]graphsync.Node{
			"a": {Label: "A", Parent: "b"},
			"b": {Label: "B", Parent: "a"},
		},
	}
	srv, _ := testServer(t, sampleDataSet(), nil)
	srv.load = func(ctx context.Context) (*graphsync.DataSet, error) { return bad, nil }

	w := doRequest(t, srv, "POST", "/api/reload", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestExportDOT(t *testing.T) {
	srv, _ := testServer(t, sampleDataSet(), nil)

	w := doRequest(t, srv, "GET", "/api/export.dot", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "digraph G {") {
		t.Errorf("expected DOT output, got %q", w.Body.String())
	}
}
