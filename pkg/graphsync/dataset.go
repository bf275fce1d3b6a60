// Package graphsync rebuilds a live canvas from a raw node/edge data set and
// reapplies view state across the reload boundary.
//
// The synchronization engine is the only component that mutates the canvas
// wholesale. It owns the ordering obligations the rendering engine imposes
// (a parent element must exist before a child is attached, and the parent
// link is immutable after creation), synthesizes placeholder nodes for
// references the input data omitted, and defers redraw until the whole
// rebuild is done so a reload appears as a single visual swap.
package graphsync

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Node is one vertex of a raw data set. The identifier lives in the
// DataSet.Nodes key, not in the record.
type Node struct {
	Label  string `json:"label"`
	Parent string `json:"parent,omitempty"` // ID of the parent node, empty for roots
}

// Edge is a directed labeled connection between two node identifiers.
// Edges reference nodes; they do not own them. Edge identifiers are not part
// of the input - the engine generates a fresh one on every synchronization.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// DataSet is the unit a data-source adapter produces and the engine
// consumes: a node mapping keyed by identifier plus an ordered edge list.
//
// A DataSet is constructed fresh on every reload and must be treated as
// immutable once handed to the engine. It is not required to be complete:
// parent references and edge endpoints may name nodes that are absent, and
// the engine recovers by synthesizing placeholders.
type DataSet struct {
	Nodes map[string]Node `json:"nodes"`
	Edges []Edge          `json:"edges"`
}

// Validate checks the structural minimum the codec guarantees: no empty node
// identifiers and no edge with an empty endpoint. Dangling references are
// allowed; they are the engine's job, not the codec's.
func (ds *DataSet) Validate() error {
	for id := range ds.Nodes {
		if id == "" {
			return fmt.Errorf("node with empty identifier")
		}
	}
	for i, e := range ds.Edges {
		if e.Source == "" || e.Target == "" {
			return fmt.Errorf("edge %d: empty endpoint", i)
		}
	}
	return nil
}

// ReadDataSet decodes a JSON data set from r.
//
// The input must be a JSON object of the persisted layout:
//
//	{
//	  "nodes": { "a": {"label": "A"}, "b": {"label": "B", "parent": "a"} },
//	  "edges": [ {"source": "a", "target": "b", "label": "uses"} ]
//	}
//
// ReadDataSet returns an error if the JSON is malformed or an edge has an
// empty endpoint. References to absent nodes are not an error.
func ReadDataSet(r io.Reader) (*DataSet, error) {
	var ds DataSet
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if ds.Nodes == nil {
		ds.Nodes = make(map[string]Node)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ReadDataSetFile reads the JSON file at path and returns the decoded data
// set. The error wraps the underlying cause with the file path for context.
func ReadDataSetFile(path string) (*DataSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := ReadDataSet(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

// WriteDataSet writes a data set as indented JSON to w.
func WriteDataSet(ds *DataSet, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteDataSetFile writes a data set to a JSON file.
// The file is created with 0644 permissions.
func WriteDataSetFile(ds *DataSet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDataSet(ds, f)
}
