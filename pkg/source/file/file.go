// Package file implements the file-based data-source adapter.
//
// The descriptor is a path to a JSON data set in the persisted layout
// (see graphsync.ReadDataSet).
package file

import (
	"context"

	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/source"
)

// SourceType is the type string this adapter matches.
const SourceType = "file"

// Adapter loads data sets from JSON files.
type Adapter struct{}

// New creates a file adapter.
func New() *Adapter { return &Adapter{} }

// Match reports whether sourceType names the file adapter.
func (a *Adapter) Match(sourceType string) bool {
	return sourceType == SourceType
}

// Reload reads the data set at the descriptor path.
func (a *Adapter) Reload(ctx context.Context, descriptor string) (*graphsync.DataSet, error) {
	return graphsync.ReadDataSetFile(descriptor)
}

// Ensure Adapter implements source.Adapter.
var _ source.Adapter = (*Adapter)(nil)
