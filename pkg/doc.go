// Package pkg provides the core libraries for GraphView.
//
// # Overview
//
// GraphView keeps an interactive, hierarchical graph synchronized with an
// external data source and preserves how the user arranged it between
// reloads and sessions. The pkg directory is organized into three areas:
//
//  1. Domain logic: data sets, synchronization, view state
//  2. Infrastructure: storage, state cache, observability
//  3. Output: snapshot export
//
// # Architecture
//
// The typical data flow:
//
//	Data Source (file, MongoDB)
//	         ↓
//	    [source] package (adapters produce a DataSet)
//	         ↓
//	    [graphsync] package (batched synchronization into a Canvas)
//	         ↓
//	    [viewstate] package (capture / apply / merge user arrangement)
//	         ↓
//	    interactive viewer, HTTP API, or [export] snapshot
//
// # Main Packages
//
// [graphsync] - The synchronization engine. Rebuilds a live canvas from a
// DataSet in one batched pass: parents before children, placeholders for
// dangling references, fresh edge identities per rebuild. The Reloader
// stamps overlapping reloads with generations so a slow response can never
// stomp newer data.
//
// [canvas] - The live graph model the engine mutates: elements, positions,
// camera, selection, collapsed groups, and the interaction lock.
//
// [viewstate] - Captures a canvas arrangement as a serializable value,
// applies one back, and merges two (overlay wins where it was captured).
//
// [tree] - Generic parent-pointer tree utility: depth computation,
// ancestor and descendant traversal. Unresolvable parents surface as roots.
//
// [source] - Data-source adapters behind a small registry. File and
// MongoDB adapters ship in subpackages.
//
// [storage] - Byte stores for persisted state: file (sharded paths),
// memory, and Redis.
//
// [statecache] - Keyed read-through cache over a store, with
// default-on-failure reads and read-your-write consistency.
//
// [export] - Canvas snapshots as Graphviz DOT and SVG, honoring collapsed
// groups and saved positions.
//
// [errors] - Structured errors with machine-readable codes shared by the
// CLI and the HTTP API.
//
// [observability] - Optional hooks for synchronization, source, and state
// events, registered at startup.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/graphsync/...          # Specific package
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [graphsync]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/graphsync
// [canvas]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/canvas
// [viewstate]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/viewstate
// [tree]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/tree
// [source]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/source
// [storage]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/storage
// [statecache]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/statecache
// [export]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/export
// [errors]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/graphview/pkg/observability
package pkg
