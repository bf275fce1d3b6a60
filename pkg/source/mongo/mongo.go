// Package mongo implements the database-backed data-source adapter.
//
// Graphs live in two collections of one database: a nodes collection with
// documents {_id, label, parent?} and an edges collection with documents
// {source, target, label?}. The descriptor is a MongoDB connection URI; the
// database and collection names come from the adapter configuration.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/source"
)

// SourceType is the type string this adapter matches.
const SourceType = "mongo"

// DefaultTimeout bounds a single reload round trip.
const DefaultTimeout = 30 * time.Second

// Config names the database objects the adapter reads.
type Config struct {
	Database string // required
	Nodes    string // nodes collection, default "nodes"
	Edges    string // edges collection, default "edges"
	Timeout  time.Duration
}

// Adapter loads data sets from a MongoDB database.
type Adapter struct {
	cfg Config
}

// New creates a mongo adapter with the given configuration.
func New(cfg Config) *Adapter {
	if cfg.Nodes == "" {
		cfg.Nodes = "nodes"
	}
	if cfg.Edges == "" {
		cfg.Edges = "edges"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{cfg: cfg}
}

// Match reports whether sourceType names the mongo adapter.
func (a *Adapter) Match(sourceType string) bool {
	return sourceType == SourceType || sourceType == "mongodb"
}

// nodeDoc is the nodes-collection document shape.
type nodeDoc struct {
	ID     string `bson:"_id"`
	Label  string `bson:"label"`
	Parent string `bson:"parent,omitempty"`
}

// edgeDoc is the edges-collection document shape.
type edgeDoc struct {
	Source string `bson:"source"`
	Target string `bson:"target"`
	Label  string `bson:"label,omitempty"`
}

// Reload connects to the URI in descriptor and reads both collections into a
// fresh data set. The connection is closed before returning.
func (a *Adapter) Reload(ctx context.Context, descriptor string) (*graphsync.DataSet, error) {
	if a.cfg.Database == "" {
		return nil, fmt.Errorf("mongo adapter: database not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(descriptor))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", descriptor, err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(a.cfg.Database)

	ds := &graphsync.DataSet{Nodes: make(map[string]graphsync.Node)}

	cur, err := db.Collection(a.cfg.Nodes).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", a.cfg.Nodes, err)
	}
	var nodes []nodeDoc
	if err := cur.All(ctx, &nodes); err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.cfg.Nodes, err)
	}
	for _, n := range nodes {
		ds.Nodes[n.ID] = graphsync.Node{Label: n.Label, Parent: n.Parent}
	}

	cur, err = db.Collection(a.cfg.Edges).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", a.cfg.Edges, err)
	}
	var edges []edgeDoc
	if err := cur.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.cfg.Edges, err)
	}
	for _, e := range edges {
		ds.Edges = append(ds.Edges, graphsync.Edge{Source: e.Source, Target: e.Target, Label: e.Label})
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return ds, nil
}

// Ensure Adapter implements source.Adapter.
var _ source.Adapter = (*Adapter)(nil)
