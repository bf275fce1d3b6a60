package mongo

import (
	"context"
	"testing"
	"time"
)

func TestMatch(t *testing.T) {
	a := New(Config{Database: "x"})
	if !a.Match("mongo") || !a.Match("mongodb") {
		t.Error("should match mongo source types")
	}
	if a.Match("file") {
		t.Error("should not match file")
	}
}

func TestConfigDefaults(t *testing.T) {
	a := New(Config{Database: "x"})
	if a.cfg.Nodes != "nodes" || a.cfg.Edges != "edges" {
		t.Errorf("collection defaults = %q/%q, want nodes/edges", a.cfg.Nodes, a.cfg.Edges)
	}
	if a.cfg.Timeout != DefaultTimeout {
		t.Errorf("timeout default = %v, want %v", a.cfg.Timeout, DefaultTimeout)
	}

	b := New(Config{Database: "x", Nodes: "vertices", Timeout: time.Second})
	if b.cfg.Nodes != "vertices" || b.cfg.Timeout != time.Second {
		t.Error("explicit config values should be kept")
	}
}

func TestReloadRequiresDatabase(t *testing.T) {
	a := New(Config{})
	if _, err := a.Reload(context.Background(), "mongodb://localhost"); err == nil {
		t.Error("unconfigured database should fail before connecting")
	}
}
