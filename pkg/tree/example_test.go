package tree_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/graphview/pkg/tree"
)

type item struct {
	ID     string
	Parent string
}

func ExampleBuild() {
	items := []item{
		{ID: "platform"},
		{ID: "gateway", Parent: "platform"},
		{ID: "orders", Parent: "platform"},
		{ID: "orders-db", Parent: "orders"},
		{ID: "ghost", Parent: "missing"}, // unresolved parent surfaces as a root
	}

	roots := tree.Build(items,
		func(it item) string { return it.ID },
		func(it item) (string, bool) { return it.Parent, it.Parent != "" },
	)

	for _, n := range tree.Flatten(roots) {
		fmt.Printf("%s%s\n", strings.Repeat("  ", n.Depth), n.Item.ID)
	}
	// Output:
	// platform
	//   gateway
	//   orders
	//     orders-db
	// ghost
}

func ExampleAncestors() {
	items := []item{
		{ID: "a"},
		{ID: "b", Parent: "a"},
		{ID: "c", Parent: "b"},
	}

	roots := tree.Build(items,
		func(it item) string { return it.ID },
		func(it item) (string, bool) { return it.Parent, it.Parent != "" },
	)

	// Walk down to the deepest node.
	leaf := roots[0].Children[0].Children[0]
	for _, anc := range tree.Ancestors(leaf) {
		fmt.Println(anc.Item.ID)
	}
	// Output:
	// a
	// b
}
