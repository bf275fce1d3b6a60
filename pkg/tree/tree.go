// Package tree builds generic forests from flat item collections and provides
// pure traversal helpers over them.
//
// A forest is constructed in one of two modes:
//
//   - Parent-pointer mode ([Build]): every item reports the ID of its parent.
//     Items whose parent ID cannot be resolved become roots.
//   - Children-accessor mode ([BuildFromChildren]): root items report their
//     children directly and the forest is expanded top-down.
//
// The two modes are mutually exclusive by construction; pick the builder that
// matches how the source data encodes its hierarchy.
//
// Parent links are stored as indices into a shared node arena rather than raw
// pointers, which keeps construction safe in the presence of malformed parent
// references and keeps the wrapper structure serialization-friendly.
package tree

// Node wraps a single item of the forest. Children are held in insertion
// order. The parent link is a non-owning back-reference used only for
// ancestor lookup, never for traversal ownership.
//
// Nodes are created by [Build] or [BuildFromChildren]; the zero value is not
// usable.
type Node[T any] struct {
	Item     T          // The wrapped item
	Depth    int        // Distance from the root of its tree (root = 0)
	Children []*Node[T] // Ordered child nodes

	arena  *[]*Node[T] // Shared node arena for parent resolution
	parent int         // Index of the parent node in the arena, -1 for roots
}

// Parent returns the parent node, or nil for roots.
func (n *Node[T]) Parent() *Node[T] {
	if n.parent < 0 {
		return nil
	}
	return (*n.arena)[n.parent]
}

// Build constructs a forest from items in parent-pointer mode and returns the
// roots in input order.
//
// idOf must return a unique identifier per item. parentOf returns the parent
// identifier and true, or false for items with no parent. An item whose
// parent identifier does not resolve to any item in the collection becomes a
// root; a broken reference is not an error.
//
// Depth is computed for every node as the length of its ancestor chain. The
// ancestor walk is bounded by the collection size, so circular parent
// references cannot hang construction; nodes trapped in a parent cycle end up
// with a truncated chain instead.
func Build[T any](items []T, idOf func(T) string, parentOf func(T) (string, bool)) []*Node[T] {
	arena := make([]*Node[T], 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		n := &Node[T]{Item: item, parent: -1, arena: &arena}
		index[idOf(item)] = len(arena)
		arena = append(arena, n)
	}

	var roots []*Node[T]
	for i, item := range items {
		n := arena[i]
		if pid, ok := parentOf(item); ok {
			if pi, found := index[pid]; found {
				n.parent = pi
				arena[pi].Children = append(arena[pi].Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	for _, n := range arena {
		n.Depth = len(Ancestors(n))
	}

	return roots
}

// BuildFromChildren constructs a forest in children-accessor mode, expanding
// recursively from the given root items and assigning depth as it descends.
//
// The caller must guarantee the accessor describes an acyclic structure;
// cyclic child references are undefined behavior in this mode.
func BuildFromChildren[T any](roots []T, childrenOf func(T) []T) []*Node[T] {
	arena := make([]*Node[T], 0, len(roots))

	var expand func(item T, parent int, depth int) *Node[T]
	expand = func(item T, parent int, depth int) *Node[T] {
		n := &Node[T]{Item: item, Depth: depth, parent: parent, arena: &arena}
		self := len(arena)
		arena = append(arena, n)
		for _, child := range childrenOf(item) {
			n.Children = append(n.Children, expand(child, self, depth+1))
		}
		return n
	}

	out := make([]*Node[T], 0, len(roots))
	for _, item := range roots {
		out = append(out, expand(item, -1, 0))
	}
	return out
}

// Ancestors returns the ancestors of n ordered from farthest (the tree root)
// to nearest (the direct parent). Roots yield an empty slice.
//
// The walk is bounded by the arena size so a circular parent chain terminates
// with a truncated result rather than looping forever.
func Ancestors[T any](n *Node[T]) []*Node[T] {
	var chain []*Node[T]
	for cur := n.Parent(); cur != nil && len(chain) < len(*n.arena); cur = cur.Parent() {
		chain = append(chain, cur)
	}

	// Reverse: collected nearest-first, contract is farthest-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Descendants returns all nodes reachable through child links, in pre-order,
// excluding n itself.
func Descendants[T any](n *Node[T]) []*Node[T] {
	var out []*Node[T]
	for _, c := range n.Children {
		out = append(out, c)
		out = append(out, Descendants(c)...)
	}
	return out
}

// DescendantsAndSelf returns n followed by all its descendants in pre-order.
func DescendantsAndSelf[T any](n *Node[T]) []*Node[T] {
	return append([]*Node[T]{n}, Descendants(n)...)
}

// Flatten returns DescendantsAndSelf for every node in nodes, concatenated in
// input order.
func Flatten[T any](nodes []*Node[T]) []*Node[T] {
	var out []*Node[T]
	for _, n := range nodes {
		out = append(out, DescendantsAndSelf(n)...)
	}
	return out
}
