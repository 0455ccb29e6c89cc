package tree

// TreeNode is a node together with its children in display order, the shape
// the tree view consumes.
type TreeNode struct {
	Node
	Children []*TreeNode `json:"children,omitempty"`
}

// Build nests the flat node list into a forest of TreeNodes. Roots and every
// child list come back sorted by Order. Nodes reachable only through a
// malformed parent chain are dropped rather than rendered out of place.
func Build(nodes []Node) []*TreeNode {
	return buildChildren(nodes, "", make(map[string]struct{}))
}

func buildChildren(nodes []Node, parentID string, seen map[string]struct{}) []*TreeNode {
	var out []*TreeNode
	for _, n := range ChildrenOf(nodes, parentID) {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, &TreeNode{
			Node:     n,
			Children: buildChildren(nodes, n.ID, seen),
		})
	}
	return out
}
