// Package tree holds the course content tree: folders and lessons with
// explicit sibling ordering. All operations are pure transformations over a
// snapshot of the node list; callers persist the returned snapshot as a whole.
package tree

import (
	"fmt"
	"sort"
)

// NodeType distinguishes folders from lessons.
type NodeType string

const (
	TypeFolder NodeType = "folder"
	TypeLesson NodeType = "lesson"
)

// ResourceLink is a supplementary link owned by exactly one lesson or by the
// global resource list, never both.
type ResourceLink struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Node is one entry in the content tree. ParentID is empty for roots. Order
// ranks a node among its siblings; stored values may be sparse or duplicated
// after partial writes, only their relative order is meaningful.
type Node struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Type      NodeType       `json:"type"`
	URL       string         `json:"url,omitempty"`
	ImageURL  string         `json:"imageUrl,omitempty"`
	ParentID  string         `json:"parentId,omitempty"`
	Order     int            `json:"order"`
	Resources []ResourceLink `json:"lessonResources,omitempty"`
}

// Direction selects which way a reorder moves a node.
type Direction int

const (
	Up Direction = iota
	Down
)

// ChildrenOf returns the nodes whose ParentID equals parentID, sorted by
// Order. The sort is stable so insertion order breaks ties.
func ChildrenOf(nodes []Node, parentID string) []Node {
	var out []Node
	for _, n := range nodes {
		if n.ParentID == parentID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Roots returns the top-level nodes in display order.
func Roots(nodes []Node) []Node {
	return ChildrenOf(nodes, "")
}

// CascadeDeleteIDs returns targetID plus the ids of every transitive
// descendant. The walk is iterative with a visited set, so a malformed
// parent relation containing a cycle produces an error instead of looping.
func CascadeDeleteIDs(nodes []Node, targetID string) (map[string]struct{}, error) {
	children := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		children[n.ParentID] = append(children[n.ParentID], n.ID)
	}

	ids := make(map[string]struct{})
	queue := []string{targetID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := ids[id]; seen {
			return nil, fmt.Errorf("cycle detected at node %s", id)
		}
		ids[id] = struct{}{}
		queue = append(queue, children[id]...)
	}
	return ids, nil
}

// RemoveSubtree returns the node list without targetID and its descendants.
func RemoveSubtree(nodes []Node, targetID string) ([]Node, error) {
	doomed, err := CascadeDeleteIDs(nodes, targetID)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if _, gone := doomed[n.ID]; !gone {
			out = append(out, n)
		}
	}
	return out, nil
}

// Reorder moves the node one position up or down among its siblings and
// returns a new snapshot. The sibling group is first renormalized to dense
// ranks 0..n-1, which tolerates sparse, duplicated, or stale stored orders;
// then the node's rank is swapped with its neighbor. Moving the first node up
// or the last node down returns the input unchanged.
func Reorder(nodes []Node, id string, dir Direction) []Node {
	var target *Node
	for i := range nodes {
		if nodes[i].ID == id {
			target = &nodes[i]
			break
		}
	}
	if target == nil {
		return nodes
	}

	siblings := ChildrenOf(nodes, target.ParentID)
	rank := -1
	for i, s := range siblings {
		if s.ID == id {
			rank = i
			break
		}
	}
	if rank < 0 {
		return nodes
	}

	neighbor := rank - 1
	if dir == Down {
		neighbor = rank + 1
	}
	if neighbor < 0 || neighbor >= len(siblings) {
		return nodes
	}

	// Dense rank per sibling, with the target and its neighbor swapped.
	newOrder := make(map[string]int, len(siblings))
	for i, s := range siblings {
		newOrder[s.ID] = i
	}
	newOrder[siblings[rank].ID] = neighbor
	newOrder[siblings[neighbor].ID] = rank

	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		if o, ok := newOrder[out[i].ID]; ok {
			out[i].Order = o
		}
	}
	return out
}

// NextOrder returns the Order to assign a node inserted under parentID:
// the current sibling count.
func NextOrder(nodes []Node, parentID string) int {
	count := 0
	for _, n := range nodes {
		if n.ParentID == parentID {
			count++
		}
	}
	return count
}
