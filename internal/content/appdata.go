// Package content is the single-writer sync layer over the course document
// store. The whole course aggregate is read and written as one unit; every
// mutation reconstructs and persists the full document, last write wins.
package content

import (
	"hash/fnv"

	"github.com/lop-hoc/lophoc-server/internal/tree"
)

// Reserved document row ids. Row 1 holds the course aggregate; row 99 held
// the visitor counter before it moved to an atomic cache increment and stays
// reserved so old deployments don't collide with a bank row.
const (
	AppDataRowID = 1
	VisitorRowID = 99
)

// AppData is the root aggregate: every tree node flat, the global resource
// list, and the landing page URL.
type AppData struct {
	Nodes           []tree.Node         `json:"nodes"`
	GlobalResources []tree.ResourceLink `json:"globalResources"`
	HomeURL         string              `json:"homeUrl,omitempty"`
}

// clone deep-copies the aggregate so store snapshots never alias caller state.
func (d AppData) clone() AppData {
	out := AppData{HomeURL: d.HomeURL}
	out.Nodes = make([]tree.Node, len(d.Nodes))
	copy(out.Nodes, d.Nodes)
	for i, n := range out.Nodes {
		if n.Resources != nil {
			rs := make([]tree.ResourceLink, len(n.Resources))
			copy(rs, n.Resources)
			out.Nodes[i].Resources = rs
		}
	}
	if d.GlobalResources != nil {
		out.GlobalResources = make([]tree.ResourceLink, len(d.GlobalResources))
		copy(out.GlobalResources, d.GlobalResources)
	}
	return out
}

// BankKey derives the document row id for a lesson's question bank from the
// lesson id. The hash is deterministic and folded away from the reserved
// rows so a bank can never land on row 1 or 99.
func BankKey(lessonID string) int64 {
	h := fnv.New32a()
	h.Write([]byte(lessonID))
	return 100 + int64(h.Sum32())
}
