package aggregates

import (
	"errors"
	"strings"

	"linkscope-backend/domain/core/entities"
	"linkscope-backend/domain/core/valueobjects"
)

// Snapshot is the aggregate root for a live simulation: the current node and
// edge sets together with their physics state. It is the only state that
// persists frame to frame. All mutation happens on a single session
// goroutine; the reconciler, the simulation engine and the drag handler are
// the only writers.
//
// Nodes are held in a stable insertion-ordered slice so force accumulation
// iterates deterministically, with an id index alongside for O(1) lookup.
type Snapshot struct {
	nodes     []*entities.Node
	nodeIndex map[string]int
	edges     []*entities.Edge
	edgeIndex map[string]int
	rootID    string
}

// NewSnapshot creates a snapshot seeded with the investigation's root node.
// A fresh investigation with zero findings contains exactly this node and no
// edges.
func NewSnapshot(root *entities.Node) (*Snapshot, error) {
	if root == nil {
		return nil, errors.New("root node required")
	}
	if !root.IsRoot() {
		return nil, errors.New("snapshot must be anchored at a root node")
	}
	s := &Snapshot{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
		rootID:    root.ID,
	}
	root.Locked = true
	s.nodes = append(s.nodes, root)
	s.nodeIndex[root.ID] = 0
	return s, nil
}

// RootID returns the id of the subject node.
func (s *Snapshot) RootID() string {
	return s.rootID
}

// Root returns the subject node.
func (s *Snapshot) Root() *entities.Node {
	n, _ := s.Node(s.rootID)
	return n
}

// Node returns the node with the given id, if present.
func (s *Snapshot) Node(id string) (*entities.Node, bool) {
	i, ok := s.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return s.nodes[i], true
}

// Nodes returns the live node slice in stable order. Callers on the session
// goroutine may mutate node physics state through it; they must not insert
// or remove entries.
func (s *Snapshot) Nodes() []*entities.Node {
	return s.nodes
}

// Edges returns the live edge slice.
func (s *Snapshot) Edges() []*entities.Edge {
	return s.edges
}

// NodeCount returns the number of nodes.
func (s *Snapshot) NodeCount() int {
	return len(s.nodes)
}

// EdgeCount returns the number of edges.
func (s *Snapshot) EdgeCount() int {
	return len(s.edges)
}

// HasEdge reports whether an edge with the given id exists.
func (s *Snapshot) HasEdge(id string) bool {
	_, ok := s.edgeIndex[id]
	return ok
}

// AddEdge appends a manual edge between two existing nodes. Duplicate
// suppression is symmetric: a pair already linked under the same label is
// rejected no matter which endpoint the existing edge lists first. Dangling
// endpoints are rejected too. Manual edges do not survive a rebuild; Replace
// regenerates the edge list from findings alone.
func (s *Snapshot) AddEdge(edge *entities.Edge) error {
	if edge == nil {
		return errors.New("edge cannot be nil")
	}
	if edge.Source == edge.Target {
		return errors.New("cannot link a node to itself")
	}
	if _, ok := s.nodeIndex[edge.Source]; !ok {
		return errors.New("edge source not present in snapshot")
	}
	if _, ok := s.nodeIndex[edge.Target]; !ok {
		return errors.New("edge target not present in snapshot")
	}
	if _, ok := s.edgeIndex[edge.ID]; ok {
		return errors.New("edge already exists")
	}
	reversed := valueobjects.DeriveEdgeID(edge.Target, edge.Source, edge.Label)
	if _, ok := s.edgeIndex[reversed]; ok {
		return errors.New("edge already exists")
	}
	s.edgeIndex[edge.ID] = len(s.edges)
	s.edges = append(s.edges, edge)
	return nil
}

// Replace swaps in a merged node list and a regenerated edge list, the
// reconciler's atomic commit. Edges referencing nodes absent from the new
// list are dropped silently: an expected transient of incremental rebuilds,
// not an error. Because the edge list is replaced wholesale with candidates
// regenerated from findings, manual edges added through AddEdge are discarded
// here. The root node must survive every replacement.
func (s *Snapshot) Replace(nodes []*entities.Node, edges []*entities.Edge) error {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if n == nil {
			return errors.New("node list contains nil entry")
		}
		if _, dup := index[n.ID]; dup {
			return errors.New("node list contains duplicate id " + n.ID)
		}
		index[n.ID] = i
	}
	if _, ok := index[s.rootID]; !ok {
		return errors.New("replacement drops the root node")
	}

	kept := make([]*entities.Edge, 0, len(edges))
	edgeIndex := make(map[string]int, len(edges))
	for _, e := range edges {
		if e == nil {
			continue
		}
		if _, ok := index[e.Source]; !ok {
			continue
		}
		if _, ok := index[e.Target]; !ok {
			continue
		}
		if _, dup := edgeIndex[e.ID]; dup {
			continue
		}
		edgeIndex[e.ID] = len(kept)
		kept = append(kept, e)
	}

	s.nodes = nodes
	s.nodeIndex = index
	s.edges = kept
	s.edgeIndex = edgeIndex
	return nil
}

// SelectorIndex builds the normalized-selector → node id lookup the builder
// uses for attachment resolution. Node ids embed their normalized value, so
// the index is derived rather than stored. The first node claiming a
// selector wins; later duplicates would carry the same id anyway.
func (s *Snapshot) SelectorIndex() map[string]string {
	index := make(map[string]string, len(s.nodes))
	for _, n := range s.nodes {
		if sep := strings.Index(n.ID, ":"); sep >= 0 {
			value := n.ID[sep+1:]
			if value == "" {
				continue
			}
			if _, taken := index[value]; !taken {
				index[value] = n.ID
			}
		}
	}
	return index
}

// Validate checks the aggregate's invariants: unique node ids, no edge with
// a dangling endpoint, root present and locked.
func (s *Snapshot) Validate() error {
	if _, ok := s.nodeIndex[s.rootID]; !ok {
		return errors.New("root node missing")
	}
	if root, _ := s.Node(s.rootID); !root.Locked {
		return errors.New("root node must stay locked")
	}
	for _, e := range s.edges {
		if _, ok := s.nodeIndex[e.Source]; !ok {
			return errors.New("edge references non-existent source node")
		}
		if _, ok := s.nodeIndex[e.Target]; !ok {
			return errors.New("edge references non-existent target node")
		}
	}
	return nil
}

// TotalKineticEnergy sums squared velocity magnitudes across all nodes, the
// quantity the engine's settle test thresholds on.
func (s *Snapshot) TotalKineticEnergy() float64 {
	var total float64
	for _, n := range s.nodes {
		total += n.Velocity.LengthSquared()
	}
	return total
}

// NodeKind re-exports the kind of a node by id, used by interaction code
// resolving click targets.
func (s *Snapshot) NodeKind(id string) (valueobjects.NodeKind, bool) {
	n, ok := s.Node(id)
	if !ok {
		return "", false
	}
	return n.Kind, true
}
