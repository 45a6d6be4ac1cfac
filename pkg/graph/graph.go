// Package graph holds the bipartite segment/entity graph used for ranking.
// Segment nodes carry provenance and text, entity nodes carry only their
// normalised identity, and every edge links a segment to an entity.
package graph

import (
	"fmt"
)

// NodeKind distinguishes segment nodes from entity nodes.
type NodeKind int

const (
	KindSegment NodeKind = iota
	KindEntity
)

func (k NodeKind) String() string {
	switch k {
	case KindSegment:
		return "segment"
	case KindEntity:
		return "entity"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Node identifies a node of either kind.
type Node struct {
	ID   string
	Kind NodeKind
}

// SegmentNode is the scored unit. Index is the position in which the node
// was first added and is the tie-breaker for equal scores.
type SegmentNode struct {
	ID       string
	Document string
	Page     int
	Text     string
	Index    int
}

type segmentEntry struct {
	SegmentNode
	entities []string
	linked   map[string]struct{}
}

type entityEntry struct {
	segments []string
}

// Graph is a simple undirected graph with segment and entity nodes. Segment
// and entity identities live in separate namespaces. A Graph is not safe for
// concurrent mutation.
type Graph struct {
	segments map[string]*segmentEntry
	entities map[string]*entityEntry
	order    []Node

	segmentOrder []string
	entityOrder  []string
	edges        int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		segments: make(map[string]*segmentEntry),
		entities: make(map[string]*entityEntry),
	}
}

// SegmentID returns the node identity of a page of a document.
func SegmentID(document string, page int) string {
	return fmt.Sprintf("%s#p%d", document, page)
}

// AddSegment adds the segment node for (document, page) and returns its id.
// If the node already exists its text is replaced and its position and
// edges are kept.
func (g *Graph) AddSegment(document string, page int, text string) string {
	id := SegmentID(document, page)
	if s, ok := g.segments[id]; ok {
		s.Text = text
		return id
	}

	g.segments[id] = &segmentEntry{
		SegmentNode: SegmentNode{
			ID:       id,
			Document: document,
			Page:     page,
			Text:     text,
			Index:    len(g.segmentOrder),
		},
		linked: make(map[string]struct{}),
	}
	g.segmentOrder = append(g.segmentOrder, id)
	g.order = append(g.order, Node{ID: id, Kind: KindSegment})
	return id
}

// AddEntity adds the entity node with the given identity if it does not
// exist yet. Empty identities are ignored and reported as false.
func (g *Graph) AddEntity(identity string) bool {
	if identity == "" {
		return false
	}
	if _, ok := g.entities[identity]; ok {
		return true
	}
	g.entities[identity] = &entityEntry{}
	g.entityOrder = append(g.entityOrder, identity)
	g.order = append(g.order, Node{ID: identity, Kind: KindEntity})
	return true
}

// AddEdge links a segment to an entity. Both nodes must exist. It reports
// whether a new edge was created; repeated calls are no-ops.
func (g *Graph) AddEdge(segmentID, entityID string) bool {
	s, ok := g.segments[segmentID]
	if !ok {
		return false
	}
	e, ok := g.entities[entityID]
	if !ok {
		return false
	}
	if _, exists := s.linked[entityID]; exists {
		return false
	}

	s.linked[entityID] = struct{}{}
	s.entities = append(s.entities, entityID)
	e.segments = append(e.segments, segmentID)
	g.edges++
	return true
}

// Segment returns the segment node with the given id.
func (g *Graph) Segment(id string) (SegmentNode, bool) {
	s, ok := g.segments[id]
	if !ok {
		return SegmentNode{}, false
	}
	return s.SegmentNode, true
}

// HasEntity reports whether an entity node with the given identity exists.
func (g *Graph) HasEntity(identity string) bool {
	_, ok := g.entities[identity]
	return ok
}

// HasEdge reports whether the segment and the entity are linked.
func (g *Graph) HasEdge(segmentID, entityID string) bool {
	s, ok := g.segments[segmentID]
	if !ok {
		return false
	}
	_, ok = s.linked[entityID]
	return ok
}

// Neighbors returns the entities linked to a segment in the order the edges
// were added.
func (g *Graph) Neighbors(segmentID string) []string {
	s, ok := g.segments[segmentID]
	if !ok {
		return nil
	}
	return append([]string(nil), s.entities...)
}

// Mentions returns the segments linked to an entity in the order the edges
// were added.
func (g *Graph) Mentions(entityID string) []string {
	e, ok := g.entities[entityID]
	if !ok {
		return nil
	}
	return append([]string(nil), e.segments...)
}

// Degree returns the number of distinct entities linked to a segment.
func (g *Graph) Degree(segmentID string) int {
	s, ok := g.segments[segmentID]
	if !ok {
		return 0
	}
	return len(s.entities)
}

// Segments returns all segment nodes in insertion order.
func (g *Graph) Segments() []SegmentNode {
	out := make([]SegmentNode, 0, len(g.segmentOrder))
	for _, id := range g.segmentOrder {
		out = append(out, g.segments[id].SegmentNode)
	}
	return out
}

// Entities returns all entity identities in insertion order.
func (g *Graph) Entities() []string {
	return append([]string(nil), g.entityOrder...)
}

// Nodes returns every node of both kinds in insertion order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.order...)
}

func (g *Graph) NumSegments() int { return len(g.segmentOrder) }
func (g *Graph) NumEntities() int { return len(g.entityOrder) }
func (g *Graph) NumNodes() int    { return len(g.order) }
func (g *Graph) NumEdges() int    { return g.edges }
