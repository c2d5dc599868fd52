// Package graph maintains the skill graph and computes multi-hop
// compatibility scores. The graph itself is an in-memory adjacency
// arena keyed by dense integer ids; nodes and edges persist through the
// database layer and are reloaded on start.
package graph

import (
	"errors"
	"strings"
	"sync"
)

// ErrGraphQueryFailed indicates the backing store is unreachable.
// Callers degrade the graph score component to zero instead of aborting.
var ErrGraphQueryFailed = errors.New("graph query failed")

// DefaultMaxDepth bounds traversal for compatibility scoring.
const DefaultMaxDepth = 2

type edge struct {
	to     int
	kind   string
	weight float64
}

type node struct {
	name       string
	category   string
	popularity float64
}

// Graph is an in-memory directed weighted skill graph. All methods are
// safe for concurrent use; writes are idempotent upserts.
type Graph struct {
	mu    sync.RWMutex
	nodes []node
	index map[string]int
	adj   [][]edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

// Normalize canonicalizes a skill name for graph lookups.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ensureNode returns the id for a name, inserting a bare node if absent.
// Caller must hold the write lock.
func (g *Graph) ensureNode(name string) int {
	if id, ok := g.index[name]; ok {
		return id
	}
	id := len(g.nodes)
	g.nodes = append(g.nodes, node{name: name})
	g.adj = append(g.adj, nil)
	g.index[name] = id
	return id
}

// UpsertNode adds or updates a skill node. Idempotent.
func (g *Graph) UpsertNode(name, category string, popularity float64) {
	name = Normalize(name)
	if name == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.ensureNode(name)
	g.nodes[id].category = category
	g.nodes[id].popularity = popularity
}

// UpsertRelationship adds or updates a directed weighted edge.
// Weight is clamped to [0,1]. Duplicate (from, to, kind) edges are
// overwritten, not appended.
func (g *Graph) UpsertRelationship(from, to, kind string, weight float64) {
	from, to = Normalize(from), Normalize(to)
	if from == "" || to == "" || from == to {
		return
	}
	if weight < 0 {
		weight = 0
	} else if weight > 1 {
		weight = 1
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	fromID := g.ensureNode(from)
	toID := g.ensureNode(to)

	for i, e := range g.adj[fromID] {
		if e.to == toID && e.kind == kind {
			g.adj[fromID][i].weight = weight
			return
		}
	}
	g.adj[fromID] = append(g.adj[fromID], edge{to: toID, kind: kind, weight: weight})
}

// HasSkill reports whether a skill node exists.
func (g *Graph) HasSkill(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.index[Normalize(name)]
	return ok
}

// NodeCount returns the number of skill nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Category returns a node's category, or "" for unknown skills.
func (g *Graph) Category(name string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if id, ok := g.index[Normalize(name)]; ok {
		return g.nodes[id].category
	}
	return ""
}

// Popularity returns a node's popularity, or 0 for unknown skills.
func (g *Graph) Popularity(name string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if id, ok := g.index[Normalize(name)]; ok {
		return g.nodes[id].popularity
	}
	return 0
}

// RelatedSkills returns every skill reachable from the origin within
// maxDepth hops, mapped to its best decayed weight. Edge weights decay
// by multiplication along a path; when multiple paths reach the same
// skill the maximum decayed weight wins. The origin is excluded.
func (g *Graph) RelatedSkills(skill string, maxDepth int) map[string]float64 {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	origin, ok := g.index[Normalize(skill)]
	if !ok {
		return map[string]float64{}
	}

	best := map[int]float64{origin: 1.0}
	frontier := []int{origin}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []int
		for _, id := range frontier {
			for _, e := range g.adj[id] {
				w := best[id] * e.weight
				if w <= best[e.to] {
					continue
				}
				if _, seen := best[e.to]; !seen {
					next = append(next, e.to)
				}
				best[e.to] = w
			}
		}
		frontier = next
	}

	result := make(map[string]float64, len(best)-1)
	for id, w := range best {
		if id == origin {
			continue
		}
		result[g.nodes[id].name] = w
	}
	return result
}
