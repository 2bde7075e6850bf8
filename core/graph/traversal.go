package graph

import (
	"sort"

	"github.com/google/uuid"
	"github.com/siherrmann/vaultgraph/model"
)

// Neighbor is a document directly linked to another one.
type Neighbor struct {
	Document   uuid.UUID `json:"document"`
	Similarity float64   `json:"similarity"`
	Reason     string    `json:"reason"`
}

// TraversalResult contains a document and its distance from the source
type TraversalResult struct {
	Document uuid.UUID
	Distance int
	Path     []uuid.UUID // Path from source to this document
}

// Adjacency indexes semantic edges by document. Edges are undirected.
type Adjacency struct {
	neighbors map[uuid.UUID][]Neighbor
}

// NewAdjacency indexes edges by both endpoints. Self edges, edges with a nil
// endpoint and repeated pairs are dropped.
func NewAdjacency(edges []model.SemanticEdge) *Adjacency {
	a := &Adjacency{neighbors: make(map[uuid.UUID][]Neighbor)}
	seen := make(map[model.EdgeKey]bool, len(edges))
	for _, e := range edges {
		if e.Source == e.Target || e.Source == uuid.Nil || e.Target == uuid.Nil || seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		a.neighbors[e.Source] = append(a.neighbors[e.Source], Neighbor{Document: e.Target, Similarity: e.Similarity, Reason: e.Reason})
		a.neighbors[e.Target] = append(a.neighbors[e.Target], Neighbor{Document: e.Source, Similarity: e.Similarity, Reason: e.Reason})
	}
	for id := range a.neighbors {
		n := a.neighbors[id]
		sort.SliceStable(n, func(i, j int) bool {
			return n[i].Similarity > n[j].Similarity
		})
	}
	return a
}

// Neighbors returns the documents linked to id, most similar first.
func (a *Adjacency) Neighbors(id uuid.UUID) []Neighbor {
	n := a.neighbors[id]
	out := make([]Neighbor, len(n))
	copy(out, n)
	return out
}

// Degree returns the number of documents linked to id.
func (a *Adjacency) Degree(id uuid.UUID) int {
	return len(a.neighbors[id])
}

// Nodes returns every document that has at least one edge.
func (a *Adjacency) Nodes() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a.neighbors))
	for id := range a.neighbors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// BFS performs breadth-first search from a source document.
// The source itself is the first result with distance 0.
func (a *Adjacency) BFS(sourceID uuid.UUID, maxHops int) []*TraversalResult {
	visited := map[uuid.UUID]bool{sourceID: true}
	queue := []TraversalResult{{
		Document: sourceID,
		Distance: 0,
		Path:     []uuid.UUID{sourceID},
	}}

	var results []*TraversalResult
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		if current.Distance >= maxHops {
			continue
		}

		for _, n := range a.neighbors[current.Document] {
			if visited[n.Document] {
				continue
			}
			visited[n.Document] = true

			newPath := make([]uuid.UUID, len(current.Path), len(current.Path)+1)
			copy(newPath, current.Path)
			newPath = append(newPath, n.Document)

			queue = append(queue, TraversalResult{
				Document: n.Document,
				Distance: current.Distance + 1,
				Path:     newPath,
			})
		}
	}

	return results
}

// DFS performs depth-first search from a source document, following the most
// similar neighbor first.
func (a *Adjacency) DFS(sourceID uuid.UUID, maxHops int) []*TraversalResult {
	visited := make(map[uuid.UUID]bool)
	var results []*TraversalResult
	a.dfsRecursive(sourceID, 0, maxHops, []uuid.UUID{sourceID}, visited, &results)
	return results
}

func (a *Adjacency) dfsRecursive(current uuid.UUID, distance int, maxHops int, path []uuid.UUID, visited map[uuid.UUID]bool, results *[]*TraversalResult) {
	visited[current] = true

	pathCopy := make([]uuid.UUID, len(path))
	copy(pathCopy, path)
	*results = append(*results, &TraversalResult{
		Document: current,
		Distance: distance,
		Path:     pathCopy,
	})

	if distance >= maxHops {
		return
	}

	for _, n := range a.neighbors[current] {
		if visited[n.Document] {
			continue
		}
		a.dfsRecursive(n.Document, distance+1, maxHops, append(pathCopy, n.Document), visited, results)
	}
}
