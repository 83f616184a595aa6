// Package graph links relevant commits into an ordered dependency chain.
package graph

import (
	"strings"

	"github.com/masmgr/commitgraph/internal/relevance"
)

// Node is a commit in the dependency graph.
type Node struct {
	ID          string
	Label       string
	Highlighted bool
}

// Edge is a directed link between two sequence-adjacent commits.
type Edge struct {
	From string
	To   string
}

// DependencyGraph is a path graph over the relevant commits of one scan.
type DependencyGraph struct {
	Nodes []Node
	Edges []Edge
}

// Highlight marks the nodes for which match returns true.
func (g *DependencyGraph) Highlight(match func(id string) bool) int {
	if g == nil || match == nil {
		return 0
	}
	n := 0
	for i := range g.Nodes {
		g.Nodes[i].Highlighted = match(g.Nodes[i].ID)
		if g.Nodes[i].Highlighted {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the graph has no nodes.
func (g *DependencyGraph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

// Build creates one node per distinct commit id and one edge between each
// consecutive pair, directed from the earlier position to the later one.
//
// The input order is kept as is: edge direction follows the scan order of the
// history source (newest-first for git's default log order). A repeated id
// keeps its first position and is otherwise ignored.
func Build(commits []relevance.RelevantCommit) *DependencyGraph {
	g := &DependencyGraph{
		Nodes: make([]Node, 0, len(commits)),
		Edges: make([]Edge, 0, max(0, len(commits)-1)),
	}

	seen := make(map[string]struct{}, len(commits))
	for _, c := range commits {
		id := c.Commit.SHA
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if n := len(g.Nodes); n > 0 {
			g.Edges = append(g.Edges, Edge{From: g.Nodes[n-1].ID, To: id})
		}
		g.Nodes = append(g.Nodes, Node{ID: id, Label: Label(c.Commit.ShortSHA(), c.Commit.Message)})
	}

	return g
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Label joins a short id and a commit message into a single-line label.
func Label(shortID, message string) string {
	msg := strings.TrimSpace(lineBreaks.Replace(message))
	if msg == "" {
		return shortID
	}
	return shortID + " " + msg
}
