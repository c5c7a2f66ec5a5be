package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAliasGraph_StronglyConnected(t *testing.T) {
	g := NewAliasGraph()
	for _, n := range []string{"a", "b", "c", "d"} {
		g.AddNode(n)
	}
	// a -> b -> c -> a, c -> d
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")
	g.AddEdge("c", "d")
	g.AddEdge("c", "d")

	assert.Equal(t, []string{"a", "d"}, g.Edges("c"))
	assert.ElementsMatch(t, [][]string{{"a", "b", "c"}, {"d"}}, g.StronglyConnected())
	assert.Equal(t, [][]string{{"a", "b", "c", "a"}}, g.Cycles())
}

func TestAliasGraph_ShortestCycleInsideComponent(t *testing.T) {
	g := NewAliasGraph()
	// a -> b -> c -> d -> a and a -> c: the shortest return is a -> c -> d -> a.
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("a", "c")
	g.AddEdge("c", "d")
	g.AddEdge("d", "a")

	assert.Equal(t, [][]string{{"a", "c", "d", "a"}}, g.Cycles())
}

func TestAliasGraph_SelfLoopAndAcyclic(t *testing.T) {
	g := NewAliasGraph()
	g.AddEdge("x", "x")
	g.AddEdge("y", "z")

	assert.Equal(t, [][]string{{"x", "x"}}, g.Cycles())
	assert.Equal(t, []string{"x", "y", "z"}, g.Nodes())
}
