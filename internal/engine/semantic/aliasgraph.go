package semantic

// AliasGraph records which property references which. Nodes and edges keep
// insertion order so every traversal is deterministic.
type AliasGraph struct {
	nodes []string
	index map[string]int
	edges map[string][]string
	seen  map[string]map[string]bool
}

func NewAliasGraph() *AliasGraph {
	return &AliasGraph{
		index: make(map[string]int),
		edges: make(map[string][]string),
		seen:  make(map[string]map[string]bool),
	}
}

func (g *AliasGraph) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// AddEdge records from -> to once.
func (g *AliasGraph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if g.seen[from] == nil {
		g.seen[from] = make(map[string]bool)
	}
	if g.seen[from][to] {
		return
	}
	g.seen[from][to] = true
	g.edges[from] = append(g.edges[from], to)
}

func (g *AliasGraph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

func (g *AliasGraph) Edges(from string) []string {
	return append([]string(nil), g.edges[from]...)
}

func (g *AliasGraph) HasEdge(from, to string) bool {
	return g.seen[from][to]
}

// StronglyConnected returns the strongly connected components using Tarjan's
// algorithm, each ordered by node insertion order.
func (g *AliasGraph) StronglyConnected() [][]string {
	t := &tarjan{
		graph:   g,
		indices: make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}
	for _, node := range g.nodes {
		if _, visited := t.indices[node]; !visited {
			t.strongConnect(node)
		}
	}
	return t.components
}

type tarjan struct {
	graph      *AliasGraph
	next       int
	indices    map[string]int
	lowlink    map[string]int
	onStack    map[string]bool
	stack      []string
	components [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.indices[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph.edges[v] {
		if _, visited := t.indices[w]; !visited {
			t.strongConnect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.indices[w])
		}
	}

	if t.lowlink[v] != t.indices[v] {
		return
	}
	var component []string
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		component = append(component, w)
		if w == v {
			break
		}
	}
	t.sortByInsertion(component)
	t.components = append(t.components, component)
}

func (t *tarjan) sortByInsertion(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && t.graph.index[names[j]] < t.graph.index[names[j-1]]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// Cycles returns one closed path per cyclic component: a component with more
// than one node, or a single node with a self-loop. Each path starts at the
// component's earliest node and is the shortest route back to it.
func (g *AliasGraph) Cycles() [][]string {
	var cycles [][]string
	for _, component := range g.StronglyConnected() {
		start := component[0]
		if len(component) == 1 && !g.HasEdge(start, start) {
			continue
		}
		members := make(map[string]bool, len(component))
		for _, name := range component {
			members[name] = true
		}
		if path, ok := g.shortestCycle(start, members); ok {
			cycles = append(cycles, path)
		}
	}
	return cycles
}

// shortestCycle runs a breadth-first search from start back to start, staying
// inside members.
func (g *AliasGraph) shortestCycle(start string, members map[string]bool) ([]string, bool) {
	if g.HasEdge(start, start) {
		return []string{start, start}, true
	}

	queue := []string{start}
	visited := map[string]bool{start: true}
	prev := make(map[string]string)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, next := range g.edges[curr] {
			if !members[next] {
				continue
			}
			if next == start {
				path := []string{start}
				for node := curr; node != start; node = prev[node] {
					path = append(path, node)
				}
				path = append(path, start)
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path, true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr
			queue = append(queue, next)
		}
	}
	return nil, false
}
