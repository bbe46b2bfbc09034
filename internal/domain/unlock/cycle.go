package unlock

import "curriculum/internal/domain/course"

// Graph maps a course ID to its direct prerequisites, in document order.
type Graph struct {
	order []string
	edges map[string][]string
}

// NewGraph builds a prerequisite graph from catalog courses.
// PRE: none
// POST: node order follows the course slice
func NewGraph(courses []course.Course) *Graph {
	g := &Graph{edges: make(map[string][]string, len(courses))}
	for _, c := range courses {
		g.order = append(g.order, c.ID)
		g.edges[c.ID] = append([]string(nil), c.Prerequisites...)
	}
	return g
}

// WithPrerequisites returns a copy of g where id requires prereqs instead.
// PRE: id is a node of g
// POST: g is not modified
func (g *Graph) WithPrerequisites(id string, prereqs []string) *Graph {
	out := &Graph{order: g.order, edges: make(map[string][]string, len(g.edges))}
	for k, v := range g.edges {
		out.edges[k] = v
	}
	out.edges[id] = append([]string(nil), prereqs...)
	return out
}

// FindCycle returns one cycle as a path that starts and ends on the same ID,
// or nil if the graph is acyclic. Edges to IDs outside the graph are ignored.
// The search is deterministic: nodes and edges are walked in document order.
// PRE: none
// POST: for a returned path p, p[0] == p[len(p)-1]
func (g *Graph) FindCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.order))
	parent := make(map[string]string, len(g.order))
	var cycle []string

	var dfs func(u string) bool
	dfs = func(u string) bool {
		color[u] = gray
		for _, v := range g.edges[u] {
			if _, ok := g.edges[v]; !ok {
				continue
			}
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// back edge u -> v closes v ... u -> v
				path := []string{u}
				for cur := u; cur != v; {
					cur = parent[cur]
					path = append(path, cur)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				cycle = append(path, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for _, id := range g.order {
		if color[id] != white {
			continue
		}
		if dfs(id) {
			return cycle
		}
	}
	return nil
}
