// Package story holds the static campaign route graph and the chapter
// registry. Both are read-only data; the only derived query is the reverse
// parent map used for ancestry walks.
package story

// Node is a single story beat. Next is empty on terminal nodes.
type Node struct {
	Next string `json:"next"`
}

// Route is one campaign's narrative progression, a directed chain of nodes.
type Route struct {
	ID           string          `json:"id"`
	StartNode    string          `json:"startNode"`
	TerminalNode string          `json:"terminalNode"`
	Nodes        map[string]Node `json:"nodes"`
}

// Graph is a registry of routes keyed by id.
type Graph struct {
	routes map[string]Route
}

// NewGraph builds a graph from the given routes.
func NewGraph(routes ...Route) *Graph {
	g := &Graph{routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		g.routes[r.ID] = r
	}
	return g
}

// Route returns the route with the given id.
func (g *Graph) Route(id string) (Route, bool) {
	r, ok := g.routes[id]
	return r, ok
}

// HasRoute reports whether the graph knows the given route id.
func (g *Graph) HasRoute(id string) bool {
	_, ok := g.routes[id]
	return ok
}

// HasNode reports whether nodeID exists in the given route.
func (g *Graph) HasNode(routeID, nodeID string) bool {
	r, ok := g.routes[routeID]
	if !ok {
		return false
	}
	_, ok = r.Nodes[nodeID]
	return ok
}

// RouteIDs returns all registered route ids.
func (g *Graph) RouteIDs() []string {
	ids := make([]string, 0, len(g.routes))
	for id := range g.routes {
		ids = append(ids, id)
	}
	return ids
}

// BuildParentMap inverts each node's forward edge, yielding child -> parent.
// Unknown routes yield an empty map rather than an error.
func (g *Graph) BuildParentMap(routeID string) map[string]string {
	parents := make(map[string]string)
	route, ok := g.routes[routeID]
	if !ok {
		return parents
	}
	for nodeID, node := range route.Nodes {
		if node.Next != "" {
			parents[node.Next] = nodeID
		}
	}
	return parents
}
