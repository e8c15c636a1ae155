package progression

import (
	"github.com/threekingdoms/progression/internal/save"
)

// StoryState returns a fully merged, defaulted view of the story for the
// resolved route. The returned value is a deep copy; mutating it never
// touches the live record.
func (a *API) StoryState(routeID string) save.StoryState {
	route := a.resolveRoute(routeID)
	st := a.rec().Session.Story.Clone()
	st.ActiveRoute = route
	if route == "" {
		st.CursorNode = ""
		st.Choices = map[string]any{}
		return st
	}
	rp := st.RouteBucket(route)
	st.CursorNode = a.validCursor(route, rp.CursorNode)
	st.Choices = save.CopyMap(rp.Choices)
	return st
}

// SetStoryState merges a state shaped like StoryState's output back into the
// record: the cursor replaces the bucket's cursor when it names a known node,
// choices merge additively, and the denormalized mirror is rewritten.
func (a *API) SetStoryState(st save.StoryState) Result {
	rec := a.rec()
	active := st.ActiveRoute
	if active == "" {
		active = a.resolveRoute("")
	}
	rec.Session.Story.ActiveRoute = active
	if active != "" {
		rp := rec.Session.Story.RouteBucket(active)
		if st.CursorNode != "" && a.graph.HasNode(active, st.CursorNode) {
			rp.CursorNode = st.CursorNode
		}
		for k, v := range st.Choices {
			rp.Choices[k] = save.CopyValue(v)
		}
	}
	for k, v := range st.GlobalChoices {
		rec.Session.Story.GlobalChoices[k] = save.CopyValue(v)
	}
	rec.Session.Story.Denormalize()
	a.persist()
	return Applied
}

// StartStoryRoute makes routeID the active route, resuming its existing
// cursor if one exists, else starting at startNode or the route's declared
// start node. Unknown routes are a no-op.
func (a *API) StartStoryRoute(routeID, startNode string) Result {
	route, ok := a.graph.Route(routeID)
	if !ok {
		return Unresolved
	}
	rec := a.rec()
	rec.Session.Story.ActiveRoute = routeID
	rp := rec.Session.Story.RouteBucket(routeID)
	if a.validCursor(routeID, rp.CursorNode) == "" {
		node := startNode
		if node == "" || !a.graph.HasNode(routeID, node) {
			node = route.StartNode
		}
		rp.CursorNode = node
	}
	rec.Session.Story.Denormalize()
	a.persist()
	return Applied
}

// SetStoryCursor moves the route's cursor. The cursor never advances to a
// node the graph does not know, so an unknown route or node id is a silent
// no-op.
func (a *API) SetStoryCursor(nodeID, routeID string) Result {
	route := a.resolveRoute(routeID)
	if route == "" || !a.graph.HasNode(route, nodeID) {
		a.log.Debug().Str("route", route).Str("node", nodeID).Msg("Ignoring cursor move to unknown node")
		return Unresolved
	}
	rec := a.rec()
	rp := rec.Session.Story.RouteBucket(route)
	rp.CursorNode = nodeID
	if route == rec.Session.Story.ActiveRoute {
		rec.Session.Story.Denormalize()
	}
	a.persist()
	return Applied
}

// StoryCursor returns the route's current cursor, or empty when unset or no
// longer a known node.
func (a *API) StoryCursor(routeID string) string {
	route := a.resolveRoute(routeID)
	if route == "" {
		return ""
	}
	rp, ok := a.rec().Session.Story.Routes[route]
	if !ok || rp == nil {
		return ""
	}
	return a.validCursor(route, rp.CursorNode)
}

// HasReachedStoryNode walks backward from the route's cursor through the
// parent map until it finds nodeID or runs out of ancestors. Ancestry is
// reconstructed from the forward edges, so no history list is persisted.
func (a *API) HasReachedStoryNode(nodeID, routeID string) bool {
	route := a.resolveRoute(routeID)
	if route == "" || !a.graph.HasNode(route, nodeID) {
		return false
	}
	cursor := a.StoryCursor(route)
	if cursor == "" {
		return false
	}
	parents := a.graph.BuildParentMap(route)
	seen := map[string]bool{}
	for cur := cursor; cur != "" && !seen[cur]; cur = parents[cur] {
		if cur == nodeID {
			return true
		}
		seen[cur] = true
	}
	return false
}

// SetStoryChoice records a decision, route-scoped when a route resolves and
// global otherwise.
func (a *API) SetStoryChoice(key string, value any, routeID string) Result {
	rec := a.rec()
	route := a.resolveRoute(routeID)
	if route == "" {
		rec.Session.Story.GlobalChoices[key] = save.CopyValue(value)
		a.persist()
		return Applied
	}
	rp := rec.Session.Story.RouteBucket(route)
	rp.Choices[key] = save.CopyValue(value)
	if route == rec.Session.Story.ActiveRoute {
		rec.Session.Story.Denormalize()
	}
	a.persist()
	return Applied
}

// StoryChoice reads a decision: route-scoped first, then global, then the
// caller's fallback.
func (a *API) StoryChoice(key string, fallback any, routeID string) any {
	rec := a.rec()
	route := a.resolveRoute(routeID)
	if route != "" {
		if rp, ok := rec.Session.Story.Routes[route]; ok && rp != nil {
			if v, ok := rp.Choices[key]; ok {
				return save.CopyValue(v)
			}
		}
	}
	if v, ok := rec.Session.Story.GlobalChoices[key]; ok {
		return save.CopyValue(v)
	}
	return fallback
}

// validCursor treats a cursor naming an unknown node as unset.
func (a *API) validCursor(routeID, cursor string) string {
	if cursor == "" || !a.graph.HasNode(routeID, cursor) {
		return ""
	}
	return cursor
}
