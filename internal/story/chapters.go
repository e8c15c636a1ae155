package story

// Chapter groups the routes that must all be finished for the chapter to
// count as complete.
type Chapter struct {
	ID       int
	Title    string
	RouteIDs []string
}

// ChapterRegistry maps chapter ids to their declared routes.
type ChapterRegistry map[int]Chapter

// RoutesForChapter returns the route ids declared for the chapter, or nil for
// chapters predating the route-based model.
func (r ChapterRegistry) RoutesForChapter(id int) []string {
	ch, ok := r[id]
	if !ok {
		return nil
	}
	return ch.RouteIDs
}

// DefaultChapters returns the shipped chapter registry.
func DefaultChapters() ChapterRegistry {
	return ChapterRegistry{
		1: {
			ID:       1,
			Title:    "The Oath in the Peach Garden",
			RouteIDs: []string{"liubei", "caocao"},
		},
		2: {
			ID:       2,
			Title:    "Brothers Against the Tide",
			RouteIDs: []string{"chapter2_oath"},
		},
	}
}
