// Package save owns the canonical save record: its schema, default
// construction, versioned migration from legacy document shapes, and
// write-through persistence to a storage backend.
package save

// SchemaVersion is the current save document version. Load forces any parsed
// document to this version through migration.
const SchemaVersion = 3

// DefaultSaveKey is the storage key the durable document lives under.
const DefaultSaveKey = "three_kingdoms_tactics_save"

// Progress tracks account-wide unlocks. Both sequences are ordered and
// duplicate-free.
type Progress struct {
	UnlockedYears []string `json:"unlockedYears"`
	Milestones    []string `json:"milestones"`
}

// CustomStats aggregates ad-hoc battle results.
type CustomStats struct {
	Total     int `json:"total"`
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	Kills     int `json:"kills"`
	UnitsLost int `json:"unitsLost"`
}

// RouteProgress is one route's cursor and decisions.
type RouteProgress struct {
	CursorNode string         `json:"cursorNode"`
	Choices    map[string]any `json:"choices"`
}

// StoryState tracks narrative position across routes. CursorNode and Choices
// mirror the active route's bucket; the buckets are the source of truth and
// the mirror is rewritten on every mutation.
type StoryState struct {
	ActiveRoute   string                    `json:"activeRoute"`
	Routes        map[string]*RouteProgress `json:"routes"`
	GlobalChoices map[string]any            `json:"globalChoices"`
	CursorNode    string                    `json:"cursorNode"`
	Choices       map[string]any            `json:"choices"`
}

// Session is the current-play-session pointer state. Scene snapshots are
// opaque; a nil value under a present key is an explicit null slot.
type Session struct {
	LastScene          string                               `json:"lastScene"`
	CurrentCampaign    string                               `json:"currentCampaign"`
	CurrentBattleID    string                               `json:"currentBattleId"`
	Story              StoryState                           `json:"story"`
	SceneStates        map[string]map[string]any            `json:"sceneStates"`
	SceneStatesByRoute map[string]map[string]map[string]any `json:"sceneStatesByRoute"`
}

// Record is the root save document, one per installation.
type Record struct {
	Version       int                       `json:"version"`
	Progress      Progress                  `json:"progress"`
	Session       Session                   `json:"session"`
	CampaignState map[string]map[string]any `json:"campaignState"`
	CustomStats   CustomStats               `json:"customStats"`
}

// Defaults produces the zero-state record. Every call yields a fresh,
// independent structure.
func Defaults() *Record {
	return &Record{
		Version: SchemaVersion,
		Progress: Progress{
			UnlockedYears: []string{"184"},
			Milestones:    []string{},
		},
		Session: Session{
			LastScene: "title",
			Story: StoryState{
				Routes:        map[string]*RouteProgress{},
				GlobalChoices: map[string]any{},
				Choices:       map[string]any{},
			},
			SceneStates:        map[string]map[string]any{},
			SceneStatesByRoute: map[string]map[string]map[string]any{},
		},
		CampaignState: map[string]map[string]any{},
	}
}

// Normalize rebuilds any nil sub-structures so callers never see nil maps or
// slices. Returns true if anything had to be repaired.
func (r *Record) Normalize() bool {
	changed := false
	if r.Progress.UnlockedYears == nil {
		r.Progress.UnlockedYears = []string{}
		changed = true
	}
	if r.Progress.Milestones == nil {
		r.Progress.Milestones = []string{}
		changed = true
	}
	if r.Session.Story.Routes == nil {
		r.Session.Story.Routes = map[string]*RouteProgress{}
		changed = true
	}
	if r.Session.Story.GlobalChoices == nil {
		r.Session.Story.GlobalChoices = map[string]any{}
		changed = true
	}
	if r.Session.Story.Choices == nil {
		r.Session.Story.Choices = map[string]any{}
		changed = true
	}
	for id, rp := range r.Session.Story.Routes {
		if rp == nil {
			r.Session.Story.Routes[id] = &RouteProgress{Choices: map[string]any{}}
			changed = true
			continue
		}
		if rp.Choices == nil {
			rp.Choices = map[string]any{}
			changed = true
		}
	}
	if r.Session.SceneStates == nil {
		r.Session.SceneStates = map[string]map[string]any{}
		changed = true
	}
	if r.Session.SceneStatesByRoute == nil {
		r.Session.SceneStatesByRoute = map[string]map[string]map[string]any{}
		changed = true
	}
	if r.CampaignState == nil {
		r.CampaignState = map[string]map[string]any{}
		changed = true
	}
	return changed
}

// RouteBucket returns the progress bucket for routeID, creating it if absent.
func (s *StoryState) RouteBucket(routeID string) *RouteProgress {
	if s.Routes == nil {
		s.Routes = map[string]*RouteProgress{}
	}
	rp, ok := s.Routes[routeID]
	if !ok || rp == nil {
		rp = &RouteProgress{Choices: map[string]any{}}
		s.Routes[routeID] = rp
	}
	if rp.Choices == nil {
		rp.Choices = map[string]any{}
	}
	return rp
}

// CopyValue deep-copies a JSON-shaped value (maps, slices, scalars).
func CopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CopyValue(e)
		}
		return out
	default:
		return v
	}
}

// CopyMap deep-copies a JSON-shaped map. A nil map stays nil so explicit-null
// snapshot slots survive copying.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CopyValue(v)
	}
	return out
}

// Clone returns a deep copy of the story state, safe to hand to callers.
func (s StoryState) Clone() StoryState {
	out := StoryState{
		ActiveRoute:   s.ActiveRoute,
		CursorNode:    s.CursorNode,
		Routes:        map[string]*RouteProgress{},
		GlobalChoices: CopyMap(s.GlobalChoices),
		Choices:       CopyMap(s.Choices),
	}
	if out.GlobalChoices == nil {
		out.GlobalChoices = map[string]any{}
	}
	if out.Choices == nil {
		out.Choices = map[string]any{}
	}
	for id, rp := range s.Routes {
		if rp == nil {
			out.Routes[id] = &RouteProgress{Choices: map[string]any{}}
			continue
		}
		cp := &RouteProgress{CursorNode: rp.CursorNode, Choices: CopyMap(rp.Choices)}
		if cp.Choices == nil {
			cp.Choices = map[string]any{}
		}
		out.Routes[id] = cp
	}
	return out
}
