// Package progression is the façade every other subsystem uses to read or
// mutate save progress. It enforces the record invariants on every write and
// persists write-through, so the durable document is never observably behind
// the in-memory record.
package progression

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/threekingdoms/progression/internal/save"
	"github.com/threekingdoms/progression/internal/story"
)

// Result reports whether a mutation took effect. Unresolved references are a
// deliberate no-op rather than an error; play continuity wins over strictness.
type Result int

const (
	// Applied means the mutation took effect and was persisted.
	Applied Result = iota
	// Unresolved means the reference could not be resolved and nothing changed.
	Unresolved
)

func (r Result) String() string {
	if r == Applied {
		return "applied"
	}
	return "unresolved"
}

// legacyCompleteMilestones maps route ids to the completion milestone older
// saves recorded before the route graph existed.
var legacyCompleteMilestones = map[string]string{
	"liubei":        "chapter1_complete",
	"caocao":        "caocao_intro_complete",
	"chapter2_oath": "chapter2_oath_complete",
}

// API exposes campaign selection, milestones, story cursor movement, scene
// snapshots, continue resolution and invariant repair over a save store.
type API struct {
	store    *save.Store
	graph    *story.Graph
	chapters story.ChapterRegistry
	log      zerolog.Logger

	defaultCampaign string
	defaultBattleID string
}

// Option configures the API.
type Option func(*API)

// WithDefaultCampaign overrides the campaign used when a map switch is
// requested with no resolvable campaign.
func WithDefaultCampaign(id string) Option {
	return func(a *API) {
		a.defaultCampaign = id
	}
}

// WithDefaultBattle overrides the battle id assigned when entering tactics
// with no battle id from any source.
func WithDefaultBattle(id string) Option {
	return func(a *API) {
		a.defaultBattleID = id
	}
}

// New builds the progression API over an already-loaded store.
func New(store *save.Store, graph *story.Graph, chapters story.ChapterRegistry, log zerolog.Logger, opts ...Option) *API {
	a := &API{
		store:           store,
		graph:           graph,
		chapters:        chapters,
		log:             log,
		defaultCampaign: "liubei",
		defaultBattleID: "daxing",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) rec() *save.Record {
	return a.store.Record()
}

// persist writes through after a mutation. Backend failures are logged and
// swallowed here; the in-memory record stays authoritative for this session.
func (a *API) persist() {
	if err := a.store.Save(); err != nil {
		a.log.Error().Err(err).Msg("Failed to persist progress")
	}
}

// resolveRoute picks the route a story or scene operation scopes to:
// explicit argument, then the stored active route, then the current campaign.
func (a *API) resolveRoute(explicit string) string {
	if explicit != "" {
		return explicit
	}
	rec := a.rec()
	if rec.Session.Story.ActiveRoute != "" {
		return rec.Session.Story.ActiveRoute
	}
	return rec.Session.CurrentCampaign
}

// resolveCampaign picks the campaign a variable write scopes to: explicit
// argument, then the current campaign, then the active route.
func (a *API) resolveCampaign(explicit string) string {
	if explicit != "" {
		return explicit
	}
	rec := a.rec()
	if rec.Session.CurrentCampaign != "" {
		return rec.Session.CurrentCampaign
	}
	return rec.Session.Story.ActiveRoute
}

// SetCampaignVar writes a key into the campaign's private bag, created lazily
// on first write. With no resolvable campaign the write is dropped.
func (a *API) SetCampaignVar(key string, value any, campaignID string) Result {
	id := a.resolveCampaign(campaignID)
	if id == "" {
		return Unresolved
	}
	rec := a.rec()
	bucket, ok := rec.CampaignState[id]
	if !ok {
		bucket = map[string]any{}
		rec.CampaignState[id] = bucket
	}
	bucket[key] = save.CopyValue(value)
	a.persist()
	return Applied
}

// CampaignVar reads a key from the campaign's private bag.
func (a *API) CampaignVar(key string, campaignID string) (any, bool) {
	id := a.resolveCampaign(campaignID)
	if id == "" {
		return nil, false
	}
	bucket, ok := a.rec().CampaignState[id]
	if !ok {
		return nil, false
	}
	v, ok := bucket[key]
	if !ok {
		return nil, false
	}
	return save.CopyValue(v), true
}

// SetLastScene records the scene the player was last in.
func (a *API) SetLastScene(name string) {
	a.rec().Session.LastScene = name
	a.persist()
}

// LastScene returns the scene the player was last in.
func (a *API) LastScene() string {
	return a.rec().Session.LastScene
}

// SetCurrentCampaign makes id the actively advancing campaign. When the id
// names a known route the story's active route follows it.
func (a *API) SetCurrentCampaign(id string) {
	rec := a.rec()
	rec.Session.CurrentCampaign = id
	if a.graph.HasRoute(id) {
		rec.Session.Story.ActiveRoute = id
		rec.Session.Story.Denormalize()
	}
	a.persist()
}

// CurrentCampaign returns the actively advancing campaign id, or empty.
func (a *API) CurrentCampaign() string {
	return a.rec().Session.CurrentCampaign
}

// SetCurrentBattle records the in-progress tactical encounter.
func (a *API) SetCurrentBattle(id string) {
	a.rec().Session.CurrentBattleID = id
	a.persist()
}

// CurrentBattle returns the in-progress tactical encounter id, or empty.
func (a *API) CurrentBattle() string {
	return a.rec().Session.CurrentBattleID
}

// AddMilestone records a milestone. Idempotent; persists only on change.
func (a *API) AddMilestone(id string) {
	rec := a.rec()
	for _, have := range rec.Progress.Milestones {
		if have == id {
			return
		}
	}
	rec.Progress.Milestones = append(rec.Progress.Milestones, id)
	a.persist()
}

// RemoveMilestone removes a milestone if present.
func (a *API) RemoveMilestone(id string) {
	rec := a.rec()
	for i, have := range rec.Progress.Milestones {
		if have == id {
			rec.Progress.Milestones = append(rec.Progress.Milestones[:i], rec.Progress.Milestones[i+1:]...)
			a.persist()
			return
		}
	}
}

// HasMilestone reports whether a milestone has been recorded.
func (a *API) HasMilestone(id string) bool {
	for _, have := range a.rec().Progress.Milestones {
		if have == id {
			return true
		}
	}
	return false
}

// Milestones returns a copy of the recorded milestones in order.
func (a *API) Milestones() []string {
	src := a.rec().Progress.Milestones
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// UnlockYear adds an era token to the unlocked set. Idempotent.
func (a *API) UnlockYear(year string) {
	rec := a.rec()
	for _, have := range rec.Progress.UnlockedYears {
		if have == year {
			return
		}
	}
	rec.Progress.UnlockedYears = append(rec.Progress.UnlockedYears, year)
	a.persist()
}

// IsYearUnlocked reports whether an era token is unlocked.
func (a *API) IsYearUnlocked(year string) bool {
	for _, have := range a.rec().Progress.UnlockedYears {
		if have == year {
			return true
		}
	}
	return false
}

// RecordCustomBattle folds one ad-hoc battle result into the aggregate
// counters.
func (a *API) RecordCustomBattle(won bool, kills, unitsLost int) {
	stats := &a.rec().CustomStats
	stats.Total++
	if won {
		stats.Wins++
	} else {
		stats.Losses++
	}
	stats.Kills += kills
	stats.UnitsLost += unitsLost
	a.persist()
}

// CustomStats returns the aggregate ad-hoc battle counters.
func (a *API) CustomStats() save.CustomStats {
	return a.rec().CustomStats
}

// IsCampaignComplete reports whether the campaign's route has been finished.
// Three independent signals count: the terminal node reached, a generic
// "<id>_complete" milestone, or the legacy milestone mapped for the id.
func (a *API) IsCampaignComplete(campaignID string) bool {
	id := a.resolveCampaign(campaignID)
	if id == "" {
		return false
	}
	if route, ok := a.graph.Route(id); ok && a.HasReachedStoryNode(route.TerminalNode, id) {
		return true
	}
	if a.HasMilestone(id + "_complete") {
		return true
	}
	if legacy, ok := legacyCompleteMilestones[id]; ok && a.HasMilestone(legacy) {
		return true
	}
	return false
}

// IsChapterComplete reports whether every declared route of the chapter is
// complete. Chapters predating the route model fall back to a direct
// "chapter<id>_complete" milestone.
func (a *API) IsChapterComplete(chapterID int) bool {
	routes := a.chapters.RoutesForChapter(chapterID)
	if len(routes) > 0 {
		for _, id := range routes {
			if !a.IsCampaignComplete(id) {
				return false
			}
		}
		return true
	}
	return a.HasMilestone(chapterComplete(chapterID))
}

// CompletedCampaigns returns the ids of every known route that counts as
// complete, sorted for stable output.
func (a *API) CompletedCampaigns() []string {
	var out []string
	for _, id := range a.graph.RouteIDs() {
		if a.IsCampaignComplete(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
