package progression

import (
	"fmt"

	"github.com/threekingdoms/progression/internal/save"
)

// Scene names the host switches between.
const (
	SceneTitle             = "title"
	SceneMap               = "map"
	SceneTactics           = "tactics"
	SceneNarrative         = "narrative"
	SceneLevelUp           = "levelup"
	SceneCampaignSelection = "campaign_selection"
	SceneCustomBattle      = "custom_battle"
	SceneSummary           = "summary"
	SceneRecovery          = "recovery"
)

// DefaultExcludedScenes are never resumed into directly.
var DefaultExcludedScenes = []string{SceneTitle, SceneCustomBattle, SceneSummary, SceneRecovery}

func chapterComplete(id int) string {
	return fmt.Sprintf("chapter%d_complete", id)
}

// SceneState returns the resumable snapshot for a scene. The route-scoped
// bucket wins when its key is explicitly present (even as null); otherwise
// the global bucket answers. The result is a deep copy.
func (a *API) SceneState(scene, routeID string) map[string]any {
	rec := a.rec()
	route := a.resolveRoute(routeID)
	if route != "" {
		if bucket, ok := rec.Session.SceneStatesByRoute[route]; ok {
			if snap, ok := bucket[scene]; ok {
				return save.CopyMap(snap)
			}
		}
	}
	return save.CopyMap(rec.Session.SceneStates[scene])
}

// SetSceneState stores a scene snapshot. The global bucket is always written
// and, when a route resolves, the route-scoped bucket too, so legacy
// single-route consumers keep working.
func (a *API) SetSceneState(scene string, state map[string]any, routeID string) {
	rec := a.rec()
	rec.Session.SceneStates[scene] = save.CopyMap(state)
	if route := a.resolveRoute(routeID); route != "" {
		bucket, ok := rec.Session.SceneStatesByRoute[route]
		if !ok {
			bucket = map[string]map[string]any{}
			rec.Session.SceneStatesByRoute[route] = bucket
		}
		bucket[scene] = save.CopyMap(state)
	}
	a.persist()
}

// ClearSceneState nulls a scene snapshot in both buckets. The key stays
// present as an explicit null so the route-scoped slot keeps shadowing the
// global one.
func (a *API) ClearSceneState(scene, routeID string) {
	rec := a.rec()
	rec.Session.SceneStates[scene] = nil
	if route := a.resolveRoute(routeID); route != "" {
		bucket, ok := rec.Session.SceneStatesByRoute[route]
		if !ok {
			bucket = map[string]map[string]any{}
			rec.Session.SceneStatesByRoute[route] = bucket
		}
		bucket[scene] = nil
	}
	a.persist()
}

// sceneStateRef returns the live preferred snapshot without copying. Repair
// code mutates it in place.
func (a *API) sceneStateRef(scene string) map[string]any {
	rec := a.rec()
	route := a.resolveRoute("")
	if route != "" {
		if bucket, ok := rec.Session.SceneStatesByRoute[route]; ok {
			if snap, ok := bucket[scene]; ok {
				return snap
			}
		}
	}
	return rec.Session.SceneStates[scene]
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64:
		return true
	}
	return false
}

// validTacticsState requires a non-empty battleId.
func validTacticsState(snap map[string]any) bool {
	if snap == nil {
		return false
	}
	id, ok := snap["battleId"].(string)
	return ok && id != ""
}

// validMapState requires numeric party coordinates.
func validMapState(snap map[string]any) bool {
	if snap == nil {
		return false
	}
	party := asMap(snap["party"])
	if party == nil {
		return false
	}
	return isNumber(party["x"]) && isNumber(party["y"])
}

// validNarrativeState requires a numeric currentStep.
func validNarrativeState(snap map[string]any) bool {
	if snap == nil {
		return false
	}
	return isNumber(snap["currentStep"])
}

// snapshotValid applies the per-scene structural predicate; scenes without a
// declared shape are always valid.
func snapshotValid(scene string, snap map[string]any) bool {
	switch scene {
	case SceneMap:
		return validMapState(snap)
	case SceneTactics:
		return validTacticsState(snap)
	case SceneNarrative:
		return validNarrativeState(snap)
	default:
		return true
	}
}
