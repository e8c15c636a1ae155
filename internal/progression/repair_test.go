package progression

import (
	"testing"
)

func TestRepairDiscardsInvalidSnapshots(t *testing.T) {
	api, store := newTestAPI(t)
	rec := store.Record()
	rec.Session.SceneStates[SceneMap] = map[string]any{"party": map[string]any{"x": "not-a-number"}}
	rec.Session.SceneStates[SceneTactics] = map[string]any{"turn": 4}
	rec.Session.SceneStates[SceneNarrative] = map[string]any{"scriptId": "prologue"}
	rec.Session.SceneStatesByRoute["liubei"] = map[string]map[string]any{
		SceneTactics: {"turn": 9},
	}

	api.ValidateAndRepairInvariants("", nil)

	if rec.Session.SceneStates[SceneMap] != nil {
		t.Error("expected invalid map snapshot nulled")
	}
	if rec.Session.SceneStates[SceneTactics] != nil {
		t.Error("expected battleId-less tactics snapshot nulled")
	}
	if rec.Session.SceneStates[SceneNarrative] != nil {
		t.Error("expected step-less narrative snapshot nulled")
	}
	if rec.Session.SceneStatesByRoute["liubei"][SceneTactics] != nil {
		t.Error("expected route-scoped invalid snapshot nulled")
	}
}

func TestRepairKeepsValidSnapshots(t *testing.T) {
	api, store := newTestAPI(t)
	api.SetCurrentCampaign("liubei")
	api.SetSceneState(SceneMap, map[string]any{
		"campaignId": "liubei",
		"party":      map[string]any{"x": 3, "y": 4},
	}, "")

	api.ValidateAndRepairInvariants("", nil)

	if store.Record().Session.SceneStates[SceneMap] == nil {
		t.Error("expected valid map snapshot untouched")
	}
}

func TestRepairRecoversCampaignFromMapSnapshot(t *testing.T) {
	api, store := newTestAPI(t)
	store.Record().Session.SceneStates[SceneMap] = map[string]any{
		"campaignId": "liubei",
		"party":      map[string]any{"x": 1, "y": 1},
	}

	api.ValidateAndRepairInvariants("", nil)

	if got := api.CurrentCampaign(); got != "liubei" {
		t.Errorf("expected campaign recovered from snapshot, got %q", got)
	}
}

func TestRepairDefaultsCampaignForMapSwitch(t *testing.T) {
	api, _ := newTestAPI(t)

	api.ValidateAndRepairInvariants(SceneMap, nil)

	if got := api.CurrentCampaign(); got != "liubei" {
		t.Errorf("expected default campaign for map switch, got %q", got)
	}
}

func TestRepairBackfillsMapCampaignID(t *testing.T) {
	api, _ := newTestAPI(t)
	api.SetCurrentCampaign("caocao")
	api.SetSceneState(SceneMap, map[string]any{"party": map[string]any{"x": 2, "y": 5}}, "")

	api.ValidateAndRepairInvariants("", nil)

	snap := api.SceneState(SceneMap, "")
	if snap["campaignId"] != "caocao" {
		t.Errorf("expected campaignId backfilled, got %v", snap["campaignId"])
	}
}

func TestRepairSyncsBattleIDFromSnapshot(t *testing.T) {
	api, _ := newTestAPI(t)
	api.SetSceneState(SceneTactics, map[string]any{"battleId": "qingzhou_siege"}, "")

	api.ValidateAndRepairInvariants("", nil)

	if got := api.CurrentBattle(); got != "qingzhou_siege" {
		t.Errorf("expected battle id synced from snapshot, got %q", got)
	}
}

func TestRepairAssignsDefaultBattleID(t *testing.T) {
	api, _ := newTestAPI(t)

	// entering tactics with no battle id, no snapshot and no param
	api.ValidateAndRepairInvariants(SceneTactics, nil)
	if got := api.CurrentBattle(); got != "daxing" {
		t.Errorf("expected default battle id, got %q", got)
	}

	// an explicit param suppresses the default
	api2, _ := newTestAPI(t)
	api2.ValidateAndRepairInvariants(SceneTactics, map[string]any{"battleId": "custom"})
	if got := api2.CurrentBattle(); got != "" {
		t.Errorf("expected no battle id assigned with explicit param, got %q", got)
	}
}

func TestRepairNoWriteWhenClean(t *testing.T) {
	api, store := newTestAPI(t)
	api.SetCurrentCampaign("liubei")

	before, err := jsonSnapshot(store)
	if err != nil {
		t.Fatal(err)
	}
	api.ValidateAndRepairInvariants("", nil)
	after, _ := jsonSnapshot(store)

	if before != after {
		t.Errorf("expected repair to be a no-op on a clean record:\n%s\n%s", before, after)
	}
}

func TestRepairRebuildsMissingShape(t *testing.T) {
	api, store := newTestAPI(t)
	rec := store.Record()
	rec.Session.SceneStates = nil
	rec.Session.SceneStatesByRoute = nil
	rec.Session.Story.Routes = nil
	rec.CampaignState = nil

	api.ValidateAndRepairInvariants("", nil)

	if rec.Session.SceneStates == nil || rec.Session.SceneStatesByRoute == nil {
		t.Error("expected scene state buckets rebuilt")
	}
	if rec.Session.Story.Routes == nil {
		t.Error("expected story routes rebuilt")
	}
	if rec.CampaignState == nil {
		t.Error("expected campaign state rebuilt")
	}
}
