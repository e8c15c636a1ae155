package progression

// ValidateAndRepairInvariants is the defensive pass run before every scene
// switch. It repairs partially-shaped saves, nulls structurally invalid
// snapshots, recovers or defaults the active campaign, and synchronizes the
// current battle id. Persists once at the end only when something changed.
func (a *API) ValidateAndRepairInvariants(targetScene string, targetParams map[string]any) {
	rec := a.rec()
	changed := rec.Normalize()

	// Recover a missing campaign id from a saved map snapshot before any
	// invalid snapshot gets nulled.
	if rec.Session.CurrentCampaign == "" {
		if snap := a.sceneStateRef(SceneMap); snap != nil {
			if id, ok := snap["campaignId"].(string); ok && id != "" {
				a.log.Info().Str("campaign", id).Msg("Recovered campaign id from map snapshot")
				rec.Session.CurrentCampaign = id
				changed = true
			}
		}
	}

	// A map switch with no resolvable campaign gets the default.
	if targetScene == SceneMap && rec.Session.CurrentCampaign == "" && rec.Session.Story.ActiveRoute == "" {
		rec.Session.CurrentCampaign = a.defaultCampaign
		changed = true
	}

	// Null out structurally invalid snapshots instead of leaving them
	// dangling, in the global bucket and every route bucket.
	for scene, snap := range rec.Session.SceneStates {
		if snap != nil && !snapshotValid(scene, snap) {
			a.log.Warn().Str("scene", scene).Msg("Discarding invalid scene snapshot")
			rec.Session.SceneStates[scene] = nil
			changed = true
		}
	}
	for routeID, bucket := range rec.Session.SceneStatesByRoute {
		for scene, snap := range bucket {
			if snap != nil && !snapshotValid(scene, snap) {
				a.log.Warn().Str("scene", scene).Str("route", routeID).Msg("Discarding invalid scene snapshot")
				bucket[scene] = nil
				changed = true
			}
		}
	}

	// Backfill the map snapshot's campaign id from the active campaign.
	if snap := a.sceneStateRef(SceneMap); snap != nil && validMapState(snap) {
		if _, ok := snap["campaignId"]; !ok {
			if id := a.resolveCampaign(""); id != "" {
				snap["campaignId"] = id
				changed = true
			}
		}
	}

	// Synchronize the current battle id with the tactics snapshot, or assign
	// the default when entering tactics with no battle id from any source.
	if tactics := a.sceneStateRef(SceneTactics); validTacticsState(tactics) {
		if id := tactics["battleId"].(string); rec.Session.CurrentBattleID != id {
			rec.Session.CurrentBattleID = id
			changed = true
		}
	} else if targetScene == SceneTactics && rec.Session.CurrentBattleID == "" {
		if _, ok := targetParams["battleId"]; !ok {
			rec.Session.CurrentBattleID = a.defaultBattleID
			changed = true
		}
	}

	if changed {
		a.persist()
	}
}
