package save

// Migration from legacy save shapes. Saves in the wild have passed through
// several historical schemas, so every field read is an ordered priority chain
// ending in a safe default. Nothing here overwrites a value a higher-priority
// source already supplied, and fields not covered by a rule are dropped.

// firstPresent returns the first non-nil value in the chain.
func firstPresent(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// firstString returns the first value in the chain that is a non-empty string.
func firstString(vals ...any) string {
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstMap returns the first value in the chain that is a JSON object.
func firstMap(vals ...any) map[string]any {
	for _, v := range vals {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// appendUnique appends each value not already present, preserving order of
// first appearance.
func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		found := false
		for _, have := range dst {
			if have == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}

// Migrate rebuilds a current-schema record from any parsed legacy or current
// document. It is additive: running it on its own output yields the same
// record.
func Migrate(parsed map[string]any) *Record {
	rec := Defaults()
	if parsed == nil {
		return rec
	}

	progress := asMap(parsed["progress"])
	session := asMap(parsed["session"])
	var story map[string]any
	if session != nil {
		story = firstMap(session["story"], parsed["story"])
	} else {
		story = asMap(parsed["story"])
	}

	// Unlocked eras carry over wherever they lived.
	var progressYears, flatYears any
	if progress != nil {
		progressYears = progress["unlockedYears"]
	}
	flatYears = parsed["unlockedYears"]
	if years := stringSlice(firstPresent(progressYears, flatYears)); years != nil {
		rec.Progress.UnlockedYears = appendUnique([]string{}, years...)
	}

	// Milestones merge from four historical locations, order of first
	// appearance, duplicates dropped.
	milestones := []string{}
	milestones = appendUnique(milestones, stringSlice(parsed["milestones"])...)
	if progress != nil {
		milestones = appendUnique(milestones, stringSlice(progress["milestones"])...)
	}
	if done, ok := parsed["prologueComplete"].(bool); ok && done {
		milestones = appendUnique(milestones, "prologue_complete")
	}
	for _, id := range stringSlice(parsed["completedCampaigns"]) {
		milestones = appendUnique(milestones, id+"_complete")
	}
	rec.Progress.Milestones = milestones

	migrateCampaignState(rec, parsed)
	activeRoute := migrateStory(rec, parsed, session, story)
	migrateSceneStates(rec, parsed, session, activeRoute)

	rec.Session.LastScene = firstString(sessionField(session, "lastScene"), parsed["lastScene"], "title")
	rec.Session.CurrentCampaign = firstString(sessionField(session, "currentCampaign"), parsed["currentCampaign"])
	rec.Session.CurrentBattleID = firstString(sessionField(session, "currentBattleId"), parsed["currentBattleId"])

	if stats := asMap(parsed["customStats"]); stats != nil {
		if n, ok := asInt(stats["total"]); ok {
			rec.CustomStats.Total = n
		}
		if n, ok := asInt(stats["wins"]); ok {
			rec.CustomStats.Wins = n
		}
		if n, ok := asInt(stats["losses"]); ok {
			rec.CustomStats.Losses = n
		}
		if n, ok := asInt(stats["kills"]); ok {
			rec.CustomStats.Kills = n
		}
		if n, ok := asInt(stats["unitsLost"]); ok {
			rec.CustomStats.UnitsLost = n
		}
	}

	rec.Version = SchemaVersion
	return rec
}

func sessionField(session map[string]any, key string) any {
	if session == nil {
		return nil
	}
	return session[key]
}

// migrateCampaignState copies existing campaign buckets, guarantees the
// liubei bucket, and backfills campaign-scoped fields from legacy top-level
// fields without overwriting present values.
func migrateCampaignState(rec *Record, parsed map[string]any) {
	if cs := asMap(parsed["campaignState"]); cs != nil {
		for id, v := range cs {
			if bucket, ok := v.(map[string]any); ok {
				rec.CampaignState[id] = CopyMap(bucket)
			}
		}
	}
	liubei, ok := rec.CampaignState["liubei"]
	if !ok {
		liubei = map[string]any{}
		rec.CampaignState["liubei"] = liubei
	}
	for _, key := range []string{"unitXP", "unitClasses", "partyX", "partyY"} {
		if _, present := liubei[key]; present {
			continue
		}
		if legacy, present := parsed[key]; present && legacy != nil {
			liubei[key] = CopyValue(legacy)
		}
	}
}

// migrateStory resolves the active route and rebuilds per-route buckets,
// synthesizing the active one from legacy flat cursor/choice fields when
// missing. Returns the resolved active route id.
func migrateStory(rec *Record, parsed, session, story map[string]any) string {
	activeRoute := firstString(
		storyField(story, "activeRoute"),
		sessionField(session, "currentCampaign"),
		parsed["currentCampaign"],
	)

	if story != nil {
		for id, v := range asMap(story["routes"]) {
			bucket := asMap(v)
			rp := &RouteProgress{
				CursorNode: firstString(bucket["cursorNode"]),
				Choices:    map[string]any{},
			}
			if choices := asMap(bucket["choices"]); choices != nil {
				rp.Choices = CopyMap(choices)
			}
			rec.Session.Story.Routes[id] = rp
		}
	}

	flatCursor := firstString(storyField(story, "cursorNode"), parsed["cursorNode"])

	// On a document that already carries route buckets, story.choices is the
	// denormalized mirror of the active bucket, not a legacy flat field. Only
	// a bucket-less story contributes its choices to the flat chain.
	var flatChoices map[string]any
	if asMap(storyField(story, "routes")) == nil {
		flatChoices = firstMap(storyField(story, "choices"), parsed["choices"])
	} else {
		flatChoices = asMap(parsed["choices"])
	}

	if activeRoute != "" {
		if _, ok := rec.Session.Story.Routes[activeRoute]; !ok {
			rp := &RouteProgress{CursorNode: flatCursor, Choices: map[string]any{}}
			if flatChoices != nil {
				rp.Choices = CopyMap(flatChoices)
			}
			rec.Session.Story.Routes[activeRoute] = rp
		}
	}

	// Flat choices win on collision to preserve old single-route semantics.
	if story != nil {
		for k, v := range asMap(story["globalChoices"]) {
			rec.Session.Story.GlobalChoices[k] = CopyValue(v)
		}
	}
	for k, v := range flatChoices {
		rec.Session.Story.GlobalChoices[k] = CopyValue(v)
	}

	rec.Session.Story.ActiveRoute = activeRoute
	rec.Session.Story.Denormalize()
	return activeRoute
}

func storyField(story map[string]any, key string) any {
	if story == nil {
		return nil
	}
	return story[key]
}

// migrateSceneStates copies the global and route-scoped snapshot buckets and,
// when the active route has no bucket yet, synthesizes one from the flat
// sceneStates fields with legacy top-level snapshots as the next fallback.
func migrateSceneStates(rec *Record, parsed, session map[string]any, activeRoute string) {
	sceneStates := firstMap(sessionField(session, "sceneStates"), parsed["sceneStates"])
	for name, v := range sceneStates {
		rec.Session.SceneStates[name] = CopyMap(asMap(v))
	}

	byRoute := asMap(sessionField(session, "sceneStatesByRoute"))
	for routeID, v := range byRoute {
		bucket := asMap(v)
		if bucket == nil {
			continue
		}
		out := map[string]map[string]any{}
		for name, snap := range bucket {
			out[name] = CopyMap(asMap(snap))
		}
		rec.Session.SceneStatesByRoute[routeID] = out
	}

	if activeRoute == "" {
		return
	}
	if _, ok := rec.Session.SceneStatesByRoute[activeRoute]; ok {
		return
	}

	pick := func(name, legacyKey string) map[string]any {
		var global any
		if sceneStates != nil {
			global = sceneStates[name]
		}
		return asMap(firstPresent(global, parsed[legacyKey]))
	}
	rec.Session.SceneStatesByRoute[activeRoute] = map[string]map[string]any{
		"map":       CopyMap(pick("map", "mapState")),
		"tactics":   CopyMap(pick("tactics", "battleState")),
		"narrative": CopyMap(pick("narrative", "narrativeState")),
	}
}

// Denormalize rewrites the mirrored cursor and choices from the active
// route's bucket. Invariant: the mirror is never the source of truth.
func (s *StoryState) Denormalize() {
	if s.ActiveRoute == "" {
		s.CursorNode = ""
		s.Choices = map[string]any{}
		return
	}
	rp := s.RouteBucket(s.ActiveRoute)
	s.CursorNode = rp.CursorNode
	choices := CopyMap(rp.Choices)
	if choices == nil {
		choices = map[string]any{}
	}
	s.Choices = choices
}
