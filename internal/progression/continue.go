package progression

// ContinueOptions parameterizes continue resolution. The narrative scene
// supplies its own state validator; hosts may override the excluded set.
type ContinueOptions struct {
	ValidateNarrativeState func(map[string]any) bool
	ExcludedScenes         []string
}

// ContinueTarget is the scene plus minimal params the player resumes into.
type ContinueTarget struct {
	Scene  string
	Params map[string]any
}

// ResolveContinueTarget picks where the player resumes after a continue
// action. A completed campaign always redirects to campaign selection, a
// scene is only resumed when its backing snapshot exists, and the final
// fallback is the map (with an active campaign) or campaign selection.
func (a *API) ResolveContinueTarget(opts ContinueOptions) ContinueTarget {
	rec := a.rec()
	campaign := a.resolveRoute("")

	// A completed route must never resume mid-campaign.
	if campaign != "" {
		if route, ok := a.graph.Route(campaign); ok && a.HasReachedStoryNode(route.TerminalNode, campaign) {
			return ContinueTarget{Scene: SceneCampaignSelection, Params: map[string]any{}}
		}
	}

	validate := opts.ValidateNarrativeState
	if validate == nil {
		validate = validNarrativeState
	}
	narrative := a.SceneState(SceneNarrative, "")
	if narrative != nil && !validate(narrative) {
		a.log.Debug().Msg("Clearing invalid narrative snapshot")
		a.ClearSceneState(SceneNarrative, "")
		narrative = nil
	}
	tactics := a.SceneState(SceneTactics, "")
	mapSnap := a.SceneState(SceneMap, "")
	levelup := a.SceneState(SceneLevelUp, "")

	// Prefer the exact scene the player left, but only with backing state.
	// Resuming into a phantom battle or cutscene is disallowed.
	last := rec.Session.LastScene
	switch last {
	case SceneTactics:
		if validTacticsState(tactics) {
			return a.resumeTarget(SceneTactics, campaign)
		}
	case SceneNarrative:
		if narrative != nil {
			return a.resumeTarget(SceneNarrative, campaign)
		}
	case SceneLevelUp:
		if levelup != nil {
			return a.resumeTarget(SceneLevelUp, campaign)
		}
	}

	// Fixed fallback priority over whatever is resumable.
	if narrative != nil {
		return a.resumeTarget(SceneNarrative, campaign)
	}
	if mapSnap != nil {
		return a.resumeTarget(SceneMap, campaign)
	}
	if validTacticsState(tactics) {
		return a.resumeTarget(SceneTactics, campaign)
	}
	if levelup != nil {
		return a.resumeTarget(SceneLevelUp, campaign)
	}

	// Nothing resumable: lastScene itself, unless excluded or a stateful
	// scene with no state.
	excluded := opts.ExcludedScenes
	if excluded == nil {
		excluded = DefaultExcludedScenes
	}
	blocked := last == "" || last == SceneNarrative || last == SceneTactics
	for _, name := range excluded {
		if name == last {
			blocked = true
			break
		}
	}
	if !blocked {
		return a.resumeTarget(last, campaign)
	}

	if campaign != "" {
		return ContinueTarget{Scene: SceneMap, Params: map[string]any{"campaignId": campaign}}
	}
	return ContinueTarget{Scene: SceneCampaignSelection, Params: map[string]any{}}
}

func (a *API) resumeTarget(scene, campaign string) ContinueTarget {
	params := map[string]any{"isResume": true}
	if scene == SceneMap && campaign != "" {
		params["campaignId"] = campaign
	}
	return ContinueTarget{Scene: scene, Params: params}
}
