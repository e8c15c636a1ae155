package story

// DefaultGraph returns the shipped campaign routes.
func DefaultGraph() *Graph {
	return NewGraph(
		Route{
			ID:           "liubei",
			StartNode:    "prologue",
			TerminalNode: "chapter1_complete",
			Nodes: map[string]Node{
				"prologue":            {Next: "prologue_complete"},
				"prologue_complete":   {Next: "daxing"},
				"daxing":              {Next: "qingzhou_siege"},
				"qingzhou_siege":      {Next: "qingzhou_cleanup"},
				"qingzhou_cleanup":    {Next: "guangzong_camp"},
				"guangzong_camp":      {Next: "yingchuan_aftermath"},
				"yingchuan_aftermath": {Next: "guangzong_encounter"},
				"guangzong_encounter": {Next: "dongzhuo_battle"},
				"dongzhuo_battle":     {Next: "chapter1_complete"},
				"chapter1_complete":   {},
			},
		},
		Route{
			ID:           "caocao",
			StartNode:    "caocao_intro",
			TerminalNode: "caocao_intro_complete",
			Nodes: map[string]Node{
				"caocao_intro":          {Next: "caocao_intro_complete"},
				"caocao_intro_complete": {},
			},
		},
		Route{
			ID:           "chapter2_oath",
			StartNode:    "chapter2_oath_dongzhuo_choice",
			TerminalNode: "chapter2_oath_complete",
			Nodes: map[string]Node{
				"chapter2_oath_dongzhuo_choice": {Next: "chapter2_oath_complete"},
				"chapter2_oath_complete":        {},
			},
		},
	)
}
