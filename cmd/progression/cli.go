package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/threekingdoms/progression/internal/progression"
	"github.com/threekingdoms/progression/internal/save"
)

func run(command string, store *save.Store, api *progression.API) error {
	switch command {
	case "status":
		return printStatus(store, api)
	case "continue":
		return printContinue(store, api)
	case "new-game":
		if err := store.Reset(); err != nil {
			return err
		}
		fmt.Println("Save reset to defaults.")
		return nil
	case "complete":
		return printCompletion(api)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printStatus(store *save.Store, api *progression.API) error {
	rec := store.Record()
	status := map[string]any{
		"hasSave":         store.HasSave(),
		"version":         rec.Version,
		"lastScene":       api.LastScene(),
		"currentCampaign": api.CurrentCampaign(),
		"currentBattle":   api.CurrentBattle(),
		"milestones":      api.Milestones(),
		"customStats":     api.CustomStats(),
	}
	return printJSON(status)
}

func printContinue(store *save.Store, api *progression.API) error {
	if !store.HasSave() {
		fmt.Println("No save present; nothing to continue.")
		return nil
	}
	target := api.ResolveContinueTarget(progression.ContinueOptions{})
	return printJSON(map[string]any{"scene": target.Scene, "params": target.Params})
}

func printCompletion(api *progression.API) error {
	return printJSON(map[string]any{"completedCampaigns": api.CompletedCampaigns()})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
