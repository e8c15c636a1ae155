package progression

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/threekingdoms/progression/internal/save"
	"github.com/threekingdoms/progression/internal/storage/memory"
	"github.com/threekingdoms/progression/internal/story"
)

func newTestAPI(t *testing.T) (*API, *save.Store) {
	t.Helper()
	store, err := save.NewStore(memory.New(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	api := New(store, story.DefaultGraph(), story.DefaultChapters(), zerolog.Nop())
	return api, store
}

func TestCampaignVarScoping(t *testing.T) {
	api, _ := newTestAPI(t)

	// nothing to scope to: dropped, not an error
	if res := api.SetCampaignVar("gold", 100, ""); res != Unresolved {
		t.Errorf("expected Unresolved with no campaign, got %v", res)
	}
	if _, ok := api.CampaignVar("gold", ""); ok {
		t.Error("expected no value after dropped write")
	}

	api.SetCurrentCampaign("liubei")
	if res := api.SetCampaignVar("gold", 100, ""); res != Applied {
		t.Errorf("expected Applied, got %v", res)
	}
	v, ok := api.CampaignVar("gold", "")
	if !ok || v != 100 {
		t.Errorf("expected gold=100, got %v (%v)", v, ok)
	}

	// explicit id wins over the active campaign
	api.SetCampaignVar("gold", 50, "caocao")
	if v, _ := api.CampaignVar("gold", "caocao"); v != 50 {
		t.Errorf("expected caocao gold=50, got %v", v)
	}
	if v, _ := api.CampaignVar("gold", "liubei"); v != 100 {
		t.Errorf("expected liubei gold untouched, got %v", v)
	}
}

func TestCampaignStateCreatedLazily(t *testing.T) {
	api, store := newTestAPI(t)
	api.SetCurrentCampaign("liubei")

	if _, ok := store.Record().CampaignState["liubei"]; ok {
		t.Error("expected no bucket before first write")
	}
	api.SetCampaignVar("gold", 1, "")
	if _, ok := store.Record().CampaignState["liubei"]; !ok {
		t.Error("expected bucket after first write")
	}
}

func TestMilestoneSetSemantics(t *testing.T) {
	api, _ := newTestAPI(t)

	api.AddMilestone("prologue_complete")
	api.AddMilestone("prologue_complete")
	if got := api.Milestones(); !reflect.DeepEqual(got, []string{"prologue_complete"}) {
		t.Errorf("expected single milestone, got %v", got)
	}
	if !api.HasMilestone("prologue_complete") {
		t.Error("expected HasMilestone true")
	}

	api.RemoveMilestone("prologue_complete")
	if api.HasMilestone("prologue_complete") {
		t.Error("expected HasMilestone false after remove")
	}
	// removing again is a no-op
	api.RemoveMilestone("prologue_complete")
}

func TestUnlockYears(t *testing.T) {
	api, store := newTestAPI(t)

	if !api.IsYearUnlocked("184") {
		t.Error("expected default era unlocked")
	}
	api.UnlockYear("190")
	api.UnlockYear("190")
	if !api.IsYearUnlocked("190") {
		t.Error("expected 190 unlocked")
	}
	want := []string{"184", "190"}
	if got := store.Record().Progress.UnlockedYears; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRecordCustomBattle(t *testing.T) {
	api, _ := newTestAPI(t)

	api.RecordCustomBattle(true, 5, 1)
	api.RecordCustomBattle(false, 2, 4)

	stats := api.CustomStats()
	want := save.CustomStats{Total: 2, Wins: 1, Losses: 1, Kills: 7, UnitsLost: 5}
	if stats != want {
		t.Errorf("expected %+v, got %+v", want, stats)
	}
}

func TestIsCampaignComplete(t *testing.T) {
	api, _ := newTestAPI(t)

	if api.IsCampaignComplete("liubei") {
		t.Error("fresh campaign should not be complete")
	}

	// signal 1: terminal node reached
	api.StartStoryRoute("liubei", "")
	api.SetStoryCursor("chapter1_complete", "liubei")
	if !api.IsCampaignComplete("liubei") {
		t.Error("expected complete via terminal cursor")
	}

	// signal 2: generic milestone
	api2, _ := newTestAPI(t)
	api2.AddMilestone("caocao_complete")
	if !api2.IsCampaignComplete("caocao") {
		t.Error("expected complete via generic milestone")
	}

	// signal 3: legacy milestone
	api3, _ := newTestAPI(t)
	api3.AddMilestone("chapter1_complete")
	if !api3.IsCampaignComplete("liubei") {
		t.Error("expected complete via legacy milestone")
	}

	// the prologue milestone is mid-campaign progress, not completion
	api4, _ := newTestAPI(t)
	api4.AddMilestone("prologue_complete")
	if api4.IsCampaignComplete("liubei") {
		t.Error("prologue milestone alone must not complete liubei")
	}

	api5, _ := newTestAPI(t)
	if api5.IsCampaignComplete("") {
		t.Error("unresolvable campaign should not be complete")
	}
}

func TestCompletionMonotonic(t *testing.T) {
	api, _ := newTestAPI(t)

	api.StartStoryRoute("liubei", "")
	api.SetStoryCursor("chapter1_complete", "liubei")
	if !api.IsCampaignComplete("liubei") {
		t.Fatal("expected campaign complete")
	}

	// further mutation never un-completes the route
	api.SetStoryChoice("k", "v", "liubei")
	api.SetSceneState("map", map[string]any{"party": map[string]any{"x": 1, "y": 2}}, "liubei")
	api.AddMilestone("whatever")
	if !api.IsCampaignComplete("liubei") {
		t.Error("campaign completion must be monotonic")
	}
}

func TestIsChapterComplete(t *testing.T) {
	api, _ := newTestAPI(t)

	if api.IsChapterComplete(1) {
		t.Error("fresh chapter should not be complete")
	}
	api.AddMilestone("liubei_complete")
	if api.IsChapterComplete(1) {
		t.Error("chapter 1 needs every declared route complete")
	}
	api.AddMilestone("caocao_complete")
	if !api.IsChapterComplete(1) {
		t.Error("expected chapter 1 complete")
	}

	// chapters without declared routes fall back to a direct milestone
	if api.IsChapterComplete(3) {
		t.Error("unknown chapter should not be complete")
	}
	api.AddMilestone("chapter3_complete")
	if !api.IsChapterComplete(3) {
		t.Error("expected chapter 3 complete via direct milestone")
	}
}

func TestCompletedCampaigns(t *testing.T) {
	api, _ := newTestAPI(t)

	if got := api.CompletedCampaigns(); len(got) != 0 {
		t.Errorf("expected none complete, got %v", got)
	}
	api.AddMilestone("caocao_complete")
	api.AddMilestone("liubei_complete")
	want := []string{"caocao", "liubei"}
	if got := api.CompletedCampaigns(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSessionPointers(t *testing.T) {
	api, store := newTestAPI(t)

	api.SetLastScene("map")
	if api.LastScene() != "map" {
		t.Errorf("expected lastScene map, got %q", api.LastScene())
	}

	api.SetCurrentBattle("daxing")
	if api.CurrentBattle() != "daxing" {
		t.Errorf("expected current battle daxing, got %q", api.CurrentBattle())
	}

	api.SetCurrentCampaign("liubei")
	if api.CurrentCampaign() != "liubei" {
		t.Error("expected current campaign liubei")
	}
	// the active route follows a known campaign id
	if store.Record().Session.Story.ActiveRoute != "liubei" {
		t.Error("expected active route to follow campaign")
	}

	// an id the graph does not know never becomes the active route
	api.SetCurrentCampaign("sunquan")
	if store.Record().Session.Story.ActiveRoute != "liubei" {
		t.Error("expected active route unchanged for unknown campaign")
	}
}

func TestWriteThroughPersistence(t *testing.T) {
	backend := memory.New()
	store, err := save.NewStore(backend, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	api := New(store, story.DefaultGraph(), story.DefaultChapters(), zerolog.Nop())

	api.AddMilestone("prologue_complete")

	// a fresh store over the same backend sees the mutation immediately
	fresh, err := save.NewStore(backend, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if !fresh.Load() {
		t.Fatal("expected a persisted document")
	}
	if !reflect.DeepEqual(fresh.Record().Progress.Milestones, []string{"prologue_complete"}) {
		t.Errorf("expected write-through milestone, got %v", fresh.Record().Progress.Milestones)
	}
}
