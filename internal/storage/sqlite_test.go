package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func episode(policy string, kills int, seconds float64) Episode {
	return Episode{
		Seed:       42,
		Policy:     policy,
		Difficulty: "normal",
		Ticks:      uint64(seconds * 60),
		Seconds:    seconds,
		Kills:      kills,
		ShotsFired: 10,
		ShotsHit:   kills,
		Reward:     float64(kills) - 1,
		Outcome:    OutcomeDied,
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	ep := episode("heuristic", 12, 95.5)
	ep.Seed = 1 << 63 // must survive the signed column
	ep.Digest = 0xfeedface_deadbeef
	ep.DamageTaken = 100
	ep.DamageDealt = 240.5
	ep.Upgrades = 3

	id, err := store.SaveEpisode(ep)
	if err != nil {
		t.Fatalf("SaveEpisode() failed: %v", err)
	}
	if id == "" {
		t.Fatal("SaveEpisode() returned an empty ID")
	}

	got, err := store.EpisodeByID(id)
	if err != nil {
		t.Fatalf("EpisodeByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("EpisodeByID() found nothing")
	}

	if got.Seed != ep.Seed || got.Digest != ep.Digest {
		t.Errorf("seed/digest = %d/%x, want %d/%x", got.Seed, got.Digest, ep.Seed, ep.Digest)
	}
	if got.Kills != 12 || got.Ticks != ep.Ticks || got.Seconds != 95.5 {
		t.Errorf("Unexpected episode: %+v", got)
	}
	if got.DamageDealt != 240.5 || got.Upgrades != 3 || got.Outcome != OutcomeDied {
		t.Errorf("Unexpected episode: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not parsed")
	}
}

func TestStoreKeepsProvidedID(t *testing.T) {
	store := openTestStore(t)

	ep := episode("idle", 0, 10)
	ep.ID = "fixed-id"
	id, err := store.SaveEpisode(ep)
	if err != nil {
		t.Fatalf("SaveEpisode() failed: %v", err)
	}
	if id != "fixed-id" {
		t.Errorf("ID = %q, want fixed-id", id)
	}

	if _, err := store.SaveEpisode(ep); err == nil {
		t.Error("Expected duplicate ID to fail")
	}
}

func TestStoreEpisodeByUnknownID(t *testing.T) {
	store := openTestStore(t)

	got, err := store.EpisodeByID("missing")
	if err != nil {
		t.Fatalf("EpisodeByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for unknown ID, got %+v", got)
	}
}

func TestStoreTopEpisodes(t *testing.T) {
	store := openTestStore(t)

	store.SaveEpisode(episode("heuristic", 5, 60))
	store.SaveEpisode(episode("heuristic", 20, 120))
	store.SaveEpisode(episode("heuristic", 5, 90))
	store.SaveEpisode(episode("random", 50, 30))

	top, err := store.TopEpisodes("heuristic", 10)
	if err != nil {
		t.Fatalf("TopEpisodes() failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("Expected 3 episodes, got %d", len(top))
	}

	// Kills first, then survival time
	if top[0].Kills != 20 {
		t.Errorf("Expected best to have 20 kills, got %d", top[0].Kills)
	}
	if top[1].Seconds != 90 || top[2].Seconds != 60 {
		t.Errorf("Tie not broken by survival: %v, %v", top[1].Seconds, top[2].Seconds)
	}

	all, err := store.TopEpisodes("", 2)
	if err != nil {
		t.Fatalf("TopEpisodes() failed: %v", err)
	}
	if len(all) != 2 || all[0].Policy != "random" {
		t.Errorf("Unexpected cross-policy ranking: %+v", all)
	}
}

func TestStoreRecentEpisodes(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveEpisode(episode("random", i, 10))
	}

	recent, err := store.RecentEpisodes(3)
	if err != nil {
		t.Fatalf("RecentEpisodes() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 episodes, got %d", len(recent))
	}
	if recent[0].Kills != 4 || recent[2].Kills != 2 {
		t.Errorf("Episodes not newest first: %d, %d", recent[0].Kills, recent[2].Kills)
	}
}

func TestStoreBestKills(t *testing.T) {
	store := openTestStore(t)

	// No episodes yet
	best, err := store.BestKills("heuristic")
	if err != nil {
		t.Fatalf("BestKills() failed: %v", err)
	}
	if best != 0 {
		t.Errorf("Expected 0 for empty policy, got %d", best)
	}

	store.SaveEpisode(episode("heuristic", 7, 10))
	store.SaveEpisode(episode("heuristic", 31, 10))
	store.SaveEpisode(episode("heuristic", 12, 10))

	best, err = store.BestKills("heuristic")
	if err != nil {
		t.Fatalf("BestKills() failed: %v", err)
	}
	if best != 31 {
		t.Errorf("Expected 31, got %d", best)
	}
}

func TestStoreClearEpisodes(t *testing.T) {
	store := openTestStore(t)

	store.SaveEpisode(episode("random", 1, 10))
	store.SaveEpisode(episode("random", 2, 10))
	store.SaveEpisode(episode("idle", 0, 10))

	if err := store.ClearEpisodes("random"); err != nil {
		t.Fatalf("ClearEpisodes() failed: %v", err)
	}

	random, _ := store.TopEpisodes("random", 10)
	if len(random) != 0 {
		t.Errorf("Expected 0 random episodes after clear, got %d", len(random))
	}
	idle, _ := store.TopEpisodes("idle", 10)
	if len(idle) != 1 {
		t.Error("Idle episodes should not be affected by clearing random")
	}

	if err := store.ClearEpisodes(""); err != nil {
		t.Fatalf("ClearEpisodes() failed: %v", err)
	}
	rest, _ := store.RecentEpisodes(10)
	if len(rest) != 0 {
		t.Errorf("Expected empty table, got %d", len(rest))
	}
}

func TestStorePolicyStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveEpisode(episode("heuristic", 10, 60))
	truncated := episode("heuristic", 20, 180)
	truncated.Outcome = OutcomeTruncated
	store.SaveEpisode(truncated)
	store.SaveEpisode(episode("idle", 0, 5))

	st, err := store.GetPolicyStats("heuristic")
	if err != nil {
		t.Fatalf("GetPolicyStats() failed: %v", err)
	}
	if st.Episodes != 2 || st.Deaths != 1 {
		t.Errorf("episodes/deaths = %d/%d, want 2/1", st.Episodes, st.Deaths)
	}
	if st.BestKills != 20 || st.MeanKills != 15 || st.TotalKills != 30 {
		t.Errorf("Unexpected kill stats: %+v", st)
	}
	if st.MeanSeconds != 120 || st.LongestRun != 180 {
		t.Errorf("Unexpected survival stats: %+v", st)
	}
	if st.MeanAccuracy != 1.5 {
		t.Errorf("MeanAccuracy = %v, want 1.5", st.MeanAccuracy)
	}

	empty, err := store.GetPolicyStats("nobody")
	if err != nil {
		t.Fatalf("GetPolicyStats() failed: %v", err)
	}
	if empty.Episodes != 0 || empty.Policy != "nobody" {
		t.Errorf("Expected zero stats, got %+v", empty)
	}

	all, err := store.GetAllPolicyStats()
	if err != nil {
		t.Fatalf("GetAllPolicyStats() failed: %v", err)
	}
	if len(all) != 2 || all["idle"] == nil || all["idle"].Episodes != 1 {
		t.Errorf("Unexpected stats map: %v", all)
	}
}

func TestEpisodeAccuracy(t *testing.T) {
	if got := (Episode{}).Accuracy(); got != 0 {
		t.Errorf("Accuracy() without shots = %v", got)
	}
	if got := (Episode{ShotsFired: 4, ShotsHit: 1}).Accuracy(); got != 0.25 {
		t.Errorf("Accuracy() = %v, want 0.25", got)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
