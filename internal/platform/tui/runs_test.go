package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zordux/Last-Vector/internal/storage"
)

func seededStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	for _, ep := range []storage.Episode{
		{Seed: 1, Policy: "heuristic", Kills: 40, Seconds: 120, Outcome: storage.OutcomeDied},
		{Seed: 2, Policy: "heuristic", Kills: 12, Seconds: 45, Outcome: storage.OutcomeDied},
		{Seed: 3, Policy: "zz-remote", Kills: 5, Seconds: 30, Outcome: storage.OutcomeAborted},
	} {
		if _, err := store.SaveEpisode(ep); err != nil {
			t.Fatalf("SaveEpisode() error = %v", err)
		}
	}
	return store
}

func TestRunsModelTabs(t *testing.T) {
	m := NewRunsModel(seededStore(t), 120, 40)

	if m.Policy() != allPolicies {
		t.Errorf("first tab = %q, want %q", m.Policy(), allPolicies)
	}
	if got := len(m.Episodes()); got != 3 {
		t.Errorf("all tab shows %d episodes, want 3", got)
	}

	// Policies only found in the store still get a tab.
	found := false
	for _, id := range m.policies {
		if id == "zz-remote" {
			found = true
		}
	}
	if !found {
		t.Errorf("tabs %v missing stored policy", m.policies)
	}
}

func TestRunsModelSwitchesPolicy(t *testing.T) {
	m := NewRunsModel(seededStore(t), 120, 40)

	for i := 0; i < len(m.policies) && m.Policy() != "heuristic"; i++ {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(RunsModel)
	}
	if m.Policy() != "heuristic" {
		t.Fatalf("could not select heuristic tab from %v", m.policies)
	}

	eps := m.Episodes()
	if len(eps) != 2 || eps[0].Kills != 40 {
		t.Fatalf("heuristic episodes = %+v", eps)
	}
	view := m.View()
	if !strings.Contains(view, "2 episodes") || !strings.Contains(view, "best 40") {
		t.Errorf("summary missing from view:\n%s", view)
	}

	// Shift+tab wraps back.
	prev := m.cursor
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := next.(RunsModel).cursor; got != (prev-1+len(m.policies))%len(m.policies) {
		t.Errorf("cursor after shift+tab = %d", got)
	}
}

func TestRunsModelWithoutStore(t *testing.T) {
	m := NewRunsModel(nil, 60, 20)

	if len(m.Episodes()) != 0 {
		t.Error("expected no episodes without a store")
	}
	if !strings.Contains(m.View(), "No episodes recorded yet") {
		t.Error("empty message missing")
	}
}

func TestRunsModelQuit(t *testing.T) {
	m := NewRunsModel(nil, 60, 20)
	next, cmd := m.Update(runes('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(RunsModel).View() != "" {
		t.Error("view after quit should be empty")
	}
}
