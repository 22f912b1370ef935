package registry

import (
	"context"
	"testing"

	"github.com/Zordux/Last-Vector/internal/sim"
)

type stubPolicy struct{ id string }

func (p stubPolicy) ID() string        { return p.id }
func (p stubPolicy) Title() string     { return "Stub " + p.id }
func (p stubPolicy) Reset(seed uint64) {}
func (p stubPolicy) Act(ctx context.Context, obs []float32) (sim.Action, error) {
	return sim.NoOp(), nil
}

func TestRegisterAndCreate(t *testing.T) {
	Register("stub-a", func() Policy { return stubPolicy{id: "stub-a"} })

	if !Exists("stub-a") {
		t.Fatal("stub-a not registered")
	}
	p, err := Create("stub-a")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.ID() != "stub-a" {
		t.Errorf("ID() = %q", p.ID())
	}

	found := false
	for _, info := range List() {
		if info.ID == "stub-a" {
			found = true
			if info.Title != "Stub stub-a" {
				t.Errorf("title = %q", info.Title)
			}
		}
	}
	if !found {
		t.Error("List() missing stub-a")
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("does-not-exist"); err == nil {
		t.Error("Create() of an unknown id returned no error")
	}
	if Exists("does-not-exist") {
		t.Error("Exists() reported an unknown id")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("stub-b", func() Policy { return stubPolicy{id: "stub-b"} })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register("stub-b", func() Policy { return stubPolicy{id: "stub-b"} })
}

func TestListSorted(t *testing.T) {
	Register("stub-z", func() Policy { return stubPolicy{id: "stub-z"} })
	Register("stub-c", func() Policy { return stubPolicy{id: "stub-c"} })

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID > list[i].ID {
			t.Fatalf("List() not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}
}
