package sim

import "testing"

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	all := c.All()
	if len(all) != int(UpgradeCount) {
		t.Fatalf("catalog has %d entries, want %d", len(all), UpgradeCount)
	}
	for i, def := range all {
		if def.ID != UpgradeID(i) {
			t.Errorf("entry %d has id %d", i, def.ID)
		}
		if def.MaxStacks < 1 {
			t.Errorf("%s: max stacks %d", def.Name, def.MaxStacks)
		}
		if def.Name == "" || def.Description == "" {
			t.Errorf("entry %d missing text", i)
		}
		if def.ID.String() != def.Name {
			t.Errorf("String() = %q, catalog name %q", def.ID.String(), def.Name)
		}
	}

	all[0].Name = "changed"
	if c.Def(0).Name == "changed" || NewCatalog().Def(0).Name == "changed" {
		t.Error("All() exposed the catalog's definitions")
	}
	if !c.Def(UpgradeSecondWind).Unique {
		t.Error("second wind must be unique")
	}
	if c.Def(UpgradeCount).MaxStacks != 0 {
		t.Error("unknown id should return the zero definition")
	}
	if UpgradeCount.Valid() || UpgradeCount.String() != "Unknown" {
		t.Error("UpgradeCount treated as a real upgrade")
	}
	if UpgradeBigShot.String() != "Big Shot" {
		t.Errorf("String() = %q", UpgradeBigShot.String())
	}
}

func TestUpgradeApplyStopsAtMax(t *testing.T) {
	c := NewCatalog()
	var s UpgradeState

	limit := c.Def(UpgradeBigShot).MaxStacks
	for i := 0; i < limit; i++ {
		if !s.Apply(c, UpgradeBigShot) {
			t.Fatalf("apply %d rejected", i)
		}
	}
	if s.Apply(c, UpgradeBigShot) {
		t.Error("apply past max stacks accepted")
	}
	if s.Level(UpgradeBigShot) != limit {
		t.Errorf("level = %d, want %d", s.Level(UpgradeBigShot), limit)
	}
	if s.Apply(c, UpgradeCount) {
		t.Error("unknown id accepted")
	}
}

func TestUniqueUpgradeConsume(t *testing.T) {
	c := NewCatalog()
	var s UpgradeState

	if s.Available(c, UpgradeSecondWind) {
		t.Error("available before being owned")
	}
	if !s.Apply(c, UpgradeSecondWind) {
		t.Fatal("apply rejected")
	}
	if !s.Consume(c, UpgradeSecondWind) {
		t.Fatal("consume rejected")
	}
	if s.Consume(c, UpgradeSecondWind) {
		t.Error("consumed twice")
	}
	if s.Apply(c, UpgradeSecondWind) {
		t.Error("used unique upgrade applied again")
	}
	if s.Available(c, UpgradeCardio) {
		t.Error("non-unique upgrade reported as available")
	}
}
