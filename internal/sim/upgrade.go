package sim

// UpgradeID identifies an upgrade in the catalog.
type UpgradeID uint8

const (
	UpgradeRingOfFire UpgradeID = iota
	UpgradeBigShot
	UpgradePiercingRounds
	UpgradeFrostRounds
	UpgradeFastHands
	UpgradeExtendedMag
	UpgradeCardio
	UpgradeSecondWind

	UpgradeCount // number of upgrade kinds
)

// UpgradeDef is the static definition of one upgrade.
type UpgradeDef struct {
	ID          UpgradeID
	Name        string
	Description string
	MaxStacks   int
	Unique      bool // One-shot: can be consumed once per run
}

// Catalog holds every upgrade definition, indexed by id.
// It is built once by NewCatalog and never modified.
type Catalog struct {
	defs [UpgradeCount]UpgradeDef
}

var upgradeDefs = [UpgradeCount]UpgradeDef{
	{UpgradeRingOfFire, "Ring of Fire", "Burn zombies near you every tick", 5, false},
	{UpgradeBigShot, "Big Shot", "Bigger, harder bullets; slower fire rate", 3, false},
	{UpgradePiercingRounds, "Piercing Rounds", "Bullets pass through one more zombie", 3, false},
	{UpgradeFrostRounds, "Frost Rounds", "Hits slow zombies down", 4, false},
	{UpgradeFastHands, "Fast Hands", "Reload faster", 4, false},
	{UpgradeExtendedMag, "Extended Mag", "More rounds per magazine", 5, false},
	{UpgradeCardio, "Cardio", "More stamina, faster recovery", 5, false},
	{UpgradeSecondWind, "Second Wind", "Survive one lethal blow", 1, true},
}

// NewCatalog builds the upgrade catalog.
func NewCatalog() Catalog {
	return Catalog{defs: upgradeDefs}
}

// Def returns the definition of id. Unknown ids return the zero definition.
func (c Catalog) Def(id UpgradeID) UpgradeDef {
	if id >= UpgradeCount {
		return UpgradeDef{}
	}
	return c.defs[id]
}

// All returns every definition in id order.
func (c Catalog) All() []UpgradeDef {
	out := make([]UpgradeDef, len(c.defs))
	copy(out, c.defs[:])
	return out
}

// String returns the display name of the upgrade.
func (id UpgradeID) String() string {
	if id >= UpgradeCount {
		return "Unknown"
	}
	return upgradeDefs[id].Name
}

// Valid reports whether id names a catalog entry.
func (id UpgradeID) Valid() bool {
	return id < UpgradeCount
}

// UpgradeState is the per-run upgrade bookkeeping.
type UpgradeState struct {
	Levels [UpgradeCount]int
	Used   [UpgradeCount]bool
}

// Level returns the current level of id.
func (s UpgradeState) Level(id UpgradeID) int {
	if id >= UpgradeCount {
		return 0
	}
	return s.Levels[id]
}

// Apply adds one level of id. It is a no-op at max stacks, for a unique
// upgrade that was already used, and for unknown ids.
// It reports whether the level changed.
func (s *UpgradeState) Apply(c Catalog, id UpgradeID) bool {
	if id >= UpgradeCount {
		return false
	}
	def := c.Def(id)
	if s.Levels[id] >= def.MaxStacks {
		return false
	}
	if def.Unique && s.Used[id] {
		return false
	}
	s.Levels[id]++
	return true
}

// Available reports whether a unique upgrade is owned and not yet used.
func (s UpgradeState) Available(c Catalog, id UpgradeID) bool {
	if id >= UpgradeCount || !c.Def(id).Unique {
		return false
	}
	return s.Levels[id] > 0 && !s.Used[id]
}

// Consume marks an owned unique upgrade as used.
// It reports false when the upgrade was not available.
func (s *UpgradeState) Consume(c Catalog, id UpgradeID) bool {
	if !s.Available(c, id) {
		return false
	}
	s.Used[id] = true
	return true
}
