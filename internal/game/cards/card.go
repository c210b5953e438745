package cards

import "fmt"

// Category is the combat role of a card.
type Category string

const (
	CategoryAttack  Category = "attack"
	CategoryDefense Category = "defense"
	CategoryRanged  Category = "ranged"
	CategoryMixed   Category = "mixed"
)

// Categories lists every category in table order.
var Categories = []Category{CategoryAttack, CategoryDefense, CategoryRanged, CategoryMixed}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryAttack, CategoryDefense, CategoryRanged, CategoryMixed:
		return true
	}
	return false
}

// Rarity drives the mana cost of a card.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rarities lists every rarity from lowest to highest rank.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// Stat bounds enforced on every card instance.
const (
	MinStat         = 1
	MaxStat         = 10
	MinHealth       = 1
	MaxHealth       = 100
	DefaultMaxLevel = 5

	levelStatBonus   = 1
	levelHealthBonus = 10
	levelAbilityGain = 1.1
)

// Template is the immutable definition of a card, loaded once at startup and
// copied freely.
type Template struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Category    Category          `yaml:"category" json:"category"`
	Rarity      Rarity            `yaml:"rarity" json:"rarity"`
	Attack      int               `yaml:"attack" json:"attack"`
	Defense     int               `yaml:"defense" json:"defense"`
	Speed       int               `yaml:"speed" json:"speed"`
	Health      int               `yaml:"health" json:"health"`
	MaxLevel    int               `yaml:"max_level" json:"max_level"`
	Abilities   []AbilityTemplate `yaml:"abilities" json:"abilities"`
}

// Validate checks that the template can be instantiated: known category and
// rarity, stats inside their bounds and well-formed abilities.
func (t Template) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("card has no id")
	case t.Name == "":
		return fmt.Errorf("card %s has no name", t.ID)
	case !t.Category.Valid():
		return fmt.Errorf("card %s: unknown category %q", t.ID, t.Category)
	case !t.Rarity.Valid():
		return fmt.Errorf("card %s: unknown rarity %q", t.ID, t.Rarity)
	case t.MaxLevel < 0:
		return fmt.Errorf("card %s: negative max level %d", t.ID, t.MaxLevel)
	}
	stats := []struct {
		name  string
		value int
	}{{"attack", t.Attack}, {"defense", t.Defense}, {"speed", t.Speed}}
	for _, st := range stats {
		if st.value < MinStat || st.value > MaxStat {
			return fmt.Errorf("card %s: %s %d outside [%d, %d]", t.ID, st.name, st.value, MinStat, MaxStat)
		}
	}
	if t.Health < MinHealth || t.Health > MaxHealth {
		return fmt.Errorf("card %s: health %d outside [%d, %d]", t.ID, t.Health, MinHealth, MaxHealth)
	}
	for _, at := range t.Abilities {
		if at.Name == "" {
			return fmt.Errorf("card %s: ability without a name", t.ID)
		}
		if at.Cooldown < 0 {
			return fmt.Errorf("card %s: ability %s has negative cooldown", t.ID, at.Name)
		}
		if _, err := at.Effect.Func(); err != nil {
			return fmt.Errorf("card %s: ability %s: %w", t.ID, at.Name, err)
		}
	}
	return nil
}

// Stats is a read-only view of the numbers an ability effect may inspect.
type Stats struct {
	Category Category
	Attack   int
	Defense  int
	Speed    int
	Health   int
	Level    int
}

// Instance is the runtime copy of a template. An instance is owned by exactly
// one pile or board cell at a time.
type Instance struct {
	ID          string
	TemplateID  string
	Name        string
	Description string
	Category    Category
	Rarity      Rarity
	Attack      int
	Defense     int
	Speed       int
	Health      int
	Level       int
	MaxLevel    int
	Abilities   []Ability
}

// NewInstance creates a level 1 instance of t with clamped stats and every
// ability off cooldown.
func NewInstance(t Template, id string) (*Instance, error) {
	maxLevel := t.MaxLevel
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}

	abilities := make([]Ability, 0, len(t.Abilities))
	for _, at := range t.Abilities {
		ability, err := newAbilityFromTemplate(at)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", t.ID, err)
		}
		abilities = append(abilities, ability)
	}

	return &Instance{
		ID:          id,
		TemplateID:  t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Rarity:      t.Rarity,
		Attack:      clamp(t.Attack, MinStat, MaxStat),
		Defense:     clamp(t.Defense, MinStat, MaxStat),
		Speed:       clamp(t.Speed, MinStat, MaxStat),
		Health:      clamp(t.Health, MinHealth, MaxHealth),
		Level:       1,
		MaxLevel:    maxLevel,
		Abilities:   abilities,
	}, nil
}

// Stats returns the current numbers of the instance.
func (c *Instance) Stats() Stats {
	return Stats{
		Category: c.Category,
		Attack:   c.Attack,
		Defense:  c.Defense,
		Speed:    c.Speed,
		Health:   c.Health,
		Level:    c.Level,
	}
}

// LevelUp raises the level by one and improves stats and ability output.
// It returns false when the card is already at its max level.
func (c *Instance) LevelUp() bool {
	if c.Level >= c.MaxLevel {
		return false
	}
	c.Level++
	c.Attack = min(c.Attack+levelStatBonus, MaxStat)
	c.Defense = min(c.Defense+levelStatBonus, MaxStat)
	c.Speed = min(c.Speed+levelStatBonus, MaxStat)
	c.Health = min(c.Health+levelHealthBonus, MaxHealth)
	for i := range c.Abilities {
		c.Abilities[i].Scale *= levelAbilityGain
	}
	return true
}

// Damage removes up to amount health and returns how much was removed.
func (c *Instance) Damage(amount int) int {
	if amount <= 0 {
		return 0
	}
	applied := min(amount, c.Health)
	c.Health -= applied
	return applied
}

// Heal restores up to amount health, capped at MaxHealth, and returns how much
// was restored.
func (c *Instance) Heal(amount int) int {
	if amount <= 0 || c.IsDead() {
		return 0
	}
	applied := min(amount, MaxHealth-c.Health)
	c.Health += applied
	return applied
}

// IsDead reports whether the card has no health left.
func (c *Instance) IsDead() bool {
	return c.Health <= 0
}

// TickCooldowns moves every ability one turn closer to being ready.
func (c *Instance) TickCooldowns() {
	for i := range c.Abilities {
		if c.Abilities[i].CurrentCooldown > 0 {
			c.Abilities[i].CurrentCooldown--
		}
	}
}

// Clone returns a deep copy of the instance.
func (c *Instance) Clone() *Instance {
	out := *c
	out.Abilities = append([]Ability(nil), c.Abilities...)
	return &out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
