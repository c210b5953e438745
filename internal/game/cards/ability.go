package cards

import "fmt"

// EffectKind names one of the built-in ability effect formulas.
type EffectKind string

const (
	EffectFlat          EffectKind = "flat"
	EffectAttackRatio   EffectKind = "attack_ratio"
	EffectDefensePierce EffectKind = "defense_pierce"
	EffectSpeedRatio    EffectKind = "speed_ratio"
	EffectMissingHealth EffectKind = "missing_health"
)

// EffectFunc computes bonus damage from attacker and defender snapshots. It
// must not mutate anything.
type EffectFunc func(attacker, defender Stats) float64

// Effect is the data form of an ability effect, as stored in a catalog.
type Effect struct {
	Kind  EffectKind `yaml:"kind" json:"kind"`
	Value float64    `yaml:"value" json:"value"`
}

// Func resolves the effect into its formula.
func (e Effect) Func() (EffectFunc, error) {
	v := e.Value
	switch e.Kind {
	case EffectFlat:
		return func(_, _ Stats) float64 { return v }, nil
	case EffectAttackRatio:
		return func(a, _ Stats) float64 { return v * float64(a.Attack) }, nil
	case EffectDefensePierce:
		return func(_, d Stats) float64 { return v * float64(d.Defense) }, nil
	case EffectSpeedRatio:
		return func(a, _ Stats) float64 { return v * float64(a.Speed) }, nil
	case EffectMissingHealth:
		return func(_, d Stats) float64 { return v * float64(MaxHealth-d.Health) / 10 }, nil
	default:
		return nil, fmt.Errorf("unknown effect kind %q", e.Kind)
	}
}

// AbilityTemplate is the catalog form of an ability.
type AbilityTemplate struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Cooldown    int    `yaml:"cooldown" json:"cooldown"`
	Effect      Effect `yaml:"effect" json:"effect"`
}

// Ability is the runtime state of one ability on one card instance.
type Ability struct {
	Name            string
	Description     string
	Cooldown        int
	CurrentCooldown int
	// Scale multiplies the effect output; it grows with card level.
	Scale  float64
	effect EffectFunc
}

// NewAbility builds a ready ability around an arbitrary effect function.
func NewAbility(name string, cooldown int, fn EffectFunc) Ability {
	return Ability{
		Name:     name,
		Cooldown: max(cooldown, 0),
		Scale:    1,
		effect:   fn,
	}
}

func newAbilityFromTemplate(at AbilityTemplate) (Ability, error) {
	fn, err := at.Effect.Func()
	if err != nil {
		return Ability{}, fmt.Errorf("ability %s: %w", at.Name, err)
	}
	a := NewAbility(at.Name, at.Cooldown, fn)
	a.Description = at.Description
	return a, nil
}

// Ready reports whether the ability can fire this resolution.
func (a *Ability) Ready() bool {
	return a.CurrentCooldown == 0
}

// Bonus evaluates the scaled effect without touching cooldown state.
func (a *Ability) Bonus(attacker, defender Stats) float64 {
	if a.effect == nil {
		return 0
	}
	return a.Scale * a.effect(attacker, defender)
}

// Trigger fires the ability: it returns the bonus and puts the ability on
// cooldown.
func (a *Ability) Trigger(attacker, defender Stats) float64 {
	bonus := a.Bonus(attacker, defender)
	a.CurrentCooldown = a.Cooldown
	return bonus
}
