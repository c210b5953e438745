package combat

import (
	"math"

	"github.com/hexclash/hexclash-server-go/internal/game/cards"
)

const (
	defenseFactor      = 0.5
	speedDamageBonus   = 0.1
	critChancePerSpeed = 0.05
	critMultiplier     = 1.5
	minDamage          = 1

	healDefenseFactor = 0.8
	healSpeedBonus    = 0.05
	healCapRatio      = 0.3
)

// RNG is the random source used for critical rolls. *rand.Rand satisfies it.
type RNG interface {
	Float64() float64
}

// Result is the outcome of one attack resolution.
type Result struct {
	Damage        int
	IsCritical    bool
	AbilitiesUsed []string
}

// Resolver computes damage and healing. It holds no match state; ability
// cooldowns on the attacker are the only thing Resolve mutates.
type Resolver struct {
	rng       RNG
	advantage bool
}

// NewResolver creates a resolver drawing critical rolls from rng. When
// advantage is set, the category matchup table scales every hit.
func NewResolver(rng RNG, advantage bool) *Resolver {
	return &Resolver{rng: rng, advantage: advantage}
}

// Resolve computes the damage attacker deals to defender and fires every ready
// ability on the attacker. It must be called at most once per attack.
func (r *Resolver) Resolve(attacker, defender *cards.Instance) Result {
	raw := math.Max(minDamage, float64(attacker.Attack)-float64(defender.Defense)*defenseFactor)
	raw *= 1 + float64(attacker.Speed)*speedDamageBonus

	result := Result{AbilitiesUsed: []string{}}
	if r.rng != nil && r.rng.Float64() < float64(attacker.Speed)*critChancePerSpeed {
		raw *= critMultiplier
		result.IsCritical = true
	}

	as, ds := attacker.Stats(), defender.Stats()
	for i := range attacker.Abilities {
		ability := &attacker.Abilities[i]
		if !ability.Ready() {
			continue
		}
		raw += ability.Trigger(as, ds)
		result.AbilitiesUsed = append(result.AbilitiesUsed, ability.Name)
	}

	if r.advantage {
		raw *= Advantage(attacker.Category, defender.Category)
	}

	result.Damage = max(int(math.Round(raw)), minDamage)
	return result
}

// ResolveAt resolves an attack across distance. An attack that cannot reach
// returns a zero result and leaves cooldowns untouched.
func (r *Resolver) ResolveAt(attacker, defender *cards.Instance, distance int) Result {
	if !CanAttack(attacker, distance) {
		return Result{AbilitiesUsed: []string{}}
	}
	return r.Resolve(attacker, defender)
}

// Healing returns how much healer restores to target: defense scaled by speed,
// capped at 30% of the target's current health.
func Healing(healer, target *cards.Instance) int {
	amount := int(math.Round(float64(healer.Defense) * healDefenseFactor * (1 + float64(healer.Speed)*healSpeedBonus)))
	limit := int(math.Floor(float64(target.Health) * healCapRatio))
	return max(min(amount, limit), 0)
}
