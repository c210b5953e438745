package combat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexclash/hexclash-server-go/internal/game/cards"
)

type fixedRNG struct {
	values []float64
	calls  int
}

func (f *fixedRNG) Float64() float64 {
	v := f.values[f.calls%len(f.values)]
	f.calls++
	return v
}

func fighter(category cards.Category, attack, defense, speed, health int) *cards.Instance {
	return &cards.Instance{
		ID:       string(category),
		Category: category,
		Attack:   attack,
		Defense:  defense,
		Speed:    speed,
		Health:   health,
		Level:    1,
		MaxLevel: cards.DefaultMaxLevel,
	}
}

func TestResolveBaseDamage(t *testing.T) {
	rng := &fixedRNG{values: []float64{0.99}}
	r := NewResolver(rng, false)

	attacker := fighter(cards.CategoryAttack, 10, 1, 0, 50)
	defender := fighter(cards.CategoryDefense, 1, 4, 1, 50)

	res := r.Resolve(attacker, defender)
	assert.Equal(t, 8, res.Damage)
	assert.False(t, res.IsCritical)
	assert.Empty(t, res.AbilitiesUsed)
	assert.Equal(t, 1, rng.calls, "critical roll is always drawn")
}

func TestResolveZeroSpeedNeverCrits(t *testing.T) {
	r := NewResolver(&fixedRNG{values: []float64{0}}, false)

	res := r.Resolve(fighter(cards.CategoryAttack, 10, 1, 0, 50), fighter(cards.CategoryAttack, 1, 4, 1, 50))
	assert.False(t, res.IsCritical)
	assert.Equal(t, 8, res.Damage)
}

func TestResolveCriticalAndSpeed(t *testing.T) {
	r := NewResolver(&fixedRNG{values: []float64{0.1}}, false)

	// raw = 6 - 1 = 5; speed 4 -> 5*1.4 = 7; crit chance 0.2 > 0.1 -> 10.5 -> 11
	res := r.Resolve(fighter(cards.CategoryAttack, 6, 1, 4, 50), fighter(cards.CategoryAttack, 1, 2, 1, 50))
	assert.True(t, res.IsCritical)
	assert.Equal(t, 11, res.Damage)
}

func TestResolveFloorsAtOne(t *testing.T) {
	r := NewResolver(&fixedRNG{values: []float64{0.99}}, false)

	res := r.Resolve(fighter(cards.CategoryAttack, 1, 1, 0, 10), fighter(cards.CategoryDefense, 1, 10, 1, 10))
	assert.Equal(t, 1, res.Damage)
}

func TestResolveFiresReadyAbilitiesOnce(t *testing.T) {
	r := NewResolver(&fixedRNG{values: []float64{0.99}}, false)

	attacker := fighter(cards.CategoryAttack, 10, 1, 0, 50)
	attacker.Abilities = []cards.Ability{
		cards.NewAbility("Repulsor Blast", 2, func(_, _ cards.Stats) float64 { return 4 }),
	}
	defender := fighter(cards.CategoryAttack, 1, 4, 1, 50)

	first := r.Resolve(attacker, defender)
	assert.Equal(t, 12, first.Damage)
	assert.Equal(t, []string{"Repulsor Blast"}, first.AbilitiesUsed)
	assert.Equal(t, 2, attacker.Abilities[0].CurrentCooldown)

	second := r.Resolve(attacker, defender)
	assert.Equal(t, 8, second.Damage)
	assert.Empty(t, second.AbilitiesUsed)
}

func TestResolveAppliesAdvantage(t *testing.T) {
	r := NewResolver(&fixedRNG{values: []float64{0.99}}, true)

	// 8 * 1.2 = 9.6 -> 10
	res := r.Resolve(fighter(cards.CategoryAttack, 10, 1, 0, 50), fighter(cards.CategoryRanged, 1, 4, 1, 50))
	assert.Equal(t, 10, res.Damage)

	// 8 * 0.8 = 6.4 -> 6
	res = r.Resolve(fighter(cards.CategoryAttack, 10, 1, 0, 50), fighter(cards.CategoryDefense, 1, 4, 1, 50))
	assert.Equal(t, 6, res.Damage)
}

func TestResolveAtOutOfRange(t *testing.T) {
	r := NewResolver(&fixedRNG{values: []float64{0}}, false)

	attacker := fighter(cards.CategoryAttack, 10, 1, 5, 50)
	attacker.Abilities = []cards.Ability{cards.NewAbility("Smash", 3, func(_, _ cards.Stats) float64 { return 10 })}

	res := r.ResolveAt(attacker, fighter(cards.CategoryAttack, 1, 1, 1, 50), 2)
	assert.Equal(t, 0, res.Damage)
	assert.False(t, res.IsCritical)
	assert.Empty(t, res.AbilitiesUsed)
	assert.True(t, attacker.Abilities[0].Ready(), "unreachable attacks must not spend abilities")
}

func TestDamageAlwaysPositiveWhenInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := NewResolver(rng, true)

	for i := 0; i < 500; i++ {
		attacker := fighter(cards.Categories[rng.Intn(4)], 1+rng.Intn(10), 1+rng.Intn(10), 1+rng.Intn(10), 1+rng.Intn(100))
		defender := fighter(cards.Categories[rng.Intn(4)], 1+rng.Intn(10), 1+rng.Intn(10), 1+rng.Intn(10), 1+rng.Intn(100))
		distance := rng.Intn(4)
		if !CanAttack(attacker, distance) {
			continue
		}
		res := r.ResolveAt(attacker, defender, distance)
		require.GreaterOrEqual(t, res.Damage, 1)
	}
}

func TestCanAttackRanges(t *testing.T) {
	assert.True(t, CanAttack(fighter(cards.CategoryRanged, 1, 1, 1, 1), 3))
	assert.False(t, CanAttack(fighter(cards.CategoryRanged, 1, 1, 1, 1), 4))
	assert.True(t, CanAttack(fighter(cards.CategoryMixed, 1, 1, 1, 1), 2))
	assert.False(t, CanAttack(fighter(cards.CategoryMixed, 1, 1, 1, 1), 3))
	assert.True(t, CanAttack(fighter(cards.CategoryAttack, 1, 1, 1, 1), 1))
	assert.False(t, CanAttack(fighter(cards.CategoryDefense, 1, 1, 1, 1), 2))
	assert.False(t, CanAttack(fighter(cards.CategoryAttack, 1, 1, 1, 0), 1), "dead cards cannot attack")
}

func TestAdvantageTable(t *testing.T) {
	for _, c := range cards.Categories {
		assert.Equal(t, 1.0, Advantage(c, c), "diagonal must be neutral for %s", c)
	}
	assert.Equal(t, 1.2, Advantage(cards.CategoryRanged, cards.CategoryDefense))
	assert.Equal(t, 1.0, Advantage("unknown", cards.CategoryAttack))
}

func TestHealing(t *testing.T) {
	healer := fighter(cards.CategoryDefense, 1, 10, 5, 80)

	// 10*0.8*1.25 = 10, cap floor(80*0.3) = 24
	assert.Equal(t, 10, Healing(healer, fighter(cards.CategoryAttack, 1, 1, 1, 80)))
	// cap floor(20*0.3) = 6
	assert.Equal(t, 6, Healing(healer, fighter(cards.CategoryAttack, 1, 1, 1, 20)))
}
