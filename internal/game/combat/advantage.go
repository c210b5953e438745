package combat

import "github.com/hexclash/hexclash-server-go/internal/game/cards"

// advantageTable[attacker][defender].
var advantageTable = map[cards.Category]map[cards.Category]float64{
	cards.CategoryAttack: {
		cards.CategoryAttack:  1.0,
		cards.CategoryDefense: 0.8,
		cards.CategoryRanged:  1.2,
		cards.CategoryMixed:   1.0,
	},
	cards.CategoryDefense: {
		cards.CategoryAttack:  1.2,
		cards.CategoryDefense: 1.0,
		cards.CategoryRanged:  0.8,
		cards.CategoryMixed:   1.0,
	},
	cards.CategoryRanged: {
		cards.CategoryAttack:  0.8,
		cards.CategoryDefense: 1.2,
		cards.CategoryRanged:  1.0,
		cards.CategoryMixed:   1.0,
	},
	cards.CategoryMixed: {
		cards.CategoryAttack:  1.0,
		cards.CategoryDefense: 1.0,
		cards.CategoryRanged:  1.0,
		cards.CategoryMixed:   1.0,
	},
}

var maxRange = map[cards.Category]int{
	cards.CategoryRanged: 3,
	cards.CategoryMixed:  2,
}

// Advantage returns the damage multiplier for an attacker category hitting a
// defender category. Unknown pairs are neutral.
func Advantage(attacker, defender cards.Category) float64 {
	if row, ok := advantageTable[attacker]; ok {
		if v, ok := row[defender]; ok {
			return v
		}
	}
	return 1.0
}

// MaxRange is the furthest distance a category can strike.
func MaxRange(c cards.Category) int {
	if r, ok := maxRange[c]; ok {
		return r
	}
	return 1
}

// CanAttack reports whether attacker reaches a target at distance.
func CanAttack(attacker *cards.Instance, distance int) bool {
	if attacker == nil || attacker.IsDead() || distance < 0 {
		return false
	}
	return distance <= MaxRange(attacker.Category)
}
