package cards

import "math"

// BaseCost is the mana cost of a level 1 common card before multipliers.
const BaseCost = 3

var rarityMultiplier = map[Rarity]float64{
	RarityCommon:    1,
	RarityRare:      1.5,
	RarityEpic:      2,
	RarityLegendary: 3,
}

var categoryMultiplier = map[Category]float64{
	CategoryAttack:  1.2,
	CategoryDefense: 1.1,
	CategoryRanged:  1.3,
	CategoryMixed:   1.5,
}

// costEpsilon absorbs float error such as 3*1.2*5 = 17.999...
const costEpsilon = 1e-9

// Pricing computes mana costs.
type Pricing struct {
	// CategoryMultiplier layers the per-category multiplier on top of rarity.
	CategoryMultiplier bool
}

// Cost returns floor(BaseCost * rarity * level [* category]). Unknown rarities
// price as common; unknown categories carry no multiplier.
func (p Pricing) Cost(rarity Rarity, category Category, level int) int {
	if level < 1 {
		level = 1
	}
	mult, ok := rarityMultiplier[rarity]
	if !ok {
		mult = 1
	}
	cost := BaseCost * mult * float64(level)
	if p.CategoryMultiplier {
		if cm, ok := categoryMultiplier[category]; ok {
			cost *= cm
		}
	}
	return int(math.Floor(cost + costEpsilon))
}

// CostOf prices a card instance at its current level.
func (p Pricing) CostOf(c *Instance) int {
	return p.Cost(c.Rarity, c.Category, c.Level)
}
