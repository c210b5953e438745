// Package catalog loads and validates the card templates a match is dealt
// from.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hexclash/hexclash-server-go/internal/game/cards"
)

// ErrNotFound is returned when a template id is not in the catalog.
var ErrNotFound = errors.New("card template not found")

// Source supplies card templates.
type Source interface {
	Templates(ctx context.Context) ([]cards.Template, error)
}

// Catalog is a validated, ordered set of templates.
type Catalog struct {
	templates []cards.Template
	byID      map[string]int
}

// New validates templates and builds a catalog over a copy of them.
func New(templates []cards.Template) (*Catalog, error) {
	if err := Validate(templates); err != nil {
		return nil, err
	}
	c := &Catalog{
		templates: append([]cards.Template(nil), templates...),
		byID:      make(map[string]int, len(templates)),
	}
	for i, t := range c.templates {
		c.byID[t.ID] = i
	}
	return c, nil
}

// Load reads every template from src and validates them.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	templates, err := src.Templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load card templates: %w", err)
	}
	return New(templates)
}

// Open loads the catalog from PostgreSQL when databaseURL is set and from the
// YAML file at path otherwise.
func Open(ctx context.Context, path, databaseURL string, logger *zap.Logger) (*Catalog, error) {
	if databaseURL == "" {
		return Load(ctx, FileSource{Path: path})
	}
	src, err := NewPostgresSource(ctx, databaseURL, logger)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return Load(ctx, src)
}

// Validate checks each template and that ids and names are unique.
func Validate(templates []cards.Template) error {
	if len(templates) == 0 {
		return errors.New("catalog has no cards")
	}
	ids := make(map[string]bool, len(templates))
	names := make(map[string]bool, len(templates))
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return err
		}
		if ids[t.ID] {
			return fmt.Errorf("duplicate card id %q", t.ID)
		}
		if names[t.Name] {
			return fmt.Errorf("duplicate card name %q", t.Name)
		}
		ids[t.ID] = true
		names[t.Name] = true
	}
	return nil
}

// Templates returns the templates in catalog order.
func (c *Catalog) Templates() []cards.Template {
	return append([]cards.Template(nil), c.templates...)
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (cards.Template, error) {
	i, ok := c.byID[id]
	if !ok {
		return cards.Template{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return c.templates[i], nil
}

func (c *Catalog) Len() int {
	return len(c.templates)
}

// Default returns the built-in starter set.
func Default() []cards.Template {
	return []cards.Template{
		{
			ID: "iron_man", Name: "Iron Man", Description: "Genius, billionaire, philanthropist",
			Category: cards.CategoryRanged, Rarity: cards.RarityEpic,
			Attack: 8, Defense: 5, Speed: 7, Health: 80,
			Abilities: []cards.AbilityTemplate{
				{Name: "Repulsor Blast", Description: "Bonus damage from speed", Cooldown: 2, Effect: cards.Effect{Kind: cards.EffectSpeedRatio, Value: 0.5}},
			},
		},
		{
			ID: "captain_america", Name: "Captain America", Description: "The first avenger",
			Category: cards.CategoryDefense, Rarity: cards.RarityRare,
			Attack: 6, Defense: 9, Speed: 4, Health: 90,
			Abilities: []cards.AbilityTemplate{
				{Name: "Shield Throw", Description: "Hits through armour", Cooldown: 3, Effect: cards.Effect{Kind: cards.EffectDefensePierce, Value: 0.5}},
			},
		},
		{
			ID: "hulk", Name: "Hulk", Description: "The strongest there is",
			Category: cards.CategoryAttack, Rarity: cards.RarityLegendary,
			Attack: 10, Defense: 8, Speed: 3, Health: 100,
			Abilities: []cards.AbilityTemplate{
				{Name: "Smash", Description: "Raw strength", Cooldown: 3, Effect: cards.Effect{Kind: cards.EffectAttackRatio, Value: 0.4}},
			},
		},
		{
			ID: "thor", Name: "Thor", Description: "God of thunder",
			Category: cards.CategoryMixed, Rarity: cards.RarityEpic,
			Attack: 9, Defense: 8, Speed: 5, Health: 95,
			Abilities: []cards.AbilityTemplate{
				{Name: "Thunder Strike", Description: "Flat lightning damage", Cooldown: 2, Effect: cards.Effect{Kind: cards.EffectFlat, Value: 4}},
			},
		},
		{
			ID: "black_widow", Name: "Black Widow", Description: "Master spy",
			Category: cards.CategoryAttack, Rarity: cards.RarityRare,
			Attack: 7, Defense: 4, Speed: 8, Health: 60,
			Abilities: []cards.AbilityTemplate{
				{Name: "Widow's Bite", Description: "Finishes wounded foes", Cooldown: 2, Effect: cards.Effect{Kind: cards.EffectMissingHealth, Value: 0.5}},
			},
		},
		{
			ID: "hawkeye", Name: "Hawkeye", Description: "Never misses",
			Category: cards.CategoryRanged, Rarity: cards.RarityCommon,
			Attack: 6, Defense: 3, Speed: 6, Health: 55,
		},
		{
			ID: "shield_agent", Name: "S.H.I.E.L.D. Agent", Description: "Trained and expendable",
			Category: cards.CategoryAttack, Rarity: cards.RarityCommon,
			Attack: 4, Defense: 4, Speed: 4, Health: 40,
		},
		{
			ID: "vision", Name: "Vision", Description: "Synthezoid guardian",
			Category: cards.CategoryDefense, Rarity: cards.RarityEpic,
			Attack: 7, Defense: 10, Speed: 4, Health: 85,
		},
	}
}
