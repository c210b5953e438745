package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hexclash/hexclash-server-go/internal/game/cards"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
)

// instanceNamespace scopes deterministic card instance IDs.
var instanceNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("hexclash.card-instance"))

// buildDeck instantiates size cards for side, cycling through the catalog.
// Side B walks the catalog backwards so the two decks differ. Instance IDs are
// derived from the seed and epoch so replays of a seed produce the same IDs.
func buildDeck(templates []cards.Template, side player.Side, size int, seed int64, epoch uint64) ([]*cards.Instance, error) {
	n := len(templates)
	if n == 0 {
		return nil, fmt.Errorf("no card templates")
	}
	deck := make([]*cards.Instance, 0, size)
	for i := 0; i < size; i++ {
		idx := i % n
		if side == player.SideB {
			idx = n - 1 - idx
		}
		tmpl := templates[idx]
		name := fmt.Sprintf("%d|%d|%s|%d|%s", seed, epoch, side, i, tmpl.ID)
		id := uuid.NewSHA1(instanceNamespace, []byte(name)).String()
		card, err := cards.NewInstance(tmpl, id)
		if err != nil {
			return nil, err
		}
		deck = append(deck, card)
	}
	return deck, nil
}
