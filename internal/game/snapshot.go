package game

import (
	"github.com/hexclash/hexclash-server-go/internal/game/board"
	"github.com/hexclash/hexclash-server-go/internal/game/cards"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
	"github.com/hexclash/hexclash-server-go/internal/game/rules"
	"github.com/hexclash/hexclash-server-go/internal/game/watchers"
)

// Snapshot is a copy of the match taken after a command completed. Every
// listener and every Manager.Snapshot call gets its own copy. Loot lists the
// loser's templates while the winner may still claim one.
type Snapshot struct {
	MatchID        string                    `json:"match_id"`
	Epoch          uint64                    `json:"epoch"`
	Started        bool                      `json:"started"`
	GameOver       bool                      `json:"game_over"`
	Winner         player.Side               `json:"winner,omitempty"`
	Turn           int                       `json:"turn"`
	MaxTurns       int                       `json:"max_turns"`
	Phase          rules.Phase               `json:"phase"`
	ActiveSide     player.Side               `json:"active_side,omitempty"`
	SelectedCardID string                    `json:"selected_card_id,omitempty"`
	Players        []PlayerView              `json:"players"`
	Board          BoardView                 `json:"board"`
	Stats          map[player.Side]StatsView `json:"stats"`
	Messages       []Message                 `json:"messages"`
	Loot           []string                  `json:"loot,omitempty"`
}

// PlayerView is the public state of one side.
type PlayerView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Side        player.Side `json:"side"`
	Health      int         `json:"health"`
	MaxHealth   int         `json:"max_health"`
	Mana        int         `json:"mana"`
	MaxMana     int         `json:"max_mana"`
	Hand        []CardView  `json:"hand"`
	DeckSize    int         `json:"deck_size"`
	DiscardSize int         `json:"discard_size"`
	FallenSize  int         `json:"fallen_size"`
	Score       int         `json:"score"`
	Active      bool        `json:"active"`
	Collection  []string    `json:"collection"`
}

// CardView is a card instance as seen from outside the engine.
type CardView struct {
	ID          string         `json:"id"`
	TemplateID  string         `json:"template_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Category    cards.Category `json:"category"`
	Rarity      cards.Rarity   `json:"rarity"`
	Attack      int            `json:"attack"`
	Defense     int            `json:"defense"`
	Speed       int            `json:"speed"`
	Health      int            `json:"health"`
	Level       int            `json:"level"`
	MaxLevel    int            `json:"max_level"`
	Cost        int            `json:"cost"`
	Abilities   []AbilityView  `json:"abilities"`
}

// AbilityView is the public state of an ability.
type AbilityView struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Cooldown        int    `json:"cooldown"`
	CurrentCooldown int    `json:"current_cooldown"`
}

// BoardView lists every tile in enumeration order.
type BoardView struct {
	Geometry board.Kind `json:"geometry"`
	Tiles    []TileView `json:"tiles"`
}

// TileView is one board cell.
type TileView struct {
	X           int           `json:"x"`
	Y           int           `json:"y"`
	Zone        board.Zone    `json:"zone"`
	Occupant    *OccupantView `json:"occupant,omitempty"`
	Highlighted bool          `json:"highlighted"`
	Selectable  bool          `json:"selectable"`
}

// OccupantView is the card standing on a tile.
type OccupantView struct {
	Side player.Side `json:"side"`
	Card CardView    `json:"card"`
}

// StatsView holds the match statistics of one side.
type StatsView struct {
	CardsPlayed     int `json:"cards_played"`
	CardsDrawn      int `json:"cards_drawn"`
	DamageToCards   int `json:"damage_to_cards"`
	DamageToPlayers int `json:"damage_to_players"`
	CardsDestroyed  int `json:"cards_destroyed"`
	DamageThisTurn  int `json:"damage_this_turn"`
}

// Player returns the view of side, or nil before the match started.
func (s Snapshot) Player(side player.Side) *PlayerView {
	for i := range s.Players {
		if s.Players[i].Side == side {
			return &s.Players[i]
		}
	}
	return nil
}

// Tile returns the tile at c.
func (s Snapshot) Tile(c board.Coord) (TileView, bool) {
	for _, t := range s.Board.Tiles {
		if t.X == c.X && t.Y == c.Y {
			return t, true
		}
	}
	return TileView{}, false
}

func (m *Manager) snapshotLocked() Snapshot {
	st := m.state
	snap := Snapshot{
		MatchID:        st.matchID,
		Epoch:          m.epoch,
		Started:        st.started,
		GameOver:       st.over,
		Winner:         st.winner,
		Turn:           st.turn(),
		Phase:          st.phase(),
		SelectedCardID: st.selected,
		Players:        []PlayerView{},
		Board:          BoardView{Geometry: m.settings.Board.Kind, Tiles: []TileView{}},
		Stats:          make(map[player.Side]StatsView),
		Messages:       append([]Message{}, st.messages...),
	}
	if snap.Board.Geometry == "" {
		snap.Board.Geometry = board.KindSquare
	}
	if !st.started {
		return snap
	}

	snap.MaxTurns = st.turns.MaxTurns()
	snap.ActiveSide = st.active().Side
	for _, p := range st.players {
		snap.Players = append(snap.Players, m.playerView(p))
		snap.Stats[p.Side] = m.statsView(p.Side)
	}
	for _, t := range st.board.Tiles() {
		tv := TileView{
			X:           t.Coord.X,
			Y:           t.Coord.Y,
			Zone:        t.Zone,
			Highlighted: t.Highlighted,
			Selectable:  t.Selectable,
		}
		if t.Occupant != nil {
			if card, ok := st.inPlay[t.Occupant.CardID]; ok {
				tv.Occupant = &OccupantView{Side: t.Occupant.Side, Card: m.cardView(card)}
			}
		}
		snap.Board.Tiles = append(snap.Board.Tiles, tv)
	}
	if st.over && st.lootOpen {
		snap.Loot = templateIDs(m.collections[1-sideIndex(st.winner)])
	}
	return snap
}

// clone deep-copies the slices and maps of s.
func (s Snapshot) clone() Snapshot {
	out := s
	out.Players = make([]PlayerView, len(s.Players))
	for i, p := range s.Players {
		p.Hand = cloneCards(p.Hand)
		p.Collection = append([]string(nil), p.Collection...)
		out.Players[i] = p
	}
	out.Board.Tiles = make([]TileView, len(s.Board.Tiles))
	for i, t := range s.Board.Tiles {
		if t.Occupant != nil {
			occ := *t.Occupant
			occ.Card.Abilities = append([]AbilityView{}, occ.Card.Abilities...)
			t.Occupant = &occ
		}
		out.Board.Tiles[i] = t
	}
	out.Stats = make(map[player.Side]StatsView, len(s.Stats))
	for side, st := range s.Stats {
		out.Stats[side] = st
	}
	out.Messages = append([]Message{}, s.Messages...)
	if s.Loot != nil {
		out.Loot = append([]string(nil), s.Loot...)
	}
	return out
}

func cloneCards(in []CardView) []CardView {
	out := make([]CardView, len(in))
	for i, c := range in {
		c.Abilities = append([]AbilityView{}, c.Abilities...)
		out[i] = c
	}
	return out
}

func templateIDs(templates []cards.Template) []string {
	ids := make([]string, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}
	return ids
}

func (m *Manager) playerView(p *player.Player) PlayerView {
	hand := make([]CardView, 0, len(p.Hand))
	for _, c := range p.Hand {
		hand = append(hand, m.cardView(c))
	}
	return PlayerView{
		ID:          p.ID,
		Name:        p.Name,
		Side:        p.Side,
		Health:      p.Health,
		MaxHealth:   p.MaxHealth,
		Mana:        p.Mana.Available(),
		MaxMana:     p.Mana.Max(),
		Hand:        hand,
		DeckSize:    len(p.Deck),
		DiscardSize: len(p.Discard),
		FallenSize:  len(p.Fallen),
		Score:       p.Score,
		Active:      p.Active,
		Collection:  templateIDs(m.collections[sideIndex(p.Side)]),
	}
}

func (m *Manager) cardView(c *cards.Instance) CardView {
	abilities := make([]AbilityView, 0, len(c.Abilities))
	for _, a := range c.Abilities {
		abilities = append(abilities, AbilityView{
			Name:            a.Name,
			Description:     a.Description,
			Cooldown:        a.Cooldown,
			CurrentCooldown: a.CurrentCooldown,
		})
	}
	return CardView{
		ID:          c.ID,
		TemplateID:  c.TemplateID,
		Name:        c.Name,
		Description: c.Description,
		Category:    c.Category,
		Rarity:      c.Rarity,
		Attack:      c.Attack,
		Defense:     c.Defense,
		Speed:       c.Speed,
		Health:      c.Health,
		Level:       c.Level,
		MaxLevel:    c.MaxLevel,
		Cost:        m.pricing.CostOf(c),
		Abilities:   abilities,
	}
}

func (m *Manager) statsView(side player.Side) StatsView {
	var sv StatsView
	key := string(side)
	if w, ok := m.watchers.GetWatcher(watchers.KeyCardsPlayed).(*watchers.CardsPlayedWatcher); ok {
		sv.CardsPlayed = w.GetCount(key)
	}
	if w, ok := m.watchers.GetWatcher(watchers.KeyCardsDrawn).(*watchers.CardsDrawnWatcher); ok {
		sv.CardsDrawn = w.GetCount(key)
	}
	if w, ok := m.watchers.GetWatcher(watchers.KeyDamageDealt).(*watchers.DamageDealtWatcher); ok {
		sv.DamageToCards = w.GetToCards(key)
		sv.DamageToPlayers = w.GetToPlayers(key)
	}
	if w, ok := m.watchers.GetWatcher(watchers.KeyCardsDestroyed).(*watchers.CardsDestroyedWatcher); ok {
		sv.CardsDestroyed = w.GetCount(key)
	}
	if w, ok := m.watchers.GetWatcher(watchers.KeyDamageThisTurn).(*watchers.DamageThisTurnWatcher); ok {
		sv.DamageThisTurn = w.GetDamage(key)
	}
	return sv
}
