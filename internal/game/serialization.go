package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/hexclash/hexclash-server-go/internal/game/player"
)

// checksumVersion changes whenever the canonical representation changes.
const checksumVersion = 2

// SerializationChecksum is a deterministic fingerprint of a snapshot. Two
// managers with the same seed fed the same commands produce equal hashes.
type SerializationChecksum struct {
	Hash    string // SHA-256 of the canonical representation
	Version int
}

// ComputeChecksum hashes the rules-relevant part of the snapshot. The match
// ID and the message log are excluded: the former is random and the latter
// may carry flavor text that arrives asynchronously.
func (s Snapshot) ComputeChecksum() (*SerializationChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(s.buildDeterministicRepresentation())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &SerializationChecksum{
		Hash:    hex.EncodeToString(hash.Sum(nil)),
		Version: checksumVersion,
	}, nil
}

// VerifyChecksum reports whether the snapshot still hashes to expected.
func (s Snapshot) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	if expected == nil {
		return false, fmt.Errorf("no checksum to verify against")
	}
	if expected.Version != checksumVersion {
		return false, fmt.Errorf("unsupported checksum version: %d", expected.Version)
	}
	computed, err := s.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

func (s Snapshot) buildDeterministicRepresentation() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "MATCH:%d|%t|%t|%s|%d|%d|%s|%s|%s\n",
		s.Epoch,
		s.Started,
		s.GameOver,
		s.Winner,
		s.Turn,
		s.MaxTurns,
		s.Phase,
		s.ActiveSide,
		s.SelectedCardID,
	)

	// Players keep their seat order
	for _, p := range s.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d/%d|%d/%d|%d|%t|%d|%d|%d\n",
			p.Side,
			p.Name,
			p.Health, p.MaxHealth,
			p.Mana, p.MaxMana,
			p.Score,
			p.Active,
			p.DeckSize,
			p.DiscardSize,
			p.FallenSize,
		)
		fmt.Fprintf(&buf, "  COLLECTION:%s\n", strings.Join(p.Collection, ","))
		// Hand order matters for the player, so it is not sorted
		for _, c := range p.Hand {
			buf.WriteString("  HAND:")
			writeCard(&buf, c)
		}
	}

	for _, t := range s.Board.Tiles {
		if t.Occupant == nil {
			continue
		}
		fmt.Fprintf(&buf, "TILE:%d,%d|%s|%s|", t.X, t.Y, t.Zone, t.Occupant.Side)
		writeCard(&buf, t.Occupant.Card)
	}

	statSides := make([]string, 0, len(s.Stats))
	for side := range s.Stats {
		statSides = append(statSides, string(side))
	}
	sort.Strings(statSides)
	for _, side := range statSides {
		st := s.Stats[player.Side(side)]
		fmt.Fprintf(&buf, "STATS:%s|%d|%d|%d|%d|%d|%d\n",
			side, st.CardsPlayed, st.CardsDrawn, st.DamageToCards, st.DamageToPlayers, st.CardsDestroyed, st.DamageThisTurn)
	}

	if len(s.Loot) > 0 {
		fmt.Fprintf(&buf, "LOOT:%s\n", strings.Join(s.Loot, ","))
	}

	return buf.String()
}

func writeCard(buf *bytes.Buffer, c CardView) {
	cooldowns := make([]string, len(c.Abilities))
	for i, a := range c.Abilities {
		cooldowns[i] = fmt.Sprintf("%s=%d", a.Name, a.CurrentCooldown)
	}
	fmt.Fprintf(buf, "%s|%s|%d/%d/%d|%d|%d/%d|%s\n",
		c.ID,
		c.TemplateID,
		c.Attack, c.Defense, c.Speed,
		c.Health,
		c.Level, c.MaxLevel,
		strings.Join(cooldowns, ","),
	)
}
