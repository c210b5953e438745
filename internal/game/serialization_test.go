package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexclash/hexclash-server-go/internal/game/board"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
)

// TestComputeChecksum verifies that checksums are computed correctly
func TestComputeChecksum(t *testing.T) {
	snap := startedManager(t, nil).Snapshot()

	checksum, err := snap.ComputeChecksum()
	require.NoError(t, err)
	assert.Len(t, checksum.Hash, 64)
	assert.Equal(t, checksumVersion, checksum.Version)

	ok, err := snap.VerifyChecksum(checksum)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestDeterministicChecksum verifies that the stats map, whose iteration
// order is random, does not leak into the hash
func TestDeterministicChecksum(t *testing.T) {
	snap := startedManager(t, nil).Snapshot()
	first, err := snap.ComputeChecksum()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := snap.ComputeChecksum()
		require.NoError(t, err)
		assert.Equal(t, first.Hash, again.Hash)
	}
}

func TestChecksumIgnoresMatchIDAndMessages(t *testing.T) {
	snap := startedManager(t, nil).Snapshot()
	before, err := snap.ComputeChecksum()
	require.NoError(t, err)

	snap.MatchID = "other"
	snap.Messages = append(snap.Messages, Message{Kind: MessageFlavor, Text: "late"})
	ok, err := snap.VerifyChecksum(before)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChecksumDetectsChanges(t *testing.T) {
	m := startedManager(t, nil)
	before, err := m.Snapshot().ComputeChecksum()
	require.NoError(t, err)

	card := m.Snapshot().Player(player.SideA).Hand[0]
	require.NoError(t, m.SelectCard(card.ID))
	require.NoError(t, m.PlayCard(board.Coord{X: 0, Y: 0}))

	snap := m.Snapshot()
	ok, err := snap.VerifyChecksum(before)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyChecksumErrors(t *testing.T) {
	snap := &Snapshot{}

	_, err := snap.VerifyChecksum(nil)
	assert.Error(t, err)

	_, err = snap.VerifyChecksum(&SerializationChecksum{Hash: "x", Version: checksumVersion + 1})
	assert.Error(t, err)
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := startedManager(t, nil).Snapshot()
	b := startedManager(t, func(s *Settings) { s.Seed = testSeed + 1 }).Snapshot()

	ca, err := a.ComputeChecksum()
	require.NoError(t, err)
	cb, err := b.ComputeChecksum()
	require.NoError(t, err)
	assert.NotEqual(t, ca.Hash, cb.Hash)
}
