package game

import (
	"context"

	"go.uber.org/zap"
)

// FlavorText produces narrative lines for the match log. Implementations fail
// soft: on any error they return canned text or "".
type FlavorText interface {
	BattleIntro(ctx context.Context, playerName, opponentName string) string
	TacticalComment(ctx context.Context, playerName, cardName string) string
}

func (m *Manager) requestIntro(epoch uint64, playerName, opponentName string) {
	if m.flavor == nil {
		return
	}
	m.goFlavor(epoch, func(ctx context.Context) string {
		return m.flavor.BattleIntro(ctx, playerName, opponentName)
	})
}

func (m *Manager) requestComment(epoch uint64, playerName, cardName string) {
	if m.flavor == nil {
		return
	}
	m.goFlavor(epoch, func(ctx context.Context) string {
		return m.flavor.TacticalComment(ctx, playerName, cardName)
	})
}

// goFlavor generates text off the command path. The result is logged only if
// the match that asked for it is still the current one.
func (m *Manager) goFlavor(epoch uint64, generate func(context.Context) string) {
	m.flavorWG.Add(1)
	go func() {
		defer m.flavorWG.Done()

		text := generate(m.ctx)
		if text == "" {
			return
		}

		m.mu.Lock()
		if m.epoch != epoch || !m.state.started {
			m.mu.Unlock()
			m.logger.Debug("dropping stale flavor text", zap.Uint64("epoch", epoch))
			return
		}
		m.state.addMessage(MessageFlavor, text)
		m.enqueueLocked()
		m.mu.Unlock()
		m.flush()
	}()
}

// WaitFlavor blocks until every outstanding flavor request has finished.
func (m *Manager) WaitFlavor() {
	m.flavorWG.Wait()
}
