package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hexclash/hexclash-server-go/internal/game"
	"github.com/hexclash/hexclash-server-go/internal/game/ai"
	"github.com/hexclash/hexclash-server-go/internal/game/board"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client message types. Turn commands use the engine's command names.
const (
	MsgSnapshot = "snapshot"

	MsgState    = "state"
	MsgRejected = "rejected"
	MsgError    = "error"
)

// ClientMessage is a command sent by the UI.
type ClientMessage struct {
	Type   string      `json:"type"`
	CardID string      `json:"card_id,omitempty"`
	At     board.Coord `json:"at"`
	From   board.Coord `json:"from"`
	To     board.Coord `json:"to"`
}

// ServerMessage is pushed to the UI.
type ServerMessage struct {
	Type    string         `json:"type"`
	State   *game.Snapshot `json:"state,omitempty"`
	Command string         `json:"command,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Detail  string         `json:"detail,omitempty"`
}

// Session is one connected UI playing side A against the bot on side B.
type Session struct {
	id     string
	conn   *websocket.Conn
	logger *zap.Logger

	match *game.Manager
	seat  *game.Seat
	unsub []func()

	mu        sync.Mutex
	send      chan []byte
	closed    bool
	closeOnce sync.Once
}

func newSession(id string, conn *websocket.Conn, m *game.Manager, queue int, logger *zap.Logger) *Session {
	s := &Session{
		id:     id,
		conn:   conn,
		logger: logger,
		match:  m,
		seat:   m.Seat(player.SideA),
		send:   make(chan []byte, queue),
	}
	bot := ai.New(logger, m.Seat(player.SideB), nil)
	s.unsub = append(s.unsub,
		m.Subscribe(s.onSnapshot),
		m.Subscribe(bot.OnSnapshot),
	)
	return s
}

func (s *Session) onSnapshot(snap game.Snapshot) {
	s.push(ServerMessage{Type: MsgState, State: &snap})
}

// push queues msg for the writer. A client too slow to drain its queue loses
// the message; the next state push supersedes it anyway.
func (s *Session) push(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
		s.logger.Warn("send queue full, dropping message", zap.String("type", msg.Type))
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		for _, u := range s.unsub {
			u()
		}
		s.match.Close()

		s.mu.Lock()
		s.closed = true
		close(s.send)
		s.mu.Unlock()

		s.conn.Close()
	})
}

func (s *Session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.push(ServerMessage{Type: MsgError, Detail: fmt.Sprintf("invalid message: %v", err)})
			continue
		}
		s.handle(msg)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle runs one client command. Successful commands answer through the
// state listener; failures are answered directly.
func (s *Session) handle(msg ClientMessage) {
	var err error
	switch msg.Type {
	case game.CommandStartGame:
		err = s.match.StartGame()
	case game.CommandResetGame:
		err = s.match.ResetGame()
	case game.CommandSelectCard:
		err = s.seat.SelectCard(msg.CardID)
	case game.CommandPlayCard:
		err = s.seat.PlayCard(msg.At)
	case game.CommandAttack:
		err = s.seat.Attack(msg.From, msg.To)
	case game.CommandHeal:
		err = s.seat.Heal(msg.From, msg.To)
	case game.CommandNextTurn:
		err = s.seat.NextTurn()
	case game.CommandClaimLoot:
		err = s.seat.ClaimLoot(msg.CardID)
	case MsgSnapshot:
		snap := s.seat.Snapshot()
		s.push(ServerMessage{Type: MsgState, State: &snap})
		return
	default:
		s.push(ServerMessage{Type: MsgError, Detail: fmt.Sprintf("unknown message type %q", msg.Type)})
		return
	}
	if err == nil {
		return
	}

	var re *game.RejectedError
	if errors.As(err, &re) {
		s.push(ServerMessage{Type: MsgRejected, Command: re.Command, Reason: string(re.Reason), Detail: re.Detail})
		return
	}
	s.logger.Error("command failed", zap.String("command", msg.Type), zap.Error(err))
	s.push(ServerMessage{Type: MsgError, Command: msg.Type, Detail: err.Error()})
}
