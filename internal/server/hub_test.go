package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/hexclash/hexclash-server-go/internal/catalog"
	"github.com/hexclash/hexclash-server-go/internal/config"
	"github.com/hexclash/hexclash-server-go/internal/game"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
	"github.com/hexclash/hexclash-server-go/internal/game/rules"
)

func testHub(t *testing.T, factory MatchFactory) (*Hub, *httptest.Server) {
	t.Helper()
	if factory == nil {
		factory = func(logger *zap.Logger) (*game.Manager, error) {
			settings := game.DefaultSettings()
			settings.Seed = 42
			return game.NewManager(logger, settings, catalog.Default())
		}
	}
	hub := NewHub(config.ServerConfig{SendQueue: 64}, factory, zaptest.NewLogger(t))
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerMessage) bool) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("no matching message: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func isState(msg ServerMessage) bool {
	return msg.Type == MsgState && msg.State != nil
}

func TestStartGamePushesState(t *testing.T) {
	_, srv := testHub(t, nil)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: game.CommandStartGame})
	msg := readUntil(t, conn, isState)

	assert.True(t, msg.State.Started)
	assert.Equal(t, 1, msg.State.Turn)
	assert.Equal(t, rules.PhasePlay, msg.State.Phase)
	assert.Equal(t, player.SideA, msg.State.ActiveSide)
	assert.Len(t, msg.State.Players, 2)
}

func TestRejectedCommandIsReported(t *testing.T) {
	_, srv := testHub(t, nil)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: game.CommandStartGame})
	readUntil(t, conn, isState)

	send(t, conn, ClientMessage{Type: game.CommandPlayCard})
	msg := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgRejected })
	assert.Equal(t, game.CommandPlayCard, msg.Command)
	assert.Equal(t, string(game.ReasonNoSelection), msg.Reason)

	send(t, conn, ClientMessage{Type: game.CommandStartGame})
	msg = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgRejected })
	assert.Equal(t, string(game.ReasonAlreadyStarted), msg.Reason)
	send(t, conn, ClientMessage{Type: game.CommandClaimLoot, CardID: "iron_man"})
	msg = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgRejected })
	assert.Equal(t, game.CommandClaimLoot, msg.Command)
	assert.Equal(t, string(game.ReasonNoLoot), msg.Reason)
}

func TestUnknownAndMalformedMessages(t *testing.T) {
	_, srv := testHub(t, nil)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: "dance"})
	msg := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgError })
	assert.Contains(t, msg.Detail, "dance")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	msg = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgError })
	assert.Contains(t, msg.Detail, "invalid message")
}

func TestSnapshotRequest(t *testing.T) {
	_, srv := testHub(t, nil)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: MsgSnapshot})
	msg := readUntil(t, conn, isState)
	assert.False(t, msg.State.Started)
}

func TestBotAnswersNextTurn(t *testing.T) {
	_, srv := testHub(t, nil)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: game.CommandStartGame})
	readUntil(t, conn, isState)

	send(t, conn, ClientMessage{Type: game.CommandNextTurn})
	msg := readUntil(t, conn, func(m ServerMessage) bool {
		return isState(m) && m.State.Turn == 3 && m.State.ActiveSide == player.SideA
	})

	b := msg.State.Player(player.SideB)
	require.NotNil(t, b)
	assert.Equal(t, rules.PhasePlay, msg.State.Phase)
	assert.Equal(t, 1, msg.State.Stats[player.SideB].CardsPlayed)
}

func TestSessionsAreTracked(t *testing.T) {
	hub, srv := testHub(t, nil)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: MsgSnapshot})
	readUntil(t, conn, isState)
	assert.Equal(t, 1, hub.SessionCount())

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, 1, health["sessions"])

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	assert.Eventually(t, func() bool { return hub.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMatchFactoryFailureClosesConnection(t *testing.T) {
	hub, srv := testHub(t, func(*zap.Logger) (*game.Manager, error) {
		return nil, errors.New("no catalog")
	})
	conn := dial(t, srv)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseInternalServerErr, closeErr.Code)
	assert.Zero(t, hub.SessionCount())
}
