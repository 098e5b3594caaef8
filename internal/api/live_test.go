package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/flat-stake/internal/session"
)

func dialLive(t *testing.T) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := httptest.NewServer(newTestServer(t, ctx).Router())
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestLiveSessionInitialSnapshot(t *testing.T) {
	conn := dialLive(t)

	msg := readMessage(t, conn)
	assert.Equal(t, MsgSnapshot, msg.Type)
	assert.NotEmpty(t, msg.SessionID)
	require.NotNil(t, msg.State)
	assert.Equal(t, int64(10000), msg.State.Budget)
	require.NotNil(t, msg.View)
	assert.True(t, msg.View.Visible)
	assert.Equal(t, "6,700", msg.View.Rows[0].StakeText)
}

func TestLiveSessionMutations(t *testing.T) {
	conn := dialLive(t)
	first := readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: session.OpSetBudget, Value: "20000"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgState, msg.Type)
	assert.Equal(t, first.SessionID, msg.SessionID)
	assert.Equal(t, session.OpSetBudget, msg.Operation)
	assert.Equal(t, int64(20000), msg.State.Budget)
	assert.Equal(t, "13,300", msg.View.Rows[0].StakeText)
	assert.Equal(t, "6,700", msg.View.Rows[1].StakeText)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: session.OpAddOutcome}))
	msg = readMessage(t, conn)
	require.Len(t, msg.State.Outcomes, 3)
	assert.Equal(t, 3, msg.State.Outcomes[2].ID)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: session.OpUpdateOdds, ID: 3, Value: "10"}))
	msg = readMessage(t, conn)
	assert.Equal(t, session.OpUpdateOdds, msg.Operation)
	assert.Equal(t, 10.0, msg.State.Outcomes[2].Odds)
	assert.Equal(t, "3 runners", msg.View.OutcomeCount)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: session.OpRemoveOutcome, ID: 42}))
	msg = readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.NotEmpty(t, msg.Error)
}

func TestLiveSessionResetNeedsConfirmation(t *testing.T) {
	conn := dialLive(t)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: session.OpReset}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: session.OpReset, Confirm: true}))
	msg = readMessage(t, conn)
	assert.Equal(t, session.OpReset, msg.Operation)
	require.Len(t, msg.State.Outcomes, 1)
	assert.Equal(t, 0.0, msg.State.Outcomes[0].Odds)
	assert.False(t, msg.View.Visible)
	assert.Empty(t, msg.Error)
}

func TestLiveSessionShare(t *testing.T) {
	conn := dialLive(t)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgShare}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgPost, msg.Type)
	require.NotNil(t, msg.Post)
	assert.Contains(t, msg.Post.Text, "#1 2.5x 6,700")
}

func TestLiveSessionUnknownMessage(t *testing.T) {
	conn := dialLive(t)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "explode"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Contains(t, msg.Error, "explode")
}

func TestLiveSessionOutcomeLimit(t *testing.T) {
	conn := dialLive(t)
	readMessage(t, conn)

	// the session starts with two outcomes and the default limit is 18
	for i := 0; i < 20; i++ {
		require.NoError(t, conn.WriteJSON(ClientMessage{Type: session.OpAddOutcome}))
	}

	states, errs := 0, 0
	for i := 0; i < 20; i++ {
		msg := readMessage(t, conn)
		switch msg.Type {
		case MsgState:
			states++
			assert.LessOrEqual(t, len(msg.State.Outcomes), 18)
		case MsgError:
			errs++
			assert.Equal(t, "at most 18 outcomes", msg.Error)
		}
	}
	assert.Equal(t, 16, states)
	assert.Equal(t, 4, errs)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgSnapshot}))
	msg := readMessage(t, conn)
	assert.Len(t, msg.State.Outcomes, 18)
}

func TestLiveSessionOddsOutOfRange(t *testing.T) {
	conn := dialLive(t)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: session.OpUpdateOdds, ID: 1, Value: "1e20"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgState, msg.Type)
	assert.Contains(t, msg.Error, "out of range")
	require.NotNil(t, msg.View)
	assert.False(t, msg.View.Visible)
}
