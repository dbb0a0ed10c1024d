package core

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testConfig = `
server:
  web_socket:
    host: 127.0.0.1
    port: 0
  authentication:
    enable: false
game:
  agent_count: 4
  roles:
    3:
      VILLAGER: 2
      WEREWOLF: 1
  phases: [daily-vote, kill]
  dead_can_see_all_roles: true
  auto_start: true
  auto_finish_votings: true
  auto_finish_rounds: true
user_directory:
  ttl: 1m
`

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	user string
}

func launchServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config, err := model.LoadFromBytes([]byte(testConfig))
	require.NoError(t, err)
	server, err := NewServer(*config)
	require.NoError(t, err)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return server, ts
}

func dial(t *testing.T, ts *httptest.Server, user string) *testClient {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn, user: user}
}

func (tc *testClient) next() []byte {
	tc.t.Helper()
	tc.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := tc.conn.ReadMessage()
	require.NoError(tc.t, err, "user %s", tc.user)
	tc.t.Logf("recv %s: %s", tc.user, data)
	return data
}

// until reads messages up to and including the first one of event. Every
// command result on the way must be free of errors.
func (tc *testClient) until(event string) []byte {
	tc.t.Helper()
	for {
		data := tc.next()
		name := gjson.GetBytes(data, "event").String()
		if name == "command-result" {
			assert.False(tc.t, gjson.GetBytes(data, "payload.error").Exists(), "user %s: %s", tc.user, data)
		}
		if name == event {
			return data
		}
	}
}

// lowestPlayerOption picks the option whose player sorts first, so every
// voter agrees on the same target.
func lowestPlayerOption(voting gjson.Result) int64 {
	var best string
	var id int64 = -1
	for _, option := range voting.Get("options").Array() {
		player := option.Get("vars.player").String()
		if player == "" {
			continue
		}
		if id < 0 || player < best {
			best = player
			id = option.Get("id").Int()
		}
	}
	return id
}

func TestGameOverWebSocket(t *testing.T) {
	server, ts := launchServer(t)
	clients := []*testClient{
		dial(t, ts, "gm"),
		dial(t, ts, "p1"),
		dial(t, ts, "p2"),
		dial(t, ts, "p3"),
	}

	var roomID string
	for _, client := range clients {
		joined := client.until("room-joined")
		roomID = gjson.GetBytes(joined, "roomId").String()
		assert.Equal(t, client.user, gjson.GetBytes(joined, "payload.viewer").String())
	}
	require.NotEmpty(t, roomID)
	room, ok := server.Room(roomID)
	require.True(t, ok)

	voters := 0
	for _, client := range clients {
		voting := gjson.GetBytes(client.until("voting-created"), "payload")
		assert.Equal(t, "daily-vote", voting.Get("name").String())
		if !voting.Get("canVote").Bool() {
			assert.Equal(t, room.Leader(), client.user)
			continue
		}
		voters++
		option := lowestPlayerOption(voting)
		require.GreaterOrEqual(t, option, int64(0))
		require.NoError(t, client.conn.WriteJSON(map[string]any{
			"type":   model.C_VOTE,
			"voting": voting.Get("id").String(),
			"option": option,
		}))
	}
	assert.Equal(t, 3, voters)

	for _, client := range clients {
		client.until("game-ended")
	}
	assert.Equal(t, model.G_FINISHED, room.Status())
	require.NotNil(t, room.Winner())

	resp, err := http.Get(ts.URL + "/rooms/" + roomID + "/state?user=p1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, string(model.G_FINISHED), gjson.GetBytes(body, "status").String())
	assert.Equal(t, string(room.Winner().Team), gjson.GetBytes(body, "winner.team").String())
}

func TestCommandWithoutRoom(t *testing.T) {
	_, ts := launchServer(t)
	client := dial(t, ts, "p1")

	require.NoError(t, client.conn.WriteJSON(map[string]any{"type": model.C_STATE}))
	result := client.next()
	assert.Equal(t, "command-result", gjson.GetBytes(result, "event").String())
	assert.Equal(t, ErrNoRoom.Error(), gjson.GetBytes(result, "payload.error").String())

	require.NoError(t, client.conn.WriteMessage(websocket.TextMessage, []byte("{broken")))
	result = client.next()
	assert.Equal(t, ErrInvalidCommand.Error(), gjson.GetBytes(result, "payload.error").String())
}

func TestReconnectReplacesSession(t *testing.T) {
	server, ts := launchServer(t)
	dial(t, ts, "gm")
	first := dial(t, ts, "p1")
	assert.Eventually(t, func() bool { return server.waitingRoom.Len() == 2 }, 5*time.Second, 10*time.Millisecond)

	dial(t, ts, "p1")
	first.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := first.conn.ReadMessage()
	assert.Error(t, err)

	assert.Eventually(t, func() bool {
		_, ok := server.hub.Session("p1")
		return ok && server.waitingRoom.Len() == 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHTTPEndpoints(t *testing.T) {
	_, ts := launchServer(t)

	resp, err := http.Get(ts.URL + "/version")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Server"), "werewolf-room-server/"))
	assert.Equal(t, Version.Version, gjson.GetBytes(body, "version").String())

	resp, err = http.Get(ts.URL + "/rooms/missing/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewServerRejectsUnknownPhase(t *testing.T) {
	config, err := model.LoadFromBytes([]byte(testConfig))
	require.NoError(t, err)
	config.Game.Phases = []string{"daily-vote", "sunset"}
	_, err = NewServer(*config)
	assert.Error(t, err)
}
