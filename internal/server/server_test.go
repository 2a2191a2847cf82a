package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franckalain/dermscan/internal/analyzer"
	"github.com/franckalain/dermscan/internal/history"
	"github.com/franckalain/dermscan/internal/models"
	"github.com/franckalain/dermscan/internal/scoring"
)

type wsFrame struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func dialTestServer(t *testing.T) (*websocket.Conn, history.Store) {
	t.Helper()

	store := history.NewFileStore(filepath.Join(t.TempDir(), "saved.json"))
	srv := New(store, analyzer.NewStubAnalyzer(), false)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWebSocket)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, store
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data map[string]string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": msgType, "data": data}))
}

func read(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func readChatMessage(t *testing.T, conn *websocket.Conn) models.ChatMessage {
	t.Helper()
	frame := read(t, conn)
	require.Equal(t, "message", frame.Type)
	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(frame.Data, &msg))
	return msg
}

func TestAnalyzeFlow(t *testing.T) {
	conn, _ := dialTestServer(t)

	send(t, conn, "analyze", map[string]string{"text": "Water and Glycerin"})

	user := readChatMessage(t, conn)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "Water and Glycerin", user.Content)

	reply := readChatMessage(t, conn)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.False(t, reply.IsError)
	require.NotNil(t, reply.Analysis)
	assert.Len(t, reply.Analysis.Ingredients, 2)
}

func TestAnalyze_EmptySubmission(t *testing.T) {
	conn, _ := dialTestServer(t)

	send(t, conn, "analyze", map[string]string{})

	frame := read(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.Contains(t, frame.Message, "Nothing to analyze")
}

func TestSaveAndHistoryFlow(t *testing.T) {
	conn, _ := dialTestServer(t)

	send(t, conn, "analyze", map[string]string{"text": "Niacinamide"})
	readChatMessage(t, conn) // user turn
	reply := readChatMessage(t, conn)
	require.NotNil(t, reply.Analysis)

	send(t, conn, "save_analysis", map[string]string{"message_id": reply.ID, "name": "My Toner"})
	frame := read(t, conn)
	require.Equal(t, "analysis_saved", frame.Type)

	var saved models.SavedAnalysis
	require.NoError(t, json.Unmarshal(frame.Data, &saved))
	assert.Equal(t, "My Toner", saved.Name)
	assert.Equal(t, "My Toner", saved.Result.ProductName)

	send(t, conn, "get_history", nil)
	frame = read(t, conn)
	require.Equal(t, "history", frame.Type)

	var items []struct {
		models.SavedAnalysis
		Band scoring.Band `json:"band"`
	}
	require.NoError(t, json.Unmarshal(frame.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, saved.ID, items[0].ID)
	assert.Equal(t, scoring.ScoreBand(saved.Result.OverallScore), items[0].Band)

	// Loading a saved entry re-injects it into the conversation.
	send(t, conn, "load_saved", map[string]string{"id": saved.ID})
	loaded := readChatMessage(t, conn)
	assert.Equal(t, models.RoleAssistant, loaded.Role)
	assert.Equal(t, "Loaded saved analysis: My Toner", loaded.Content)
	require.NotNil(t, loaded.Analysis)

	// Deleting returns the refreshed history.
	send(t, conn, "delete_analysis", map[string]string{"id": saved.ID})
	frame = read(t, conn)
	require.Equal(t, "history", frame.Type)
	require.NoError(t, json.Unmarshal(frame.Data, &items))
	assert.Empty(t, items)
}

func TestSaveAnalysis_RequiresName(t *testing.T) {
	conn, _ := dialTestServer(t)

	send(t, conn, "analyze", map[string]string{"text": "Niacinamide"})
	readChatMessage(t, conn)
	reply := readChatMessage(t, conn)

	send(t, conn, "save_analysis", map[string]string{"message_id": reply.ID})
	frame := read(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.Contains(t, frame.Message, "name is required")
}

func TestSaveAnalysis_UnknownMessage(t *testing.T) {
	conn, _ := dialTestServer(t)

	send(t, conn, "save_analysis", map[string]string{"message_id": "nope", "name": "X"})
	frame := read(t, conn)
	assert.Equal(t, "error", frame.Type)
}

func TestClearHistory(t *testing.T) {
	conn, store := dialTestServer(t)

	_, err := store.Add(context.Background(), models.AnalysisResult{OverallScore: 90, Summary: "s"}, "seeded")
	require.NoError(t, err)

	send(t, conn, "clear_history", nil)
	frame := read(t, conn)
	require.Equal(t, "history", frame.Type)

	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(frame.Data, &items))
	assert.Empty(t, items)
}

func TestUnknownMessageType(t *testing.T) {
	conn, _ := dialTestServer(t)

	send(t, conn, "frobnicate", nil)
	frame := read(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.Equal(t, "Unknown message type", frame.Message)
}
