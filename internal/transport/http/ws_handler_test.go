package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"kidvoice-service/internal/app"
	"kidvoice-service/internal/domain"
	"kidvoice-service/internal/infra/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	questions := map[string][]domain.QuestionItem{
		"violence_ecole": {
			{ID: 0, Prompt: "Frapper, c'est bien ?", Options: []string{"Vrai", "Faux"}, Answer: "Faux"},
		},
	}
	challenges := map[string][]domain.ChallengeItem{
		"challenges": {
			{ID: 1, Description: "Dis bonjour"},
		},
	}
	loader := memory.NewStaticPoolLoader(questions, challenges)
	service := app.NewSessionService(
		memory.NewSessionStore(),
		memory.NewPoolRepository(loader, time.Minute),
		memory.NewProfileStore(),
		app.Config{QuizSize: 1},
	)
	handler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server, child string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?child=" + child
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readMessage(t *testing.T, conn *websocket.Conn, wantType string) json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read %s: %v", wantType, err)
	}
	if msg.Type != wantType {
		t.Fatalf("expected %s message, got %s (%s)", wantType, msg.Type, msg.Payload)
	}
	return msg.Payload
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := conn.WriteJSON(wsMessage{Type: msgType, Payload: raw}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func TestServeWSRejectsMissingChild(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestServeWSQuizFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server, "Lea")

	var joined struct {
		Child      string         `json:"child"`
		WeekNumber int            `json:"weekNumber"`
		Themes     []domain.Theme `json:"themes"`
	}
	if err := json.Unmarshal(readMessage(t, conn, "joined"), &joined); err != nil {
		t.Fatalf("decode joined: %v", err)
	}
	if joined.Child != "Lea" || joined.WeekNumber != 1 {
		t.Fatalf("unexpected joined payload %+v", joined)
	}
	if len(joined.Themes) != 4 {
		t.Fatalf("expected 4 themes, got %d", len(joined.Themes))
	}

	sendMessage(t, conn, "startQuiz", map[string]string{"theme": "ecole"})
	var state domain.SessionState
	if err := json.Unmarshal(readMessage(t, conn, "quizStarted"), &state); err != nil {
		t.Fatalf("decode quizStarted: %v", err)
	}
	if len(state.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(state.Questions))
	}

	sendMessage(t, conn, "answer", map[string]string{"text": "Faux"})
	var outcome domain.AnswerOutcomeEvent
	if err := json.Unmarshal(readMessage(t, conn, "answerOutcome"), &outcome); err != nil {
		t.Fatalf("decode answerOutcome: %v", err)
	}
	if !outcome.Correct || outcome.Index != 0 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	var complete domain.SessionCompleteEvent
	if err := json.Unmarshal(readMessage(t, conn, "sessionComplete"), &complete); err != nil {
		t.Fatalf("decode sessionComplete: %v", err)
	}
	if complete.TierName != "gold" || complete.Message != "BRAVO !" {
		t.Fatalf("unexpected completion %+v", complete)
	}

	sendMessage(t, conn, "finish", struct{}{})
	var summary domain.QuizSummary
	if err := json.Unmarshal(readMessage(t, conn, "quizSummary"), &summary); err != nil {
		t.Fatalf("decode quizSummary: %v", err)
	}
	if !summary.PerfectScore || summary.Total != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	sendMessage(t, conn, "levels", map[string]string{"theme": "ecole"})
	var levels []domain.Level
	if err := json.Unmarshal(readMessage(t, conn, "levels"), &levels); err != nil {
		t.Fatalf("decode levels: %v", err)
	}
	if len(levels) != domain.LevelCount || levels[0].Progress != 1.0 {
		t.Fatalf("unexpected levels %+v", levels[:1])
	}
}

func TestServeWSWheelFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server, "Tom")
	readMessage(t, conn, "joined")

	sendMessage(t, conn, "spin", struct{}{})
	var spin domain.SpinResultEvent
	if err := json.Unmarshal(readMessage(t, conn, "spinResult"), &spin); err != nil {
		t.Fatalf("decode spinResult: %v", err)
	}
	if spin.Item == nil || spin.Item.ID != 1 {
		t.Fatalf("expected the single challenge drawn, got %+v", spin)
	}

	sendMessage(t, conn, "decision", map[string]any{"id": spin.Item.ID, "decision": "done"})
	var decision domain.DecisionRecordedEvent
	if err := json.Unmarshal(readMessage(t, conn, "decisionRecorded"), &decision); err != nil {
		t.Fatalf("decode decisionRecorded: %v", err)
	}
	if decision.ID != spin.Item.ID || decision.Decision != "done" {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestServeWSUnknownType(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server, "Lea")
	readMessage(t, conn, "joined")

	sendMessage(t, conn, "danse", struct{}{})
	var errMsg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(readMessage(t, conn, "error"), &errMsg); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errMsg.Message == "" {
		t.Fatalf("expected error message")
	}
}
