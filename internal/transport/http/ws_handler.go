package http

import (
	"encoding/json"
	"log"
	"net/http"

	"kidvoice-service/internal/app"
	"kidvoice-service/internal/domain"
	"kidvoice-service/internal/engine"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.SessionService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SessionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startQuizPayload struct {
	Theme string `json:"theme"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type advancePayload struct {
	Direction string `json:"direction"`
}

type decisionPayload struct {
	ID       int    `json:"id"`
	Decision string `json:"decision"`
}

type levelsPayload struct {
	Theme string `json:"theme"`
}

type joinedPayload struct {
	Child      string                        `json:"child"`
	WeekNumber int                           `json:"weekNumber"`
	Week       []domain.WeeklyChallengeEntry `json:"week"`
	Themes     []domain.Theme                `json:"themes"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// session use cases. One connection serves one child.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	child := r.URL.Query().Get("child")
	if child == "" {
		http.Error(w, "missing child", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if err := h.service.Join(r.Context(), child); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	events, cancel, err := h.service.Subscribe(r.Context(), child)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(r.Context(), child)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: ev.Type, Payload: ev.Payload}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	week, weekNumber, err := h.service.WeekEntries(r.Context(), child)
	if err != nil {
		week, weekNumber = nil, 1
	}
	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{
		Child:      child,
		WeekNumber: weekNumber,
		Week:       week,
		Themes:     domain.Themes(),
	}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, child, inbound, send)
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, child string, inbound inboundMessage, send chan outboundMessage[any]) {
	ctx := r.Context()
	fail := func(err error) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}

	switch inbound.Type {
	case "startQuiz":
		var payload startQuizPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(err)
			return
		}
		if _, err := h.service.StartQuiz(ctx, child, domain.ThemeID(payload.Theme)); err != nil {
			fail(err)
		}
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(err)
			return
		}
		// Guarded no-ops (already answered, unknown text) stay silent.
		if _, _, err := h.service.SubmitAnswer(ctx, child, payload.Text); err != nil {
			fail(err)
		}
	case "advance":
		var payload advancePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(err)
			return
		}
		dir := engine.Next
		if payload.Direction == "previous" {
			dir = engine.Previous
		}
		if err := h.service.Advance(ctx, child, dir); err != nil {
			fail(err)
		}
	case "finish":
		summary, err := h.service.FinishQuiz(ctx, child)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[any]{Type: "quizSummary", Payload: summary}
	case "reset":
		if err := h.service.ResetQuiz(ctx, child); err != nil {
			fail(err)
		}
	case "spin":
		if _, err := h.service.Spin(ctx, child); err != nil {
			fail(err)
		}
	case "decision":
		var payload decisionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(err)
			return
		}
		decision := domain.DecisionDone
		if payload.Decision == "skip" {
			decision = domain.DecisionSkip
		}
		if _, err := h.service.RecordDecision(ctx, child, payload.ID, decision); err != nil {
			fail(err)
		}
	case "newWeek":
		if _, _, err := h.service.StartNewWeek(ctx, child); err != nil {
			fail(err)
		}
	case "levels":
		var payload levelsPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(err)
			return
		}
		levels, err := h.service.Levels(ctx, child, domain.ThemeID(payload.Theme))
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[any]{Type: "levels", Payload: levels}
	default:
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}
