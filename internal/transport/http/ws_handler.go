package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"training-quiz-service/internal/app"
	"training-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
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

type loginPayload struct {
	Name string `json:"name"`
	Team string `json:"team"`
}

type indexPayload struct {
	Index int `json:"index"`
}

type answerPayload struct {
	Index  int           `json:"index"`
	Answer domain.Answer `json:"answer"`
}

type welcomePayload struct {
	PlayerID string          `json:"playerId"`
	State    domain.Snapshot `json:"state"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		playerID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.service.Connect(playerID)
	defer h.service.Release(playerID)

	ctx := r.Context()
	state, err := h.service.State(ctx, playerID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	updates, cancel, err := h.service.Watch(ctx, playerID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", "player", playerID, "error", err)
				return
			}
		}
	}()

	// A watch ends when the session is reset, from this socket or another
	// one of the same player; the relay then follows the new session.
	go func() {
		defer close(updatesDone)
		for {
			if !relay(updates, send, closeSignals) {
				cancel()
				return
			}
			cancel()
			var werr error
			if updates, cancel, werr = h.service.Watch(ctx, playerID); werr != nil {
				h.logger.Warn("ws rewatch failed", "player", playerID, "error", werr)
				return
			}
			current, err := h.service.State(ctx, playerID)
			if err != nil {
				continue
			}
			select {
			case send <- outboundMessage[any]{Type: "state", Payload: current}:
			case <-closeSignals:
				cancel()
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "welcome", Payload: welcomePayload{PlayerID: playerID, State: state}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.handle(r, playerID, inbound); ok {
			send <- msg
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// relay forwards updates as state messages. It reports false once the socket
// is closing and true when the watch itself ended.
func relay(updates <-chan domain.Snapshot, send chan<- outboundMessage[any], closeSignals <-chan struct{}) bool {
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return true
			}
			select {
			case send <- outboundMessage[any]{Type: "state", Payload: update}:
			case <-closeSignals:
				return false
			}
		case <-closeSignals:
			return false
		}
	}
}

func (h *WSHandler) handle(r *http.Request, playerID string, inbound inboundMessage) (outboundMessage[any], bool) {
	ctx := r.Context()
	switch inbound.Type {
	case "login":
		var payload loginPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return invalidPayload("login"), true
		}
		if _, err := h.service.Login(ctx, playerID, payload.Name, payload.Team); err != nil {
			return errorMessage(err), true
		}
		// the resulting state arrives through the watch
		return outboundMessage[any]{}, false
	case "overview":
		overview, err := h.service.Overview(ctx, playerID)
		if err != nil {
			return errorMessage(err), true
		}
		return outboundMessage[any]{Type: "overview", Payload: overview}, true
	case "open":
		var payload indexPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return invalidPayload("open"), true
		}
		view, err := h.service.OpenQuestion(ctx, playerID, payload.Index)
		if err != nil {
			return errorMessage(err), true
		}
		return outboundMessage[any]{Type: "question", Payload: view}, true
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return invalidPayload("answer"), true
		}
		result, err := h.service.SubmitAnswer(ctx, playerID, payload.Index, payload.Answer)
		if err != nil {
			return errorMessage(err), true
		}
		return outboundMessage[any]{Type: "verdict", Payload: result}, true
	case "reset":
		if err := h.service.Reset(ctx, playerID); err != nil {
			return errorMessage(err), true
		}
		state, err := h.service.State(ctx, playerID)
		if err != nil {
			return errorMessage(err), true
		}
		return outboundMessage[any]{Type: "state", Payload: state}, true
	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}, true
	}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

func invalidPayload(kind string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid " + kind + " payload"}}
}
