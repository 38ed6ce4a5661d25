package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
	"github.com/lgbarn/chess-trainer-go/internal/output"
	"github.com/lgbarn/chess-trainer-go/internal/session"
)

// ChatMessage is one client chat message, over HTTP or the websocket.
type ChatMessage struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// ChatFrame is one websocket reply: either Reply and Blocks, or Error.
type ChatFrame struct {
	Reply  string             `json:"reply,omitempty"`
	Blocks []output.BlockJSON `json:"blocks,omitempty"`
	Error  *APIError          `json:"error,omitempty"`
}

// chat runs one chat turn. The session is marked busy for the duration of
// the agent call, so a second message for the same session fails with
// ErrChatInProgress instead of interleaving.
func (s *Server) chat(ctx context.Context, msg ChatMessage) (*output.ChatJSON, error) {
	if msg.SessionID == "" {
		return nil, errors.Invalid("session_id", "required")
	}
	st, err := s.store.Dispatch(msg.SessionID, session.BeginChat{Text: msg.Text})
	if err != nil {
		return nil, err
	}

	history := st.Transcript[:len(st.Transcript)-1]
	reply, err := s.coach.Chat(ctx, history, msg.Text)

	end := session.EndChat{}
	if err == nil {
		end.Reply = reply.Text
	}
	if _, endErr := s.store.Dispatch(msg.SessionID, end); endErr != nil {
		s.logger.Warn("chat turn not recorded",
			zap.String("session", msg.SessionID),
			zap.Error(endErr))
	}
	if err != nil {
		return nil, err
	}
	return output.ChatToJSON(reply), nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var msg ChatMessage
	if err := decode(w, r, &msg); err != nil {
		s.respondError(w, r, err)
		return
	}
	reply, err := s.chat(r.Context(), msg)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, reply)
}

// handleChatSocket serves chat over a websocket. Each text frame holds a
// ChatMessage and is answered with exactly one ChatFrame. Errors are
// reported in the frame and keep the connection open.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			zap.String("origin", r.Header.Get("Origin")),
			zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-s.closing:
			cancel()
			deadline := time.Now().Add(writeWait)
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			conn.Close()
		case <-ctx.Done():
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}

		var frame ChatFrame
		var msg ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			frame = s.errorFrame(errors.Invalid("message", err.Error()))
		} else if reply, err := s.chat(ctx, msg); err != nil {
			frame = s.errorFrame(err)
		} else {
			frame = ChatFrame{Reply: reply.Reply, Blocks: reply.Blocks}
		}

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

func (s *Server) errorFrame(err error) ChatFrame {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("chat failed", zap.String("code", code), zap.Error(err))
	}
	return ChatFrame{Error: &APIError{Code: code, Message: err.Error()}}
}

// checkOrigin allows requests without an Origin header (non-browser
// clients), same-host origins when no list is configured, and otherwise
// only listed origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.origins) == 0 {
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	return originAllowed(origin, s.origins)
}

// originAllowed supports exact matches, "*" and "*.domain" patterns.
func originAllowed(origin string, allowed []string) bool {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	for _, a := range allowed {
		switch {
		case a == "*":
			return true
		case strings.EqualFold(a, origin):
			return true
		case strings.HasPrefix(a, "*."):
			if strings.HasSuffix(strings.ToLower(host), strings.ToLower(a[1:])) {
				return true
			}
		}
	}
	return false
}
