package httpapi

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/antoniostano/parla/internal/protocol"
	"github.com/antoniostano/parla/internal/session"
	"github.com/antoniostano/parla/internal/speech"
)

// handleSessionWS serves the realtime channel used by speech-driven
// clients. Each connection gets its own speech bridge; a recognized
// utterance is submitted exactly like a typed message and the reply is
// pushed back (and spoken, when synthesis is available).
func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan any, 64)

	var bridge *speech.Bridge
	bridge = speech.NewBridge(s.recognizer, s.synthesizer, func(ctx context.Context, transcript string) {
		s.enqueue(outbound, protocol.Transcript{
			Type:      protocol.TypeTranscript,
			SessionID: sess.ID,
			Text:      transcript,
			TSMs:      time.Now().UnixMilli(),
		})
		s.runTurn(ctx, sess.ID, transcript, session.OriginTranscribed, outbound, bridge)
	})
	defer bridge.StopSpeaking()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
				if t, ok := messageTypeOf(msg); ok {
					s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
				}
			}
		}
	}()

	s.enqueue(outbound, protocol.SystemEvent{
		Type:      protocol.TypeSystemEvent,
		SessionID: sess.ID,
		Code:      "connected",
		Detail:    capabilitySummary(bridge),
	})

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.enqueue(outbound, protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sess.ID,
				Code:      "invalid_client_message",
				Source:    "gateway",
				Retryable: false,
				Detail:    err.Error(),
			})
			continue
		}

		switch msg := parsed.(type) {
		case protocol.ClientUtterance:
			s.metrics.WSMessages.WithLabelValues("inbound", string(protocol.TypeClientUtterance)).Inc()
			origin := session.OriginTyped
			if msg.Source == "transcribed" {
				origin = session.OriginTranscribed
			}
			go s.runTurn(ctx, sess.ID, msg.Text, origin, outbound, bridge)
		case protocol.ClientControl:
			s.metrics.WSMessages.WithLabelValues("inbound", string(protocol.TypeClientControl)).Inc()
			s.handleControl(ctx, sess.ID, msg.Action, bridge, outbound)
		}
	}

	cancel()
	<-writerDone
	s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()
}

// runTurn submits one utterance and pushes the outcome to the client. A
// guard refusal becomes a system_event rather than an error: the client
// simply waits for the pending reply.
func (s *Server) runTurn(ctx context.Context, sessionID, text string, origin session.Origin, outbound chan<- any, bridge *speech.Bridge) {
	res, err := s.pipe.Submit(ctx, sessionID, text, origin)
	if err != nil {
		s.enqueue(outbound, protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			SessionID: sessionID,
			Code:      "submit_failed",
			Source:    "pipeline",
			Retryable: false,
			Detail:    err.Error(),
		})
		return
	}
	if !res.Accepted {
		s.enqueue(outbound, protocol.SystemEvent{
			Type:      protocol.TypeSystemEvent,
			SessionID: sessionID,
			Code:      "turn_rejected",
			Detail:    "a reply is already pending or the message was empty",
		})
		return
	}

	reply := protocol.AssistantReply{
		Type:       protocol.TypeAssistantReply,
		SessionID:  res.SessionID,
		Text:       res.Reply,
		Correction: res.Correction,
		Fallback:   res.Fallback,
	}
	if sess, err := s.sessions.Get(sessionID); err == nil {
		reply.TurnCount = sess.TurnCount
	}
	s.enqueue(outbound, reply)

	if bridge.CanSpeak() {
		if err := bridge.Speak(ctx, res.Reply); err != nil {
			log.Printf("tts failed for %s: %v", sessionID, err)
		}
	}
}

func (s *Server) handleControl(ctx context.Context, sessionID, action string, bridge *speech.Bridge, outbound chan<- any) {
	switch action {
	case protocol.ActionStartListening:
		if bridge.State() == speech.InputListening {
			return
		}
		state, err := bridge.ToggleListening(ctx)
		if err != nil {
			s.enqueue(outbound, protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "speech_unavailable",
				Source:    "speech",
				Retryable: false,
				Detail:    err.Error(),
			})
			return
		}
		s.enqueue(outbound, protocol.SystemEvent{
			Type:      protocol.TypeSystemEvent,
			SessionID: sessionID,
			Code:      "input_state",
			Detail:    string(state),
		})
	case protocol.ActionStopListening:
		if bridge.State() != speech.InputListening {
			return
		}
		state, err := bridge.ToggleListening(ctx)
		if err != nil {
			return
		}
		s.enqueue(outbound, protocol.SystemEvent{
			Type:      protocol.TypeSystemEvent,
			SessionID: sessionID,
			Code:      "input_state",
			Detail:    string(state),
		})
	case protocol.ActionStopSpeaking:
		bridge.StopSpeaking()
	}
}

// enqueue never blocks the caller; websocket writes stay single-threaded
// and a saturated client just loses the message.
func (s *Server) enqueue(outbound chan<- any, msg any) {
	select {
	case outbound <- msg:
	default:
		if t, ok := messageTypeOf(msg); ok {
			s.metrics.WSMessages.WithLabelValues("dropped", string(t)).Inc()
		}
	}
}

func capabilitySummary(bridge *speech.Bridge) string {
	caps := make([]string, 0, 2)
	if bridge.CanListen() {
		caps = append(caps, "stt")
	}
	if bridge.CanSpeak() {
		caps = append(caps, "tts")
	}
	if len(caps) == 0 {
		return "text-only"
	}
	return strings.Join(caps, "+")
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.ClientUtterance:
		return m.Type, true
	case protocol.ClientControl:
		return m.Type, true
	case protocol.Transcript:
		return m.Type, true
	case protocol.AssistantReply:
		return m.Type, true
	case protocol.SystemEvent:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
