package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientUtterance MessageType = "client_utterance"
	TypeClientControl   MessageType = "client_control"
	TypeTranscript      MessageType = "transcript"
	TypeAssistantReply  MessageType = "assistant_reply"
	TypeSystemEvent     MessageType = "system_event"
	TypeErrorEvent      MessageType = "error_event"
)

// Control actions accepted inside a client_control message.
const (
	ActionStartListening = "start_listening"
	ActionStopListening  = "stop_listening"
	ActionStopSpeaking   = "stop_speaking"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientUtterance carries one learner message, typed or transcribed.
type ClientUtterance struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
	Source    string      `json:"source,omitempty"`
	TSMs      int64       `json:"ts_ms,omitempty"`
}

type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
}

// Transcript echoes what speech recognition heard, so the client can show
// the utterance as the learner's own message before the reply arrives.
type Transcript struct {
	Type       MessageType `json:"type"`
	SessionID  string      `json:"session_id"`
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence,omitempty"`
	TSMs       int64       `json:"ts_ms"`
}

type AssistantReply struct {
	Type       MessageType `json:"type"`
	SessionID  string      `json:"session_id"`
	Text       string      `json:"text"`
	Correction string      `json:"correction,omitempty"`
	Fallback   bool        `json:"fallback,omitempty"`
	TurnCount  int         `json:"turn_count,omitempty"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Source    string      `json:"source"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

// ParseClientMessage decodes one inbound websocket frame. Only the two
// client-originated variants are accepted; everything else is a protocol
// violation the caller reports back as an error_event.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientUtterance:
		var msg ClientUtterance
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || strings.TrimSpace(msg.Text) == "" {
			return nil, errors.New("invalid client_utterance")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" {
			return nil, errors.New("invalid client_control")
		}
		switch msg.Action {
		case ActionStartListening, ActionStopListening, ActionStopSpeaking:
			return msg, nil
		default:
			return nil, fmt.Errorf("unknown control action %q", msg.Action)
		}
	default:
		return nil, ErrUnsupportedType
	}
}
