package session

import (
	"time"

	"github.com/antoniostano/parla/internal/mode"
)

// InitializeRequest defines the payload for starting a practice session.
type InitializeRequest struct {
	Mode string `json:"mode"`
}

// InitializeResponse returns the session metadata plus the locally rendered
// welcome turn for the resolved mode.
type InitializeResponse struct {
	SessionID       string    `json:"session_id"`
	Mode            mode.ID   `json:"mode"`
	Title           string    `json:"title"`
	Icon            string    `json:"icon"`
	Badge           string    `json:"badge"`
	WelcomeMessage  string    `json:"welcome_message"`
	Status          Status    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	InactivityTTLMS int64     `json:"inactivity_ttl_ms"`
}
