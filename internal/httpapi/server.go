package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/antoniostano/parla/internal/config"
	"github.com/antoniostano/parla/internal/mode"
	"github.com/antoniostano/parla/internal/observability"
	"github.com/antoniostano/parla/internal/pipeline"
	"github.com/antoniostano/parla/internal/session"
	"github.com/antoniostano/parla/internal/speech"
)

// Server exposes the conversation core over HTTP: the /chat turn endpoint,
// session lifecycle, a websocket channel for speech-driven clients, and the
// embedded practice UI.
type Server struct {
	cfg         config.Config
	sessions    *session.Manager
	pipe        *pipeline.Pipeline
	metrics     *observability.Metrics
	recognizer  speech.Recognizer
	synthesizer speech.Synthesizer
	upgrader    websocket.Upgrader
	static      http.Handler
}

func New(cfg config.Config, sessions *session.Manager, pipe *pipeline.Pipeline, metrics *observability.Metrics, recognizer speech.Recognizer, synthesizer speech.Synthesizer) *Server {
	return &Server{
		cfg:         cfg,
		sessions:    sessions,
		pipe:        pipe,
		metrics:     metrics,
		recognizer:  recognizer,
		synthesizer: synthesizer,
		static:      newStaticHandler(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other websites cannot drive a learner's
				// session if the service is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Handle("/ui/*", http.StripPrefix("/ui/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/chat", s.handleChat)
	r.Post("/v1/session", s.handleInitializeSession)
	r.Get("/v1/session/modes", s.handleListModes)
	r.Post("/v1/session/{id}/end", s.handleEndSession)
	r.Get("/v1/session/ws", s.handleSessionWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

type chatRequest struct {
	UserMessage string `json:"user_message"`
	Mode        string `json:"mode"`
	SessionID   string `json:"session_id"`
}

type chatResponse struct {
	AIReply           string  `json:"ai_reply"`
	GrammarCorrection string  `json:"grammar_correction,omitempty"`
	SessionID         string  `json:"session_id"`
	Mode              mode.ID `json:"mode"`
	Fallback          bool    `json:"fallback,omitempty"`
}

// handleChat runs one conversational turn. Sessions are created lazily: a
// request naming a mode but no session gets the mode's derived session id,
// so the collaborator keeps context continuity across page loads.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	text := strings.TrimSpace(req.UserMessage)
	if text == "" {
		respondError(w, http.StatusBadRequest, "empty_message", "user_message must be non-empty")
		return
	}

	md := mode.Resolve(req.Mode)
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = session.DeriveID(md.ID)
	}
	sess := s.sessions.Ensure(sessionID, md.ID)

	res, err := s.pipe.Submit(r.Context(), sess.ID, text, session.OriginTyped)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, "session_not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !res.Accepted {
		respondError(w, http.StatusConflict, "turn_in_flight", "a reply is already pending for this session")
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{
		AIReply:           res.Reply,
		GrammarCorrection: res.Correction,
		SessionID:         res.SessionID,
		Mode:              res.Mode,
		Fallback:          res.Fallback,
	})
}

func (s *Server) handleInitializeSession(w http.ResponseWriter, r *http.Request) {
	var req session.InitializeRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sess, md := s.sessions.Initialize(req.Mode)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	respondJSON(w, http.StatusCreated, session.InitializeResponse{
		SessionID:       sess.ID,
		Mode:            md.ID,
		Title:           md.Title,
		Icon:            md.Icon,
		Badge:           md.Badge,
		WelcomeMessage:  md.Welcome,
		Status:          sess.Status,
		StartedAt:       sess.StartedAt,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	})
}

func (s *Server) handleListModes(w http.ResponseWriter, _ *http.Request) {
	modes := make([]mode.Mode, 0, len(mode.IDs()))
	for _, id := range mode.IDs() {
		m, err := mode.Get(id)
		if err != nil {
			continue
		}
		modes = append(modes, m)
	}
	respondJSON(w, http.StatusOK, map[string]any{"modes": modes})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ended").Inc()
	respondJSON(w, http.StatusOK, sess)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
