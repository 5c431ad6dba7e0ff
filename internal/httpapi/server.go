package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/antoniostano/coldcall/internal/campaign"
	"github.com/antoniostano/coldcall/internal/config"
	"github.com/antoniostano/coldcall/internal/observability"
	"github.com/antoniostano/coldcall/internal/twiml"
)

// Controller is the conversation state machine driven by the telephony
// provider's webhooks.
type Controller interface {
	HandleCallStart(ctx context.Context, campaignID, callSID string) *twiml.Response
	HandleGather(ctx context.Context, campaignID, callSID, speechText string) *twiml.Response
	HandleCallStatus(campaignID, callSID, status string)
}

// CallInitiator originates an outbound call and returns the provider SID.
type CallInitiator interface {
	CreateCall(ctx context.Context, to, voiceURL, statusCallbackURL string) (string, error)
}

type Server struct {
	cfg        config.Config
	campaigns  campaign.Store
	controller Controller
	initiator  CallInitiator
	metrics    *observability.Metrics
	upgrader   websocket.Upgrader
}

func New(cfg config.Config, campaigns campaign.Store, controller Controller, initiator CallInitiator, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:        cfg,
		campaigns:  campaigns,
		controller: controller,
		initiator:  initiator,
		metrics:    metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The media stream comes from the telephony provider's
			// infrastructure, not a browser; there is no origin to check.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/call", s.handleInitiateCall)
	r.Post("/voice", s.handleVoice)
	r.Post("/gather", s.handleGather)
	r.Post("/status", s.handleStatus)
	r.Post("/stream-status", s.handleStreamStatus)
	r.Get("/media", s.handleMediaWS)

	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", s.handleCreateCampaign)
		r.Get("/", s.handleListCampaigns)
		r.Get("/{id}", s.handleGetCampaign)
		r.Put("/{id}", s.handleUpdateCampaign)
		r.Delete("/{id}", s.handleDeleteCampaign)
	})

	// Generated audio must be reachable by the telephony provider.
	r.Handle("/audio/*", http.StripPrefix("/audio/", http.FileServer(http.Dir(s.cfg.AudioDir))))

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":              "ready",
		"telephony_available": s.initiator != nil,
	})
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

// respondTwiML writes an instruction document. Webhook responses are always
// 200: a transport-level error here would leave the live call undefined.
func respondTwiML(w http.ResponseWriter, resp *twiml.Response) {
	body, err := resp.Render()
	if err != nil {
		body, _ = twiml.New().Say("Something went wrong. Goodbye.").Hangup().Render()
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
