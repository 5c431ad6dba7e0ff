package httpapi

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
)

type initiateCallRequest struct {
	Number     string `json:"number"`
	CampaignID string `json:"campaignId"`
}

type initiateCallResponse struct {
	SID string `json:"sid"`
}

func (s *Server) handleInitiateCall(w http.ResponseWriter, r *http.Request) {
	var req initiateCallRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Number) == "" || strings.TrimSpace(req.CampaignID) == "" {
		respondError(w, http.StatusBadRequest, "missing_parameters", "number and campaignId are required")
		return
	}

	camp, err := s.campaigns.Get(r.Context(), req.CampaignID)
	if err != nil || !camp.IsActive {
		respondError(w, http.StatusNotFound, "campaign_not_found", "campaign not found or inactive")
		return
	}

	if s.initiator == nil {
		respondError(w, http.StatusServiceUnavailable, "telephony_unconfigured", "no telephony provider configured")
		return
	}

	q := "campaignId=" + url.QueryEscape(req.CampaignID)
	sid, err := s.initiator.CreateCall(r.Context(), req.Number,
		s.cfg.PublicURL+"/voice?"+q,
		s.cfg.PublicURL+"/status?"+q,
	)
	if err != nil {
		log.Printf("call create failed: %v", err)
		s.metrics.ProviderErrors.WithLabelValues("telephony", "create_call").Inc()
		respondError(w, http.StatusBadGateway, "provider_rejected", "failed to start call")
		return
	}

	respondJSON(w, http.StatusOK, initiateCallResponse{SID: sid})
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	s.metrics.WebhookEvents.WithLabelValues("voice").Inc()
	campaignID := r.URL.Query().Get("campaignId")
	callSID := r.FormValue("CallSid")

	respondTwiML(w, s.controller.HandleCallStart(r.Context(), campaignID, callSID))
}

func (s *Server) handleGather(w http.ResponseWriter, r *http.Request) {
	s.metrics.WebhookEvents.WithLabelValues("gather").Inc()
	campaignID := r.URL.Query().Get("campaignId")
	callSID := r.FormValue("CallSid")
	// An empty SpeechResult is silence, not an error.
	speechText := r.FormValue("SpeechResult")

	respondTwiML(w, s.controller.HandleGather(r.Context(), campaignID, callSID, speechText))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.metrics.WebhookEvents.WithLabelValues("status").Inc()
	campaignID := r.URL.Query().Get("campaignId")
	callSID := r.FormValue("CallSid")
	status := r.FormValue("CallStatus")

	s.controller.HandleCallStatus(campaignID, callSID, status)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStreamStatus(w http.ResponseWriter, r *http.Request) {
	s.metrics.WebhookEvents.WithLabelValues("stream_status").Inc()
	log.Printf("[stream] call %s stream %s status: %s",
		r.FormValue("CallSid"), r.FormValue("StreamSid"), r.FormValue("StreamStatus"))
	w.WriteHeader(http.StatusOK)
}
