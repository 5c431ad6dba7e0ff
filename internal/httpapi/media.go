package httpapi

import (
	"log"
	"net/http"
	"time"
)

// mediaMessage is the provider's media-stream frame envelope. Only the
// fields the bridge logs are decoded.
type mediaMessage struct {
	Event string `json:"event"`
	Start struct {
		StreamSID string `json:"streamSid"`
		CallSID   string `json:"callSid"`
	} `json:"start"`
	Media struct {
		Payload string `json:"payload"`
	} `json:"media"`
}

// handleMediaWS accepts the provider's media stream and logs its lifecycle.
// The live transcription path is not wired into the conversation controller;
// the controller works from the provider's gather transcripts.
func (s *Server) handleMediaWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	log.Printf("[media] stream websocket connected (call %s)", r.URL.Query().Get("callSid"))
	s.metrics.WebhookEvents.WithLabelValues("media_connected").Inc()

	conn.SetReadLimit(1 << 20)
	var frames int
	for {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		var msg mediaMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Event {
		case "connected":
			log.Printf("[media] provider stream connected")
		case "start":
			log.Printf("[media] stream %s started for call %s", msg.Start.StreamSID, msg.Start.CallSID)
		case "media":
			frames++
		case "stop":
			log.Printf("[media] stream stopped after %d frames", frames)
		}
	}

	log.Printf("[media] stream websocket disconnected (%d frames)", frames)
}
