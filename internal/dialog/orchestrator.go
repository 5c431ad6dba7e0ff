package dialog

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antoniostano/coldcall/internal/brain"
	"github.com/antoniostano/coldcall/internal/campaign"
	"github.com/antoniostano/coldcall/internal/observability"
	"github.com/antoniostano/coldcall/internal/session"
	"github.com/antoniostano/coldcall/internal/speech"
	"github.com/antoniostano/coldcall/internal/twiml"
)

// Spoken lines for every controller decision. The callee always hears a
// message before any termination; silent hangups are not allowed.
const (
	msgCampaignNotFound = "Sorry, campaign not found. Goodbye."
	msgSessionExpired   = "Session expired. Goodbye."
	msgRepeat           = "Sorry, I didn't catch that. Could you repeat?"
	msgSilenceGoodbye   = "I didn't catch that again. Goodbye."
	msgInterested       = "Perfect, someone from our team will contact you shortly. Thank you and goodbye!"
	msgNotInterested    = "Understood. Thank you for your time. Goodbye."
	msgFailure          = "Something went wrong. Goodbye."
)

// silenceLimit terminates the call on the Nth consecutive empty gather.
const silenceLimit = 2

// Orchestrator is the per-call conversation state machine. Each webhook
// delivery runs one step: read state, call out to the model and synthesizer,
// write state, emit the next instruction document.
type Orchestrator struct {
	sessions  *session.Manager
	campaigns campaign.Store
	brain     brain.Adapter
	synth     speech.Synthesizer
	metrics   *observability.Metrics

	publicURL     string
	gatherTimeout time.Duration
	speechTimeout time.Duration
}

func NewOrchestrator(
	sessions *session.Manager,
	campaigns campaign.Store,
	adapter brain.Adapter,
	synth speech.Synthesizer,
	metrics *observability.Metrics,
	publicURL string,
	gatherTimeout, speechTimeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		sessions:      sessions,
		campaigns:     campaigns,
		brain:         adapter,
		synth:         synth,
		metrics:       metrics,
		publicURL:     publicURL,
		gatherTimeout: gatherTimeout,
		speechTimeout: speechTimeout,
	}
}

// HandleCallStart answers the provider's call-setup webhook: greet the callee
// and arm the first gather window.
func (o *Orchestrator) HandleCallStart(ctx context.Context, campaignID, callSID string) *twiml.Response {
	camp, err := o.campaigns.Get(ctx, campaignID)
	if err != nil || !camp.IsActive {
		o.metrics.CallOutcomes.WithLabelValues("campaign_not_found").Inc()
		return twiml.New().Say(msgCampaignNotFound)
	}

	o.sessions.Create(callSID, campaignID, camp.InitialGreeting)
	o.metrics.ActiveCalls.Set(float64(o.sessions.ActiveCount()))

	audioURL, err := o.synthesize(ctx, camp.InitialGreeting, callSID+"-greeting")
	if err != nil {
		log.Printf("[call %s] greeting synthesis failed: %v", callSID, err)
		return o.fatal(callSID, "synthesis_failed")
	}

	return twiml.New().GatherSpeech(o.gatherAction(campaignID), o.publicURL+audioURL, o.gatherTimeout, o.speechTimeout)
}

// HandleGather answers one gather cycle: the provider reports either a
// transcript or an empty result for the armed window.
func (o *Orchestrator) HandleGather(ctx context.Context, campaignID, callSID, speechText string) *twiml.Response {
	unlock := o.sessions.LockCall(callSID)
	defer unlock()

	if _, ok := o.sessions.Get(callSID); !ok {
		o.metrics.CallOutcomes.WithLabelValues("session_expired").Inc()
		return twiml.New().Say(msgSessionExpired).Hangup()
	}

	userText := strings.TrimSpace(speechText)
	log.Printf("[call %s] customer said: %q", callSID, userText)
	o.sessions.AppendTurn(callSID, session.RoleUser, userText)

	if userText == "" {
		return o.handleSilence(ctx, campaignID, callSID)
	}

	intent := o.classifyIntent(ctx, callSID, userText)
	o.metrics.IntentResults.WithLabelValues(string(intent)).Inc()

	switch intent {
	case IntentInterested:
		return o.closeCall(ctx, callSID, msgInterested, "interested")
	case IntentNotInterested:
		return o.closeCall(ctx, callSID, msgNotInterested, "not_interested")
	default:
		return o.respond(ctx, campaignID, callSID)
	}
}

// HandleCallStatus processes provider call lifecycle callbacks; a terminal
// status tears the session down.
func (o *Orchestrator) HandleCallStatus(campaignID, callSID, status string) {
	log.Printf("[call %s] campaign %s status: %s", callSID, campaignID, status)
	if status != "completed" {
		return
	}
	if o.sessions.Delete(callSID) {
		log.Printf("[call %s] cleaned up", callSID)
		o.metrics.ActiveCalls.Set(float64(o.sessions.ActiveCount()))
		o.metrics.CallOutcomes.WithLabelValues("completed").Inc()
	}
}

func (o *Orchestrator) handleSilence(ctx context.Context, campaignID, callSID string) *twiml.Response {
	count := o.sessions.RecordSilence(callSID)

	messageText := msgRepeat
	if count >= silenceLimit {
		messageText = msgSilenceGoodbye
	}

	audioURL, err := o.synthesize(ctx, messageText, callSID+"-silence-"+strconv.Itoa(count))
	if err != nil {
		log.Printf("[call %s] silence prompt synthesis failed: %v", callSID, err)
		return o.fatal(callSID, "synthesis_failed")
	}

	if count >= silenceLimit {
		o.endSession(callSID, "silence_exhausted")
		return twiml.New().Play(o.publicURL + audioURL).Hangup()
	}
	// After a silent window the provider picks the end-of-speech cutoff
	// itself (speechTimeout "auto") instead of the fixed window.
	return twiml.New().GatherSpeech(o.gatherAction(campaignID), o.publicURL+audioURL, o.gatherTimeout, 0)
}

// respond runs the open-ended reply path for a neutral utterance.
func (o *Orchestrator) respond(ctx context.Context, campaignID, callSID string) *twiml.Response {
	camp, err := o.campaigns.Get(ctx, campaignID)
	if err != nil {
		log.Printf("[call %s] campaign lookup failed mid-call: %v", callSID, err)
		return o.fatal(callSID, "campaign_lost")
	}

	messages := []brain.Message{{Role: "system", Content: camp.SystemPrompt}}
	for _, turn := range o.sessions.History(callSID) {
		messages = append(messages, brain.Message{Role: string(turn.Role), Content: turn.Content})
	}

	// Reply generation failure is fatal to the call; it is not retried
	// within the cycle.
	replyText, err := o.brain.Complete(ctx, brain.CompletionRequest{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   120,
	})
	if err != nil {
		log.Printf("[call %s] reply generation failed: %v", callSID, err)
		o.metrics.ProviderErrors.WithLabelValues("brain", "reply").Inc()
		return o.fatal(callSID, "brain_failed")
	}
	replyText = strings.TrimSpace(replyText)
	o.sessions.AppendTurn(callSID, session.RoleAssistant, replyText)

	audioURL, err := o.synthesize(ctx, replyText, callSID+"-"+uuid.NewString())
	if err != nil {
		log.Printf("[call %s] reply synthesis failed: %v", callSID, err)
		return o.fatal(callSID, "synthesis_failed")
	}

	return twiml.New().GatherSpeech(o.gatherAction(campaignID), o.publicURL+audioURL, o.gatherTimeout, o.speechTimeout)
}

// classifyIntent labels the latest utterance. A degraded classifier never
// drops a call: any failure falls back to neutral.
func (o *Orchestrator) classifyIntent(ctx context.Context, callSID, utterance string) Intent {
	raw, err := o.brain.Complete(ctx, brain.CompletionRequest{
		Messages:    []brain.Message{{Role: "system", Content: classifierPrompt(utterance)}},
		Temperature: 0,
		MaxTokens:   5,
	})
	if err != nil {
		log.Printf("[call %s] intent classification failed, assuming neutral: %v", callSID, err)
		o.metrics.ProviderErrors.WithLabelValues("brain", "intent").Inc()
		return IntentNeutral
	}

	intent := ParseIntent(raw)
	log.Printf("[call %s] intent: %s", callSID, intent)
	return intent
}

// closeCall plays a fixed closing line and terminates.
func (o *Orchestrator) closeCall(ctx context.Context, callSID, closing, outcome string) *twiml.Response {
	audioURL, err := o.synthesize(ctx, closing, callSID+"-"+uuid.NewString())
	if err != nil {
		log.Printf("[call %s] closing synthesis failed: %v", callSID, err)
		return o.fatal(callSID, "synthesis_failed")
	}
	o.endSession(callSID, outcome)
	return twiml.New().Play(o.publicURL + audioURL).Hangup()
}

// fatal is the degraded-dependency terminal path: spoken apology via the
// provider's own voice, hangup, session gone.
func (o *Orchestrator) fatal(callSID, outcome string) *twiml.Response {
	o.endSession(callSID, outcome)
	return twiml.New().Say(msgFailure).Hangup()
}

func (o *Orchestrator) endSession(callSID, outcome string) {
	if o.sessions.Delete(callSID) {
		log.Printf("[call %s] cleaned up", callSID)
	}
	o.metrics.ActiveCalls.Set(float64(o.sessions.ActiveCount()))
	o.metrics.CallOutcomes.WithLabelValues(outcome).Inc()
}

func (o *Orchestrator) synthesize(ctx context.Context, text, name string) (string, error) {
	start := time.Now()
	audioURL, err := o.synth.Synthesize(ctx, text, name)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues("tts", "synthesize").Inc()
		return "", err
	}
	o.metrics.ObserveSynthesisLatency(time.Since(start))
	return audioURL, nil
}

func (o *Orchestrator) gatherAction(campaignID string) string {
	return "/gather?campaignId=" + url.QueryEscape(campaignID)
}
