package twiml

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func TestSayAndHangup(t *testing.T) {
	out, err := New().Say("Session expired. Goodbye.").Hangup().Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(out, xml.Header) {
		t.Fatalf("missing XML declaration: %q", out)
	}
	want := "<Response><Say>Session expired. Goodbye.</Say><Hangup></Hangup></Response>"
	if !strings.Contains(out, want) {
		t.Fatalf("Render() = %q, want it to contain %q", out, want)
	}
}

func TestPlayAndHangup(t *testing.T) {
	out, err := New().Play("http://host/audio/CA1-bye.mp3").Hangup().Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	sayIdx := strings.Index(out, "<Play>")
	hangupIdx := strings.Index(out, "<Hangup>")
	if sayIdx < 0 || hangupIdx < 0 || hangupIdx < sayIdx {
		t.Fatalf("verbs missing or out of order: %q", out)
	}
}

func TestGatherSpeechNestsPlay(t *testing.T) {
	out, err := New().
		GatherSpeech("/gather?campaignId=c1", "http://host/audio/CA1-greeting.mp3", 6*time.Second, 2*time.Second).
		Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, frag := range []string{
		`input="speech"`,
		`action="/gather?campaignId=c1"`,
		`method="POST"`,
		`timeout="6"`,
		`speechTimeout="2"`,
		`actionOnEmptyResult="true"`,
		"<Play>http://host/audio/CA1-greeting.mp3</Play>",
	} {
		if !strings.Contains(out, frag) {
			t.Fatalf("Render() = %q, missing %q", out, frag)
		}
	}
}

func TestGatherSpeechAutoTimeout(t *testing.T) {
	out, err := New().
		GatherSpeech("/gather?campaignId=c1", "http://host/a.mp3", 6*time.Second, 0).
		Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, `speechTimeout="auto"`) {
		t.Fatalf("Render() = %q, want speechTimeout auto", out)
	}
}

func TestRenderEscapesText(t *testing.T) {
	out, err := New().Say(`Prices start at <100 & "falling">`).Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(out, `<100`) {
		t.Fatalf("unescaped markup in output: %q", out)
	}
	if !strings.Contains(out, "&lt;100 &amp;") {
		t.Fatalf("expected escaped text, got %q", out)
	}
}
