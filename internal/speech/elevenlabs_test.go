package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestElevenLabsWritesAudioFile(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer ts.Close()

	dir := t.TempDir()
	s, err := NewElevenLabsSynthesizer(ElevenLabsConfig{
		APIKey:   "xi-test",
		BaseURL:  ts.URL,
		VoiceID:  "voice-1",
		AudioDir: dir,
	})
	if err != nil {
		t.Fatalf("NewElevenLabsSynthesizer() error = %v", err)
	}

	url, err := s.Synthesize(context.Background(), "Hello there", "CA1-greeting")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if url != "/audio/CA1-greeting.mp3" {
		t.Fatalf("url = %q, want /audio/CA1-greeting.mp3", url)
	}
	if gotPath != "/v1/text-to-speech/voice-1" {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotKey != "xi-test" {
		t.Fatalf("xi-api-key = %q", gotKey)
	}
	if gotBody["model_id"] != "eleven_flash_v2" {
		t.Fatalf("model_id = %v", gotBody["model_id"])
	}

	data, err := os.ReadFile(filepath.Join(dir, "CA1-greeting.mp3"))
	if err != nil {
		t.Fatalf("audio file missing: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Fatalf("audio file content = %q", data)
	}
}

func TestElevenLabsErrorStatusLeavesNoFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	dir := t.TempDir()
	s, err := NewElevenLabsSynthesizer(ElevenLabsConfig{
		APIKey:   "xi-test",
		BaseURL:  ts.URL,
		VoiceID:  "voice-1",
		AudioDir: dir,
	})
	if err != nil {
		t.Fatalf("NewElevenLabsSynthesizer() error = %v", err)
	}

	if _, err := s.Synthesize(context.Background(), "Hello", "CA1-x"); err == nil {
		t.Fatalf("Synthesize() should fail on non-2xx")
	} else if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error should carry status, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "CA1-x.mp3")); !os.IsNotExist(err) {
		t.Fatalf("no audio file should exist after failure")
	}
}

func TestNewElevenLabsRequiresKeyAndVoice(t *testing.T) {
	if _, err := NewElevenLabsSynthesizer(ElevenLabsConfig{VoiceID: "v"}); err == nil {
		t.Fatalf("missing API key should fail")
	}
	if _, err := NewElevenLabsSynthesizer(ElevenLabsConfig{APIKey: "k"}); err == nil {
		t.Fatalf("missing voice id should fail")
	}
}

func TestLoggerAppendsAuditLine(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "ai-speech.log")
	mock := NewMockSynthesizer()
	l := NewLogger(mock, logPath)

	if _, err := l.Synthesize(context.Background(), "Hello caller", "CA1-greeting"); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("audit log missing: %v", err)
	}
	if !strings.Contains(string(data), "Hello caller") || !strings.Contains(string(data), "CA1-greeting") {
		t.Fatalf("audit line = %q", data)
	}
	if len(mock.Lines) != 1 {
		t.Fatalf("delegate not called")
	}
}
