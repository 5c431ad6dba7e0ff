package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the cold-call service.
type Config struct {
	BindAddr         string
	PublicURL        string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// How long an abandoned call session may sit idle before the janitor
	// evicts it (calls whose completion callback never arrives).
	CallIdleTimeout time.Duration

	// Gather window handed to the telephony provider on every cycle.
	GatherTimeout       time.Duration
	GatherSpeechTimeout time.Duration

	AudioDir      string
	SpeechLogPath string

	BrainMode        string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	BrainCallTimeout time.Duration

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TwilioBaseURL     string

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:            envOrDefault("APP_BIND_ADDR", ":3000"),
		PublicURL:           strings.TrimRight(envOrDefault("PUBLIC_URL", "http://localhost:3000"), "/"),
		MetricsNamespace:    envOrDefault("APP_METRICS_NAMESPACE", "coldcall"),
		AudioDir:            envOrDefault("AUDIO_DIR", "public/audio"),
		SpeechLogPath:       envOrDefault("SPEECH_LOG_PATH", "logs/ai-speech.log"),
		BrainMode:           envOrDefault("BRAIN_MODE", "auto"),
		OpenAIAPIKey:        trimmedEnv("OPENAI_API_KEY"),
		OpenAIBaseURL:       trimmedEnv("OPENAI_BASE_URL"),
		OpenAIModel:         envOrDefault("OPENAI_MODEL", "gpt-4o"),
		ElevenLabsAPIKey:    trimmedEnv("ELEVEN_API_KEY"),
		ElevenLabsBaseURL:   envOrDefault("ELEVEN_BASE_URL", "https://api.elevenlabs.io"),
		ElevenLabsVoiceID:   trimmedEnv("ELEVEN_VOICE_ID"),
		ElevenLabsModelID:   envOrDefault("ELEVEN_MODEL_ID", "eleven_flash_v2"),
		TwilioAccountSID:    trimmedEnv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     trimmedEnv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:   trimmedEnv("TWILIO_PHONE_NUMBER"),
		TwilioBaseURL:       envOrDefault("TWILIO_BASE_URL", "https://api.twilio.com"),
		DatabaseURL:         trimmedEnv("DATABASE_URL"),
		ShutdownTimeout:     15 * time.Second,
		CallIdleTimeout:     5 * time.Minute,
		GatherTimeout:       6 * time.Second,
		GatherSpeechTimeout: 2 * time.Second,
		BrainCallTimeout:    30 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CallIdleTimeout, err = durationFromEnv("APP_CALL_IDLE_TIMEOUT", cfg.CallIdleTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.GatherTimeout, err = durationFromEnv("APP_GATHER_TIMEOUT", cfg.GatherTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.GatherSpeechTimeout, err = durationFromEnv("APP_GATHER_SPEECH_TIMEOUT", cfg.GatherSpeechTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.BrainCallTimeout, err = durationFromEnv("BRAIN_CALL_TIMEOUT", cfg.BrainCallTimeout)
	if err != nil {
		return Config{}, err
	}

	if cfg.CallIdleTimeout < 30*time.Second {
		return Config{}, fmt.Errorf("APP_CALL_IDLE_TIMEOUT must be at least 30s")
	}
	if cfg.GatherTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_GATHER_TIMEOUT must be at least 1s")
	}
	if cfg.GatherSpeechTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_GATHER_SPEECH_TIMEOUT must be at least 1s")
	}
	if cfg.BrainCallTimeout < time.Second {
		return Config{}, fmt.Errorf("BRAIN_CALL_TIMEOUT must be at least 1s")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}
