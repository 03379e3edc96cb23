// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr string

	DeepgramAPIKey string
	GroqAPIKey     string
	ChatModel      string
	Voice          string

	Instructions string

	StoreDSN string

	IdleTimeout  time.Duration
	TickInterval time.Duration

	// Per-provider call deadlines enforced by the effect executor.
	TranscriptionTimeout time.Duration
	ChatTimeout          time.Duration
	SummaryTimeout       time.Duration

	// KeepAliveInterval spaces the realtime ping/keepalive frames;
	// KeepAliveGrace is how long a connection may stay silent before it
	// is considered dead.
	KeepAliveInterval time.Duration
	KeepAliveGrace    time.Duration

	// Scripted lines spoken when a provider lets a turn down.
	FallbackMisheard    string
	FallbackUnavailable string

	// UseMicrophone selects the local capture device; when false the
	// display client streams audio in over the realtime connection.
	UseMicrophone bool
}

func Load() *Config {
	return &Config{
		ListenAddr:     envOrDefault("KIOSKD_LISTEN_ADDR", ":8750"),
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		ChatModel:      envOrDefault("KIOSKD_CHAT_MODEL", ""),
		Voice:          envOrDefault("KIOSKD_VOICE", ""),
		Instructions:   envOrDefault("KIOSKD_INSTRUCTIONS", ""),
		StoreDSN:       envOrDefault("KIOSKD_STORE_DSN", "kioskd.db"),
		IdleTimeout:    envDurationOrDefault("KIOSKD_IDLE_TIMEOUT", 90*time.Second),
		TickInterval:   envDurationOrDefault("KIOSKD_TICK_INTERVAL", 5*time.Second),

		TranscriptionTimeout: envDurationOrDefault("KIOSKD_TRANSCRIPTION_TIMEOUT", 15*time.Second),
		ChatTimeout:          envDurationOrDefault("KIOSKD_CHAT_TIMEOUT", 12*time.Second),
		SummaryTimeout:       envDurationOrDefault("KIOSKD_SUMMARY_TIMEOUT", 4*time.Second),

		KeepAliveInterval: envDurationOrDefault("KIOSKD_KEEPALIVE_INTERVAL", 54*time.Second),
		KeepAliveGrace:    envDurationOrDefault("KIOSKD_KEEPALIVE_GRACE", 60*time.Second),

		FallbackMisheard: envOrDefault("KIOSKD_FALLBACK_MISHEARD",
			"Sorry, I didn't catch that. Could you press the button and try again?"),
		FallbackUnavailable: envOrDefault("KIOSKD_FALLBACK_UNAVAILABLE",
			"Sorry, I'm having trouble answering right now. Please try again in a moment."),

		UseMicrophone: envBoolOrDefault("KIOSKD_USE_MICROPHONE", false),
	}
}

func (c *Config) Validate() error {
	if c.DeepgramAPIKey == "" {
		return fmt.Errorf("DEEPGRAM_API_KEY is required")
	}
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.TranscriptionTimeout <= 0 || c.ChatTimeout <= 0 || c.SummaryTimeout <= 0 {
		return fmt.Errorf("provider timeouts must be positive")
	}
	if c.KeepAliveInterval <= 0 {
		return fmt.Errorf("keep-alive interval must be positive")
	}
	if c.KeepAliveGrace <= c.KeepAliveInterval {
		return fmt.Errorf("keep-alive grace must exceed the interval")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envBoolOrDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
