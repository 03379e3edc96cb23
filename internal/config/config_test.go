package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	envVars := []string{
		"KIOSKD_LISTEN_ADDR", "KIOSKD_CHAT_MODEL", "KIOSKD_VOICE",
		"KIOSKD_INSTRUCTIONS", "KIOSKD_STORE_DSN",
		"KIOSKD_IDLE_TIMEOUT", "KIOSKD_TICK_INTERVAL", "KIOSKD_USE_MICROPHONE",
		"KIOSKD_TRANSCRIPTION_TIMEOUT", "KIOSKD_CHAT_TIMEOUT", "KIOSKD_SUMMARY_TIMEOUT",
		"KIOSKD_KEEPALIVE_INTERVAL", "KIOSKD_KEEPALIVE_GRACE",
		"KIOSKD_FALLBACK_MISHEARD", "KIOSKD_FALLBACK_UNAVAILABLE",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	if cfg.ListenAddr != ":8750" {
		t.Errorf("expected default listen addr ':8750', got %s", cfg.ListenAddr)
	}
	if cfg.StoreDSN != "kioskd.db" {
		t.Errorf("expected default store dsn 'kioskd.db', got %s", cfg.StoreDSN)
	}
	if cfg.IdleTimeout != 90*time.Second {
		t.Errorf("expected default idle timeout 90s, got %v", cfg.IdleTimeout)
	}
	if cfg.TickInterval != 5*time.Second {
		t.Errorf("expected default tick interval 5s, got %v", cfg.TickInterval)
	}
	if cfg.UseMicrophone {
		t.Error("expected microphone capture to default to off")
	}
	if cfg.TranscriptionTimeout != 15*time.Second || cfg.ChatTimeout != 12*time.Second || cfg.SummaryTimeout != 4*time.Second {
		t.Errorf("unexpected default provider timeouts: %v/%v/%v",
			cfg.TranscriptionTimeout, cfg.ChatTimeout, cfg.SummaryTimeout)
	}
	if cfg.KeepAliveInterval != 54*time.Second || cfg.KeepAliveGrace != 60*time.Second {
		t.Errorf("unexpected default keep-alive timings: %v/%v", cfg.KeepAliveInterval, cfg.KeepAliveGrace)
	}
	if cfg.FallbackMisheard == "" || cfg.FallbackUnavailable == "" {
		t.Error("expected non-empty default fallback lines")
	}
}

func TestLoad_ProviderAndKeepAliveOverrides(t *testing.T) {
	os.Setenv("KIOSKD_CHAT_TIMEOUT", "20s")
	os.Setenv("KIOSKD_KEEPALIVE_INTERVAL", "10s")
	os.Setenv("KIOSKD_KEEPALIVE_GRACE", "15s")
	os.Setenv("KIOSKD_FALLBACK_MISHEARD", "Pardon?")
	defer func() {
		os.Unsetenv("KIOSKD_CHAT_TIMEOUT")
		os.Unsetenv("KIOSKD_KEEPALIVE_INTERVAL")
		os.Unsetenv("KIOSKD_KEEPALIVE_GRACE")
		os.Unsetenv("KIOSKD_FALLBACK_MISHEARD")
	}()

	cfg := Load()

	if cfg.ChatTimeout != 20*time.Second {
		t.Errorf("expected chat timeout 20s, got %v", cfg.ChatTimeout)
	}
	if cfg.TranscriptionTimeout != 15*time.Second {
		t.Errorf("expected untouched transcription timeout default, got %v", cfg.TranscriptionTimeout)
	}
	if cfg.KeepAliveInterval != 10*time.Second || cfg.KeepAliveGrace != 15*time.Second {
		t.Errorf("unexpected keep-alive timings: %v/%v", cfg.KeepAliveInterval, cfg.KeepAliveGrace)
	}
	if cfg.FallbackMisheard != "Pardon?" {
		t.Errorf("expected override of misheard line, got %q", cfg.FallbackMisheard)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("KIOSKD_LISTEN_ADDR", ":9000")
	os.Setenv("KIOSKD_IDLE_TIMEOUT", "2m")
	os.Setenv("KIOSKD_USE_MICROPHONE", "true")
	defer func() {
		os.Unsetenv("KIOSKD_LISTEN_ADDR")
		os.Unsetenv("KIOSKD_IDLE_TIMEOUT")
		os.Unsetenv("KIOSKD_USE_MICROPHONE")
	}()

	cfg := Load()

	if cfg.ListenAddr != ":9000" {
		t.Errorf("expected listen addr ':9000', got %s", cfg.ListenAddr)
	}
	if cfg.IdleTimeout != 2*time.Minute {
		t.Errorf("expected idle timeout 2m, got %v", cfg.IdleTimeout)
	}
	if !cfg.UseMicrophone {
		t.Error("expected microphone capture to be enabled")
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	os.Setenv("KIOSKD_IDLE_TIMEOUT", "not-a-duration")
	os.Setenv("KIOSKD_USE_MICROPHONE", "invalid")
	defer func() {
		os.Unsetenv("KIOSKD_IDLE_TIMEOUT")
		os.Unsetenv("KIOSKD_USE_MICROPHONE")
	}()

	cfg := Load()

	if cfg.IdleTimeout != 90*time.Second {
		t.Errorf("expected default idle timeout on invalid input, got %v", cfg.IdleTimeout)
	}
	if cfg.UseMicrophone {
		t.Error("expected microphone default on invalid input")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		DeepgramAPIKey:       "dg-key",
		GroqAPIKey:           "groq-key",
		IdleTimeout:          time.Minute,
		TickInterval:         time.Second,
		TranscriptionTimeout: 15 * time.Second,
		ChatTimeout:          12 * time.Second,
		SummaryTimeout:       4 * time.Second,
		KeepAliveInterval:    54 * time.Second,
		KeepAliveGrace:       time.Minute,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	missingKey := *cfg
	missingKey.DeepgramAPIKey = ""
	if err := missingKey.Validate(); err == nil {
		t.Fatal("expected error for missing deepgram key")
	}

	badTimeout := *cfg
	badTimeout.IdleTimeout = 0
	if err := badTimeout.Validate(); err == nil {
		t.Fatal("expected error for zero idle timeout")
	}

	badProvider := *cfg
	badProvider.ChatTimeout = 0
	if err := badProvider.Validate(); err == nil {
		t.Fatal("expected error for zero provider timeout")
	}

	badKeepAlive := *cfg
	badKeepAlive.KeepAliveInterval = 2 * time.Minute
	if err := badKeepAlive.Validate(); err == nil {
		t.Fatal("expected error for keep-alive interval past the grace period")
	}
}
