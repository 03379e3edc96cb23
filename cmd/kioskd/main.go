package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	orchestration "github.com/hanagata/kioskd/core"
	"github.com/hanagata/kioskd/core/audio"
	"github.com/hanagata/kioskd/core/audio/miniaudio"
	"github.com/hanagata/kioskd/core/events"
	"github.com/hanagata/kioskd/core/llms"
	"github.com/hanagata/kioskd/core/llms/groq"
	sttdeepgram "github.com/hanagata/kioskd/core/speechtotext/deepgram"
	ttsdeepgram "github.com/hanagata/kioskd/core/texttospeech/deepgram"
	"github.com/hanagata/kioskd/internal/config"
	"github.com/hanagata/kioskd/internal/httpapi"
	"github.com/hanagata/kioskd/internal/store"
	"github.com/hanagata/kioskd/realtime"
)

func main() {
	logger := log.New(os.Stdout, "kioskd ", log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summaryStore, err := store.Open(cfg.StoreDSN)
	if err != nil {
		logger.Fatalf("failed to open summary store: %v", err)
	}

	hub := realtime.NewHub(realtime.WithKeepAlive(cfg.KeepAliveInterval, cfg.KeepAliveGrace))

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = groq.DefaultModel
	}
	clientOpts := []groq.ClientOption{groq.WithModel(chatModel)}
	if cfg.Instructions != "" {
		clientOpts = append(clientOpts, groq.WithInstructions(cfg.Instructions))
	}
	chat := &chatAdapter{client: groq.NewClient(cfg.GroqAPIKey, clientOpts...)}
	summarizer := &summarizerAdapter{apiKey: cfg.GroqAPIKey, model: chatModel}

	stt := sttdeepgram.NewTranscriptionClient(cfg.DeepgramAPIKey)

	voice, ok := ttsdeepgram.ParseVoice(cfg.Voice)
	if !ok {
		logger.Fatalf("unknown voice %q", cfg.Voice)
	}
	tts, err := ttsdeepgram.NewTextToSpeechClient(cfg.DeepgramAPIKey, voice)
	if err != nil {
		logger.Fatalf("failed to initialize speech synthesis: %v", err)
	}

	var capture orchestration.AudioCapture
	var memCapture *audio.MemoryCapture
	if cfg.UseMicrophone {
		recorder, err := miniaudio.NewRecorder()
		if err != nil {
			logger.Fatalf("failed to initialize microphone capture: %v", err)
		}
		defer recorder.Close()
		capture = recorder
	} else {
		memCapture = audio.NewMemoryCapture()
		capture = memCapture
	}

	ids := orchestration.NewUUIDSource()

	var loop *orchestration.Loop
	pipeline := orchestration.NewSpeechPipeline(ctx, tts, hub, ids, func(utteranceID string) {
		loop.Submit(events.NewPlaybackFinished(utteranceID))
	})
	speaker := &speakerAdapter{pipeline: pipeline, hub: hub}

	executor := orchestration.NewExecutor(ctx, stt, chat, summarizer, summaryStore,
		capture, speaker, hub, orchestration.ExecutorTimeouts{
			Transcription: cfg.TranscriptionTimeout,
			Chat:          cfg.ChatTimeout,
			Summary:       cfg.SummaryTimeout,
		})

	reducer := orchestration.Reducer{
		IdleTimeout: cfg.IdleTimeout,
		Fallbacks: orchestration.FallbackLines{
			Misheard:    cfg.FallbackMisheard,
			Unavailable: cfg.FallbackUnavailable,
		},
	}
	loop = orchestration.NewLoop(reducer, orchestration.NewWallClock(), ids, executor, cfg.TickInterval)
	executor.Bind(loop.Submit)

	hub.HandleInbound(func(role realtime.Role, msg realtime.Inbound) {
		handleInbound(loop, memCapture, role, msg)
	})

	loop.Start()
	defer loop.Close()
	hub.Snapshot(loop.SnapshotState())

	server := httpapi.NewServer(cfg.ListenAddr, loop, hub, summaryStore)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()
	logger.Printf("listening on %s", cfg.ListenAddr)

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	pipeline.Stop()
}

// handleInbound routes client frames from the realtime streams into the
// event loop, enforcing which role may send what.
func handleInbound(loop *orchestration.Loop, memCapture *audio.MemoryCapture, role realtime.Role, msg realtime.Inbound) {
	switch {
	case role == realtime.RoleDisplay && msg.Type == "playback_finished":
		var payload struct {
			UtteranceID string `json:"utterance_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.UtteranceID == "" {
			return
		}
		loop.Submit(events.NewPlaybackFinished(payload.UtteranceID))

	case role == realtime.RoleDisplay && msg.Type == "audio_chunk":
		if memCapture == nil {
			return
		}
		var payload struct {
			Audio []byte `json:"audio"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || len(payload.Audio) == 0 {
			return
		}
		memCapture.Feed(payload.Audio)

	case role == realtime.RoleOperator:
		switch msg.Type {
		case "push_to_talk_pressed":
			loop.Submit(events.NewOperatorPushToTalkPressed())
		case "push_to_talk_released":
			loop.Submit(events.NewOperatorPushToTalkReleased())
		case "emergency_stop":
			loop.Submit(events.NewOperatorEmergencyStop())
		case "resume":
			loop.Submit(events.NewOperatorResume())
		case "force_reset":
			loop.Submit(events.NewOperatorForceReset())
		}
	}
}

type chatAdapter struct {
	client *groq.Client
}

func (a *chatAdapter) Reply(ctx context.Context, prompt string, history []orchestration.Exchange) (string, error) {
	turns := make([]llms.Turn, 0, len(history)*2)
	for _, exchange := range history {
		turns = append(turns,
			llms.Turn{Role: llms.TurnRoleUser, Content: exchange.User},
			llms.Turn{Role: llms.TurnRoleAssistant, Content: exchange.Assistant},
		)
	}
	return a.client.Prompt(ctx, prompt, turns)
}

const summaryInstructions = "You summarize a finished visitor conversation at an information kiosk. " +
	"Produce a short factual summary of what the visitor wanted and list the topics touched."

type summarizerAdapter struct {
	apiKey string
	model  string
}

func (a *summarizerAdapter) Summarize(ctx context.Context, exchanges []orchestration.Exchange) (orchestration.SessionSummary, error) {
	var transcript strings.Builder
	for _, exchange := range exchanges {
		fmt.Fprintf(&transcript, "Visitor: %s\nAssistant: %s\n", exchange.User, exchange.Assistant)
	}

	summary, err := groq.PromptJSONSchema(ctx, a.apiKey, a.model,
		transcript.String(), summaryInstructions, orchestration.SessionSummary{})
	if err != nil {
		return orchestration.SessionSummary{}, err
	}
	return *summary, nil
}

// speakerAdapter couples the synthesis pipeline with the display stream
// so a stop cuts both synthesis and client-side playback.
type speakerAdapter struct {
	pipeline *orchestration.SpeechPipeline
	hub      *realtime.Hub
}

func (s *speakerAdapter) Speak(utteranceID, text string) {
	s.pipeline.Speak(utteranceID, text)
}

func (s *speakerAdapter) Stop() {
	s.pipeline.Stop()
	s.hub.NotifyStop()
}
