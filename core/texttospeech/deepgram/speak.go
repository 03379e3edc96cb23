// Package deepgram synthesizes speech segments through Deepgram's
// speak endpoint.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/hanagata/kioskd/core/audio"
	"github.com/hanagata/kioskd/core/texttospeech"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type deepgramVoice string

const (
	VoiceThalia  deepgramVoice = "aura-2-thalia-en"
	VoiceAsteria deepgramVoice = "aura-2-asteria-en"
	VoiceOrion   deepgramVoice = "aura-2-orion-en"
	VoiceArcas   deepgramVoice = "aura-2-arcas-en"
)

const defaultVoice = VoiceThalia

func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{VoiceThalia, VoiceAsteria, VoiceOrion, VoiceArcas}
}

// ParseVoice maps a configured voice name onto a known voice. An empty
// name selects the default.
func ParseVoice(name string) (deepgramVoice, bool) {
	if name == "" {
		return defaultVoice, true
	}
	voice := deepgramVoice(name)
	if slices.Contains(GetAvailableVoices(), voice) {
		return voice, true
	}
	return "", false
}

type TextToSpeechClient struct {
	apiKey  string
	voice   deepgramVoice
	options texttospeech.TextToSpeechOptions

	httpClient *http.Client
}

func NewTextToSpeechClient(apiKey string, voice deepgramVoice, opts ...texttospeech.TextToSpeechOption) (*TextToSpeechClient, error) {
	if voice == "" {
		voice = defaultVoice
	}
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice")
	}

	options := texttospeech.TextToSpeechOptions{EncodingInfo: audio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(&options)
	}

	return &TextToSpeechClient{
		apiKey:     apiKey,
		voice:      voice,
		options:    options,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}, nil
}

func (c *TextToSpeechClient) SetVoice(voice deepgramVoice) {
	c.voice = voice
}

// Synthesize renders one segment of text to raw audio in the client's
// configured encoding.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "deepgram.speak")
	defer span.End()
	span.SetAttributes(
		attribute.String("voice", string(c.voice)),
		attribute.Int("text.length", len(text)),
	)

	urlValues := url.Values{}
	urlValues.Set("model", string(c.voice))
	urlValues.Set("encoding", c.options.EncodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(c.options.EncodingInfo.SampleRate))
	urlValues.Set("container", "none")

	speakUrl := (&url.URL{
		Scheme: "https",
		Host:   "api.deepgram.com", Path: "/v1/speak",
		RawQuery: urlValues.Encode(),
	}).String()

	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speak request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, speakUrl, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create speak request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("speak request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		span.SetStatus(codes.Error, resp.Status)
		return nil, fmt.Errorf("speak request failed (%s): %s", resp.Status, string(errBody))
	}

	speech, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read speak response: %w", err)
	}

	logger.DebugContext(ctx, "Synthesized segment", "bytes", len(speech))
	return speech, nil
}
