// Package deepgram transcribes recorded takes through Deepgram's
// pre-recorded listen endpoint.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest/interfaces"
	"github.com/hanagata/kioskd/core/audio"
	"github.com/hanagata/kioskd/core/speechtotext"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const listenURL = "https://api.deepgram.com/v1/listen"

const (
	defaultModel    = "nova-3"
	defaultLanguage = "en-US"
)

type TranscriptionClient struct {
	apiKey  string
	options speechtotext.TranscriptionOptions

	httpClient *http.Client
}

func NewTranscriptionClient(apiKey string, opts ...speechtotext.TranscriptionOption) *TranscriptionClient {
	options := speechtotext.TranscriptionOptions{
		Model:        defaultModel,
		Language:     defaultLanguage,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &TranscriptionClient{
		apiKey:     apiKey,
		options:    options,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// Transcribe sends one complete take and returns the transcript of its
// first channel's best alternative, trimmed. An empty string means
// nothing intelligible was heard.
func (c *TranscriptionClient) Transcribe(ctx context.Context, take []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "deepgram.transcribe")
	defer span.End()
	span.SetAttributes(attribute.Int("audio.bytes", len(take)))

	listenUrl, _ := url.Parse(listenURL)
	queryParams := listenUrl.Query()
	queryParams.Set("model", c.options.Model)
	queryParams.Set("language", c.options.Language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("encoding", c.options.EncodingInfo.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(c.options.EncodingInfo.SampleRate))
	queryParams.Set("channels", "1")
	listenUrl.RawQuery = queryParams.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, listenUrl.String(), bytes.NewReader(take))
	if err != nil {
		return "", fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		span.SetStatus(codes.Error, resp.Status)
		return "", fmt.Errorf("transcription request failed (%s): %s", resp.Status, string(body))
	}

	var parsed api.PreRecordedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal transcription response: %w", err)
	}

	transcript := bestTranscript(&parsed)
	logger.DebugContext(ctx, "Transcribed take", "transcript", transcript)
	return transcript, nil
}

func bestTranscript(resp *api.PreRecordedResponse) string {
	if resp == nil || resp.Results == nil {
		return ""
	}
	for _, channel := range resp.Results.Channels {
		for _, alternative := range channel.Alternatives {
			return strings.TrimSpace(alternative.Transcript)
		}
	}
	return ""
}
