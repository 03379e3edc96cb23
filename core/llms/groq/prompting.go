package groq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hanagata/kioskd/core/llms"
)

const (
	url = "https://api.groq.com/openai/v1/chat/completions"

	endMessage  = "[DONE]"
	chunkPrefix = "data:"
)

// Prompt sends one prompt (with optional instructions and history) and
// returns the full response text. The response is streamed under the hood so
// a WithStream option observes chunks as they arrive.
func Prompt(
	ctx context.Context,
	apiKey string,
	model string,
	prompt string,
	opts ...llms.PromptOption,
) (string, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()

	options := llms.PromptOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	messages := toMessages(options.Instructions, options.Turns)
	messages = append(messages, message{
		Role:    messageRoleUser,
		Content: prompt,
	})

	reqBody := requestBody{
		Model:    model,
		Messages: messages,
		Stream:   true,
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	span.SetAttributes(attribute.String("request.model", model))
	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		return "", fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	var response strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		chunk := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), chunkPrefix))

		if len(chunk) == 0 {
			continue
		}

		if chunk == endMessage {
			break
		}

		var chunkBody streamingResponseBody
		if err := json.Unmarshal([]byte(chunk), &chunkBody); err != nil {
			logger.Warn("failed to unmarshal streamed chunk", "error", err)
			continue
		}
		if len(chunkBody.Choices) == 0 {
			continue
		}

		content := chunkBody.Choices[0].Delta.Content
		response.WriteString(content)
		if options.Stream != nil && content != "" {
			options.Stream(content)
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error reading streamed response: %w", err)
	}

	return response.String(), nil
}
