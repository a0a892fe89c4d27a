package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const openaiProvider = "llm/openai"

// OpenAI implements [Provider] for the Chat Completions API. Any server that
// speaks the same wire format (Azure OpenAI, OpenRouter, vLLM, Ollama) works.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewOpenAI creates a client. model is used when a request leaves Model empty.
func NewOpenAI(httpClient *http.Client, baseURL, apiKey, model string) *OpenAI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

type openaiMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openaiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete returns the first choice's content, trimmed. A reply without
// choices yields an empty Content.
func (p *OpenAI) Complete(ctx context.Context, request Request) (*Response, error) {
	body, err := json.Marshal(p.buildRequest(request))
	if err != nil {
		return nil, fmt.Errorf("%s: encoding request: %w", openaiProvider, err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", openaiProvider, err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResponse, err := p.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", openaiProvider, err)
	}
	defer httpResponse.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(httpResponse.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", openaiProvider, err)
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		apiErr := &APIError{Provider: openaiProvider, StatusCode: httpResponse.StatusCode}
		var wireErr openaiError
		if json.Unmarshal(payload, &wireErr) == nil {
			apiErr.Type = wireErr.Error.Type
			apiErr.Message = wireErr.Error.Message
		}
		return nil, apiErr
	}

	var wire openaiResponse
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", openaiProvider, err)
	}

	response := &Response{Model: wire.Model}
	if len(wire.Choices) > 0 {
		response.Content = strings.TrimSpace(wire.Choices[0].Message.Content)
	}
	return response, nil
}

func (p *OpenAI) endpoint() string {
	return p.baseURL + "/v1/chat/completions"
}

func (p *OpenAI) buildRequest(request Request) openaiRequest {
	wire := openaiRequest{
		Model:       request.Model,
		Temperature: request.Temperature,
	}
	if wire.Model == "" {
		wire.Model = p.model
	}
	if request.System != "" {
		wire.Messages = append(wire.Messages, openaiMessage{Role: RoleSystem, Content: request.System})
	}
	for _, m := range request.Messages {
		wire.Messages = append(wire.Messages, openaiMessage{Role: m.Role, Content: m.Content})
	}
	return wire
}
