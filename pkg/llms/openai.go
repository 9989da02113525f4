package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/httpclient"
)

// openAIRequest is the chat-completions request body.
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// OpenAIProvider talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIProvider struct {
	model   string
	apiKey  string
	baseURL string
	client  *httpclient.Client
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithRetryClient replaces the retrying HTTP client.
func WithRetryClient(client *httpclient.Client) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.client = client
	}
}

// NewOpenAIProvider builds a provider for the given endpoint and model.
func NewOpenAIProvider(model, apiKey, baseURL string, timeout time.Duration, maxRetries int, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		model:   model,
		apiKey:  apiKey,
		baseURL: baseURL,
		client: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: timeout}),
			httpclient.WithMaxRetries(maxRetries),
		),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ModelName returns the configured model identifier.
func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// Generate runs one chat completion. When opts.Schema is set the request
// carries a strict json_schema response format and the returned text is the
// raw JSON document.
func (p *OpenAIProvider) Generate(ctx context.Context, messages []Message, opts GenerateOptions) (*Result, error) {
	reqBody := openAIRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	if opts.Schema != nil {
		name := opts.SchemaName
		if name == "" {
			name = "response"
		}
		reqBody.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   name,
				Schema: opts.Schema,
				Strict: true,
			},
		}
	}

	resp, err := p.makeRequest(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s (%s)", bi.ErrLLMUnavailable, resp.Error.Message, resp.Error.Type)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response contained no choices", bi.ErrLLMUnavailable)
	}

	return &Result{
		Text:  resp.Choices[0].Message.Content,
		Usage: resp.Usage,
	}, nil
}

func (p *OpenAIProvider) makeRequest(ctx context.Context, reqBody openAIRequest) (*openAIResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// GetBody lets the retry layer replay the body on transient failures.
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	// Do reports an error for any non-2xx status but still hands back the
	// response, so the API's error body can be surfaced below.
	resp, err := p.client.Do(req)
	if resp == nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", bi.ErrLLMUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", bi.ErrLLMUnavailable, parseErrorResponse(resp.StatusCode, body))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", bi.ErrLLMUnavailable, err)
	}

	return &parsed, nil
}

func parseErrorResponse(status int, body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", status, parsed.Error.Message)
	}
	return fmt.Sprintf("HTTP %d", status)
}
