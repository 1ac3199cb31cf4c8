package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// Generation parameters are fixed by the orchestration contract: one
// synchronous request, no streaming, no retry.
const (
	temperature = 0.7
	maxTokens   = 2000
)

// Client calls an OpenAI-compatible chat completion endpoint (Groq by
// default). It is stateless between calls.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a new completion client.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// chatCompletionRequest is the OpenAI-compatible request body.
type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []domain.ContextMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
	MaxTokens   int                     `json:"max_tokens"`
}

// chatCompletionResponse is the success envelope.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// errorResponse is the failure envelope.
type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one chat completion request and extracts the reply text.
func (c *Client) Complete(ctx context.Context, systemPrompt string, messages []domain.ContextMessage) (string, error) {
	payload := chatCompletionRequest{
		Model:       c.model,
		Messages:    append([]domain.ContextMessage{{Role: string(domain.RoleSystem), Content: systemPrompt}}, messages...),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.ProviderError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Status: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return "", &domain.ProviderError{Status: resp.StatusCode, Message: errResp.Error.Message}
		}
		return "", &domain.ProviderError{Status: resp.StatusCode, Message: string(respBody)}
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &domain.ProviderError{Status: resp.StatusCode, Message: fmt.Sprintf("failed to unmarshal response: %v", err)}
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "I apologize, but I encountered an issue generating a response.", nil
	}
	return result.Choices[0].Message.Content, nil
}
