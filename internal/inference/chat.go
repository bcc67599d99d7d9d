package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxErrorBodyLen bounds how much of an error response body is kept for
// logs and error messages.
const maxErrorBodyLen = 512

// ChatClient talks to an OpenAI-compatible chat-completions endpoint.
// It implements Client.
type ChatClient struct {
	baseURL     string
	apiKey      string
	textModel   string
	visionModel string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ChatOption configures a ChatClient.
type ChatOption func(*ChatClient)

// WithHTTPClient sets a custom HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ChatOption {
	return func(c *ChatClient) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) ChatOption {
	return func(c *ChatClient) {
		c.logger = logger
	}
}

// WithModels overrides the text and vision model names.
func WithModels(textModel, visionModel string) ChatOption {
	return func(c *ChatClient) {
		c.textModel = textModel
		c.visionModel = visionModel
	}
}

// NewChatClient creates a client for the given endpoint base URL
// (e.g. "https://api.groq.com/openai/v1") and API key.
func NewChatClient(baseURL, apiKey string, opts ...ChatOption) *ChatClient {
	c := &ChatClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		textModel:   "llama-3.3-70b-versatile",
		visionModel: "llama-3.2-11b-vision-preview",
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chatRequest is the wire shape of a chat-completions request.
// Content is either a plain string or a slice of content parts; we use
// json.RawMessage-free typed structs and marshal the right shape per call.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// contentPart is one element of a multimodal message.
type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeText implements Client.
func (c *ChatClient) AnalyzeText(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	return c.complete(ctx, chatRequest{
		Model:       c.textModel,
		Messages:    messages,
		Temperature: 0.2,
	})
}

// AnalyzeImage implements Client. The image travels inline as a base64
// data URL in an image_url content part.
func (c *ChatClient) AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image payload", ErrInvalidInput)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	return c.complete(ctx, chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &imageURLPart{URL: dataURL}},
				},
			},
		},
		Temperature: 0.2,
	})
}

// complete posts the request and returns the first choice's content.
func (c *ChatClient) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrAuth)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrInvalidInput, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrInvalidInput, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Context cancellation surfaces as-is so deadline handling
		// upstream can distinguish it from backend trouble.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTransient, err)
	}

	c.logger.Debug("inference call completed",
		"model", reqBody.Model,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > maxErrorBodyLen {
			snippet = snippet[:maxErrorBodyLen]
		}
		return "", classifyStatus(resp.StatusCode, snippet)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTransient, err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
