// Package openai provides a minimal client for OpenAI-compatible chat
// completion APIs. Requests are assembled from genai content parts so that
// callers can mix text and inline image data in a single user turn.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
	"google.golang.org/genai"
)

// Config for the completion client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	ProxyURL    string // optional SOCKS proxy, e.g. socks5://localhost:1080
}

// Client calls an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a completion client. The timeout spans the whole request
// including body read.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.ProxyURL != "" {
		transport, err := proxyTransport(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		httpClient.Transport = transport
	}

	return &Client{
		config: cfg,
		client: httpClient,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

type openAIMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error interface{} `json:"error"`
}

// Complete sends the contents as a chat completion request and returns the
// first choice's text. Empty model output is reported as an error.
func (c *Client) Complete(ctx context.Context, contents []*genai.Content) (string, error) {
	payload := openAIRequest{
		Model:       c.config.Model,
		Messages:    convertMessages(contents),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("completion api error: %v", result.Error)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion api error: empty choices")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("completion api error: empty content")
	}

	return content, nil
}

func convertMessages(contents []*genai.Content) []openAIMessage {
	messages := make([]openAIMessage, 0, len(contents))
	for _, content := range contents {
		if content == nil {
			continue
		}

		parts, textOnly := convertParts(content.Parts)
		if len(parts) == 0 {
			continue
		}

		msg := openAIMessage{Role: roleForContent(content.Role)}
		if textOnly {
			msg.Content = joinText(parts)
		} else {
			msg.Content = parts
		}
		messages = append(messages, msg)
	}
	return messages
}

// convertParts keeps the caller's part ordering: image parts appear in the
// message exactly where they were placed in the genai content.
func convertParts(parts []*genai.Part) ([]openAIContentPart, bool) {
	converted := make([]openAIContentPart, 0, len(parts))
	textOnly := true

	for _, part := range parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil {
			converted = append(converted, openAIContentPart{
				Type:     "image_url",
				ImageURL: &openAIImageURL{URL: dataURI(part.InlineData)},
			})
			textOnly = false
			continue
		}
		if strings.TrimSpace(part.Text) != "" {
			converted = append(converted, openAIContentPart{Type: "text", Text: part.Text})
		}
	}

	return converted, textOnly
}

func joinText(parts []openAIContentPart) string {
	var builder strings.Builder
	for _, part := range parts {
		if part.Type != "text" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(part.Text)
	}
	return builder.String()
}

func dataURI(blob *genai.Blob) string {
	mimeType := blob.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(blob.Data)
}

func roleForContent(role string) string {
	if role == "model" {
		return "assistant"
	}
	return "user"
}

func proxyTransport(proxyURL string) (*http.Transport, error) {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	dialer, err := proxy.FromURL(parsed, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("build proxy dialer: %w", err)
	}

	transport := &http.Transport{}
	if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = contextDialer.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}

	return transport, nil
}
