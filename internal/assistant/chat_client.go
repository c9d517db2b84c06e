package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/homescout/api/internal/config"
	"github.com/homescout/api/internal/logger"
	"github.com/homescout/api/internal/models"
)

const extractPrompt = `Extract property search parameters from the user message.
Return JSON with these fields (only include mentioned ones):
- city: city name
- min_price: minimum price
- max_price: maximum price
- bedrooms: number of bedrooms
- bathrooms: number of bathrooms

Example: "3 bedroom house in Toronto under 1 million"
Returns: {"city": "Toronto", "bedrooms": 3, "max_price": 1000000}
Return only the JSON object, no other text.`

const summarizeSystemPrompt = "You're a helpful real estate assistant. " +
	"Present properties clearly with key details."

// ChatClient implements Assistant against an OpenAI-style chat-completions
// endpoint.
type ChatClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewChatClient creates a ChatClient from configuration.
func NewChatClient(cfg config.AssistantConfig, log *logger.Logger) *ChatClient {
	return &ChatClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract asks the model for a predicate set and parses its JSON reply.
// Unparsable output is an error so the caller can fall back.
func (c *ChatClient) Extract(ctx context.Context, message string) (models.SearchFilter, error) {
	content, err := c.complete(ctx, 0.3, []chatMessage{
		{Role: "system", Content: extractPrompt},
		{Role: "user", Content: message},
	})
	if err != nil {
		return models.SearchFilter{}, err
	}

	var filter models.SearchFilter
	if err := json.Unmarshal([]byte(content), &filter); err != nil {
		return models.SearchFilter{}, fmt.Errorf("extraction output is not valid JSON: %w", err)
	}
	return filter, nil
}

// Summarize asks the model to present the result set as prose.
func (c *ChatClient) Summarize(ctx context.Context, listings []models.Listing, originalQuery string) (string, error) {
	summary := make([]map[string]interface{}, 0, len(listings))
	shown := listings
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, l := range shown {
		entry := map[string]interface{}{
			"type":   l.DisplayType(),
			"photos": l.PhotoCount,
		}
		if l.UnparsedAddress != nil {
			entry["address"] = *l.UnparsedAddress
		}
		if l.ListPrice != nil {
			entry["price"] = fmt.Sprintf("$%.0f", *l.ListPrice)
		} else {
			entry["price"] = "Price not listed"
		}
		if l.Bedrooms != nil {
			entry["beds"] = *l.Bedrooms
		}
		if l.Bathrooms != nil {
			entry["baths"] = *l.Bathrooms
		}
		if l.PublicRemarks != nil {
			remarks := *l.PublicRemarks
			if len(remarks) > 150 {
				remarks = remarks[:150] + "..."
			}
			entry["description"] = remarks
		}
		summary = append(summary, entry)
	}

	propsJSON, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode listing summary: %w", err)
	}

	userContent := fmt.Sprintf(
		"User asked: %s\n\nProperties found:\n%s\n\nPresent these nicely.",
		originalQuery, string(propsJSON),
	)

	return c.complete(ctx, 0.7, []chatMessage{
		{Role: "system", Content: summarizeSystemPrompt},
		{Role: "user", Content: userContent},
	})
}

// complete performs a single chat-completions call and returns the first
// choice's content.
func (c *ChatClient) complete(ctx context.Context, temperature float64, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return "", fmt.Errorf("chat request returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
