package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/homescout/api/internal/assistant"
	"github.com/homescout/api/internal/logger"
	"github.com/homescout/api/internal/models"
)

const (
	// maxChatMediaURLs caps the media URLs collected across a chat reply.
	maxChatMediaURLs = 9
	// chatMediaListings is how many leading results contribute media URLs.
	chatMediaListings = 3
)

// ChatResult is the outcome of processing one free-text message.
type ChatResult struct {
	Message   string          `json:"message"`
	Results   []ListingResult `json:"results"`
	MediaURLs []string        `json:"media_urls"`
}

// ChatService processes free-text property queries: predicates are extracted
// by the assistant, the search engine runs the query, and the assistant
// summarizes the results. Every assistant failure degrades to a
// deterministic templated reply; search failures propagate.
type ChatService interface {
	Process(ctx context.Context, message string) (*ChatResult, error)
}

// chatService is the concrete implementation of ChatService.
type chatService struct {
	listings  ListingService
	assistant assistant.Assistant
	log       *logger.Logger
}

// NewChatService creates a new instance of ChatService.
func NewChatService(listings ListingService, a assistant.Assistant, log *logger.Logger) ChatService {
	return &chatService{
		listings:  listings,
		assistant: a,
		log:       log,
	}
}

// Process handles one chat message end to end.
func (s *chatService) Process(ctx context.Context, message string) (*ChatResult, error) {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "help") || strings.Contains(lower, "cities") {
		return s.citiesReply(ctx)
	}

	filter, err := s.assistant.Extract(ctx, message)
	if err != nil {
		// Degraded extraction searches with no predicates rather than
		// failing the chat.
		s.log.Warn("Parameter extraction failed, searching unfiltered", map[string]interface{}{
			"error": err.Error(),
		})
		filter = models.SearchFilter{}
	}

	results, err := s.listings.Search(ctx, filter)
	if err != nil {
		// A search failure must surface as an explicit error, never as an
		// empty reply that looks like no matches.
		return nil, fmt.Errorf("chat search failed: %w", err)
	}

	listings := make([]models.Listing, 0, len(results))
	for _, r := range results {
		listings = append(listings, r.Listing)
	}

	reply, err := s.assistant.Summarize(ctx, listings, message)
	if err != nil {
		s.log.Warn("Summarization failed, using fallback template", map[string]interface{}{
			"error": err.Error(),
		})
		reply = assistant.FallbackSummary(listings)
	}
	if len(listings) == 0 {
		reply = assistant.FallbackSummary(listings)
	}

	return &ChatResult{
		Message:   reply,
		Results:   results,
		MediaURLs: collectMediaURLs(results),
	}, nil
}

// citiesReply answers help/cities messages with the city aggregate.
func (s *chatService) citiesReply(ctx context.Context) (*ChatResult, error) {
	cities, err := s.listings.AvailableCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("chat cities lookup failed: %w", err)
	}

	var b strings.Builder
	b.WriteString("Available cities:\n")
	shown := cities
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, c := range shown {
		fmt.Fprintf(&b, "%s (%d properties)\n", c.City, c.Count)
	}
	b.WriteString("\nTry: 'Show me houses in Toronto'")

	return &ChatResult{
		Message:   b.String(),
		Results:   []ListingResult{},
		MediaURLs: []string{},
	}, nil
}

// collectMediaURLs gathers preview URLs from the first few listings, capped
// at maxChatMediaURLs overall.
func collectMediaURLs(results []ListingResult) []string {
	urls := make([]string, 0, maxChatMediaURLs)

	shown := results
	if len(shown) > chatMediaListings {
		shown = shown[:chatMediaListings]
	}
	for _, r := range shown {
		for _, u := range r.PreviewURLs {
			if len(urls) == maxChatMediaURLs {
				return urls
			}
			urls = append(urls, u)
		}
	}
	return urls
}
