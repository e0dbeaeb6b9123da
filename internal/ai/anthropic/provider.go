// Package anthropic implements the ai.Provider interface against the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/matt-dz/tidyplan/internal/ai"
	tpHttp "github.com/matt-dz/tidyplan/internal/http"
)

const (
	// APIBaseURL is the base URL for the Anthropic Messages API.
	APIBaseURL = "https://api.anthropic.com/v1/messages"

	// APIVersion is the Anthropic API version header value.
	APIVersion = "2023-06-01"

	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-3-5-haiku-20241022"

	// DefaultMaxSuggestions caps a single suggestion batch.
	DefaultMaxSuggestions = 5

	maxOutputTokens = 1024
)

// Config contains configuration for the Anthropic provider.
type Config struct {
	APIKey string
	Model  string
}

// Provider calls the Anthropic API through the shared retrying client.
type Provider struct {
	config Config
	client tpHttp.HTTPDoer
	logger *slog.Logger
}

// New creates an Anthropic provider. The API key is required.
func New(config Config, client tpHttp.HTTPDoer, logger *slog.Logger) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if client == nil {
		client = tpHttp.DefaultConfig()
	}
	return &Provider{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []apiContent `json:"content"`
	Usage   apiUsage     `json:"usage"`
}

type apiContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type suggestionOutput struct {
	Suggestions []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	} `json:"suggestions"`
}

// SuggestTasks asks the model for the next tasks of a project and
// parses the JSON it returns.
func (p *Provider) SuggestTasks(ctx context.Context, params ai.SuggestParams) ([]ai.Suggestion, error) {
	maxSuggestions := params.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}

	body, err := json.Marshal(apiRequest{
		Model:     p.config.Model,
		MaxTokens: maxOutputTokens,
		System:    systemPrompt,
		Messages: []apiMessage{
			{Role: "user", Content: buildSuggestPrompt(params, maxSuggestions)},
		},
	})
	if err != nil {
		return nil, ai.WrapError("marshal request", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, APIBaseURL, body)
	if err != nil {
		return nil, ai.WrapError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", APIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, ai.WrapError("execute request", ai.ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ai.WrapError("read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ai.WrapError("execute request", p.mapHTTPError(resp.StatusCode, respBody))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, ai.WrapError("unmarshal response", err)
	}

	suggestions, err := parseSuggestions(apiResp, maxSuggestions)
	if err != nil {
		return nil, ai.WrapError("parse response", err)
	}

	p.logger.DebugContext(ctx, "task suggestions generated",
		slog.String("model", p.config.Model),
		slog.Int("count", len(suggestions)),
		slog.Int("input_tokens", apiResp.Usage.InputTokens),
		slog.Int("output_tokens", apiResp.Usage.OutputTokens))
	return suggestions, nil
}

func (p *Provider) mapHTTPError(statusCode int, body []byte) error {
	var errResp apiErrorResponse
	_ = json.Unmarshal(body, &errResp)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ai.ErrUnauthorized
	case http.StatusTooManyRequests:
		return ai.ErrRateLimited
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout,
		http.StatusInternalServerError:
		return ai.ErrUnavailable
	default:
		return fmt.Errorf("api error (status %d): %s", statusCode, errResp.Error.Message)
	}
}

func parseSuggestions(resp apiResponse, maxSuggestions int) ([]ai.Suggestion, error) {
	var text string
	for _, content := range resp.Content {
		if content.Type == "text" {
			text = content.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	// Models occasionally wrap JSON in a code fence.
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var output suggestionOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &output); err != nil {
		return nil, fmt.Errorf("parse suggestion output: %w", err)
	}

	suggestions := make([]ai.Suggestion, 0, len(output.Suggestions))
	for _, s := range output.Suggestions {
		if s.Title == "" {
			continue
		}
		priority := ai.Priority(s.Priority)
		if !priority.Valid() {
			priority = ai.PriorityMedium
		}
		suggestions = append(suggestions, ai.Suggestion{
			Title:       s.Title,
			Description: s.Description,
			Priority:    priority,
		})
		if len(suggestions) >= maxSuggestions {
			break
		}
	}
	return suggestions, nil
}
