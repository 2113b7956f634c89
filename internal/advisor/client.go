// Package advisor talks to an OpenAI-compatible chat-completions endpoint
// to get answers for questions detected in a supervised terminal session.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/johanfleming/hansel/internal/logging"
)

// DefaultEndpoint is the OpenAI chat-completions endpoint.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// menuInstruction is appended to the system prompt for menu consultations.
// The reply must be a bare token; anything else cannot be typed into a
// selection menu.
const menuInstruction = "The terminal is showing a numbered selection menu. " +
	"Reply with ONLY the number of the best option. No explanation, no punctuation, just the number."

// ErrNoAPIKey is returned when a consultation is attempted without a key.
var ErrNoAPIKey = errors.New("advisor: no API key configured")

// Wire types for the chat-completions API.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Options configures a Client.
type Options struct {
	APIKey string
	Model  string
	// Endpoint defaults to DefaultEndpoint.
	Endpoint string
	// SystemPrompt frames the advisor's role for free-form questions.
	SystemPrompt    string
	Temperature     float64
	MaxAnswerTokens int
	MaxMenuTokens   int
	Logger          *logging.Logger
	// HTTPClient defaults to http.DefaultClient. Request deadlines come
	// from the caller's context.
	HTTPClient *http.Client
}

// Client asks a chat-completions model for advice. It is stateless and
// safe for concurrent use.
type Client struct {
	opts   Options
	logger *logging.Logger
	http   *http.Client
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		opts:   opts,
		logger: opts.Logger.WithComponent("advisor"),
		http:   httpClient,
	}
}

// Consult answers a free-form question. The recent lines are included as
// context so the advisor sees what the supervised program was doing.
func (c *Client) Consult(ctx context.Context, question string, recent []string) (string, error) {
	user := question
	if len(recent) > 0 {
		user = fmt.Sprintf("Recent terminal output:\n```\n%s\n```\n\nThe coding assistant is asking:\n%s",
			strings.Join(recent, "\n"), question)
	}

	messages := []chatMessage{
		{Role: "system", Content: c.opts.SystemPrompt},
		{Role: "user", Content: user},
	}
	answer, err := c.complete(ctx, messages, c.opts.MaxAnswerTokens)
	if err != nil {
		return "", err
	}

	c.logger.Debug("consultation complete", "question", question, "answer", answer)
	return answer, nil
}

// ConsultMenu picks an option from a selection menu. The returned token is
// the bare option number.
func (c *Client) ConsultMenu(ctx context.Context, menu []string) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: strings.TrimSpace(c.opts.SystemPrompt + "\n\n" + menuInstruction)},
		{Role: "user", Content: strings.Join(menu, "\n")},
	}
	reply, err := c.complete(ctx, messages, c.opts.MaxMenuTokens)
	if err != nil {
		return "", err
	}

	token, err := parseMenuToken(reply)
	if err != nil {
		return "", err
	}
	c.logger.Debug("menu consultation complete", "token", token)
	return token, nil
}

// complete performs one chat-completions round trip.
func (c *Client) complete(ctx context.Context, messages []chatMessage, maxTokens int) (string, error) {
	if c.opts.APIKey == "" {
		return "", ErrNoAPIKey
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("HTTP %d from advisor endpoint", resp.StatusCode)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("empty choices in response")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// menuTokenPattern extracts the option number from a menu reply. Models
// sometimes wrap the number ("Option 2." or "2)"), so the first digit run
// anywhere in the reply is taken.
var menuTokenPattern = regexp.MustCompile(`\d+`)

func parseMenuToken(reply string) (string, error) {
	token := menuTokenPattern.FindString(reply)
	if token == "" {
		return "", fmt.Errorf("no option number in menu reply %q", reply)
	}
	return token, nil
}
