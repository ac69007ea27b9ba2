// internal/completion/client.go
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smartquery/text2sql-backend/internal/logger"
)

// Upstream failure sentinels. The orchestrator decides whether to retry or
// degrade; this client never retries on its own.
var (
	ErrUpstream        = errors.New("completion service failure")
	ErrUpstreamTimeout = errors.New("completion service timeout")
	customLog          = logger.NewLogger()
)

// Client calls an OpenAI-compatible chat-completion endpoint and turns the
// response into a candidate SQL string or suggestion text.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Token       string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// NewClient builds a completion client for the configured endpoint.
func NewClient(opts Options) *Client {
	conf := openai.DefaultConfig(opts.Token)
	if opts.BaseURL != "" {
		conf.BaseURL = opts.BaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		api:         openai.NewClientWithConfig(conf),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		timeout:     timeout,
	}
}

// Complete sends one non-streaming chat completion and returns the raw
// message content. Non-success status, timeout or a body without a choice
// all surface as upstream errors.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			customLog.Warnf("Completion: call timed out after %v", c.timeout)
			return "", fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		customLog.Warnf("Completion: call failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contains no choices", ErrUpstream)
	}

	return resp.Choices[0].Message.Content, nil
}

// CleanSQL strips the decoration models wrap around SQL: code fences, the
// literal "sql"/"SQL" fence labels, statement terminators, and quoting
// around known table names. Lossy and best-effort; the safety filter, not
// this cleanup, decides whether the result is acceptable.
func CleanSQL(raw string, tableNames []string) string {
	s := strings.ReplaceAll(raw, "```", "")
	s = strings.ReplaceAll(s, "sql", "")
	s = strings.ReplaceAll(s, "SQL", "")
	s = strings.ReplaceAll(s, ";", "")
	for _, name := range tableNames {
		s = strings.ReplaceAll(s, "'"+name+"'", name)
		s = strings.ReplaceAll(s, "`"+name+"`", name)
	}
	return strings.TrimSpace(s)
}
