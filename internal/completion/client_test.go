package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanSQL(t *testing.T) {
	tables := []string{"商品信息表", "顾客信息表"}

	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{"bare statement", "SELECT * FROM 商品信息表", "SELECT * FROM 商品信息表"},
		{"fenced with label", "```sql\nSELECT * FROM 商品信息表\n```", "SELECT * FROM 商品信息表"},
		{"uppercase label", "```SQL\nSELECT 商品名 FROM 商品信息表\n```", "SELECT 商品名 FROM 商品信息表"},
		{"trailing semicolon", "SELECT * FROM 商品信息表;", "SELECT * FROM 商品信息表"},
		{"single-quoted table", "SELECT * FROM '商品信息表' WHERE 单位价格 > 10", "SELECT * FROM 商品信息表 WHERE 单位价格 > 10"},
		{"backtick-quoted table", "SELECT 姓名 FROM `顾客信息表`", "SELECT 姓名 FROM 顾客信息表"},
		{"everything at once", "```sql\nSELECT * FROM `商品信息表`;\n```\n", "SELECT * FROM 商品信息表"},
		{"surrounding whitespace", "\n\n  SELECT 1  \n", "SELECT 1"},
		// The label strip is a blind substring replace, so "sql" inside an
		// identifier is removed too. Accepted cost of the textual approach.
		{"lossy inside identifier", "SELECT sqlite_version()", "SELECT ite_version()"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanSQL(tc.raw, tables); got != tc.want {
				t.Errorf("CleanSQL(%q) = %q; want %q", tc.raw, got, tc.want)
			}
		})
	}
}

// chatStub is a minimal OpenAI-compatible chat-completions endpoint.
func chatStub(t *testing.T, handler func(w http.ResponseWriter, prompt string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var prompt string
		if len(req.Messages) > 0 {
			prompt = req.Messages[0].Content
		}
		handler(w, prompt)
	}))
}

func writeChatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
}

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(Options{
		BaseURL:     baseURL + "/v1",
		Token:       "test-token",
		Model:       "test-model",
		MaxTokens:   512,
		Temperature: 0.7,
		Timeout:     timeout,
	})
}

func TestCompleteReturnsMessageContent(t *testing.T) {
	var gotPrompt string
	server := chatStub(t, func(w http.ResponseWriter, prompt string) {
		gotPrompt = prompt
		writeChatReply(w, "SELECT * FROM 商品信息表")
	})
	defer server.Close()

	c := newTestClient(server.URL, 5*time.Second)
	got, err := c.Complete(context.Background(), "有哪些商品？")

	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM 商品信息表", got)
	assert.Equal(t, "有哪些商品？", gotPrompt, "prompt is sent verbatim as the user message")
}

func TestCompleteUpstreamStatusError(t *testing.T) {
	server := chatStub(t, func(w http.ResponseWriter, _ string) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	c := newTestClient(server.URL, 5*time.Second)
	_, err := c.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream), "non-2xx must map to ErrUpstream, got %v", err)
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := chatStub(t, func(w http.ResponseWriter, _ string) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-test","object":"chat.completion","choices":[]}`)
	})
	defer server.Close()

	c := newTestClient(server.URL, 5*time.Second)
	_, err := c.Complete(context.Background(), "prompt")

	require.ErrorIs(t, err, ErrUpstream)
}

func TestCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	server := chatStub(t, func(w http.ResponseWriter, _ string) {
		<-release
		writeChatReply(w, "too late")
	})
	defer func() {
		close(release)
		server.Close()
	}()

	c := newTestClient(server.URL, 50*time.Millisecond)
	_, err := c.Complete(context.Background(), "prompt")

	require.ErrorIs(t, err, ErrUpstreamTimeout)
	assert.NotErrorIs(t, err, ErrUpstream, "timeouts carry their own sentinel")
}
