package modelgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fisionote/fisionote-backend/internal/platform/logger"
)

// Client is the generative-model boundary. The provider is external and
// untrusted: callers must treat every response as arbitrary input. The
// client applies the configured timeout and classifies failures; it never
// retries on its own, so malformed-output bugs cannot hide behind retry
// noise (retry policy belongs to the caller).
type Client interface {
	// GenerateJSON requests a structured (json_schema) completion and
	// returns the raw decoded payload in whatever envelope the provider
	// produced.
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (any, error)

	// GenerateText requests a plain-text completion.
	GenerateText(ctx context.Context, system, user string) (string, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("MODELGEN_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing MODELGEN_API_KEY")
	}
	baseURL := strings.TrimSpace(os.Getenv("MODELGEN_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("MODELGEN_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeoutSec := 120
	if v := strings.TrimSpace(os.Getenv("MODELGEN_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log.With("client", "modelgen"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("model api status %d: %s", e.StatusCode, e.Body)
}

func (c *client) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (any, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	if schema != nil {
		body["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"strict": true,
				"schema": schema,
			},
		}
	}
	text, err := c.complete(ctx, body)
	if err != nil {
		return nil, err
	}
	var decoded any
	if jsonErr := json.Unmarshal([]byte(text), &decoded); jsonErr != nil {
		// Leave malformed payloads to the parser stage downstream.
		return text, nil
	}
	return decoded, nil
}

func (c *client) GenerateText(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	})
}

func (c *client) complete(ctx context.Context, body map[string]any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("model call failed", "kind", string(Classify(err)), "error", err)
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &httpError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
		c.log.Warn("model call rejected", "status", resp.StatusCode, "kind", string(Classify(herr)))
		return "", herr
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("model response has no choices")
	}
	c.log.Debug("model call complete", "duration_ms", time.Since(start).Milliseconds())
	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
