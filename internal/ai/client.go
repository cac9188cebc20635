// Package ai drives the Ollama model backend. One call drives exactly one
// generation; the client holds no cross-call state and is safe for concurrent
// use by independent calls.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Client is an HTTP client for a local Ollama runtime.
type Client struct {
	httpClient   *http.Client
	streamClient *http.Client
	host         string
	model        string

	temperature   float64
	maxTokens     int
	contextWindow int

	generateTimeout time.Duration
}

// NewClient creates a client targeting the given host. Zero values fall back
// to defaults (http://127.0.0.1:11434, mistral-small:latest, 0.7 temperature,
// 16384 tokens/context, 30s connect, 2h generation).
func NewClient(host, model string, temperature float64, maxTokens, contextWindow int, connectTimeout, generateTimeout time.Duration) *Client {
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	if model == "" {
		model = "mistral-small:latest"
	}
	if temperature <= 0 {
		temperature = 0.7
	}
	if maxTokens <= 0 {
		maxTokens = 16384
	}
	if contextWindow <= 0 {
		contextWindow = 16384
	}
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	if generateTimeout <= 0 {
		generateTimeout = 2 * time.Hour
	}
	// The stream client carries no overall timeout: chunks may arrive slowly
	// for hours. Connect and header reads stay bounded; the read deadline is
	// enforced through the request context.
	streamTransport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
		ResponseHeaderTimeout: connectTimeout,
	}
	return &Client{
		httpClient:      &http.Client{Timeout: generateTimeout},
		streamClient:    &http.Client{Transport: streamTransport},
		host:            strings.TrimRight(host, "/"),
		model:           model,
		temperature:     temperature,
		maxTokens:       maxTokens,
		contextWindow:   contextWindow,
		generateTimeout: generateTimeout,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Request is one generation request.
type Request struct {
	Prompt string
	System string
}

// Wire structures for /api/generate and /api/tags.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type generatePayload struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckAvailability probes the backend. Any failure yields false, never an
// error.
func (c *Client) CheckAvailability(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.streamClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ListModels returns the backend's model names, best-effort: empty on any
// failure.
func (c *Client) ListModels(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return nil
	}
	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names
}

func (c *Client) payload(req Request, stream bool) generatePayload {
	return generatePayload{
		Model:  c.model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: stream,
		Options: generateOptions{
			Temperature: c.temperature,
			NumPredict:  c.maxTokens,
			NumCtx:      c.contextWindow,
		},
	}
}

// Generate issues a blocking whole-result request and returns the full
// response text. Failures map to *TimeoutError, *UnreachableError or
// *APIError; there is no automatic retry.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if req.Prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}
	body, err := json.Marshal(c.payload(req, false))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.classifyTransportErr("generate", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Response, nil
}

// GenerateStream opens a streaming request and calls onDelta for every text
// fragment as it arrives, stopping when the backend signals done or the
// stream ends. onDelta runs synchronously on the read loop, so a slow
// consumer stalls the network read rather than buffering unbounded output.
// Failures are the returned error, never delivered through onDelta.
func (c *Client) GenerateStream(ctx context.Context, req Request, onDelta func(string)) error {
	if req.Prompt == "" {
		return errors.New("prompt cannot be empty")
	}
	body, err := json.Marshal(c.payload(req, true))
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return c.classifyTransportErr("stream", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	scanner := bufio.NewScanner(resp.Body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return c.classifyTransportErr("stream", err)
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Response != "" {
			onDelta(chunk.Response)
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return c.classifyTransportErr("stream", err)
	}
	return nil
}

// classifyTransportErr maps network failures to the typed error kinds the
// callers branch on: timed out vs. unreachable.
func (c *Client) classifyTransportErr(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &TimeoutError{Op: op, Err: err}
	}
	return &UnreachableError{Host: c.host, Err: err}
}
