// Package gemini implements the stateless request/reply client used for
// typed text messages. Every request carries the full committed
// transcript as prior context; no server-side session state is assumed.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"

	"github.com/vaanihq/vaani-core/core/llms"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel answers typed text when no model is configured.
	DefaultModel = "models/gemini-2.0-flash"

	apiKeyEnvVar = "GEMINI_API_KEY"
)

var _ llms.Replier = (*Client)(nil)

type Client struct {
	apiKey      string
	model       string
	baseURL     string
	instruction string
	httpClient  *http.Client
}

type ClientOption func(*Client)

// WithAPIKey overrides the GEMINI_API_KEY environment lookup.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithInstruction sets the static persona instruction sent with every
// request, matching the one the live session was opened with.
func WithInstruction(instruction string) ClientOption {
	return func(c *Client) { c.instruction = instruction }
}

// WithBaseURL redirects requests, primarily for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		model:   DefaultModel,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, request *http.Request) string {
					return "POST " + request.URL.Path
				}),
			),
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Reply sends one complete request and waits for one complete answer.
func (c *Client) Reply(ctx context.Context, history []llms.Turn, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "generate reply")
	defer span.End()

	apiKey := c.apiKey
	if apiKey == "" {
		var ok bool
		if apiKey, ok = os.LookupEnv(apiKeyEnvVar); !ok {
			return "", fmt.Errorf("gemini api key not found")
		}
	}

	reqBody := requestBody{Contents: toContents(history, prompt)}
	if c.instruction != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: c.instruction}}}
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	urlValues := url.Values{}
	urlValues.Set("key", apiKey)
	endpoint := fmt.Sprintf("%s/%s:generateContent?%s", c.baseURL, c.model, urlValues.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		recordedErr := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return "", recordedErr
	}

	var body responseBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", fmt.Errorf("error unmarshalling response: %w", err)
	}

	reply, err := replyText(body)
	if err != nil {
		return "", err
	}

	logger.Debug("generated reply", "history_turns", len(history), "reply_length", len(reply))
	return reply, nil
}
