// Package httpagent provides an agent that delegates stage execution to a remote collaborator over HTTP.
package httpagent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukex/warden/pkg/protocol"
)

const (
	defaultTimeout = 5 * time.Minute

	// Responses larger than this are rejected.
	maxResponseBytes = 16 << 20
)

var ErrMissingEndpoint = errors.New("agent endpoint is required")

// HTTPError is returned when the collaborator answers with a non-2xx status.
type HTTPError struct {
	AgentID    string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("agent %s responded with status %d: %s", e.AgentID, e.StatusCode, e.Body)
}

// Config describes a remote collaborator.
type Config struct {
	ID       string            `yaml:"id"       json:"id"       validate:"required"`
	Endpoint string            `yaml:"endpoint" json:"endpoint" validate:"required,url"`
	Headers  map[string]string `yaml:"headers"  json:"headers,omitempty"`
	Timeout  time.Duration     `yaml:"timeout"  json:"timeout,omitempty"`
}

// Agent posts the stage input as JSON to the collaborator endpoint and decodes a StageOutput
// from the response.
type Agent struct {
	id       string
	endpoint string
	headers  map[string]string
	client   *http.Client
}

func New(config Config, client *http.Client) (*Agent, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingEndpoint, config.ID)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Agent{
		id:       config.ID,
		endpoint: config.Endpoint,
		headers:  config.Headers,
		client:   client,
	}, nil
}

func (a *Agent) ID() string {
	return a.id
}

func (a *Agent) ExecuteStage(ctx context.Context, input protocol.StageInput, logger *slog.Logger) (*protocol.StageOutput, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stage input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	for key, value := range a.headers {
		req.Header.Set(key, value)
	}

	logger.DebugContext(ctx, "Calling remote agent", "endpoint", a.endpoint, "stage", input.Stage.Name)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request to agent %s failed: %w", a.id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &HTTPError{AgentID: a.id, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var output protocol.StageOutput

	err = json.Unmarshal(body, &output)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response of agent %s: %w", a.id, err)
	}

	logger.DebugContext(ctx, "Remote agent completed", "status_code", resp.StatusCode, "body_length", len(body))

	return &output, nil
}

var _ protocol.Agent = (*Agent)(nil)
