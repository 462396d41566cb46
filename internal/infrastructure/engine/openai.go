package engine

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hashtalk/hashtalk/gateway/internal/domain/service"
	"github.com/hashtalk/hashtalk/gateway/pkg/errors"
)

// Config 推理引擎客户端配置
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
}

// Client is an HTTP client for an OpenAI-compatible reasoning engine.
// The engine owns intent parsing, tool selection and conversational
// reasoning; this client only moves the thread and the tool definitions
// across the wire and decodes the reply once into tagged events.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	logger      *zap.Logger
}

// Compile-time interface check
var _ service.Engine = (*Client)(nil)

// New creates a reasoning engine client.
func New(cfg Config, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.cerebras.ai/v1"
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: 300 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Transport: transport},
		logger:      logger.With(zap.String("engine", "openai-compatible")),
	}
}

// Complete implements service.Engine (non-streaming).
func (c *Client) Complete(ctx context.Context, req *service.EngineRequest) ([]service.Event, error) {
	body, err := json.Marshal(c.buildAPIRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.NewNetworkError("reasoning engine unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError("read engine response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewNetworkError(
			fmt.Sprintf("engine API error %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	return c.parseAPIResponse(respBody)
}

func (c *Client) buildAPIRequest(req *service.EngineRequest) *apiRequest {
	out := &apiRequest{
		Model:       c.model,
		Temperature: c.temperature,
	}

	for _, msg := range req.Messages {
		apiMsg := apiMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.ToolName,
		}
		for _, call := range msg.ToolCalls {
			args, _ := json.Marshal(call.Arguments)
			apiMsg.ToolCalls = append(apiMsg.ToolCalls, apiToolCall{
				ID:   call.ID,
				Type: "function",
				Function: apiToolCallFunc{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
		out.Messages = append(out.Messages, apiMsg)
	}

	for _, def := range req.Tools {
		out.Tools = append(out.Tools, apiTool{
			Type: "function",
			Function: apiToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}

	return out
}

// parseAPIResponse decodes the engine reply exactly once, at this
// boundary, into the tagged event variant the bridge consumes.
func (c *Client) parseAPIResponse(body []byte) ([]service.Event, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal engine response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("engine returned no choices")
	}

	msg := resp.Choices[0].Message

	var events []service.Event
	if msg.Content != "" {
		events = append(events, service.Event{
			Kind: service.EventAssistantMessage,
			Text: msg.Content,
		})
	}

	if len(msg.ToolCalls) > 0 {
		calls := make([]service.ToolCallInfo, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			args := map[string]interface{}{}
			if tc.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					c.logger.Warn("Engine produced malformed tool arguments",
						zap.String("tool", tc.Function.Name),
						zap.Error(err),
					)
					// Pass the raw text through so the validator can reject it
					// with a proper reason instead of dropping the call.
					args = map[string]interface{}{"_raw": tc.Function.Arguments}
				}
			}
			calls = append(calls, service.ToolCallInfo{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: args,
			})
		}
		events = append(events, service.Event{
			Kind:      service.EventToolCalls,
			ToolCalls: calls,
		})
	}

	if len(events) == 0 {
		// Empty assistant turn — surface it as an empty message rather
		// than an error so the bridge terminates the round cleanly.
		events = append(events, service.Event{Kind: service.EventAssistantMessage})
	}

	return events, nil
}
