package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"okr-planner-backend/internal/errlog"
)

// Params are passed through to the generation endpoint.
type Params struct {
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   int      `json:"max_tokens,omitempty" validate:"gte=0,lte=32768"`
	Model       string   `json:"model,omitempty" validate:"max=100"`
}

// Generator turns a prompt into a raw model answer: text, or an already
// decoded JSON value when the upstream returns structured output.
type Generator interface {
	Generate(ctx context.Context, prompt string, params Params) (any, error)
}

// ProxyClient talks to the generation endpoint that fronts the model:
// POST {prompt, params} -> {answer}.
type ProxyClient struct {
	http     *resty.Client
	endpoint string
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Params Params `json:"params"`
}

func NewProxyClient(endpoint, apiKey string, timeout time.Duration) *ProxyClient {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryCondition)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &ProxyClient{http: c, endpoint: endpoint}
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests
}

func (c *ProxyClient) Generate(ctx context.Context, prompt string, params Params) (any, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(generateRequest{Prompt: prompt, Params: params}).
		Post(c.endpoint)
	if err != nil {
		return nil, errlog.Wrap(errlog.CodeUpstreamFailure, "generation request failed", err)
	}
	if resp.IsError() {
		return nil, errlog.New(errlog.CodeUpstreamFailure, "generation endpoint returned an error").
			With("status", resp.StatusCode()).
			With("body", truncate(resp.String(), 300))
	}

	return answerFrom(resp.Body())
}

// answerFrom reads the "answer" field. Structured answers are returned
// decoded, string answers as text. A body without an answer is returned
// whole as text so the extractor can still look for arrays in it.
func answerFrom(body []byte) (any, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errlog.New(errlog.CodeUpstreamFailure, "empty response from generation endpoint")
	}
	if !gjson.ValidBytes(body) {
		return string(body), nil
	}

	answer := gjson.GetBytes(body, "answer")
	switch {
	case !answer.Exists() || answer.Type == gjson.Null:
		return string(body), nil
	case answer.Type == gjson.String:
		if strings.TrimSpace(answer.String()) == "" {
			return nil, errlog.New(errlog.CodeUpstreamFailure, "empty answer from generation endpoint")
		}
		return answer.String(), nil
	case answer.IsObject(), answer.IsArray():
		return answer.Value(), nil
	default:
		return answer.Raw, nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, params Params) (any, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, params Params) (any, error) {
	return f(ctx, prompt, params)
}

// WithTimeout bounds a whole Generate call, retries and backoff included.
func WithTimeout(gen Generator, d time.Duration) Generator {
	if d <= 0 {
		return gen
	}
	return GeneratorFunc(func(ctx context.Context, prompt string, params Params) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		answer, err := gen.Generate(ctx, prompt, params)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errlog.Wrap(errlog.CodeUpstreamFailure, "generation timed out", err).With("timeout", d.String())
		}
		return answer, err
	})
}

var _ Generator = (*ProxyClient)(nil)
var _ Generator = GeneratorFunc(nil)

func (c *ProxyClient) String() string {
	return fmt.Sprintf("proxy(%s)", c.endpoint)
}
