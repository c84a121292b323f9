package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	ErrMissingAPIKey     = errors.New("no API key configured")
	ErrInvalidCredential = errors.New("API key rejected")
	ErrEmptyResponse     = errors.New("empty response from AI")
	ErrCircuitOpen       = errors.New("AI service temporarily unavailable")
)

// StatusError is a non-success HTTP status from a provider.
type StatusError struct {
	Provider Provider
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (%d)", e.Provider, e.Code)
}

// TextService turns a prompt into generated text.
type TextService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	defaultGeminiBase = "https://generativelanguage.googleapis.com/v1beta"
	defaultOpenAIBase = "https://api.openai.com/v1"

	geminiModel = "gemini-2.0-flash"
	openAIModel = "gpt-4o-mini"

	aiTemperature = 0.7
	aiMaxTokens   = 1024

	teacherPersona = "You are a gentle teacher who explains things so that an elementary school student can understand. Answer with simple words."
)

func postJSON(ctx context.Context, client *http.Client, endpoint string, body any, header http.Header) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	return client.Do(req)
}

type geminiClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig geminiGeneration `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGeneration struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.baseURL, "/"), geminiModel, url.QueryEscape(g.apiKey))
	body := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGeneration{Temperature: aiTemperature, MaxOutputTokens: aiMaxTokens},
	}
	resp, err := postJSON(ctx, g.http, endpoint, body, nil)
	if err != nil {
		// The URL carries the key; keep it out of the error.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden {
			return "", ErrInvalidCredential
		}
		return "", &StatusError{Provider: ProviderGemini, Code: resp.StatusCode}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 ||
		out.Candidates[0].Content.Parts[0].Text == "" {
		return "", ErrEmptyResponse
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

type openAIClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func (o *openAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if o.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	body := openAIRequest{
		Model: openAIModel,
		Messages: []openAIMessage{
			{Role: "system", Content: teacherPersona},
			{Role: "user", Content: prompt},
		},
		Temperature: aiTemperature,
		MaxTokens:   aiMaxTokens,
	}
	header := http.Header{"Authorization": []string{"Bearer " + o.apiKey}}
	resp, err := postJSON(ctx, o.http, strings.TrimRight(o.baseURL, "/")+"/chat/completions", body, header)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			return "", ErrInvalidCredential
		}
		return "", &StatusError{Provider: ProviderOpenAI, Code: resp.StatusCode}
	}

	var out openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}

// breakerService guards a provider with a circuit breaker. Rejected keys
// and missing keys are the user's to fix and do not count as failures.
type breakerService struct {
	provider Provider
	next     TextService
	cb       *gobreaker.CircuitBreaker
}

func (b *breakerService) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		qnksAIRequestTotal.WithLabelValues(string(b.provider), "rejected").Inc()
		return "", ErrCircuitOpen
	}
	if err != nil {
		qnksAIRequestTotal.WithLabelValues(string(b.provider), "error").Inc()
		return "", err
	}
	qnksAIRequestTotal.WithLabelValues(string(b.provider), "ok").Inc()
	return out.(string), nil
}

type aiRouterOptions struct {
	HTTPClient *http.Client
	GeminiBase string
	OpenAIBase string
	Logger     *zap.Logger
	// Breaker tuning; zero values pick the defaults.
	MinRequests uint32
	Timeout     time.Duration
}

// aiRouter hands out the client for the configured provider. Each provider
// keeps its own breaker across key changes.
type aiRouter struct {
	opts     aiRouterOptions
	mu       sync.Mutex
	breakers map[Provider]*gobreaker.CircuitBreaker
}

func newAIRouter(opts aiRouterOptions) *aiRouter {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: aiTimeout}
	}
	if opts.GeminiBase == "" {
		opts.GeminiBase = defaultGeminiBase
	}
	if opts.OpenAIBase == "" {
		opts.OpenAIBase = defaultOpenAIBase
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MinRequests == 0 {
		opts.MinRequests = 3
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &aiRouter{opts: opts, breakers: make(map[Provider]*gobreaker.CircuitBreaker)}
}

func (r *aiRouter) breaker(p Provider) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.breakers[p]; ok {
		return cb
	}
	logger := r.opts.Logger
	minRequests := r.opts.MinRequests
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        string(p),
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     r.opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= minRequests
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("AI circuit breaker state changed",
				zap.String("provider", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidCredential) ||
				errors.Is(err, ErrMissingAPIKey) || errors.Is(err, context.Canceled)
		},
	})
	r.breakers[p] = cb
	return cb
}

// For returns the service for the provider and key in s.
func (r *aiRouter) For(s Settings) TextService {
	var next TextService
	switch s.Provider {
	case ProviderOpenAI:
		next = &openAIClient{http: r.opts.HTTPClient, baseURL: r.opts.OpenAIBase, apiKey: s.APIKey}
	default:
		next = &geminiClient{http: r.opts.HTTPClient, baseURL: r.opts.GeminiBase, apiKey: s.APIKey}
	}
	provider := parseProvider(string(s.Provider))
	return &breakerService{provider: provider, next: next, cb: r.breaker(provider)}
}
