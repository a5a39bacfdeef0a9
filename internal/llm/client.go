// Package llm extracts the check fields with an OpenAI chat model constrained
// to structured JSON output. It is strictly an accuracy enhancement: callers
// compose it with the regex extractor via extract.NewFallback, so any failure
// here degrades to regex extraction instead of surfacing.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"checktool/internal/extract"
	"checktool/internal/logger"
)

var (
	// ErrMissingAPIKey is returned by NewClient when no OpenAI key is configured.
	ErrMissingAPIKey = errors.New("llm: OPENAI_API_KEY is not set")

	// ErrParseFailure is returned when the model response cannot be parsed
	// into the expected two-field shape.
	ErrParseFailure = errors.New("llm: response did not match the expected field shape")
)

// Config configures the OpenAI-backed extractor.
type Config struct {
	APIKey      string
	Model       string        // default "gpt-4o-mini"
	Temperature float32       // default 0
	Timeout     time.Duration // per-request, default 30s
}

// Client implements extract.FieldExtractor against the OpenAI chat API.
type Client struct {
	api completionAPI
	cfg Config
	log zerolog.Logger
}

// completionAPI is the slice of the OpenAI client this package uses,
// stubbed in tests.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient creates the extractor. It fails fast when no API key is
// configured so the caller can fall back to regex mode before any request.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		api: openai.NewClient(cfg.APIKey),
		cfg: cfg,
		log: logger.WithComponent("llm"),
	}, nil
}

// ExtractFields implements extract.FieldExtractor.
func (c *Client) ExtractFields(ctx context.Context, text string) (extract.Fields, error) {
	rid := uuid.New().String()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.log.Info().
		Str("req_id", rid).
		Str("model", c.cfg.Model).
		Int("text_len", len(text)).
		Msg("llm extraction started")

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: buildSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(text),
			},
		},
	})
	if err != nil {
		c.log.Error().
			Str("req_id", rid).
			Err(err).
			Dur("elapsed", time.Since(start)).
			Msg("llm request failed")
		return extract.Fields{}, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return extract.Fields{}, fmt.Errorf("%w: no choices in response", ErrParseFailure)
	}

	fields, err := parseFields([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		c.log.Error().
			Str("req_id", rid).
			Err(err).
			Dur("elapsed", time.Since(start)).
			Msg("llm response rejected")
		return extract.Fields{}, err
	}

	c.log.Info().
		Str("req_id", rid).
		Bool("writer_found", fields.WriterName != nil).
		Bool("number_found", fields.CheckNumber != nil).
		Dur("elapsed", time.Since(start)).
		Msg("llm extraction completed")
	return fields, nil
}

// parseFields validates the raw model output against the fields schema and
// decodes it. Empty strings and explicit nulls both map to an absent field.
func parseFields(raw []byte) (extract.Fields, error) {
	content := stripFences(string(raw))

	if err := ValidateAgainstSchema(BuildFieldsSchema(), []byte(content)); err != nil {
		return extract.Fields{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	var fields extract.Fields
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return extract.Fields{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	fields.WriterName = normalizeField(fields.WriterName)
	fields.CheckNumber = normalizeField(fields.CheckNumber)
	return fields, nil
}

// normalizeField maps blank and sentinel strings the model sometimes emits
// to field absence.
func normalizeField(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	switch strings.ToLower(s) {
	case "", "null", "none", "unknown", "n/a":
		return nil
	}
	return &s
}

// stripFences removes a markdown code fence the model may wrap around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
