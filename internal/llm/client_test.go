package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

func TestNewClient_MissingAPIKey(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]byte(`{"writer_name":"John Smith","check_number":"4521"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.WriterName == nil || *fields.WriterName != "John Smith" {
		t.Errorf("writer = %v", fields.WriterName)
	}
	if fields.CheckNumber == nil || *fields.CheckNumber != "4521" {
		t.Errorf("number = %v", fields.CheckNumber)
	}
}

func TestParseFields_NullsAreAbsent(t *testing.T) {
	fields, err := parseFields([]byte(`{"writer_name":null,"check_number":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fields.Empty() {
		t.Errorf("fields = %+v, want both absent", fields)
	}
}

func TestParseFields_SentinelStringsAreAbsent(t *testing.T) {
	fields, err := parseFields([]byte(`{"writer_name":"unknown","check_number":"  "}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fields.Empty() {
		t.Errorf("fields = %+v, want both absent", fields)
	}
}

func TestParseFields_MarkdownFences(t *testing.T) {
	raw := "```json\n{\"writer_name\":\"Jane Doe\",\"check_number\":\"1023\"}\n```"
	fields, err := parseFields([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.WriterName == nil || *fields.WriterName != "Jane Doe" {
		t.Errorf("writer = %v", fields.WriterName)
	}
}

func TestParseFields_RejectsWrongShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "sorry, I cannot help with that"},
		{"missing key", `{"writer_name":"Jane Doe"}`},
		{"extra key", `{"writer_name":"Jane","check_number":"1","amount":"500.00"}`},
		{"wrong type", `{"writer_name":42,"check_number":"1023"}`},
		{"array", `["Jane Doe","1023"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFields([]byte(tt.raw)); !errors.Is(err, ErrParseFailure) {
				t.Errorf("err = %v, want ErrParseFailure", err)
			}
		})
	}
}

// stubAPI fakes the OpenAI completion endpoint.
type stubAPI struct {
	content string
	err     error
}

func (s *stubAPI) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func testClient(api completionAPI) *Client {
	return &Client{
		api: api,
		cfg: Config{Model: "gpt-4o-mini", Timeout: time.Second},
		log: zerolog.Nop(),
	}
}

func TestExtractFields_Success(t *testing.T) {
	c := testClient(&stubAPI{content: `{"writer_name":"John Smith","check_number":"4521"}`})

	fields, err := c.ExtractFields(context.Background(), "PAY TO THE ORDER OF John Smith ... #4521")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.WriterName == nil || *fields.WriterName != "John Smith" {
		t.Errorf("writer = %v", fields.WriterName)
	}
}

func TestExtractFields_NetworkErrorPropagates(t *testing.T) {
	c := testClient(&stubAPI{err: errors.New("connection refused")})

	if _, err := c.ExtractFields(context.Background(), "text"); err == nil {
		t.Error("expected error from failed request")
	}
}

func TestExtractFields_MalformedResponse(t *testing.T) {
	c := testClient(&stubAPI{content: "I think the writer is John"})

	if _, err := c.ExtractFields(context.Background(), "text"); !errors.Is(err, ErrParseFailure) {
		t.Errorf("err = %v, want ErrParseFailure", err)
	}
}
