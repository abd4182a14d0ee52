// Package generator produces validated MCQ sets from an OpenAI-compatible
// LLM endpoint, either for a named topic or for supplied document text.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pavelanni/quizdesk/internal/generator/prompts"
	"github.com/pavelanni/quizdesk/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// ErrGenerationFailed indicates the LLM returned nothing usable. The
// authoring flow aborts and no partial quiz is persisted.
var ErrGenerationFailed = errors.New("question generation failed")

// SourceTextCount is the fixed number of questions generated from document text.
const SourceTextCount = 5

// Request carries a generation request: either a topic with a question count,
// or source text (which always yields SourceTextCount questions).
type Request struct {
	Topic      string
	SourceText string
	Difficulty model.Difficulty
	Count      int
}

// questionSet is the JSON shape the model is instructed to return.
type questionSet struct {
	Questions []model.MCQ `json:"questions"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new generator client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping verifies the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint unreachable: %w", err)
	}
	return nil
}

// Generate asks the LLM for a question set and validates it against the MCQ
// invariants. An empty or malformed result is reported as ErrGenerationFailed.
func (c *Client) Generate(ctx context.Context, req Request) ([]model.MCQ, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: LLM returned no choices", ErrGenerationFailed)
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	questions, err := ParseQuestionSet([]byte(raw))
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ParseQuestionSet decodes and validates a generated question set.
func ParseQuestionSet(raw []byte) ([]model.MCQ, error) {
	var set questionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("%w: parse LLM response: %v", ErrGenerationFailed, err)
	}
	if len(set.Questions) == 0 {
		return nil, fmt.Errorf("%w: empty question set", ErrGenerationFailed)
	}
	for i, q := range set.Questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrGenerationFailed, i+1, err)
		}
	}
	return set.Questions, nil
}

func buildPrompt(req Request) (string, error) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	switch {
	case req.SourceText != "":
		return prompts.BuildTextPrompt(req.SourceText, difficulty, SourceTextCount), nil
	case req.Topic != "":
		count := req.Count
		if count <= 0 {
			count = SourceTextCount
		}
		return prompts.BuildTopicPrompt(req.Topic, difficulty, count), nil
	default:
		return "", &model.ValidationError{Field: "request", Reason: "need a topic or source text"}
	}
}
