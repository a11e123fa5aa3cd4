package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/example/hamprep/pkg/models"
)

const (
	defaultModel = "gpt-4o-mini"
	maxTokens    = 300
	temperature  = 0.4
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("explainer is disabled")

const systemPrompt = "You are an amateur radio instructor helping students pass the US Technician license exam. " +
	"Explain answers in plain language in at most four sentences."

// Config selects the OpenAI-compatible endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Explainer writes explanations of exam questions with ChatGPT
type Explainer struct {
	client *openai.Client
	model  string
	log    logrus.FieldLogger
}

// New creates an explainer. With an empty API key the explainer is disabled
// and only stored explanations are served.
func New(cfg Config, log logrus.FieldLogger) *Explainer {
	e := &Explainer{model: cfg.Model, log: log}
	if e.model == "" {
		e.model = defaultModel
	}
	if cfg.APIKey == "" {
		return e
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	e.client = openai.NewClientWithConfig(config)
	return e
}

// Enabled reports whether explanations are generated.
func (e *Explainer) Enabled() bool {
	return e.client != nil
}

// Explain asks the model why the correct answer of q is right.
func (e *Explainer) Explain(ctx context.Context, q *models.Question) (string, error) {
	if !e.Enabled() {
		return "", ErrDisabled
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt(q)},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to explain %s: %w", q.ID, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned for %s", q.ID)
	}

	explanation := strings.TrimSpace(resp.Choices[0].Message.Content)
	if explanation == "" {
		return "", fmt.Errorf("empty explanation returned for %s", q.ID)
	}
	return explanation, nil
}

// ExplainWithFallback generates an explanation, falling back to the stored
// one when the explainer is disabled or the call fails.
func (e *Explainer) ExplainWithFallback(ctx context.Context, q *models.Question) string {
	explanation, err := e.Explain(ctx, q)
	if err == nil {
		return explanation
	}
	if !errors.Is(err, ErrDisabled) {
		e.log.WithError(err).WithField("question_id", q.ID).Warn("falling back to stored explanation")
	}

	if q.Explanation != "" {
		return q.Explanation
	}
	return q.DefaultExplanation()
}

func prompt(q *models.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %s (%s): %s\n", q.ID, models.SectionTopic(q.Subelement), q.QuestionText)
	for _, letter := range models.AnswerLetters {
		text, _ := q.Answer(letter)
		fmt.Fprintf(&b, "%s. %s\n", letter, text)
	}
	fmt.Fprintf(&b, "The correct answer is %s.", models.NormalizeAnswer(q.CorrectAnswer))
	if q.References != "" {
		fmt.Fprintf(&b, " FCC reference: %s.", q.References)
	}
	b.WriteString(" Explain why it is correct and why the others are not.")
	return b.String()
}
