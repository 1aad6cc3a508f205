package summary

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Описания длиннее этого обрезаем перед отправкой в модель
const maxInputRunes = 4000

var errNoChoices = errors.New("openai returned no choices")

// Краткий пересказ статьи через OpenAI. Без ключа ничего не делает и возвращает пустую строку
type OpenAISummarizer struct {
	client  *openai.Client
	prompt  string
	model   string
	enabled bool
}

func NewOpenAISummarizer(apiKey, prompt string) *OpenAISummarizer {
	s := &OpenAISummarizer{
		prompt:  prompt,
		model:   openai.GPT3Dot5Turbo,
		enabled: apiKey != "",
	}

	if s.enabled {
		s.client = openai.NewClient(apiKey)
	}

	log.Printf("[INFO] openai summarizer enabled: %v", s.enabled)

	return s
}

func (s *OpenAISummarizer) Enabled() bool {
	return s.enabled
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if !s.enabled || text == "" {
		return "", nil
	}

	if r := []rune(text); len(r) > maxInputRunes {
		text = string(r[:maxInputRunes])
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   256,
		Temperature: 0.7,
		TopP:        1,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}

	return completeSentences(resp.Choices[0].Message.Content), nil
}

// Модель может оборвать ответ на середине предложения из-за MaxTokens, такой хвост отбрасываем
func completeSentences(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasSuffix(raw, ".") {
		return raw
	}

	cut := strings.LastIndex(raw, ".")
	if cut < 0 {
		return raw
	}

	return raw[:cut+1]
}
