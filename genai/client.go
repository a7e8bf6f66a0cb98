// Package genai generates flashcard content through the OpenAI
// chat-completions API.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"
)

const (
	MinCards = 1
	MaxCards = 50
)

var ErrEmptyResult = errors.New("genai: model returned no flashcards")

type Client struct {
	httpClient *resty.Client
	model      string
}

// NewClient builds a client against the OpenAI API. Generation is slow, so
// the timeout should be generous (minutes); cancellation happens through
// the request context.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	return &Client{
		httpClient: client,
		model:      model,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

type ChatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CardContent is one generated question/answer pair.
type CardContent struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type flashcardsPayload struct {
	Flashcards []CardContent `json:"flashcards"`
}

// GenerateFlashcards asks the model for numCards cards about theme, in the
// requested language ("pt" or "en"). numCards is clamped to [MinCards,
// MaxCards]. An empty result is an error.
func (client *Client) GenerateFlashcards(ctx context.Context, theme string, numCards int, language string) ([]CardContent, error) {
	if numCards > MaxCards {
		numCards = MaxCards
	} else if numCards < MinCards {
		numCards = MinCards
	}

	request := ChatCompletionRequest{
		Model: client.model,
		Messages: []Message{
			{
				Role:    RoleSystem,
				Content: "You are a helpful educational assistant that creates high-quality flashcards.",
			},
			{
				Role:    RoleUser,
				Content: buildPrompt(theme, numCards, language),
			},
		},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return nil, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	cards, err := parseFlashcards(responseBody.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// parseFlashcards extracts the JSON object from the model reply, which may
// be wrapped in prose or code fences.
func parseFlashcards(content string) ([]CardContent, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("genai: no JSON object in model reply")
	}

	var payload flashcardsPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("genai: parse model reply: %w", err)
	}

	cards := make([]CardContent, 0, len(payload.Flashcards))
	for _, card := range payload.Flashcards {
		if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
			continue
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return nil, ErrEmptyResult
	}
	return cards, nil
}

func buildPrompt(theme string, numCards int, language string) string {
	if language == "en" {
		return fmt.Sprintf(`Generate %d flashcards about the following theme: %s.
Return a JSON object with the following structure:
{
    "flashcards": [
        {
            "front": "Question or concept",
            "back": "Answer or explanation"
        }
    ]
}

Make sure the flashcards are educational, accurate, and well-formatted.
Focus on key concepts, definitions, and important facts about %s.`, numCards, theme, theme)
	}

	return fmt.Sprintf(`Gere %d flashcards sobre o seguinte tema: %s.
Retorne um objeto JSON com a seguinte estrutura:
{
    "flashcards": [
        {
            "front": "Pergunta ou conceito",
            "back": "Resposta ou explicação"
        }
    ]
}

Certifique-se de que os flashcards sejam educativos, precisos e bem formatados.
Foque em conceitos-chave, definições e fatos importantes sobre %s.
Responda em português.`, numCards, theme, theme)
}
