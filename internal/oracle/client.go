package oracle

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/CrumleyG/dataklinik-bot/internal/model"
)

const systemPrompt = "Вы — помощница стоматологической клиники. Говорите от женского лица, " +
	"вежливо и понятно. Ваша задача — записать клиента: узнать имя, услугу, дату, время и телефон. " +
	"Если каких-то данных не хватает — спросите. Не придумывайте цены и услуги, которых нет в каталоге."

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client обёртка над OpenAI chat completions для разговорного fallback
type Client struct {
	client chatClient
	model  string
	logger *zap.Logger
}

// New создаёт клиент оракула. Пустая модель заменяется на gpt-4o.
func New(apiKey, modelName string, logger *zap.Logger) *Client {
	if modelName == "" {
		modelName = openai.GPT4o
	}
	return &Client{
		client: openai.NewClient(apiKey),
		model:  modelName,
		logger: logger,
	}
}

// NewWithChatClient создаёт клиент поверх готовой реализации (для тестов)
func NewWithChatClient(client chatClient, modelName string, logger *zap.Logger) *Client {
	return &Client{
		client: client,
		model:  modelName,
		logger: logger,
	}
}

// Reply генерирует ответ на последнее сообщение клиента. В системную
// инструкцию подмешиваются уже известные поля анкеты, чтобы модель не
// переспрашивала то, что клиент уже сообщил.
func (c *Client) Reply(ctx context.Context, form model.Form, history []model.Message) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt + formContext(form),
		},
	}
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.logger.Debug("Oracle reply generated",
		zap.Int("history_len", len(history)),
		zap.Int("reply_len", len(reply)))

	return reply, nil
}

// formContext описывает модели уже собранные поля анкеты
func formContext(form model.Form) string {
	var known []string
	if form.Name != "" {
		known = append(known, "имя: "+form.Name)
	}
	if form.Phone != "" {
		known = append(known, "телефон: "+form.Phone)
	}
	if form.Service != "" {
		known = append(known, "услуга: "+form.Service)
	}
	if form.Date != "" {
		known = append(known, "дата: "+form.Date)
	}
	if form.Time != "" {
		known = append(known, "время: "+form.Time)
	}

	if len(known) == 0 {
		return ""
	}
	return " Уже известно: " + strings.Join(known, ", ") + "."
}
