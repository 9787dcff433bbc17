package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sportbot/internal/config"
	"sportbot/internal/models"
	"sportbot/internal/worker"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "Ты — персональный фитнес-тренер и нутрициолог. " +
	"Отвечай по-русски, кратко и по делу, без медицинских диагнозов. " +
	"Если вопрос не про фитнес, питание или здоровый образ жизни, вежливо откажись."

// Client оборачивает OpenAI-совместимый API (Groq) с таймаутом и повторами
// на временных ошибках.
type Client struct {
	api    *openai.Client
	config config.AIConfig
	logger *zerolog.Logger
	retry  worker.RetryPolicy
}

func NewClient(cfg config.AIConfig, logger *zerolog.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger,
		retry: worker.RetryPolicy{
			MaxRetries:    cfg.MaxRetries,
			InitialDelay:  time.Second,
			MaxDelay:      10 * time.Second,
			BackoffFactor: 2,
			Jitter:        0.2,
		},
	}
}

// Ask отвечает на вопрос пользователя. История включается в контекст только
// если вызывающая сторона её передала, профиль добавляется в системный промпт.
func (c *Client) Ask(ctx context.Context, user *models.User, history []models.ChatMessage, question string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt + profileLine(user),
	})

	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	return c.complete(ctx, messages)
}

// GenerateWorkout строит тренировку на сегодня под профиль пользователя.
func (c *Client) GenerateWorkout(ctx context.Context, user *models.User) (string, error) {
	prompt := "Составь тренировку на сегодня: разминка, 5-7 упражнений с подходами " +
		"и повторениями, заминка. Учитывай мой профиль."
	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt + profileLine(user)},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

// GenerateRecipe предлагает рецепт под цель пользователя.
func (c *Client) GenerateRecipe(ctx context.Context, user *models.User) (string, error) {
	prompt := "Предложи один полезный рецепт под мою цель: ингредиенты, шаги, " +
		"калорийность и БЖУ на порцию."
	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt + profileLine(user)},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	timeout := time.Duration(c.config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var lastErr error
	attempts := c.retry.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := c.api.CreateChatCompletion(reqCtx, req)
		cancel()

		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("empty completion response")
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		lastErr = err
		if !isTransient(err) || attempt == attempts {
			break
		}

		delay := c.retry.NextDelay(attempt)
		c.logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).
			Msg("Временная ошибка AI API, повтор")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("completion failed: %w", lastErr)
}

// isTransient отделяет повторяемые ошибки: перегрузку, 5xx и таймаут запроса.
// Отмена родительского контекста повторов не получает.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func profileLine(user *models.User) string {
	if user == nil || !user.HasProfile() {
		return ""
	}

	parts := []string{}
	if user.Height.Valid {
		parts = append(parts, fmt.Sprintf("рост %d см", user.Height.Int64))
	}
	if user.Weight.Valid {
		parts = append(parts, fmt.Sprintf("вес %.1f кг", user.Weight.Float64))
	}
	if user.Age.Valid {
		parts = append(parts, fmt.Sprintf("возраст %d", user.Age.Int64))
	}
	if user.Gender.Valid {
		parts = append(parts, "пол "+user.Gender.String)
	}
	if user.Goal.Valid {
		parts = append(parts, "цель "+user.Goal.String)
	}
	if user.Location.Valid {
		parts = append(parts, "занимается: "+user.Location.String)
	}

	return " Профиль клиента: " + strings.Join(parts, ", ") + "."
}
