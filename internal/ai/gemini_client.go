package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lingua-voice/internal/vertex"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultChatModel   = "gemini-2.0-flash"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
)

// GeminiClient чат-клиент поверх generateContent
type GeminiClient struct {
	generator    vertex.ContentGenerator
	model        string
	systemPrompt string
	defaults     GenerationOptions
	logger       *zap.Logger
}

// NewGeminiClient создает чат-клиент. Пустые параметры заменяются значениями по умолчанию.
func NewGeminiClient(generator vertex.ContentGenerator, cfg *AIConfig, logger *zap.Logger) *GeminiClient {
	c := &GeminiClient{
		generator:    generator,
		model:        DefaultChatModel,
		systemPrompt: GetSystemPrompt(),
		defaults: GenerationOptions{
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		logger: logger,
	}
	if cfg != nil {
		if cfg.Model != "" {
			c.model = cfg.Model
		}
		if cfg.MaxTokens > 0 {
			c.defaults.MaxTokens = cfg.MaxTokens
		}
		if cfg.Temperature > 0 {
			c.defaults.Temperature = cfg.Temperature
		}
	}
	return c
}

// GetName возвращает название провайдера
func (c *GeminiClient) GetName() string {
	return "gemini"
}

// GenerateResponse отправляет историю диалога и возвращает первый текстовый ответ
func (c *GeminiClient) GenerateResponse(ctx context.Context, messages []Message, options GenerationOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("пустой список сообщений")
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, &genai.Content{
			Role:  NormalizeRole(m.Role),
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	if options.MaxTokens <= 0 {
		options.MaxTokens = c.defaults.MaxTokens
	}
	if options.Temperature <= 0 {
		options.Temperature = c.defaults.Temperature
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: c.systemPrompt}}},
		MaxOutputTokens:   int32(options.MaxTokens),
		Temperature:       genai.Ptr(float32(options.Temperature)),
	}

	start := time.Now()
	resp, err := c.generator.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		c.logger.Error("ошибка запроса к Gemini", zap.String("model", c.model), zap.Error(err))
		return nil, fmt.Errorf("ошибка запроса к Gemini: %w", err)
	}

	text, finishReason, ok := firstText(resp)
	if !ok {
		return nil, ErrNoResponse
	}

	result := &Response{
		Content:      text,
		Model:        c.model,
		FinishReason: finishReason,
		Provider:     c.GetName(),
	}
	if resp.UsageMetadata != nil {
		result.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	c.logger.Debug("ответ чата получен",
		zap.String("model", c.model),
		zap.Int("total_tokens", result.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

func firstText(resp *genai.GenerateContentResponse) (string, string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", "", false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
		return "", "", false
	}
	text := cand.Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", "", false
	}
	return text, string(cand.FinishReason), true
}
