// Package vertex создает клиента Gemini (Vertex AI или Gemini API), общего для
// синтеза речи и чата. Клиент создается один раз при старте процесса.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// ErrNotConfigured возвращается вызовами, если клиента не удалось создать при старте
var ErrNotConfigured = errors.New("клиент Gemini не настроен")

// ContentGenerator выполняет запрос generateContent. Реализуется *genai.Models.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config параметры подключения
type Config struct {
	Project         string
	Location        string
	CredentialsFile string
	APIKey          string // если задан, используется Gemini API вместо Vertex AI
}

// Client обертка над genai.Client.
// Если создание не удалось, каждый вызов возвращает сохраненную ошибку.
type Client struct {
	models  ContentGenerator
	backend string
	err     error
}

// NewClient создает клиента. Отсутствие учетных данных не фатально:
// ошибка логируется, а вызовы будут падать в момент обращения.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) *Client {
	clientCfg := &genai.ClientConfig{}
	backend := "vertex"

	if cfg.APIKey != "" {
		backend = "gemini-api"
		clientCfg.Backend = genai.BackendGeminiAPI
		clientCfg.APIKey = cfg.APIKey
	} else {
		clientCfg.Backend = genai.BackendVertexAI
		clientCfg.Project = cfg.Project
		clientCfg.Location = cfg.Location

		creds, err := loadCredentials(cfg.CredentialsFile, logger)
		if err != nil {
			logger.Warn("⚠️ ошибка загрузки файла учетных данных, используем учетные данные окружения",
				zap.String("file", cfg.CredentialsFile),
				zap.Error(err))
		}
		clientCfg.Credentials = creds
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logger.Warn("⚠️ клиент Gemini не создан, запросы к API будут завершаться ошибкой",
			zap.String("backend", backend),
			zap.Error(err))
		return &Client{backend: backend, err: fmt.Errorf("%w: %v", ErrNotConfigured, err)}
	}

	logger.Info("🤖 клиент Gemini инициализирован",
		zap.String("backend", backend),
		zap.String("project", cfg.Project),
		zap.String("location", cfg.Location))

	return &Client{models: client.Models, backend: backend}
}

// NewWithGenerator оборачивает готовый генератор (используется в тестах и инструментах)
func NewWithGenerator(models ContentGenerator) *Client {
	return &Client{models: models, backend: "custom"}
}

// GenerateContent реализует ContentGenerator
func (c *Client) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if c.models == nil {
		if c.err != nil {
			return nil, c.err
		}
		return nil, ErrNotConfigured
	}
	return c.models.GenerateContent(ctx, model, contents, config)
}

// Configured сообщает, создан ли клиент
func (c *Client) Configured() bool {
	return c.models != nil
}

// Backend возвращает название используемого бэкенда
func (c *Client) Backend() string {
	return c.backend
}

// loadCredentials читает сервисный аккаунт из файла, если он существует.
// nil без ошибки означает, что нужно использовать учетные данные окружения (ADC).
func loadCredentials(path string, logger *zap.Logger) (*auth.Credentials, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("⚠️ файл учетных данных не найден, используем учетные данные окружения",
				zap.String("file", path))
			return nil, nil
		}
		return nil, err
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes:          []string{cloudPlatformScope},
		CredentialsFile: path,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("🔑 файл учетных данных загружен", zap.String("file", path))
	return creds, nil
}
