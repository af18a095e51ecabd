package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const providerPiper = "piper"

// PiperService предоставляет Text-to-Speech через локальный Piper TTS API.
// Используется для разработки без облачных учетных данных; подача (Directive) игнорируется.
type PiperService struct {
	logger  *zap.Logger
	baseURL string
	client  *http.Client
}

// NewPiperService создает новый Piper TTS сервис
func NewPiperService(logger *zap.Logger, baseURL string) *PiperService {
	return &PiperService{
		logger:  logger,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second, // Таймаут для генерации аудио
		},
	}
}

// SynthesizeText преобразует текст в аудио через Piper TTS
func (s *PiperService) SynthesizeText(ctx context.Context, text string, profile VoiceProfile) ([]byte, error) {
	url := fmt.Sprintf("%s/synthesize-raw", s.baseURL)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("text", text)
	if profile.Voice != "" {
		_ = writer.WriteField("voice", profile.Voice)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, &ServiceError{Provider: providerPiper, Err: fmt.Errorf("ошибка создания запроса: %w", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	s.logger.Debug("🎵 отправляем запрос к Piper TTS",
		zap.String("url", url),
		zap.Int("text_length", len(text)))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &ServiceError{Provider: providerPiper, Err: fmt.Errorf("ошибка выполнения запроса: %w", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, NewRateLimitedError(providerPiper, fmt.Errorf("статус %d: %s", resp.StatusCode, respBody))
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &ServiceError{Provider: providerPiper, StatusCode: resp.StatusCode, Err: fmt.Errorf("неожиданный ответ: %s", respBody)}
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceError{Provider: providerPiper, StatusCode: resp.StatusCode, Err: fmt.Errorf("ошибка чтения аудио данных: %w", err)}
	}
	if len(audioData) == 0 {
		return nil, ErrEmptyResponse
	}

	return audioData, nil
}
