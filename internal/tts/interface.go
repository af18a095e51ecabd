package tts

import "context"

// TTSService представляет интерфейс для Text-to-Speech сервиса
type TTSService interface {
	// SynthesizeText преобразует текст в аудио с заданным голосом и подачей.
	// Ошибки: ErrEmptyResponse, ErrRateLimited или *ServiceError.
	SynthesizeText(ctx context.Context, text string, profile VoiceProfile) ([]byte, error)
}

// VoiceProfile голос и подача для одного запроса синтеза
type VoiceProfile struct {
	Voice     string
	Directive Directive
}
