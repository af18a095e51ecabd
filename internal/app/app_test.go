package app

import (
	"context"
	"testing"
	"time"

	"lingua-voice/internal/config"
	"lingua-voice/internal/store"
	"lingua-voice/internal/tts"
	"lingua-voice/internal/vertex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.TTS.Provider = "piper"
	cfg.TTS.PiperBaseURL = "http://localhost:5000"
	cfg.TTS.MaxAttempts = 3
	cfg.TTS.BaseDelay = 15 * time.Second
	cfg.Chat.Model = "gemini-2.0-flash"
	cfg.Chat.MaxTokens = 500
	cfg.Chat.Temperature = 0.7
	return cfg
}

func TestOpenRecorder_Disabled(t *testing.T) {
	recorder, closeFn, err := OpenRecorder(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.IsType(t, store.NopRecorder{}, recorder)
	closeFn()
}

func TestNewSynthesizer(t *testing.T) {
	cfg := testConfig()
	client := vertex.NewWithGenerator(nil)

	svc, err := NewSynthesizer(cfg, client, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &tts.PiperService{}, svc)

	cfg.TTS.Provider = "gemini"
	svc, err = NewSynthesizer(cfg, client, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &tts.GeminiService{}, svc)

	cfg.TTS.Provider = "festival"
	_, err = NewSynthesizer(cfg, client, zap.NewNop())
	assert.Error(t, err)
}

func TestNewChatClient(t *testing.T) {
	client, err := NewChatClient(testConfig(), vertex.NewWithGenerator(nil), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "gemini", client.GetName())
}

func TestRetryPolicy(t *testing.T) {
	p := RetryPolicy(testConfig())
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 15*time.Second, p.BaseDelay)
}
