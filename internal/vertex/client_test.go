package vertex

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type stubGenerator struct {
	calls int
}

func (s *stubGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls++
	return &genai.GenerateContentResponse{}, nil
}

func TestNewClient_APIKey(t *testing.T) {
	client := NewClient(context.Background(), Config{APIKey: "test-key"}, zap.NewNop())

	assert.True(t, client.Configured())
	assert.Equal(t, "gemini-api", client.Backend())
}

func TestClient_NotConfigured(t *testing.T) {
	client := &Client{backend: "vertex", err: errors.New("boom")}

	assert.False(t, client.Configured())
	_, err := client.GenerateContent(context.Background(), "model", nil, nil)
	assert.EqualError(t, err, "boom")

	empty := &Client{}
	_, err = empty.GenerateContent(context.Background(), "model", nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewWithGenerator(t *testing.T) {
	stub := &stubGenerator{}
	client := NewWithGenerator(stub)

	_, err := client.GenerateContent(context.Background(), "model", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.True(t, client.Configured())
}

func TestLoadCredentials_MissingFile(t *testing.T) {
	creds, err := loadCredentials(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, creds)

	creds, err = loadCredentials("", zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, creds)
}
