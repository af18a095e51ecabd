package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content:      &genai.Content{Role: RoleModel, Parts: []*genai.Part{{Text: text}}},
				FinishReason: genai.FinishReasonStop,
			},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	}
}

func TestGeminiClient_GenerateResponse(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("그냥 외워ㅋ")}
	client := NewGeminiClient(gen, nil, zap.NewNop())

	messages := []Message{
		{Role: "user", Content: "안녕"},
		{Role: "bot", Content: "안녕!"},
		{Role: "user", Content: "왜 I'm going to 써?"},
	}

	resp, err := client.GenerateResponse(context.Background(), messages, GenerationOptions{})
	require.NoError(t, err)

	assert.Equal(t, "그냥 외워ㅋ", resp.Content)
	assert.Equal(t, DefaultChatModel, resp.Model)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, string(genai.FinishReasonStop), resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.Equal(t, DefaultChatModel, gen.model)
	require.Len(t, gen.contents, 3)
	assert.Equal(t, RoleUser, gen.contents[0].Role)
	assert.Equal(t, RoleModel, gen.contents[1].Role)
	assert.Equal(t, RoleUser, gen.contents[2].Role)
	assert.Equal(t, "왜 I'm going to 써?", gen.contents[2].Parts[0].Text)

	require.NotNil(t, gen.config.SystemInstruction)
	assert.Equal(t, GetSystemPrompt(), gen.config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, int32(DefaultMaxTokens), gen.config.MaxOutputTokens)
	require.NotNil(t, gen.config.Temperature)
	assert.InDelta(t, DefaultTemperature, *gen.config.Temperature, 0.0001)
}

func TestGeminiClient_Options(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("ok")}
	client := NewGeminiClient(gen, &AIConfig{Model: "gemini-custom", MaxTokens: 100, Temperature: 0.2}, zap.NewNop())

	_, err := client.GenerateResponse(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenerationOptions{MaxTokens: 50})
	require.NoError(t, err)

	assert.Equal(t, "gemini-custom", gen.model)
	assert.Equal(t, int32(50), gen.config.MaxOutputTokens)
	assert.InDelta(t, 0.2, *gen.config.Temperature, 0.0001)
}

func TestGeminiClient_NoResponse(t *testing.T) {
	responses := map[string]*genai.GenerateContentResponse{
		"nil":            nil,
		"нет кандидатов": {},
		"нет частей":     {Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
		"пустой текст":   textResponse("  "),
	}

	for name, resp := range responses {
		t.Run(name, func(t *testing.T) {
			client := NewGeminiClient(&fakeGenerator{resp: resp}, nil, zap.NewNop())
			_, err := client.GenerateResponse(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenerationOptions{})
			assert.ErrorIs(t, err, ErrNoResponse)
		})
	}
}

func TestGeminiClient_Errors(t *testing.T) {
	upstream := errors.New("boom")
	client := NewGeminiClient(&fakeGenerator{err: upstream}, nil, zap.NewNop())

	_, err := client.GenerateResponse(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenerationOptions{})
	assert.ErrorIs(t, err, upstream)

	_, err = client.GenerateResponse(context.Background(), nil, GenerationOptions{})
	assert.Error(t, err)
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleUser, NormalizeRole("user"))
	assert.Equal(t, RoleModel, NormalizeRole("model"))
	assert.Equal(t, RoleModel, NormalizeRole("assistant"))
	assert.Equal(t, RoleModel, NormalizeRole(""))
}

func TestNewAIClient(t *testing.T) {
	client, err := NewAIClient(&AIConfig{}, &fakeGenerator{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "gemini", client.GetName())

	_, err = NewAIClient(&AIConfig{Provider: "deepseek"}, &fakeGenerator{}, zap.NewNop())
	assert.Error(t, err)
}
