package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/themesync/internal/llm"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "")
	require.Error(t, err)
}

func TestGenerateConfig(t *testing.T) {
	cfg := generateConfig(llm.Request{
		System:      "sys",
		Prompt:      "p",
		Temperature: llm.Temp(llm.Precise),
		JSON:        true,
	})

	assert.Equal(t, int32(llm.DefaultMaxTokens), cfg.MaxOutputTokens)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.3, *cfg.Temperature, 0.0001)
	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, "sys", cfg.SystemInstruction.Parts[0].Text)
}

func TestGenerateConfig_Defaults(t *testing.T) {
	cfg := generateConfig(llm.Request{Prompt: "p", MaxTokens: 50})

	assert.Equal(t, int32(50), cfg.MaxOutputTokens)
	assert.Nil(t, cfg.Temperature)
	assert.Nil(t, cfg.SystemInstruction)
	assert.Empty(t, cfg.ResponseMIMEType)
}
