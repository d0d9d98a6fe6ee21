package lmstudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/localllm/providers/ai"
)

func TestEndpoints(t *testing.T) {
	endpoints := New().Endpoints()
	assert.Equal(t, "/v1/models", endpoints.Models)
	assert.Equal(t, "/v1/chat/completions", endpoints.Chat)
	assert.Empty(t, endpoints.Unload)
	assert.Equal(t, ai.ProviderLMStudio, New().Kind())
}

func TestParseModels_ReturnsIDs(t *testing.T) {
	models, err := New().ParseModels([]byte(`{
		"object": "list",
		"data": [
			{"id": "qwen2.5-7b-instruct", "object": "model", "owned_by": "organization_owner"},
			{"id": "text-embedding-nomic", "object": "model", "owned_by": "organization_owner"}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"qwen2.5-7b-instruct", "text-embedding-nomic"}, models)
}

func TestParseModels_KoboldcppClaimEmptiesList(t *testing.T) {
	models, err := New().ParseModels([]byte(`{
		"object": "list",
		"data": [
			{"id": "a", "owned_by": "organization_owner"},
			{"id": "koboldcpp/Mistral-7B", "owned_by": "koboldcpp"}
		]
	}`))
	require.NoError(t, err)
	assert.NotNil(t, models)
	assert.Empty(t, models)
}

func TestParseStreamLine(t *testing.T) {
	backend := New()
	testCases := []struct {
		name     string
		line     string
		expected ai.StreamLine
	}{
		{"delta", `data: {"choices":[{"delta":{"content":"Hi"}}]}`, ai.StreamLine{Content: "Hi"}},
		{"role only", `data: {"choices":[{"delta":{"role":"assistant"}}]}`, ai.StreamLine{}},
		{"done", `data: [DONE]`, ai.StreamLine{Done: true}},
		{"empty payload", `data: `, ai.StreamLine{}},
		{"raw fallback", `{"message":{"content":"raw"}}`, ai.StreamLine{Content: "raw"}},
		{"comment", `: keep-alive`, ai.StreamLine{}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := backend.ParseStreamLine(testCase.line)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, result)
		})
	}
}

func TestParseStreamLine_MalformedIsProtocolError(t *testing.T) {
	backend := New()

	_, err := backend.ParseStreamLine(`data: {"choices":[{"delta":`)
	assert.True(t, ai.IsProtocolError(err))

	_, err = backend.ParseStreamLine(`{"message": oops}`)
	assert.True(t, ai.IsProtocolError(err))
}

func TestParseStreamLineLenient_RepairsPayload(t *testing.T) {
	result, err := New().ParseStreamLineLenient(`data: {'choices':[{'delta':{'content':'fixed'}}]}`)
	require.NoError(t, err)
	assert.Equal(t, "fixed", result.Content)
}
