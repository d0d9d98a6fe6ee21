package koboldcpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/localllm/providers/ai"
)

func TestParseModels_KeepsKoboldAndUntagged(t *testing.T) {
	models, err := New().ParseModels([]byte(`{
		"object": "list",
		"data": [
			{"id": "koboldcpp/Llama-3-8B", "owned_by": "koboldcpp"},
			{"id": "untagged"},
			{"id": "foreign", "owned_by": "organization_owner"}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"koboldcpp/Llama-3-8B", "untagged"}, models)
}

func TestParseModels_InvalidJSON(t *testing.T) {
	_, err := New().ParseModels([]byte(`not json`))
	assert.True(t, ai.IsProtocolError(err))
}

func TestParseStreamLine_SkipsMalformed(t *testing.T) {
	backend := New()
	testCases := []struct {
		name     string
		line     string
		expected ai.StreamLine
	}{
		{"delta", `data: {"choices":[{"delta":{"content":"word"}}]}`, ai.StreamLine{Content: "word"}},
		{"malformed", `data: {"choices":[{`, ai.StreamLine{}},
		{"missing choices", `data: {"id":"x"}`, ai.StreamLine{}},
		{"done", `data: [DONE]`, ai.StreamLine{Done: true}},
		{"raw json ignored", `{"message":{"content":"raw"}}`, ai.StreamLine{}},
		{"empty payload", `data:   `, ai.StreamLine{}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := backend.ParseStreamLine(testCase.line)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, result)
		})
	}
}

func TestEndpoints_NoUnload(t *testing.T) {
	assert.Empty(t, New().Endpoints().Unload)
	assert.Equal(t, ai.ProviderKoboldcpp, New().Kind())
}
