package openaicompat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/localllm/providers/ai"
)

func TestBuildChatCompletionRequest_TextOnly(t *testing.T) {
	request := ai.ChatRequest{
		Model: "qwen2.5-7b",
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: "You are terse."},
			{Role: ai.RoleUser, Content: "Hi"},
		},
	}

	body, err := json.Marshal(BuildChatCompletionRequest(request, nil))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"model": "qwen2.5-7b",
		"stream": true,
		"messages": [
			{"role": "system", "content": "You are terse."},
			{"role": "user", "content": "Hi"}
		]
	}`, string(body))
}

func TestBuildChatCompletionRequest_ImagesBecomeContentParts(t *testing.T) {
	request := ai.ChatRequest{
		Model:    "llava",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "What is this?"}},
	}
	images := []ai.EncodedImage{{MIMEType: "image/png", Base64: "AAAA"}}

	body, err := json.Marshal(BuildChatCompletionRequest(request, images))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"model": "llava",
		"stream": true,
		"messages": [{
			"role": "user",
			"content": [
				{"type": "text", "text": "What is this?"},
				{"type": "image_url", "image_url": {"url": "data:image/png;base64,AAAA"}}
			]
		}]
	}`, string(body))

	assert.Equal(t, "What is this?", request.Messages[0].Content, "caller messages must not be mutated")
}

func TestBuildChatCompletionRequest_ImagesIgnoredWhenLastIsNotUser(t *testing.T) {
	request := ai.ChatRequest{
		Model: "llava",
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "Describe"},
			{Role: ai.RoleAssistant, Content: "Sure"},
		},
	}

	payload := BuildChatCompletionRequest(request, []ai.EncodedImage{{MIMEType: "image/png", Base64: "AAAA"}})

	assert.Equal(t, "Describe", payload.Messages[0].Content)
	assert.Equal(t, "Sure", payload.Messages[1].Content)
}

func TestBuildChatCompletionRequest_StreamDisabled(t *testing.T) {
	disabled := false
	payload := BuildChatCompletionRequest(ai.ChatRequest{Model: "m", Stream: &disabled}, nil)
	assert.False(t, payload.Stream)
}

func TestModelList_Filters(t *testing.T) {
	list, err := ParseModelList([]byte(`{
		"object": "list",
		"data": [
			{"id": "a", "owned_by": "organization_owner"},
			{"id": "b"},
			{"id": "c", "owned_by": "KoboldCpp"}
		]
	}`))
	require.NoError(t, err)

	assert.False(t, list.ClaimedBy(OwnerKoboldcpp), "claim requires an exact owned_by match")
	assert.Equal(t, []string{"a", "b"}, list.IDsExcludingOwner(OwnerKoboldcpp))
	assert.Equal(t, []string{"b", "c"}, list.IDsOwnedBy(OwnerKoboldcpp))
}

func TestModelList_SkipsEntriesWithoutID(t *testing.T) {
	list, err := ParseModelList([]byte(`{
		"object": "list",
		"data": [
			{"owned_by": "organization_owner"},
			{"id": "", "owned_by": "koboldcpp"},
			{"id": "a"}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, list.IDsExcludingOwner(OwnerKoboldcpp))
	assert.Equal(t, []string{"a"}, list.IDsOwnedBy(OwnerKoboldcpp))
}

func TestModelList_ClaimedBy(t *testing.T) {
	list, err := ParseModelList([]byte(`{"object":"list","data":[{"id":"x","owned_by":"koboldcpp"}]}`))
	require.NoError(t, err)
	assert.True(t, list.ClaimedBy(OwnerKoboldcpp))

	notAList, err := ParseModelList([]byte(`{"data":[{"id":"x","owned_by":"koboldcpp"}]}`))
	require.NoError(t, err)
	assert.False(t, notAList.ClaimedBy(OwnerKoboldcpp))
}

func TestParseModelList_InvalidJSON(t *testing.T) {
	_, err := ParseModelList([]byte(`<html>`))
	require.Error(t, err)
	assert.True(t, ai.IsProtocolError(err))
}

func TestDeltaContent(t *testing.T) {
	content, err := DeltaContent(`{"choices":[{"index":0,"delta":{"content":"Hello"}}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Hello", content)

	content, err = DeltaContent(`{"choices":[],"usage":{"total_tokens":3}}`)
	require.NoError(t, err)
	assert.Equal(t, "", content)

	_, err = DeltaContent(`{"choices":[`)
	assert.True(t, ai.IsProtocolError(err))
}

func TestMessageContent(t *testing.T) {
	content, err := MessageContent(`{"message":{"role":"assistant","content":" world"},"done":false}`)
	require.NoError(t, err)
	assert.Equal(t, " world", content)

	_, err = MessageContent(`{"message":`)
	assert.True(t, ai.IsProtocolError(err))
}
