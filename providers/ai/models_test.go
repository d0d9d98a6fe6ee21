package ai

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderKind(t *testing.T) {
	testCases := []struct {
		input    string
		expected ProviderKind
	}{
		{"Ollama", ProviderOllama},
		{"ollama", ProviderOllama},
		{"LM Studio", ProviderLMStudio},
		{"lm-studio", ProviderLMStudio},
		{"lmstudio", ProviderLMStudio},
		{"Koboldcpp", ProviderKoboldcpp},
		{" kobold ", ProviderKoboldcpp},
	}

	for _, testCase := range testCases {
		t.Run(testCase.input, func(t *testing.T) {
			kind, err := ParseProviderKind(testCase.input)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, kind)
		})
	}

	_, err := ParseProviderKind("openai")
	assert.Error(t, err)
}

func TestProviderKind_String(t *testing.T) {
	assert.Equal(t, "Ollama", ProviderOllama.String())
	assert.Equal(t, "LM Studio", ProviderLMStudio.String())
	assert.Equal(t, "Koboldcpp", ProviderKoboldcpp.String())
	assert.Equal(t, "ProviderKind(42)", ProviderKind(42).String())
	assert.Equal(t, "lmstudio", ProviderLMStudio.Slug())
}

func TestChatRequest_LastUserMessageIndex(t *testing.T) {
	request := ChatRequest{Messages: []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
	}}
	assert.Equal(t, 1, request.LastUserMessageIndex())

	request.Messages = append(request.Messages, Message{Role: RoleAssistant, Content: "hello"})
	assert.Equal(t, -1, request.LastUserMessageIndex())

	assert.Equal(t, -1, ChatRequest{}.LastUserMessageIndex())
}

func TestChatRequest_StreamEnabled(t *testing.T) {
	assert.True(t, ChatRequest{}.StreamEnabled())

	disabled := false
	assert.False(t, ChatRequest{Stream: &disabled}.StreamEnabled())
}

func TestTransportError_Message(t *testing.T) {
	withStatus := &TransportError{Op: "list_models", URL: "http://x/v1/models", StatusCode: 502, Body: "bad gateway"}
	assert.Equal(t, "list_models http://x/v1/models: status 502: bad gateway", withStatus.Error())

	cause := fmt.Errorf("dial tcp: connection refused")
	noResponse := &TransportError{Op: "stream_chat", URL: "http://x/api/chat", Err: cause}
	assert.Contains(t, noResponse.Error(), "connection refused")
	assert.ErrorIs(t, noResponse, cause)
}

// ========== Images ==========

// pngHeader is the 8-byte PNG signature followed by an IHDR chunk start,
// enough for MIME sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestEncodeImage_DetectsMIMEType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	image, err := EncodeImage(path)
	require.NoError(t, err)

	assert.Equal(t, "image/png", image.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pngHeader), image.Base64)
	assert.Equal(t, "data:image/png;base64,"+image.Base64, image.DataURI())
}

func TestEncodeImage_FallsBackToJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	image, err := EncodeImage(path)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", image.MIMEType)
}

func TestEncodeImages_MissingFile(t *testing.T) {
	_, err := EncodeImages([]string{filepath.Join(t.TempDir(), "missing.jpg")})
	assert.Error(t, err)

	images, err := EncodeImages(nil)
	assert.NoError(t, err)
	assert.Nil(t, images)
}
