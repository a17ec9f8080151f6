package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-tryon-studio/internal/imaging"
)

func imageResponse(mimeType, data string) generateContentResponse {
	return generateContentResponse{
		Candidates: []candidate{
			{Content: content{Parts: []part{{InlineData: &blob{MimeType: mimeType, Data: data}}}}},
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
}

func TestNotConfigured(t *testing.T) {
	c := New(Options{})

	_, err := c.GenerateClothingImage(context.Background(), "red silk dress")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.GenerateTryOn(context.Background(), "data:image/png;base64,cA==", "data:image/png;base64,Yw==")
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.False(t, c.Configured())
}

func TestGenerateClothingImage(t *testing.T) {
	var got generateContentRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash-image:generateContent")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(imageResponse("image/png", "AQID"))
	})

	encoded, err := c.GenerateClothingImage(context.Background(), "red silk dress")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AQID", encoded)

	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 1)
	assert.Contains(t, got.Contents[0].Parts[0].Text, "red silk dress")
	require.NotNil(t, got.GenerationConfig.ImageConfig)
	assert.Equal(t, "1:1", got.GenerationConfig.ImageConfig.AspectRatio)
}

func TestGenerateTryOn(t *testing.T) {
	person := imaging.EncodeBytes([]byte{0x1}, "image/jpeg")
	cloth := imaging.EncodeBytes([]byte{0x2}, "image/webp")

	var got generateContentRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(imageResponse("image/png", "AQID"))
	})

	encoded, err := c.GenerateTryOn(context.Background(), person, cloth)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AQID", encoded)

	require.Len(t, got.Contents, 1)
	parts := got.Contents[0].Parts
	require.Len(t, parts, 3)

	// Envelope split off, mime types preserved, instruction last.
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MimeType)
	assert.Equal(t, imaging.StripEnvelope(person), parts[0].InlineData.Data)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/webp", parts[1].InlineData.MimeType)
	assert.NotEmpty(t, parts[2].Text)

	// Portrait output for a full-body shot.
	require.NotNil(t, got.GenerationConfig.ImageConfig)
	assert.Equal(t, "3:4", got.GenerationConfig.ImageConfig.AspectRatio)
}

func TestEmptyResult(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(generateContentResponse{})
		})
		_, err := c.GenerateClothingImage(context.Background(), "x")
		assert.ErrorIs(t, err, ErrEmptyResult)
	})

	t.Run("text-only candidate", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			resp := generateContentResponse{
				Candidates: []candidate{{Content: content{Parts: []part{{Text: "sorry"}}}}},
			}
			_ = json.NewEncoder(w).Encode(resp)
		})
		_, err := c.GenerateClothingImage(context.Background(), "x")
		assert.ErrorIs(t, err, ErrEmptyResult)
	})
}

func TestAPIErrorMessagePassedThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	})

	_, err := c.GenerateClothingImage(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
