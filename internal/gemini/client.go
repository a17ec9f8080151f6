package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"ai-tryon-studio/internal/imaging"
)

const defaultModel = "gemini-2.5-flash-image"

const clothingPromptTemplate = "Professional fashion photography, flat lay photo of %s clothing, " +
	"clean white background, studio lighting, high resolution, 4k, highly detailed texture."

const tryOnInstruction = `Generate a high-quality, photorealistic full-body photo of the person shown in the first image wearing the clothing shown in the second image.

Requirements:
1. Preserve the identity, facial features, pose, and body shape of the person from the first image exactly.
2. Fit the clothing from the second image naturally onto the person.
3. Maintain high resolution and realistic lighting.
4. Clean background or background matching the original person's photo.
5. Full body shot.`

var (
	// ErrNotConfigured is returned before any network call when no API key is set.
	ErrNotConfigured = errors.New("gemini api key is not configured")

	// ErrEmptyResult means the remote call succeeded but returned no image part.
	ErrEmptyResult = errors.New("model returned no usable image")
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		apiVersion: apiVersion,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Configured reports whether an API key is present. The UI shows a persistent
// indicator when it is not.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// GenerateClothingImage asks the model for a studio photo of the described
// garment and returns it as a data URL.
func (c *Client) GenerateClothingImage(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	req := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: fmt.Sprintf(clothingPromptTemplate, prompt)}}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: "1:1"},
		},
	}

	return c.generateImage(ctx, req)
}

// GenerateTryOn composites the garment onto the person. Both inputs are data
// URLs; the result is a portrait-oriented data URL. Exactly one request is
// issued per call, no internal retry.
func (c *Client) GenerateTryOn(ctx context.Context, personImage, clothImage string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	req := generateContentRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{InlineData: &blob{
						MimeType: imaging.MimeType(personImage),
						Data:     imaging.StripEnvelope(personImage),
					}},
					{InlineData: &blob{
						MimeType: imaging.MimeType(clothImage),
						Data:     imaging.StripEnvelope(clothImage),
					}},
					{Text: tryOnInstruction},
				},
			},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: "3:4"},
		},
	}

	return c.generateImage(ctx, req)
}

func (c *Client) generateImage(ctx context.Context, req generateContentRequest) (string, error) {
	resp, err := c.generateContent(ctx, req)
	if err != nil {
		return "", err
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return imaging.Envelope(p.InlineData.MimeType, p.InlineData.Data), nil
		}
	}
	return "", ErrEmptyResult
}

func (c *Client) generateContent(ctx context.Context, payload generateContentRequest) (generateContentResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return generateContentResponse{}, fmt.Errorf("gemini API %s: %s", httpResp.Status, apiErrorMessage(rawBody))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return generateContentResponse{}, fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 {
		return generateContentResponse{}, ErrEmptyResult
	}

	return decoded, nil
}

// apiErrorMessage pulls the human-readable message out of a Gemini error body
// so it can be surfaced as-is, falling back to the raw body.
func apiErrorMessage(rawBody []byte) string {
	var decoded struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rawBody, &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	return strings.TrimSpace(string(rawBody))
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}
