package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/spacesedan/newscard/internal/models"
)

const (
	GEMINI_IMAGE_ASPECT = "4:3"
	GEMINI_IMAGE_MIME   = "image/jpeg"
)

// GeminiClient talks to the Gemini API for text and Imagen for images.
type GeminiClient struct {
	Client     *genai.Client
	TextModel  string
	ImageModel string
}

func NewGeminiClient(ctx context.Context, apiKey, textModel, imageModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("[GeminiClient] failed to create client: %w", err)
	}

	slog.Info("[GeminiClient] Gemini client initialized",
		slog.String("text_model", textModel),
		slog.String("image_model", imageModel))
	return &GeminiClient{Client: client, TextModel: textModel, ImageModel: imageModel}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.Client.Models.GenerateContent(ctx, g.TextModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("[GeminiClient] generate content failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("[GeminiClient] empty generate content response")
	}
	return text, nil
}

// GenerateImage requests exactly one 4:3 JPEG. Images removed by safety
// filtering come back without bytes and are dropped, so the result may be empty.
func (g *GeminiClient) GenerateImage(ctx context.Context, prompt string) ([]models.ImagePayload, error) {
	resp, err := g.Client.Models.GenerateImages(ctx, g.ImageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    GEMINI_IMAGE_ASPECT,
		OutputMIMEType: GEMINI_IMAGE_MIME,
	})
	if err != nil {
		return nil, fmt.Errorf("[GeminiClient] generate images failed: %w", err)
	}

	images := make([]models.ImagePayload, 0, len(resp.GeneratedImages))
	for _, gi := range resp.GeneratedImages {
		if gi == nil || gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			if gi != nil && gi.RAIFilteredReason != "" {
				slog.Warn("[GeminiClient] Generated image filtered", slog.String("reason", gi.RAIFilteredReason))
			}
			continue
		}
		mime := gi.Image.MIMEType
		if mime == "" {
			mime = http.DetectContentType(gi.Image.ImageBytes)
		}
		images = append(images, models.ImagePayload{MIMEType: mime, Data: gi.Image.ImageBytes})
	}
	return images, nil
}
