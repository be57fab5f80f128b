package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wanderly/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, temperature float32) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelName: modelName, temperature: temperature}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// model builds a per-request model so system prompts and MIME types never leak between calls.
func (g *GeminiClient) model(req Request) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.modelName)
	m.SetTemperature(g.temperature)
	if req.System != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	if req.JSON {
		m.ResponseMIMEType = "application/json"
	}
	return m
}

func (g *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := g.model(req).GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error (%s): %w", req.Task, err)
	}
	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GeminiClient) Stream(ctx context.Context, req Request, onChunk func(string)) (string, error) {
	iter := g.model(req).GenerateContentStream(ctx, genai.Text(req.Prompt))

	var sb strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return sb.String(), fmt.Errorf("gemini stream error (%s): %w", req.Task, err)
		}
		chunk := responseText(resp)
		if chunk == "" {
			continue
		}
		sb.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	utils.GetLogger().Debug("gemini stream finished", zap.String("task", req.Task), zap.Int("chars", sb.Len()))
	return sb.String(), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String()
}
