package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultChatModel      = "gpt-4o-mini"
)

var ErrEmptyResponse = errors.New("empty model response")

var embeddingDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
}

// Embedder turns text into vectors.
type Embedder interface {
	EmbedText(ctx context.Context, input string) ([]float32, error)
	Dimensions() int
}

// Generator completes a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Dimensions     int
	Timeout        time.Duration
}

// OpenAIClient talks to any OpenAI compatible endpoint (OpenAI, LM Studio, ...).
type OpenAIClient struct {
	client         *openai.Client
	cache          sync.Map
	embeddingModel string
	chatModel      string
	dimensions     int
}

var (
	_ Embedder  = &OpenAIClient{}
	_ Generator = &OpenAIClient{}
)

func NewOpenAIClient(cfg Config) *OpenAIClient {
	config := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	embModel := cfg.EmbeddingModel
	if embModel == "" {
		embModel = defaultEmbeddingModel
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	dims := cfg.Dimensions
	if dims == 0 {
		if dims = embeddingDimensions[embModel]; dims == 0 {
			dims = 1536
		}
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(config),
		embeddingModel: embModel,
		chatModel:      chatModel,
		dimensions:     dims,
	}
}

func (mc *OpenAIClient) Dimensions() int {
	return mc.dimensions
}

func (mc *OpenAIClient) EmbedText(ctx context.Context, input string) ([]float32, error) {
	if v, ok := mc.cache.Load(input); ok {
		if emb, ok2 := v.([]float32); ok2 {
			return emb, nil
		}
	}
	if strings.TrimSpace(input) == "" {
		return nil, errors.New("embed: text is empty")
	}

	resp, err := mc.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(mc.embeddingModel),
		Input: []string{input},
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed: %w", ErrEmptyResponse)
	}

	emb := resp.Data[0].Embedding
	mc.cache.Store(input, emb)
	return emb, nil
}

func (mc *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := mc.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: mc.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
