package configs

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"GoQuestionsAI/app/loader"
	"GoQuestionsAI/app/models"
	"GoQuestionsAI/app/storage"
	"GoQuestionsAI/app/vectordb"
)

// BuildStore opens the configured vector store. The caller owns Close.
func (c *Config) BuildStore(logger *zap.Logger) (vectordb.Interface, error) {
	switch c.Backend {
	case BackendWeaviate:
		logger.Info("🔌 connecting to weaviate",
			zap.String("scheme", c.Weaviate.Scheme),
			zap.String("host", c.Weaviate.Host))
		return vectordb.NewWeaviateStore(vectordb.WeaviateConfig{
			Scheme:    c.Weaviate.Scheme,
			Host:      c.Weaviate.Host,
			APIKey:    c.Weaviate.APIKey,
			OpenAIKey: c.OpenAI.APIKey,
			Headers:   c.Weaviate.Headers,
			Timeout:   c.Timeout,
		}), nil
	case BackendQdrant:
		if strings.TrimSpace(c.OpenAI.APIKey) == "" && c.OpenAI.BaseURL == "" {
			return nil, fmt.Errorf("build qdrant store: %w: OPENAI_KEY", vectordb.ErrMissingCredential)
		}
		logger.Info("🔌 connecting to qdrant",
			zap.String("host", c.Qdrant.Host),
			zap.Int("port", c.Qdrant.Port),
			zap.String("embedding_model", c.OpenAI.EmbeddingModel))
		mc := models.NewOpenAIClient(c.ModelConfig())
		store, err := vectordb.NewQdrantStore(vectordb.QdrantConfig{
			Host:   c.Qdrant.Host,
			Port:   c.Qdrant.Port,
			APIKey: c.Qdrant.APIKey,
			UseTLS: c.Qdrant.UseTLS,
		}, mc, mc)
		if err != nil {
			return nil, fmt.Errorf("build qdrant store: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown backend %q", c.Backend)
}

func (c *Config) ModelConfig() models.Config {
	return models.Config{
		APIKey:         c.OpenAI.APIKey,
		BaseURL:        c.OpenAI.BaseURL,
		EmbeddingModel: c.OpenAI.EmbeddingModel,
		ChatModel:      c.OpenAI.ChatModel,
		Dimensions:     c.OpenAI.Dimensions,
		Timeout:        c.Timeout,
	}
}

// BuildJournal opens the sqlite journal, or a no-op one when no path is set.
func (c *Config) BuildJournal() (storage.Interface, error) {
	if c.Journal.Path == "" {
		return storage.Nop{}, nil
	}
	journal, err := storage.NewSQLiteJournal(c.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", c.Journal.Path, err)
	}
	return journal, nil
}

func (c *Config) Class() vectordb.Class {
	class := vectordb.Class{
		Name:       c.Schema.Class,
		Vectorizer: c.Schema.Vectorizer,
	}
	if len(c.Schema.Modules) > 0 {
		class.ModuleConfig = make(map[string]map[string]any, len(c.Schema.Modules))
		for _, m := range c.Schema.Modules {
			class.ModuleConfig[m] = map[string]any{}
		}
	}
	return class
}

func (c *Config) NearTextQuery() vectordb.NearTextQuery {
	return vectordb.NearTextQuery{
		Class:        c.Schema.Class,
		Fields:       c.Query.Fields,
		Concepts:     c.Query.Concepts,
		Distance:     c.Query.Distance,
		SinglePrompt: c.Query.SinglePrompt,
		GroupedTask:  c.Query.GroupedTask,
		Limit:        c.Query.Limit,
		Vectorizer:   c.Schema.Vectorizer,
		Modules:      c.Schema.Modules,
	}
}

func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		Class:       c.Schema.Class,
		BatchSize:   c.Import.BatchSize,
		FlushPolicy: loader.FlushPolicy(c.Import.FlushPolicy),
	}
}
