package configs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"GoQuestionsAI/app/logs"
)

const (
	BackendWeaviate = "weaviate"
	BackendQdrant   = "qdrant"
)

type Config struct {
	Backend  string         `yaml:"backend" validate:"oneof=weaviate qdrant"`
	Timeout  time.Duration  `yaml:"timeout" validate:"gte=0"`
	Weaviate WeaviateConfig `yaml:"weaviate"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Schema   SchemaConfig   `yaml:"schema"`
	Import   ImportConfig   `yaml:"import"`
	Query    QueryConfig    `yaml:"query"`
	Journal  JournalConfig  `yaml:"journal"`
	Log      logs.Config    `yaml:"log"`
}

type WeaviateConfig struct {
	Scheme  string            `yaml:"scheme" validate:"oneof=http https"`
	Host    string            `yaml:"host"`
	APIKey  string            `yaml:"api_key"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port" validate:"gte=0,lte=65535"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url" validate:"omitempty,url"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	Dimensions     int    `yaml:"dimensions" validate:"gte=0"`
}

type SchemaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	SkipExisting bool     `yaml:"skip_existing"`
	Class        string   `yaml:"class" validate:"required"`
	Vectorizer   string   `yaml:"vectorizer"`
	Modules      []string `yaml:"modules,omitempty"`
}

type ImportConfig struct {
	Files       []string `yaml:"files"`
	BatchSize   int      `yaml:"batch_size" validate:"min=1"`
	FlushPolicy string   `yaml:"flush_policy" validate:"oneof=legacy exact"`
}

type QueryConfig struct {
	Fields       []string `yaml:"fields" validate:"min=1,dive,required"`
	Concepts     []string `yaml:"concepts" validate:"min=1,dive,required"`
	Distance     float64  `yaml:"distance" validate:"gt=0,lte=2"`
	SinglePrompt string   `yaml:"single_prompt"`
	GroupedTask  string   `yaml:"grouped_task"`
	Limit        int      `yaml:"limit" validate:"min=1"`
	Output       string   `yaml:"output" validate:"oneof=json tree"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
}

// Default mirrors the values the importer has always run with.
func Default() *Config {
	return &Config{
		Backend: BackendWeaviate,
		Weaviate: WeaviateConfig{
			Scheme: "http",
			Host:   "localhost:8080",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		OpenAI: OpenAIConfig{
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4o-mini",
		},
		Schema: SchemaConfig{
			Class:      "Question",
			Vectorizer: "text2vec-openai",
			Modules:    []string{"text2vec-openai", "generative-openai"},
		},
		Import: ImportConfig{
			Files:       []string{"assets/jeopardy_data_1.json", "assets/jeopardy_data_2.json"},
			BatchSize:   100,
			FlushPolicy: "legacy",
		},
		Query: QueryConfig{
			Fields:       []string{"question", "answer", "category", "fileSource"},
			Concepts:     []string{"human body parts"},
			Distance:     0.7,
			SinglePrompt: "Explain the {answer} in the style of George Carlin.",
			Limit:        2,
			Output:       "json",
		},
		Log: logs.Config{Level: "info", Format: logs.FormatConsole},
	}
}

// Load reads the optional .env file, the optional YAML file and finally the
// environment, each layer overriding the previous one.
func Load(path, envFile string) (*Config, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read configs file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err = yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configs: %w", err)
	}

	switch c.Backend {
	case BackendWeaviate:
		if c.Weaviate.Host == "" {
			return errors.New("invalid configs: weaviate.host cannot be empty")
		}
	case BackendQdrant:
		if c.Qdrant.Host == "" {
			return errors.New("invalid configs: qdrant.host cannot be empty")
		}
	}
	return nil
}
