package configs

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig lists the environment variables that override the YAML file.
// Unset variables leave the file value alone.
type EnvConfig struct {
	Backend        string `envconfig:"VECTOR_BACKEND"`
	OpenAIKey      string `envconfig:"OPENAI_KEY"`
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME"`
	WeaviateHost   string `envconfig:"WEAVIATE_HOST"`
	WeaviateAPIKey string `envconfig:"WEAVIATE_API_KEY"`
	QdrantHost     string `envconfig:"QDRANT_HOST"`
	QdrantPort     string `envconfig:"QDRANT_PORT"`
	QdrantAPIKey   string `envconfig:"QDRANT_API_KEY"`
	JournalPath    string `envconfig:"JOURNAL_PATH"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
}

// LoadDotEnv loads a .env file. An empty path means ".env"; a missing file is not an error.
// Variables already set in the process win over the file.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func (c *Config) ApplyEnv() error {
	var env EnvConfig
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	override(&c.Backend, env.Backend)
	override(&c.OpenAI.APIKey, env.OpenAIAPIKey)
	override(&c.OpenAI.APIKey, env.OpenAIKey)
	override(&c.OpenAI.BaseURL, env.OpenAIBaseURL)
	override(&c.Weaviate.Scheme, env.WeaviateScheme)
	override(&c.Weaviate.Host, env.WeaviateHost)
	override(&c.Weaviate.APIKey, env.WeaviateAPIKey)
	override(&c.Qdrant.Host, env.QdrantHost)
	override(&c.Qdrant.APIKey, env.QdrantAPIKey)
	override(&c.Journal.Path, env.JournalPath)
	override(&c.Log.Level, env.LogLevel)
	override(&c.Log.Format, env.LogFormat)
	if env.QdrantPort != "" {
		port, err := strconv.Atoi(env.QdrantPort)
		if err != nil {
			return fmt.Errorf("read environment: QDRANT_PORT: %w", err)
		}
		c.Qdrant.Port = port
	}
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
