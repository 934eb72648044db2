package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"GoQuestionsAI/app/utils/restclient"
)

const (
	schemaEndpoint  = "/v1/schema"
	batchEndpoint   = "/v1/batch/objects"
	graphqlEndpoint = "/v1/graphql"

	openAIKeyHeader = "X-OpenAI-Api-Key"
)

type WeaviateConfig struct {
	Scheme    string
	Host      string
	APIKey    string
	OpenAIKey string
	Headers   map[string]string
	Timeout   time.Duration
}

type WeaviateStore struct {
	rest      restclient.Interface
	openAIKey string
}

var _ Interface = &WeaviateStore{}

func NewWeaviateStore(cfg WeaviateConfig) *WeaviateStore {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "http"
	}
	headers := make(map[string]string, len(cfg.Headers)+2)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	headers[openAIKeyHeader] = cfg.OpenAIKey
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	return &WeaviateStore{
		rest:      restclient.NewRestClientWithTimeout(scheme+"://"+cfg.Host, headers, cfg.Timeout),
		openAIKey: cfg.OpenAIKey,
	}
}

func newWeaviateStoreWithClient(rest restclient.Interface, openAIKey string) *WeaviateStore {
	return &WeaviateStore{rest: rest, openAIKey: openAIKey}
}

func (s *WeaviateStore) ClassExists(ctx context.Context, class string) (bool, error) {
	body, status, err := s.rest.Get(ctx, schemaEndpoint+"/"+url.PathEscape(class), nil)
	if err != nil {
		return false, fmt.Errorf("get class %s: %w", class, err)
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, statusError("get class", status, body)
}

func (s *WeaviateStore) CreateClass(ctx context.Context, class Class) error {
	if class.UsesOpenAI() && s.openAIKey == "" {
		return fmt.Errorf("create class %s: %w: OPENAI_KEY", class.Name, ErrMissingCredential)
	}
	body, status, err := s.rest.Post(ctx, schemaEndpoint, class, nil)
	if err != nil {
		return fmt.Errorf("create class %s: %w", class.Name, err)
	}
	if status == http.StatusOK {
		return nil
	}
	if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(string(body)), "already exists") {
		return fmt.Errorf("create class %s: %w", class.Name, ErrClassExists)
	}
	return statusError("create class", status, body)
}

type batchRequest struct {
	Objects []Object `json:"objects"`
}

type batchResponseItem struct {
	ID     string `json:"id"`
	Result *struct {
		Errors *struct {
			Error []struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"errors"`
	} `json:"result"`
}

func (s *WeaviateStore) BatchObjects(ctx context.Context, objects []Object) ([]ObjectResult, error) {
	body, status, err := s.rest.Post(ctx, batchEndpoint, batchRequest{Objects: objects}, nil)
	if err != nil {
		return nil, fmt.Errorf("batch objects: %w", err)
	}
	if status != http.StatusOK {
		return nil, statusError("batch objects", status, body)
	}

	var items []batchResponseItem
	if err = json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse batch response: %w", err)
	}

	results := make([]ObjectResult, len(items))
	for i, it := range items {
		results[i] = ObjectResult{ID: it.ID}
		if it.Result == nil || it.Result.Errors == nil {
			continue
		}
		msgs := make([]string, 0, len(it.Result.Errors.Error))
		for _, e := range it.Result.Errors.Error {
			msgs = append(msgs, e.Message)
		}
		results[i].Err = strings.Join(msgs, "; ")
	}
	return results, nil
}

func (s *WeaviateStore) NearText(ctx context.Context, query NearTextQuery) (*QueryResult, error) {
	if query.UsesOpenAI() && s.openAIKey == "" {
		return nil, fmt.Errorf("near text on %s: %w: OPENAI_KEY", query.Class, ErrMissingCredential)
	}
	body, status, err := s.rest.Post(ctx, graphqlEndpoint, graphQLRequest{Query: buildNearTextQuery(query)}, nil)
	if err != nil {
		return nil, fmt.Errorf("near text on %s: %w", query.Class, err)
	}
	if status != http.StatusOK {
		return nil, statusError("near text", status, body)
	}

	var resp graphQLResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse graphql response: %w", err)
	}
	return parseGetResults(query.Class, resp)
}

func (s *WeaviateStore) Close() error {
	return nil
}

func statusError(op string, status int, body []byte) error {
	se := &StatusError{Op: op, Status: status, Body: strings.TrimSpace(string(body))}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: %w", ErrUnauthorized, se)
	}
	return se
}
