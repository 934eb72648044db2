package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrClassExists       = errors.New("class already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMissingCredential = errors.New("missing api credential")
)

// Interface is the remote vector store as seen by the three stages.
type Interface interface {
	ClassExists(ctx context.Context, class string) (bool, error)
	CreateClass(ctx context.Context, class Class) error
	BatchObjects(ctx context.Context, objects []Object) ([]ObjectResult, error)
	NearText(ctx context.Context, query NearTextQuery) (*QueryResult, error)
	Close() error
}

type Class struct {
	Name         string                    `json:"class"`
	Vectorizer   string                    `json:"vectorizer,omitempty"`
	ModuleConfig map[string]map[string]any `json:"moduleConfig,omitempty"`
}

// UsesOpenAI reports whether the store needs an OpenAI key to serve this class.
func (c Class) UsesOpenAI() bool {
	if isOpenAIModule(c.Vectorizer) {
		return true
	}
	for module := range c.ModuleConfig {
		if isOpenAIModule(module) {
			return true
		}
	}
	return false
}

func isOpenAIModule(name string) bool {
	return strings.HasSuffix(name, "-openai")
}

type Object struct {
	Class      string         `json:"class"`
	ID         string         `json:"id,omitempty"`
	Properties map[string]any `json:"properties"`
}

// ObjectResult is the store's verdict on one object of a batch.
// Err is empty when the object was accepted.
type ObjectResult struct {
	ID  string
	Err string
}

type NearTextQuery struct {
	Class        string
	Fields       []string
	Concepts     []string
	Distance     float64
	SinglePrompt string
	GroupedTask  string
	Limit        int

	// Vectorizer and Modules describe the class being queried.
	Vectorizer string
	Modules    []string
}

// UsesOpenAI reports whether answering q needs an OpenAI key: the class is
// vectorized by an OpenAI module, or generation runs through one.
func (q NearTextQuery) UsesOpenAI() bool {
	if isOpenAIModule(q.Vectorizer) {
		return true
	}
	if q.SinglePrompt == "" && q.GroupedTask == "" {
		return false
	}
	for _, module := range q.Modules {
		if strings.HasPrefix(module, "generative-") && isOpenAIModule(module) {
			return true
		}
	}
	return false
}

type QueryResult struct {
	Class   string   `json:"class"`
	Results []Result `json:"results"`
	// Grouped holds the output of the grouped task, attached by the store to the first result.
	Grouped string `json:"grouped,omitempty"`
}

type Result struct {
	ID            string         `json:"id,omitempty"`
	Distance      float64        `json:"distance"`
	Fields        map[string]any `json:"fields"`
	Generated     string         `json:"generated,omitempty"`
	GenerateError string         `json:"generateError,omitempty"`
}

// StatusError is returned when the store answers with an unexpected HTTP status.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.Status, e.Body)
}

// QueryError carries the error messages of a rejected query.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return "query rejected: " + strings.Join(e.Messages, "; ")
}
