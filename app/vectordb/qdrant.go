package vectordb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"GoQuestionsAI/app/models"
)

type QdrantConfig struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// qdrantAPI is the part of *qdrant.Client the store uses.
type qdrantAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

// QdrantStore keeps one collection per class. Qdrant has no vectorizer or
// generative modules, so both run client side through the models package.
type QdrantStore struct {
	client    qdrantAPI
	embedder  models.Embedder
	generator models.Generator
}

var _ Interface = &QdrantStore{}

func NewQdrantStore(cfg QdrantConfig, embedder models.Embedder, generator models.Generator) (*QdrantStore, error) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, err
	}
	return newQdrantStoreWithClient(client, embedder, generator), nil
}

func newQdrantStoreWithClient(client qdrantAPI, embedder models.Embedder, generator models.Generator) *QdrantStore {
	return &QdrantStore{
		client:    client,
		embedder:  embedder,
		generator: generator,
	}
}

func (s *QdrantStore) ClassExists(ctx context.Context, class string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, class)
	if err != nil {
		return false, fmt.Errorf("collection exists %s: %w", class, err)
	}
	return exists, nil
}

func (s *QdrantStore) CreateClass(ctx context.Context, class Class) error {
	exists, err := s.ClassExists(ctx, class.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("create collection %s: %w", class.Name, ErrClassExists)
	}
	if err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: class.Name,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.embedder.Dimensions()),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("create collection %s: %w", class.Name, err)
	}
	return nil
}

func (s *QdrantStore) BatchObjects(ctx context.Context, objects []Object) ([]ObjectResult, error) {
	if len(objects) == 0 {
		return nil, nil
	}
	results := make([]ObjectResult, len(objects))
	pts := make([]*qdrant.PointStruct, 0, len(objects))

	for i, o := range objects {
		id := o.ID
		if id == "" {
			id = uuid.New().String()
		}
		results[i].ID = id

		vec, err := s.embedder.EmbedText(ctx, vectorText(o))
		if err != nil {
			results[i].Err = err.Error()
			continue
		}
		pts = append(pts, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(o.Properties),
		})
	}
	if len(pts) == 0 {
		return results, nil
	}

	wait := true
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: objects[0].Class,
		Wait:           &wait,
		Points:         pts,
	}); err != nil {
		return nil, fmt.Errorf("upsert %d points: %w", len(pts), err)
	}
	return results, nil
}

func (s *QdrantStore) NearText(ctx context.Context, query NearTextQuery) (*QueryResult, error) {
	vec, err := s.embedder.EmbedText(ctx, strings.Join(query.Concepts, " "))
	if err != nil {
		return nil, fmt.Errorf("near text on %s: %w", query.Class, err)
	}

	limit := uint64(query.Limit)
	threshold := scoreThreshold(query.Distance)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: query.Class,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limit,
		ScoreThreshold: &threshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("near text on %s: %w", query.Class, err)
	}

	out := &QueryResult{Class: query.Class, Results: make([]Result, 0, len(resp))}
	for _, p := range resp {
		payload := make(map[string]any, len(p.Payload))
		for key, v := range p.Payload {
			payload[key] = convertQdrantValue(v)
		}
		r := Result{
			ID:       pointID(p.Id),
			Distance: 1 - float64(p.Score),
			Fields:   selectFields(payload, query.Fields),
		}
		if query.SinglePrompt != "" {
			r.Generated, err = s.generator.Generate(ctx, models.RenderPrompt(query.SinglePrompt, payload))
			if err != nil {
				r.GenerateError = err.Error()
			}
		}
		out.Results = append(out.Results, r)
	}

	if query.GroupedTask != "" && len(out.Results) > 0 {
		if out.Grouped, err = s.generator.Generate(ctx, groupedPrompt(query.GroupedTask, out.Results)); err != nil {
			out.Results[0].GenerateError = err.Error()
		}
	}
	return out, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// scoreThreshold maps a cosine distance bound onto qdrant's similarity score.
func scoreThreshold(distance float64) float32 {
	return float32(1 - distance)
}

// vectorText joins the string properties in key order, the way text2vec modules do.
func vectorText(o Object) string {
	keys := make([]string, 0, len(o.Properties))
	for k := range o.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{strings.ToLower(o.Class)}
	for _, k := range keys {
		if v, ok := o.Properties[k].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func selectFields(payload map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := payload[f]; ok {
			out[f] = v
		}
	}
	return out
}

func groupedPrompt(task string, results []Result) string {
	var sb strings.Builder
	sb.WriteString(task)
	for _, r := range results {
		keys := make([]string, 0, len(r.Fields))
		for k := range r.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\n-")
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s: %v;", k, r.Fields[k])
		}
	}
	return sb.String()
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch x := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return x.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", x.Num)
	}
	return ""
}

func convertQdrantValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {

	case *qdrant.Value_BoolValue:
		return val.BoolValue

	case *qdrant.Value_IntegerValue:
		return val.IntegerValue

	case *qdrant.Value_DoubleValue:
		return val.DoubleValue

	case *qdrant.Value_StringValue:
		return val.StringValue

	case *qdrant.Value_NullValue:
		return nil

	case *qdrant.Value_ListValue:
		out := make([]any, len(val.ListValue.Values))
		for i, lv := range val.ListValue.Values {
			out[i] = convertQdrantValue(lv)
		}
		return out

	case *qdrant.Value_StructValue:
		out := make(map[string]any)
		for k, nv := range val.StructValue.Fields {
			out[k] = convertQdrantValue(nv)
		}
		return out
	}

	return nil
}
