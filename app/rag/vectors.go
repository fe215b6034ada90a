package rag

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

type QdrantStore struct {
	client *qdrant.Client
}

func NewQdrantStore() (*QdrantStore, error) {
	host := os.Getenv("QDRANT_URL")
	port, _ := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, err
	}
	return &QdrantStore{client: client}, nil
}

// EnsureCollection creates the collection with cosine distance when absent.
// When it already exists the configured vector size must match vectorSize;
// a mismatch is an error, never a silent coercion.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", collection, err)
	}
	if !exists {
		if err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(vectorSize),
						Distance: qdrant.Distance_Cosine,
					},
				},
			},
		}); err != nil {
			return fmt.Errorf("create collection %s: %w", collection, err)
		}
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return fmt.Errorf("get collection info %s: %w", collection, err)
	}
	configured := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if configured != 0 && configured != uint64(vectorSize) {
		return fmt.Errorf("collection %s expects vectors of size %d, got %d",
			collection, configured, vectorSize)
	}
	return nil
}

func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	return s.client.CollectionExists(ctx, collection)
}

func (s *QdrantStore) DeleteCollection(ctx context.Context, collection string) error {
	return s.client.DeleteCollection(ctx, collection)
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	pts := make([]*qdrant.PointStruct, len(points))

	for i, p := range points {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}

		pts[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(p.Payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         pts,
	})

	return err
}

func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, limit int) ([]Result, error) {
	k := uint64(limit)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Limit:          &k,
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	var out []Result

	for _, r := range resp {
		res := Result{Score: r.Score}

		if r.Id != nil {
			switch x := r.Id.PointIdOptions.(type) {
			case *qdrant.PointId_Uuid:
				res.ID = x.Uuid
			case *qdrant.PointId_Num:
				res.ID = fmt.Sprintf("%d", x.Num)
			}
		}

		for key, v := range r.Payload {
			sv, ok := convertQdrantValue(v).(string)
			if !ok {
				continue
			}
			switch key {
			case "text":
				res.Text = sv
			case "name":
				res.Name = sv
			case "filename":
				res.Filename = sv
			}
		}

		out = append(out, res)
	}

	return out, nil
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
