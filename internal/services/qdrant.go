package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// SimilarityIndex stores resume vectors and scores them against a job
// description vector with cosine similarity. Points are tagged with their
// screening id; the index carries no state across runs beyond what an
// explicit delete removes.
type SimilarityIndex interface {
	InitCollection() error
	UpsertResume(ctx context.Context, screeningID, docID string, vector []float32) error
	Similarities(ctx context.Context, screeningID string, jdVector []float32, limit int) (map[string]float64, error)
	DeleteRun(ctx context.Context, screeningID string) error
}

type qdrantIndex struct {
	client         *qdrant.Client
	logger         *zap.Logger
	collectionName string
	vectorSize     uint64
}

func NewQdrantIndex(urlStr, apiKey, collectionName string, logger *zap.Logger) (SimilarityIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		logger:         logger,
		collectionName: collectionName,
		vectorSize:     embeddingDim,
	}, nil
}

// InitCollection implements SimilarityIndex.
func (q *qdrantIndex) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// UpsertResume implements SimilarityIndex.
func (q *qdrantIndex) UpsertResume(ctx context.Context, screeningID, docID string, vector []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(uuid.New().ID())),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"screening_id": screeningID,
			"doc_id":       docID,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upsert point: %v", ErrExternalService, err)
	}

	return nil
}

// Similarities implements SimilarityIndex. Returns cosine similarity per
// document id for the given run; negative scores are clamped to 0.
func (q *qdrantIndex) Similarities(ctx context.Context, screeningID string, jdVector []float32, limit int) (map[string]float64, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("screening_id", screeningID),
		},
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(jdVector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		return nil, fmt.Errorf("%w: failed to search: %v", ErrExternalService, err)
	}

	similarities := make(map[string]float64, len(searchResult))
	for _, point := range searchResult {
		docID, ok := point.Payload["doc_id"]
		if !ok {
			continue
		}
		val, ok := docID.GetKind().(*qdrant.Value_StringValue)
		if !ok {
			continue
		}

		similarities[val.StringValue] = NormalizeSimilarity(float64(point.Score))
	}

	return similarities, nil
}

// DeleteRun implements SimilarityIndex.
func (q *qdrantIndex) DeleteRun(ctx context.Context, screeningID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("screening_id", screeningID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})

	if err != nil {
		return fmt.Errorf("%w: failed to delete run points: %v", ErrExternalService, err)
	}

	return nil
}
