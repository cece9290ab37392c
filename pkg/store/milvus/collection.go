package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/scale"
)

const (
	// DefaultCollectionName is the default collection name for archived lookback windows
	DefaultCollectionName = "lookback_windows"
)

// CollectionConfig holds configuration for creating a collection
type CollectionConfig struct {
	Name      string
	Dimension int // Vector dimension, equal to the window size
	Shards    int // Number of shards
}

// DefaultCollectionConfig returns default collection configuration
func DefaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		Name:      DefaultCollectionName,
		Dimension: model.DefaultWindowSize,
		Shards:    2,
	}
}

// CreateCollection creates the lookback_windows collection
func (c *Client) CreateCollection(ctx context.Context, cfg CollectionConfig) error {
	// Check if collection already exists
	exists, err := c.HasCollection(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil // Collection already exists
	}

	schema := &entity.Schema{
		CollectionName: cfg.Name,
		Description:    "Scaled sales lookback windows for similar-history search",
		Fields: []*entity.Field{
			{
				Name:       "window_key",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", cfg.Dimension),
				},
			},
			{
				Name:     "run_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "40",
				},
			},
			{
				Name:     "tier",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "8",
				},
			},
			{
				Name:     "t_end",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "records",
				DataType: entity.FieldTypeInt32,
			},
		},
	}

	if err := c.conn.CreateCollection(ctx, schema, int32(cfg.Shards)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// WindowData holds one archived lookback window
type WindowData struct {
	RunID     string
	Tier      model.Tier
	Embedding []float32
	TEnd      time.Time // date of the tier's last record
	Records   int32
}

// Key returns the primary key of the window
func (d *WindowData) Key() string {
	return WindowKey(d.RunID, d.Tier)
}

// WindowKey builds the primary key for a run's tier window
func WindowKey(runID string, tier model.Tier) string {
	return runID + ":" + string(tier)
}

// Embed scales a lookback window with its own fixed range and converts it to float32.
// Degenerate windows have no shape and return false.
func Embed(window []float64) ([]float32, bool) {
	s := scale.FitScaler(window)
	if len(window) == 0 || s.Range().IsDegenerate() {
		return nil, false
	}
	scaled := s.Transform(nil, window)
	out := make([]float32, len(scaled))
	for i, v := range scaled {
		out[i] = float32(v)
	}
	return out, true
}

// NewWindowData builds the archive entry for a forecast, or returns false for a flat window
func NewWindowData(f *model.ForecastResult, tEnd time.Time) (*WindowData, bool) {
	embedding, ok := Embed(f.Window)
	if !ok {
		return nil, false
	}
	return &WindowData{
		RunID:     f.RunID,
		Tier:      f.Tier,
		Embedding: embedding,
		TEnd:      tEnd,
		Records:   int32(f.Records),
	}, true
}

// WindowsFromRun returns the archive entries of every successful tier of a run.
// Flat windows are skipped; their cosine similarity is undefined.
func WindowsFromRun(run *forecast.Run) []*WindowData {
	var out []*WindowData
	for _, t := range model.Tiers {
		res := run.Result(t)
		if res == nil || !res.OK() {
			continue
		}
		if d, ok := NewWindowData(res.Forecast, lastDate(res.Records)); ok {
			out = append(out, d)
		}
	}
	return out
}

func lastDate(records []model.SalesRecord) time.Time {
	var last time.Time
	for _, r := range records {
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return last
}

// Insert inserts a single window embedding
func (c *Client) Insert(ctx context.Context, collectionName string, data *WindowData) error {
	return c.InsertBatch(ctx, collectionName, []*WindowData{data})
}

// InsertBatch inserts multiple window embeddings
func (c *Client) InsertBatch(ctx context.Context, collectionName string, dataList []*WindowData) error {
	if len(dataList) == 0 {
		return nil
	}

	// Prepare column data
	keys := make([]string, len(dataList))
	embeddings := make([][]float32, len(dataList))
	runIDs := make([]string, len(dataList))
	tiers := make([]string, len(dataList))
	tEnds := make([]int64, len(dataList))
	records := make([]int32, len(dataList))

	for i, d := range dataList {
		keys[i] = d.Key()
		embeddings[i] = d.Embedding
		runIDs[i] = d.RunID
		tiers[i] = string(d.Tier)
		tEnds[i] = d.TEnd.Unix()
		records[i] = d.Records
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("window_key", keys),
		entity.NewColumnFloatVector("embedding", len(embeddings[0]), embeddings),
		entity.NewColumnVarChar("run_id", runIDs),
		entity.NewColumnVarChar("tier", tiers),
		entity.NewColumnInt64("t_end", tEnds),
		entity.NewColumnInt32("records", records),
	}

	if _, err := c.conn.Insert(ctx, collectionName, "", columns...); err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	return nil
}

// SearchResult represents a single search result
type SearchResult struct {
	RunID   string
	Tier    model.Tier
	Score   float32
	TEnd    time.Time
	Records int32
}

// TierFilter returns the boolean expression restricting a search to one tier
func TierFilter(tier model.Tier) string {
	return fmt.Sprintf("tier == \"%s\"", tier)
}

// Search performs a TopK similarity search
func (c *Client) Search(ctx context.Context, collectionName string, embedding []float32, filter string, topK int) ([]SearchResult, error) {
	vectors := []entity.Vector{entity.FloatVector(embedding)}

	sp, err := entity.NewIndexIvfFlatSearchParam(16) // nprobe
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	outputFields := []string{"run_id", "tier", "t_end", "records"}

	results, err := c.conn.Search(
		ctx,
		collectionName,
		nil,          // partitions
		filter,       // expression filter
		outputFields, // output fields
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	searchResults := make([]SearchResult, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		result := SearchResult{
			Score: results[0].Scores[i],
		}

		for _, field := range results[0].Fields {
			switch field.Name() {
			case "run_id":
				if col, ok := field.(*entity.ColumnVarChar); ok {
					val, _ := col.ValueByIdx(i)
					result.RunID = val
				}
			case "tier":
				if col, ok := field.(*entity.ColumnVarChar); ok {
					val, _ := col.ValueByIdx(i)
					result.Tier = model.Tier(val)
				}
			case "t_end":
				if col, ok := field.(*entity.ColumnInt64); ok {
					val, _ := col.ValueByIdx(i)
					result.TEnd = time.Unix(val, 0).UTC()
				}
			case "records":
				if col, ok := field.(*entity.ColumnInt32); ok {
					val, _ := col.ValueByIdx(i)
					result.Records = val
				}
			}
		}

		searchResults = append(searchResults, result)
	}

	return searchResults, nil
}

// Flush flushes the collection to ensure data persistence
func (c *Client) Flush(ctx context.Context, collectionName string) error {
	return c.conn.Flush(ctx, collectionName, false)
}
