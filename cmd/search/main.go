package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/tunogya/salescast/pkg/config"
	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/outcome"
	"github.com/tunogya/salescast/pkg/rerank"
	"github.com/tunogya/salescast/pkg/store/duckdb"
	"github.com/tunogya/salescast/pkg/store/milvus"
)

// Options holds search settings on top of the shared config
type Options struct {
	*config.Config

	RunID    string
	Tier     string
	TopK     int
	Segments bool
}

func main() {
	opts := parseFlags()
	if opts.RunID == "" {
		log.Fatalf("Missing -run")
	}
	if opts.MilvusAddr == "" {
		log.Fatalf("Missing Milvus address (-milvus or SALESCAST_MILVUS_ADDR)")
	}

	tiers := model.Tiers
	if opts.Tier != "" {
		t, err := model.ParseTier(opts.Tier)
		if err != nil {
			log.Fatalf("Invalid tier: %v", err)
		}
		tiers = []model.Tier{t}
	}

	ctx := context.Background()

	// Initialize DuckDB
	log.Println("Connecting to DuckDB...")
	duckClient, err := duckdb.NewClient(opts.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()
	runRepo := duckdb.NewRunRepo(duckClient)

	// Initialize Milvus
	log.Println("Connecting to Milvus...")
	milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: opts.MilvusAddr})
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	defer milvusClient.Close()

	if err := milvusClient.LoadCollection(ctx, milvus.DefaultCollectionName); err != nil {
		log.Fatalf("Failed to load collection: %v", err)
	}

	cfg := rerank.DefaultTimeDecayConfig()
	if opts.Segments {
		cfg = rerank.SegmentConfig()
	}
	reranker := rerank.NewReranker(cfg)
	engine := outcome.NewEngine(runRepo)

	for _, t := range tiers {
		row, f, err := runRepo.GetByID(ctx, opts.RunID, t)
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("Run %s has no %s tier", opts.RunID, t)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to load run: %v", err)
		}
		if f == nil {
			log.Printf("Skipping %s tier: forecast failed (%s)", t, row.Error)
			continue
		}

		embedding, ok := milvus.Embed(f.Window)
		if !ok {
			log.Printf("Skipping %s tier: flat lookback window", t)
			continue
		}

		// One extra hit in case the query window itself is indexed
		results, err := milvusClient.Search(ctx, milvus.DefaultCollectionName, embedding, milvus.TierFilter(t), opts.TopK+1)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		results = rerank.ExcludeRun(results, opts.RunID)
		ranked := reranker.TopN(results, time.Now(), opts.TopK)

		printResults(t, f, ranked)

		analogs, err := engine.Calculate(ctx, t, ranked)
		if err != nil {
			log.Fatalf("Failed to load similar runs: %v", err)
		}
		agg := outcome.Aggregate(analogs)
		fmt.Printf("Similar runs forecast: %s\n", agg)
		if agg.SampleCount > 0 {
			fmt.Printf("Query forecast total: %.2f (%+.2f vs weighted mean)\n", f.Total(), f.Total()-agg.MeanTotal)
		}
	}
}

func printResults(t model.Tier, f *model.ForecastResult, ranked []rerank.RankedResult) {
	fmt.Printf("\n=== %s tier: %d similar histories (query total %.2f) ===\n", t.Title(), len(ranked), f.Total())
	fmt.Printf("%-5s %-38s %-12s %-8s %-8s %-8s\n", "Rank", "RunID", "End Date", "Records", "Sim", "Score")
	fmt.Println("------------------------------------------------------------------------------------")

	for i, r := range ranked {
		fmt.Printf("%-5d %-38s %-12s %-8d %-8.4f %-8.4f\n", i+1, r.RunID, r.TEnd.Format("2006-01-02"), r.Records, r.OriginalScore, r.FinalScore)
	}
}

func parseFlags() Options {
	opts := Options{Config: config.Load()}
	cfg := opts.Config

	flag.StringVar(&opts.RunID, "run", "", "Archived run to use as the query")
	flag.StringVar(&opts.Tier, "tier", "", "Restrict to one tier (low, mid, high)")
	flag.IntVar(&opts.TopK, "topk", 10, "Top K results")
	flag.BoolVar(&opts.Segments, "segments", false, "Use segment weights instead of exponential decay")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", cfg.DuckDBPath, "DuckDB path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", cfg.MilvusAddr, "Milvus address")

	flag.Parse()
	return opts
}
