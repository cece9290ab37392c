package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tunogya/salescast/pkg/config"
	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/predict"
	"github.com/tunogya/salescast/pkg/queue/nats"
	"github.com/tunogya/salescast/pkg/store/duckdb"
	"github.com/tunogya/salescast/pkg/store/milvus"
)

// Options holds worker settings on top of the shared config
type Options struct {
	*config.Config

	Consumer string
	Archive  bool
}

func main() {
	opts := parseFlags()

	log.Println("Starting Forecast Worker...")
	log.Printf("NATS: %s, models: %s", opts.NATSURL, opts.ModelURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	predictors, err := predict.Load(opts.Predict())
	if err != nil {
		log.Fatalf("Failed to load models: %v", err)
	}

	w := &worker{
		runner:     forecast.NewPipeline(predictors, opts.Forecast()),
		collection: milvus.DefaultCollectionName,
		windowSize: opts.WindowSize,
	}

	if opts.Archive {
		log.Println("Connecting to DuckDB...")
		duckClient, err := duckdb.NewClient(opts.DuckDBPath)
		if err != nil {
			log.Fatalf("Failed to connect to DuckDB: %v", err)
		}
		defer duckClient.Close()

		if err := duckdb.InitializeSchema(ctx, duckClient); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		w.saver = duckdb.NewArchive(duckClient)
		log.Println("DuckDB schema initialized")
	}

	if opts.MilvusAddr != "" {
		log.Println("Connecting to Milvus...")
		milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: opts.MilvusAddr})
		if err != nil {
			log.Fatalf("Failed to connect to Milvus: %v", err)
		}
		defer milvusClient.Close()

		collectionCfg := milvus.DefaultCollectionConfig()
		collectionCfg.Dimension = opts.WindowSize
		if err := milvusClient.EnsureCollection(ctx, collectionCfg); err != nil {
			log.Fatalf("Failed to prepare Milvus collection: %v", err)
		}
		w.index = milvusClient
		w.collection = collectionCfg.Name
		log.Println("Milvus collection ready")
	}

	// Initialize NATS
	log.Println("Connecting to NATS...")
	natsCfg := nats.DefaultConfig()
	natsCfg.URL = opts.NATSURL
	natsClient, err := nats.NewClient(natsCfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsClient.Close()
	w.pub = natsClient

	if err := natsClient.CreateStream(ctx, nats.Subjects); err != nil {
		log.Fatalf("Failed to create stream: %v", err)
	}
	log.Println("NATS stream ready")

	consumer, err := natsClient.Subscribe(ctx, nats.SubjectForecastRequest, opts.Consumer, func(msg jetstream.Msg) error {
		if err := w.handle(ctx, msg.Data()); err != nil {
			log.Printf("Failed to handle forecast request: %v", err)
			return err
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to forecast requests: %v", err)
	}
	defer consumer.Stop()

	log.Println("Forecast Worker started, waiting for messages...")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down Forecast Worker...")
}

func parseFlags() Options {
	opts := Options{Config: config.Load()}
	cfg := opts.Config

	flag.StringVar(&cfg.NATSURL, "nats", cfg.NATSURL, "NATS server URL")
	flag.StringVar(&opts.Consumer, "consumer", "forecast-worker", "Durable consumer name")
	flag.BoolVar(&opts.Archive, "archive", false, "Store every run in DuckDB")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", cfg.DuckDBPath, "DuckDB file path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", cfg.MilvusAddr, "Milvus server address (empty disables indexing)")
	flag.StringVar(&cfg.ModelURL, "model-url", cfg.ModelURL, "Model server base URL")

	flag.Parse()
	return opts
}
