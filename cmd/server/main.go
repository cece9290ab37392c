package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tunogya/salescast/pkg/api"
	"github.com/tunogya/salescast/pkg/config"
	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/plot"
	"github.com/tunogya/salescast/pkg/predict"
	"github.com/tunogya/salescast/pkg/store/duckdb"
)

// Options holds server settings on top of the shared config
type Options struct {
	*config.Config

	Archive bool
	Weeks   int
}

func main() {
	opts := parseFlags()

	predictors, err := predict.Load(opts.Predict())
	if err != nil {
		log.Fatalf("Failed to load models: %v", err)
	}
	pipeline := forecast.NewPipeline(predictors, opts.Forecast())

	handlerOpts := api.Options{
		WindowSize: opts.WindowSize,
		Weeks:      opts.Weeks,
		Logger:     log.Default(),
	}

	if opts.Archive {
		log.Println("Connecting to DuckDB...")
		duckClient, err := duckdb.NewClient(opts.DuckDBPath)
		if err != nil {
			log.Fatalf("Failed to connect to DuckDB: %v", err)
		}
		defer duckClient.Close()

		if err := duckdb.InitializeSchema(context.Background(), duckClient); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		handlerOpts.Saver = duckdb.NewArchive(duckClient)
		log.Printf("Archiving runs in %s", opts.DuckDBPath)
	}

	app := api.NewApp(api.NewHandler(pipeline, handlerOpts))

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("serving http://%s", opts.HTTPAddr)
	if err := app.Listen(opts.HTTPAddr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func parseFlags() Options {
	opts := Options{Config: config.Load()}
	cfg := opts.Config

	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "Address to serve")
	flag.BoolVar(&opts.Archive, "archive", false, "Store every run in DuckDB")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", cfg.DuckDBPath, "DuckDB path")
	flag.StringVar(&cfg.ModelURL, "model-url", cfg.ModelURL, "Model server base URL")
	flag.IntVar(&cfg.Parallelism, "parallelism", cfg.Parallelism, "Tiers forecast concurrently")
	flag.IntVar(&opts.Weeks, "weeks", plot.DefaultWeeks, "Weeks of history per chart series")

	flag.Parse()
	return opts
}
