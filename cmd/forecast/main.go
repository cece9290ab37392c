package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tunogya/salescast/pkg/config"
	"github.com/tunogya/salescast/pkg/data"
	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/plot"
	"github.com/tunogya/salescast/pkg/predict"
	"github.com/tunogya/salescast/pkg/report"
	"github.com/tunogya/salescast/pkg/store/duckdb"
	"github.com/tunogya/salescast/pkg/store/milvus"
)

// Options holds one-shot forecast settings on top of the shared config
type Options struct {
	*config.Config

	CSVPath  string
	XLSXPath string
	Archive  bool
	Weeks    int
}

func main() {
	opts := parseFlags()
	if opts.CSVPath == "" {
		log.Fatalf("Missing -csv")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load data
	log.Printf("Loading sales from %s...", opts.CSVPath)
	provider := data.NewCSVProvider(opts.CSVPath, log.Default())
	records, err := provider.FetchRecords(ctx, time.Time{}, time.Time{})
	if err != nil {
		log.Fatalf("Failed to load sales: %v", err)
	}
	stats, _ := provider.Stats()
	log.Printf("Loaded %d records (%d rows, %d dropped)", stats.Kept, stats.Rows, stats.Dropped())

	// Load models
	predictors, err := predict.Load(opts.Predict())
	if err != nil {
		log.Fatalf("Failed to load models: %v", err)
	}

	fc := opts.Forecast()
	log.Printf("Forecasting: window=%d, horizon=%d, parallelism=%d", fc.WindowSize, fc.Horizon, fc.Parallelism)
	pipeline := forecast.NewPipeline(predictors, fc)
	run, err := pipeline.Run(ctx, records)
	if err != nil {
		log.Fatalf("Forecast interrupted: %v", err)
	}
	log.Printf("Run %s finished, %d tier(s) failed", run.ID, len(run.Failed()))

	printRun(run)

	if opts.XLSXPath != "" {
		if err := writeReport(opts.XLSXPath, run, opts.Weeks); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Report written to %s", opts.XLSXPath)
	}

	if opts.Archive {
		if err := archiveRun(ctx, opts.DuckDBPath, run, fc.WindowSize); err != nil {
			log.Fatalf("Failed to archive run: %v", err)
		}
		log.Printf("Run archived in %s", opts.DuckDBPath)
	}

	if opts.MilvusAddr != "" {
		n, err := indexRun(ctx, opts.MilvusAddr, run, fc.WindowSize)
		if err != nil {
			log.Fatalf("Failed to index windows: %v", err)
		}
		log.Printf("Indexed %d window(s) in Milvus", n)
	}
}

func printRun(run *forecast.Run) {
	header := []string{fmt.Sprintf("%-6s %-8s", "Tier", "Records")}
	for i := 1; i <= model.DefaultHorizon; i++ {
		header = append(header, fmt.Sprintf("%10s", fmt.Sprintf("Step %d", i)))
	}
	fmt.Println(strings.Join(header, " "))
	fmt.Println(strings.Repeat("-", len(strings.Join(header, " "))))

	for _, t := range model.Tiers {
		res := run.Result(t)
		line := fmt.Sprintf("%-6s %-8d", t.Title(), len(res.Records))
		if !res.OK() {
			fmt.Printf("%s error: %v\n", line, res.Err)
			continue
		}
		for _, p := range res.Forecast.Predictions {
			line += fmt.Sprintf(" %10.2f", p)
		}
		fmt.Println(line)
	}
}

func writeReport(path string, run *forecast.Run, weeks int) error {
	wb, err := report.NewWorkbook()
	if err != nil {
		return err
	}
	defer wb.Close()

	for _, t := range model.Tiers {
		res := run.Result(t)
		if err := wb.Summarize(t, len(res.Records), res.Forecast, res.Err); err != nil {
			return err
		}
		if !res.OK() {
			if _, err := wb.Failed(nil, t, res.Err); err != nil {
				return err
			}
			continue
		}

		points, err := plot.Prepare(res.Records, res.Forecast.Predictions, weeks)
		if errors.Is(err, plot.ErrNoHistory) {
			if _, err := wb.Failed(nil, t, err); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if _, err := wb.Render(nil, t, points); err != nil {
			return err
		}
	}

	return wb.SaveAs(path)
}

func archiveRun(ctx context.Context, path string, run *forecast.Run, windowSize int) error {
	client, err := duckdb.NewClient(path)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := duckdb.InitializeSchema(ctx, client); err != nil {
		return err
	}
	return duckdb.NewArchive(client).SaveRun(ctx, run, windowSize)
}

func indexRun(ctx context.Context, addr string, run *forecast.Run, windowSize int) (int, error) {
	client, err := milvus.NewClient(ctx, milvus.Config{Address: addr})
	if err != nil {
		return 0, err
	}
	defer client.Close()

	cfg := milvus.DefaultCollectionConfig()
	cfg.Dimension = windowSize
	if err := client.EnsureCollection(ctx, cfg); err != nil {
		return 0, err
	}

	windows := milvus.WindowsFromRun(run)
	if err := client.InsertBatch(ctx, cfg.Name, windows); err != nil {
		return 0, err
	}
	if err := client.Flush(ctx, cfg.Name); err != nil {
		return 0, err
	}
	return len(windows), nil
}

func parseFlags() Options {
	opts := Options{Config: config.Load()}
	cfg := opts.Config

	flag.StringVar(&opts.CSVPath, "csv", "", "Sales CSV with date, sales and price columns")
	flag.StringVar(&opts.XLSXPath, "xlsx", "", "Write charts to this workbook")
	flag.BoolVar(&opts.Archive, "archive", false, "Store the run in DuckDB")
	flag.IntVar(&opts.Weeks, "weeks", plot.DefaultWeeks, "Weeks of history per chart")

	flag.IntVar(&cfg.WindowSize, "window", cfg.WindowSize, "Lookback window size (weeks)")
	flag.IntVar(&cfg.Horizon, "horizon", cfg.Horizon, "Forecast steps")
	flag.IntVar(&cfg.Parallelism, "parallelism", cfg.Parallelism, "Tiers forecast concurrently")
	flag.StringVar(&cfg.ModelURL, "model-url", cfg.ModelURL, "Model server base URL")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", cfg.DuckDBPath, "DuckDB path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", cfg.MilvusAddr, "Milvus address (empty disables indexing)")
	for _, t := range model.Tiers {
		t := t // per-iteration copy; go 1.21 loop semantics
		m := cfg.Models[t]
		flag.Func("model-"+string(t), fmt.Sprintf("Model name or .json weights for the %s tier (default %q)", t, m), func(v string) error {
			cfg.Models[t] = v
			return nil
		})
	}

	flag.Parse()
	return opts
}
