package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type product struct {
	name  string
	price float64
	base  float64 // mean daily units
}

// one or two products per price tier
var products = []product{
	{"Chromebook", 4_500_000, 6},
	{"Office 14", 7_999_000, 4},
	{"Ultrabook 13", 12_500_000, 3},
	{"Creator 15", 16_000_000, 2},
	{"Gaming 17", 24_000_000, 1},
}

func main() {
	days := flag.Int("days", 365, "Number of days to generate")
	start := flag.String("start", "2023-01-01", "First date (YYYY-MM-DD)")
	seed := flag.Int64("seed", 1, "Random seed")
	output := flag.String("output", "data/sales.csv", "Output CSV file path")
	flag.Parse()

	first, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"date", "product", "sales", "price"}); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	rows := 0
	for d := 0; d < *days; d++ {
		date := first.AddDate(0, 0, d)
		// weekend bump plus a slow yearly cycle
		season := 1 + 0.3*math.Sin(2*math.Pi*float64(d)/365)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			season *= 1.4
		}

		for _, p := range products {
			units := math.Round(math.Max(0, p.base*season+rng.NormFloat64()))
			row := []string{
				date.Format("2006-01-02"),
				p.name,
				strconv.FormatFloat(units, 'f', 0, 64),
				strconv.FormatFloat(p.price, 'f', 0, 64),
			}
			if err := writer.Write(row); err != nil {
				log.Fatalf("Failed to write row: %v", err)
			}
			rows++
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Fatalf("Failed to flush CSV: %v", err)
	}

	fmt.Printf("Wrote %d rows to %s\n", rows, *output)
}
