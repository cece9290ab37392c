package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tunogya/salescast/pkg/model"
)

// ErrMissingColumn is returned when the CSV header lacks a required column
var ErrMissingColumn = errors.New("missing required column")

var (
	errBadDate  = errors.New("bad date")
	errBadValue = errors.New("bad value")
)

// Required CSV columns
const (
	ColDate  = "date"
	ColSales = "sales"
	ColPrice = "price"
)

// dateLayouts are tried in order when parsing the date column
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a calendar date in any of the accepted layouts, as UTC
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// CSVProvider implements SalesProvider for CSV files
type CSVProvider struct {
	filePath string
	logger   *log.Logger
	records  []model.SalesRecord
	stats    LoadStats
	loaded   bool
}

// NewCSVProvider creates a new CSV-based sales provider.
// Dropped rows are reported through logger when it is non-nil.
func NewCSVProvider(filePath string, logger *log.Logger) *CSVProvider {
	return &CSVProvider{
		filePath: filePath,
		logger:   logger,
	}
}

// Stats returns the load statistics, loading the file if needed
func (p *CSVProvider) Stats() (LoadStats, error) {
	if err := p.loadIfNeeded(); err != nil {
		return LoadStats{}, err
	}
	return p.stats, nil
}

// loadIfNeeded loads the CSV file if not already loaded
func (p *CSVProvider) loadIfNeeded() error {
	if p.loaded {
		return nil
	}

	file, err := os.Open(p.filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	records, stats, err := ReadRecords(file, p.logger)
	if err != nil {
		return err
	}

	p.records = records
	p.stats = stats
	p.loaded = true
	return nil
}

// FetchRecords retrieves records within the specified date range
func (p *CSVProvider) FetchRecords(ctx context.Context, start, end time.Time) ([]model.SalesRecord, error) {
	if err := p.loadIfNeeded(); err != nil {
		return nil, err
	}
	return filterRange(p.records, start, end), nil
}

// FetchLatestRecords retrieves the most recent N records
func (p *CSVProvider) FetchLatestRecords(ctx context.Context, limit int) ([]model.SalesRecord, error) {
	if err := p.loadIfNeeded(); err != nil {
		return nil, err
	}
	return latest(p.records, limit), nil
}

// ReadRecords parses a sales CSV with a header row.
// Rows with an unparseable date or a missing, malformed or negative sales/price
// value are dropped and counted; extra columns are ignored.
// Records come back in file order, already categorized.
func ReadRecords(r io.Reader, logger *log.Logger) ([]model.SalesRecord, LoadStats, error) {
	var stats LoadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Read header
	header, err := reader.Read()
	if err == io.EOF {
		return nil, stats, fmt.Errorf("empty CSV: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Parse column indices
	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	for _, col := range []string{ColDate, ColSales, ColPrice} {
		if _, ok := colMap[col]; !ok {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var records []model.SalesRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if isBlank(row) {
			continue
		}
		stats.Rows++

		record, err := parseRecord(row, colMap)
		if err != nil {
			line, _ := reader.FieldPos(0)
			if errors.Is(err, errBadDate) {
				stats.DroppedDate++
			} else {
				stats.DroppedValue++
			}
			logf(logger, "line %d: dropped: %v", line, err)
			continue
		}
		records = append(records, record)
	}

	stats.Kept = len(records)
	return records, stats, nil
}

// parseRecord parses a CSV row into a SalesRecord
func parseRecord(row []string, colMap map[string]int) (model.SalesRecord, error) {
	getValue := func(name string) string {
		if idx, ok := colMap[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	date, err := ParseDate(getValue(ColDate))
	if err != nil {
		return model.SalesRecord{}, fmt.Errorf("%w: %v", errBadDate, err)
	}

	sales, err := parseAmount(ColSales, getValue(ColSales))
	if err != nil {
		return model.SalesRecord{}, fmt.Errorf("%w: %v", errBadValue, err)
	}
	price, err := parseAmount(ColPrice, getValue(ColPrice))
	if err != nil {
		return model.SalesRecord{}, fmt.Errorf("%w: %v", errBadValue, err)
	}

	return model.SalesRecord{
		Date:  date,
		Sales: sales,
		Price: price,
	}.Categorized(), nil
}

func parseAmount(name, s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite %s %q", name, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative %s %v", name, v)
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func logf(logger *log.Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
