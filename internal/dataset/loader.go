package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"autosales-dashboard/internal/models"
)

const (
	batchSize  = 1000
	maxWorkers = 8
)

var (
	ErrEmptyDataset  = errors.New("dataset has no rows")
	ErrMissingColumn = errors.New("missing required column")
)

type Options struct {
	FetchTimeout time.Duration
	CacheDir     string
	CacheMaxAge  time.Duration
}

type Loader struct {
	client *resty.Client
	opts   Options
	logger *slog.Logger
}

func NewLoader(opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(opts.FetchTimeout).
		SetRetryCount(0).
		SetHeader("Accept", "text/csv, text/plain, */*")

	return &Loader{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// Load reads the CSV at source (an http(s) URL or a file path) and returns
// the parsed table. Any failure is a *LoadError.
func (l *Loader) Load(ctx context.Context, source string) (*models.Dataset, error) {
	if ds, ok := l.loadSnapshot(source); ok {
		l.logger.Info("dataset loaded from snapshot", "source", source, "records", ds.Len())
		return ds, nil
	}

	start := time.Now()
	raw, err := l.fetch(ctx, source)
	if err != nil {
		return nil, loadErr(source, err)
	}

	ds, err := Parse(ctx, source, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	if err := l.saveSnapshot(ds); err != nil {
		l.logger.Warn("failed to save dataset snapshot", "source", source, "error", err)
	}

	l.logger.Info("dataset parsed",
		"source", source,
		"records", ds.Len(),
		"bytes", len(raw),
		"duration", time.Since(start),
	)
	return ds, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if !isRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return data, nil
	}

	resp, err := l.client.R().SetContext(ctx).Get(source)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Parse decodes CSV content into a Dataset. Rows keep their file order.
func Parse(ctx context.Context, source string, r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, loadErr(source, ErrEmptyDataset)
	}
	if err != nil {
		return nil, loadErr(source, fmt.Errorf("read header: %w", err))
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, loadErr(source, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, loadErr(source, fmt.Errorf("read rows: %w", err))
	}
	if len(rows) == 0 {
		return nil, loadErr(source, ErrEmptyDataset)
	}

	records := make([]models.SalesRecord, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				rec, err := parseRecord(rows[i], idx)
				if err != nil {
					// header is line 1
					return fmt.Errorf("line %d: %w", i+2, err)
				}
				records[i] = rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, loadErr(source, err)
	}

	return models.NewDataset(source, records), nil
}

type columns map[string]int

func columnIndex(header []string) (columns, error) {
	idx := make(columns, len(header))
	for i, name := range header {
		// a UTF-8 BOM sticks to the first header cell
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		idx[name] = i
	}

	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRecord(row []string, idx columns) (models.SalesRecord, error) {
	cell := func(col string) string {
		return strings.TrimSpace(row[idx[col]])
	}

	year, err := strconv.Atoi(cell(models.ColYear))
	if err != nil {
		return models.SalesRecord{}, cellErr(models.ColYear, err)
	}

	sales, err := parseFloat(cell(models.ColAutomobileSales))
	if err != nil {
		return models.SalesRecord{}, cellErr(models.ColAutomobileSales, err)
	}

	adSpend, err := parseFloat(cell(models.ColAdvertisingExpenditure))
	if err != nil {
		return models.SalesRecord{}, cellErr(models.ColAdvertisingExpenditure, err)
	}

	unemployment, err := parseFloat(cell(models.ColUnemploymentRate))
	if err != nil {
		return models.SalesRecord{}, cellErr(models.ColUnemploymentRate, err)
	}

	recession, err := strconv.ParseBool(cell(models.ColRecession))
	if err != nil {
		return models.SalesRecord{}, cellErr(models.ColRecession, err)
	}

	return models.SalesRecord{
		Year:                   year,
		Month:                  cell(models.ColMonth),
		VehicleType:            cell(models.ColVehicleType),
		AutomobileSales:        sales,
		AdvertisingExpenditure: adSpend,
		UnemploymentRate:       unemployment,
		Recession:              recession,
	}, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func cellErr(col string, err error) error {
	return fmt.Errorf("column %s: %w", col, err)
}
