package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"autosales-dashboard/internal/models"
)

var (
	// ErrMissingSelection means a yearly report was requested without a year.
	ErrMissingSelection = errors.New("no year selected")
	// ErrUnknownReportKind means the report kind is not one of models.ReportKinds.
	ErrUnknownReportKind = errors.New("unknown report kind")
)

// Dimension is a column records can be grouped by.
type Dimension struct {
	Name string
	key  func(models.SalesRecord) models.Key
}

// Measure is a numeric column that can be aggregated.
type Measure struct {
	Name  string
	value func(models.SalesRecord) float64
}

var (
	ByYear = Dimension{
		Name: models.ColYear,
		key:  func(r models.SalesRecord) models.Key { return models.NumberKey(float64(r.Year)) },
	}
	ByMonth = Dimension{
		Name: models.ColMonth,
		key:  func(r models.SalesRecord) models.Key { return models.LabelKey(r.Month) },
	}
	ByVehicleType = Dimension{
		Name: models.ColVehicleType,
		key:  func(r models.SalesRecord) models.Key { return models.LabelKey(r.VehicleType) },
	}
	ByUnemploymentRate = Dimension{
		Name: models.ColUnemploymentRate,
		key:  func(r models.SalesRecord) models.Key { return models.NumberKey(r.UnemploymentRate) },
	}

	AutomobileSales = Measure{
		Name:  models.ColAutomobileSales,
		value: func(r models.SalesRecord) float64 { return r.AutomobileSales },
	}
	AdvertisingExpenditure = Measure{
		Name:  models.ColAdvertisingExpenditure,
		value: func(r models.SalesRecord) float64 { return r.AdvertisingExpenditure },
	}
)

// GroupBy aggregates value over records grouped by dims. Rows come back in
// ascending key order, compared left to right across dims.
func GroupBy(name string, records []models.SalesRecord, dims []Dimension, value Measure, agg models.Aggregation) models.SummaryTable {
	type bucket struct {
		keys  []models.Key
		total float64
		count int
	}

	buckets := make(map[string]*bucket)
	order := make([]*bucket, 0)

	parts := make([]string, len(dims))
	for _, r := range records {
		keys := make([]models.Key, len(dims))
		for i, d := range dims {
			keys[i] = d.key(r)
			parts[i] = keys[i].String()
		}
		id := strings.Join(parts, "\x1f")

		b, ok := buckets[id]
		if !ok {
			b = &bucket{keys: keys}
			buckets[id] = b
			order = append(order, b)
		}
		b.total += value.value(r)
		b.count++
	}

	rows := make([]models.SummaryRow, 0, len(order))
	for _, b := range order {
		v := b.total
		if agg == models.AggMean {
			v = b.total / float64(b.count)
		}
		rows = append(rows, models.SummaryRow{Keys: b.keys, Value: v})
	}
	slices.SortStableFunc(rows, func(a, b models.SummaryRow) int {
		return compareKeys(a.Keys, b.Keys)
	})

	keyColumns := make([]string, len(dims))
	for i, d := range dims {
		keyColumns[i] = d.Name
	}

	return models.SummaryTable{
		Name:        name,
		KeyColumns:  keyColumns,
		ValueColumn: value.Name,
		Aggregation: agg,
		Rows:        rows,
	}
}

func compareKeys(a, b []models.Key) int {
	for i := range min(len(a), len(b)) {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// ComputeSummaries produces the four summary tables behind a report. The
// year is ignored for recession reports. Either every table is returned or
// none is.
func ComputeSummaries(ds *models.Dataset, kind models.ReportKind, year *int) ([]models.SummaryTable, error) {
	switch kind {
	case models.ReportRecessionPeriod:
		return recessionSummaries(ds), nil
	case models.ReportYearly:
		if year == nil {
			return nil, ErrMissingSelection
		}
		return yearlySummaries(ds, *year), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReportKind, kind)
	}
}

func recessionSummaries(ds *models.Dataset) []models.SummaryTable {
	rec := ds.Filter(func(r models.SalesRecord) bool { return r.Recession })

	return []models.SummaryTable{
		GroupBy("recession_avg_sales_by_year", rec,
			[]Dimension{ByYear}, AutomobileSales, models.AggMean),
		GroupBy("recession_avg_sales_by_vehicle_type", rec,
			[]Dimension{ByVehicleType}, AutomobileSales, models.AggMean),
		GroupBy("recession_ad_spend_by_vehicle_type", rec,
			[]Dimension{ByVehicleType}, AdvertisingExpenditure, models.AggSum),
		GroupBy("recession_avg_sales_by_unemployment_and_vehicle_type", rec,
			[]Dimension{ByUnemploymentRate, ByVehicleType}, AutomobileSales, models.AggMean),
	}
}

func yearlySummaries(ds *models.Dataset, year int) []models.SummaryTable {
	all := ds.All()
	inYear := ds.Filter(func(r models.SalesRecord) bool { return r.Year == year })

	return []models.SummaryTable{
		GroupBy("avg_sales_by_year", all,
			[]Dimension{ByYear}, AutomobileSales, models.AggMean),
		GroupBy("total_sales_by_month", all,
			[]Dimension{ByMonth}, AutomobileSales, models.AggSum),
		// Grouping the single-year subset by Year again always yields one
		// point. Kept as the dashboard has always shown it.
		GroupBy("selected_year_avg_sales", inYear,
			[]Dimension{ByYear}, AutomobileSales, models.AggMean),
		GroupBy("selected_year_ad_spend_by_vehicle_type", inYear,
			[]Dimension{ByVehicleType}, AdvertisingExpenditure, models.AggSum),
	}
}
