package models

import "time"

// Column names as they appear in the source CSV header.
const (
	ColYear                   = "Year"
	ColMonth                  = "Month"
	ColVehicleType            = "Vehicle_Type"
	ColAutomobileSales        = "Automobile_Sales"
	ColAdvertisingExpenditure = "Advertising_Expenditure"
	ColUnemploymentRate       = "unemployment_rate"
	ColRecession              = "Recession"
)

// RequiredColumns lists every header the loader insists on.
var RequiredColumns = []string{
	ColYear,
	ColMonth,
	ColVehicleType,
	ColAutomobileSales,
	ColAdvertisingExpenditure,
	ColUnemploymentRate,
	ColRecession,
}

type SalesRecord struct {
	Year                   int
	Month                  string
	VehicleType            string
	AutomobileSales        float64
	AdvertisingExpenditure float64
	UnemploymentRate       float64
	Recession              bool
}

// Dataset is the table loaded at startup. It is never mutated after
// NewDataset returns, so a single pointer is shared by every request.
type Dataset struct {
	records  []SalesRecord
	source   string
	loadedAt time.Time
}

func NewDataset(source string, records []SalesRecord) *Dataset {
	owned := make([]SalesRecord, len(records))
	copy(owned, records)
	return &Dataset{
		records:  owned,
		source:   source,
		loadedAt: time.Now(),
	}
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Each visits records in load order until fn returns false.
func (d *Dataset) Each(fn func(SalesRecord) bool) {
	if d == nil {
		return
	}
	for _, r := range d.records {
		if !fn(r) {
			return
		}
	}
}

// Filter returns the records matching keep, in load order.
func (d *Dataset) Filter(keep func(SalesRecord) bool) []SalesRecord {
	var out []SalesRecord
	d.Each(func(r SalesRecord) bool {
		if keep(r) {
			out = append(out, r)
		}
		return true
	})
	return out
}

// All returns a copy of every record.
func (d *Dataset) All() []SalesRecord {
	if d == nil {
		return nil
	}
	out := make([]SalesRecord, len(d.records))
	copy(out, d.records)
	return out
}

func (d *Dataset) Source() string {
	if d == nil {
		return ""
	}
	return d.source
}

func (d *Dataset) LoadedAt() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.loadedAt
}

// YearRange reports the smallest and largest Year present.
func (d *Dataset) YearRange() (minYear, maxYear int, ok bool) {
	d.Each(func(r SalesRecord) bool {
		if !ok {
			minYear, maxYear, ok = r.Year, r.Year, true
			return true
		}
		minYear = min(minYear, r.Year)
		maxYear = max(maxYear, r.Year)
		return true
	})
	return minYear, maxYear, ok
}
