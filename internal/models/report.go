package models

import (
	"cmp"
	"encoding/json"
	"strconv"
)

type ReportKind string

const (
	ReportYearly          ReportKind = "Yearly Statistics"
	ReportRecessionPeriod ReportKind = "Recession Period Statistics"
)

// ReportKinds is the dropdown option order.
var ReportKinds = []ReportKind{ReportYearly, ReportRecessionPeriod}

const (
	MinYear     = 1980
	MaxYear     = 2023
	DefaultYear = MinYear
)

// ValidYear reports whether year is one of the selectable years.
func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// YearOptions returns every selectable year, ascending.
func YearOptions() []int {
	years := make([]int, 0, MaxYear-MinYear+1)
	for y := MinYear; y <= MaxYear; y++ {
		years = append(years, y)
	}
	return years
}

// ControlState is the pair of user inputs driving the dashboard. A nil Year
// means the year dropdown was cleared.
type ControlState struct {
	Report ReportKind `json:"report"`
	Year   *int       `json:"year"`
}

type EventType string

const (
	EventReportSelected EventType = "report-selected"
	EventYearSelected   EventType = "year-selected"
)

type Event struct {
	Type   EventType  `json:"type"`
	Report ReportKind `json:"report,omitempty"`
	Year   *int       `json:"year,omitempty"`
}

type Aggregation string

const (
	AggMean Aggregation = "mean"
	AggSum  Aggregation = "sum"
)

// Key is one grouping-key value: a number for numeric columns, a label
// otherwise.
type Key struct {
	Num     float64
	Label   string
	Numeric bool
}

func NumberKey(v float64) Key { return Key{Num: v, Numeric: true} }
func LabelKey(s string) Key    { return Key{Label: s} }

func (k Key) String() string {
	if k.Numeric {
		return strconv.FormatFloat(k.Num, 'g', -1, 64)
	}
	return k.Label
}

// Compare orders numbers before labels, numbers numerically and labels
// lexicographically.
func (k Key) Compare(o Key) int {
	switch {
	case k.Numeric && o.Numeric:
		return cmp.Compare(k.Num, o.Num)
	case k.Numeric:
		return -1
	case o.Numeric:
		return 1
	default:
		return cmp.Compare(k.Label, o.Label)
	}
}

func (k Key) MarshalJSON() ([]byte, error) {
	if k.Numeric {
		return json.Marshal(k.Num)
	}
	return json.Marshal(k.Label)
}

func (k *Key) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*k = NumberKey(num)
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	*k = LabelKey(label)
	return nil
}

type SummaryRow struct {
	Keys  []Key   `json:"keys"`
	Value float64 `json:"value"`
}

type SummaryTable struct {
	Name        string       `json:"name"`
	KeyColumns  []string     `json:"key_columns"`
	ValueColumn string       `json:"value_column"`
	Aggregation Aggregation  `json:"aggregation"`
	Rows        []SummaryRow `json:"rows"`
}

// Total sums Value across every row.
func (t SummaryTable) Total() float64 {
	var total float64
	for _, r := range t.Rows {
		total += r.Value
	}
	return total
}

type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
)

type ChartSpec struct {
	Kind   ChartKind         `json:"kind"`
	Title  string            `json:"title"`
	X      string            `json:"x"`
	Y      string            `json:"y"`
	Color  string            `json:"color,omitempty"`
	Hole   float64           `json:"hole,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
	Data   SummaryTable      `json:"data"`
}

type RenderOutput struct {
	YearDisabled bool        `json:"year_disabled"`
	Charts       []ChartSpec `json:"charts,omitempty"`
	Prompt       string      `json:"prompt,omitempty"`
}
