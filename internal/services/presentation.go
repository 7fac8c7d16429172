package services

import (
	"maps"
	"strconv"
	"strings"

	"autosales-dashboard/internal/models"
)

// ChartLayout is the static part of a chart description.
type ChartLayout struct {
	Kind   models.ChartKind
	Title  string
	X      string
	Y      string
	Color  string
	Hole   float64
	Labels map[string]string
}

const yearPlaceholder = "{year}"

var chartLayouts = map[models.ReportKind][]ChartLayout{
	models.ReportRecessionPeriod: {
		{
			Kind:  models.ChartLine,
			Title: "Average Automobile Sales fluctuation over Recession Period",
			X:     models.ColYear,
			Y:     models.ColAutomobileSales,
		},
		{
			Kind:  models.ChartBar,
			Title: "Average Number of Vehicles Sold By Vehicle Type",
			X:     models.ColVehicleType,
			Y:     models.ColAutomobileSales,
		},
		{
			Kind:  models.ChartPie,
			Title: "Total Advertising Expenditure Share by Vehicle Type",
			X:     models.ColVehicleType,
			Y:     models.ColAdvertisingExpenditure,
			Hole:  0.3,
		},
		{
			Kind:  models.ChartBar,
			Title: "Effect of Unemployment Rate on Vehicle Type and Sales",
			X:     models.ColUnemploymentRate,
			Y:     models.ColAutomobileSales,
			Color: models.ColVehicleType,
			Labels: map[string]string{
				models.ColUnemploymentRate: "Unemployment Rate",
				models.ColAutomobileSales:  "Average Automobile Sales",
			},
		},
	},
	models.ReportYearly: {
		{
			Kind:  models.ChartLine,
			Title: "Yearly Automobile Sales",
			X:     models.ColYear,
			Y:     models.ColAutomobileSales,
		},
		{
			Kind:  models.ChartLine,
			Title: "Total Monthly Automobile Sales",
			X:     models.ColMonth,
			Y:     models.ColAutomobileSales,
		},
		{
			Kind:  models.ChartBar,
			Title: "Average Vehicles Sold by Vehicle Type in the year " + yearPlaceholder,
			X:     models.ColYear,
			Y:     models.ColAutomobileSales,
		},
		{
			Kind:  models.ChartPie,
			Title: "Total Advertisment Expenditure for Each Vehicle",
			X:     models.ColVehicleType,
			Y:     models.ColAdvertisingExpenditure,
		},
	},
}

// ChartFor looks up the layout of the index-th summary of a report.
func ChartFor(kind models.ReportKind, index int) (ChartLayout, bool) {
	layouts, ok := chartLayouts[kind]
	if !ok || index < 0 || index >= len(layouts) {
		return ChartLayout{}, false
	}
	return layouts[index], true
}

// BuildCharts pairs each summary with its layout. Summaries without a layout
// are dropped.
func BuildCharts(kind models.ReportKind, year *int, summaries []models.SummaryTable) []models.ChartSpec {
	yearText := ""
	if year != nil {
		yearText = strconv.Itoa(*year)
	}

	charts := make([]models.ChartSpec, 0, len(summaries))
	for i, summary := range summaries {
		layout, ok := ChartFor(kind, i)
		if !ok {
			continue
		}
		charts = append(charts, models.ChartSpec{
			Kind:   layout.Kind,
			Title:  strings.ReplaceAll(layout.Title, yearPlaceholder, yearText),
			X:      layout.X,
			Y:      layout.Y,
			Color:  layout.Color,
			Hole:   layout.Hole,
			Labels: maps.Clone(layout.Labels),
			Data:   summary,
		})
	}
	return charts
}
