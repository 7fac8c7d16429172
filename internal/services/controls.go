package services

import (
	"errors"

	"autosales-dashboard/internal/models"
)

const (
	PromptSelectYear   = "Please select a year."
	PromptSelectReport = "Please select a report type."
)

// YearSelectorDisabled reports whether the year dropdown is meaningless for
// kind.
func YearSelectorDisabled(kind models.ReportKind) bool {
	return kind == models.ReportRecessionPeriod
}

func DefaultControlState() models.ControlState {
	year := models.DefaultYear
	return models.ControlState{
		Report: models.ReportYearly,
		Year:   &year,
	}
}

// Transition applies ev to state and renders the result. Unknown event types
// leave the state untouched.
func Transition(ds *models.Dataset, state models.ControlState, ev models.Event) (models.ControlState, models.RenderOutput) {
	next := state
	switch ev.Type {
	case models.EventReportSelected:
		next.Report = ev.Report
	case models.EventYearSelected:
		next.Year = nil
		if ev.Year != nil {
			year := *ev.Year
			next.Year = &year
		}
	}
	return next, Render(ds, next)
}

// Render computes what the page shows for state. Enablement is settled before
// any aggregation runs.
func Render(ds *models.Dataset, state models.ControlState) models.RenderOutput {
	out := models.RenderOutput{
		YearDisabled: YearSelectorDisabled(state.Report),
	}

	summaries, err := ComputeSummaries(ds, state.Report, state.Year)
	switch {
	case errors.Is(err, ErrMissingSelection):
		out.Prompt = PromptSelectYear
	case err != nil:
		out.Prompt = PromptSelectReport
	default:
		out.Charts = BuildCharts(state.Report, state.Year, summaries)
	}
	return out
}
