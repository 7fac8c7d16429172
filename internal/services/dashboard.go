package services

import (
	"context"
	"log/slog"
	"strconv"

	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/observability"
)

// Dashboard serves every interaction from one immutable dataset.
type Dashboard struct {
	data   *models.Dataset
	logger *slog.Logger
}

func NewDashboard(data *models.Dataset, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		data:   data,
		logger: logger,
	}
}

func (d *Dashboard) Dataset() *models.Dataset {
	return d.data
}

func (d *Dashboard) Summaries(ctx context.Context, kind models.ReportKind, year *int) ([]models.SummaryTable, error) {
	_, span := observability.StartSpan(ctx, "dashboard.summaries")
	span.SetTag("report", string(kind))
	span.SetTag("year", yearTag(year))

	summaries, err := ComputeSummaries(d.data, kind, year)
	if err != nil {
		span.SetError(err)
	}
	span.Finish()
	d.logger.Debug("summaries computed", "span", span, "tables", len(summaries))

	return summaries, err
}

func (d *Dashboard) Transition(ctx context.Context, state models.ControlState, ev models.Event) (models.ControlState, models.RenderOutput) {
	_, span := observability.StartSpan(ctx, "dashboard.transition")
	span.SetTag("event", string(ev.Type))

	next, out := Transition(d.data, state, ev)

	span.SetTag("report", string(next.Report))
	span.SetTag("year", yearTag(next.Year))
	span.SetTag("charts", strconv.Itoa(len(out.Charts)))
	span.Finish()
	d.logger.Debug("control state transition", "span", span, "prompt", out.Prompt)

	return next, out
}

func (d *Dashboard) Render(state models.ControlState) models.RenderOutput {
	return Render(d.data, state)
}

func (d *Dashboard) Stats() map[string]any {
	stats := map[string]any{
		"record_count": d.data.Len(),
		"source":       d.data.Source(),
		"loaded_at":    d.data.LoadedAt(),
	}
	if first, last, ok := d.data.YearRange(); ok {
		stats["first_year"] = first
		stats["last_year"] = last
	}
	return stats
}

func yearTag(year *int) string {
	if year == nil {
		return "none"
	}
	return strconv.Itoa(*year)
}
