package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosales-dashboard/internal/models"
)

func TestYearSelectorDisabled(t *testing.T) {
	assert.True(t, YearSelectorDisabled(models.ReportRecessionPeriod))
	assert.True(t, YearSelectorDisabled("Recession Period Statistics"))
	assert.False(t, YearSelectorDisabled(models.ReportYearly))
	assert.False(t, YearSelectorDisabled("Yearly Statistics"))
	assert.False(t, YearSelectorDisabled("bogus"))
}

func TestDefaultControlState(t *testing.T) {
	state := DefaultControlState()
	assert.Equal(t, models.ReportYearly, state.Report)
	require.NotNil(t, state.Year)
	assert.Equal(t, 1980, *state.Year)
}

func TestTransition(t *testing.T) {
	ds := fixtureDataset()

	tests := []struct {
		name         string
		state        models.ControlState
		event        models.Event
		wantState    models.ControlState
		wantDisabled bool
		wantCharts   int
		wantPrompt   string
	}{
		{
			name:       "switch to recession",
			state:      DefaultControlState(),
			event:      models.Event{Type: models.EventReportSelected, Report: models.ReportRecessionPeriod},
			wantState:  models.ControlState{Report: models.ReportRecessionPeriod, Year: intPtr(1980)},
			wantCharts: 4, wantDisabled: true,
		},
		{
			name:       "pick a year",
			state:      DefaultControlState(),
			event:      models.Event{Type: models.EventYearSelected, Year: intPtr(1981)},
			wantState:  models.ControlState{Report: models.ReportYearly, Year: intPtr(1981)},
			wantCharts: 4,
		},
		{
			name:       "clear the year",
			state:      DefaultControlState(),
			event:      models.Event{Type: models.EventYearSelected},
			wantState:  models.ControlState{Report: models.ReportYearly},
			wantPrompt: PromptSelectYear,
		},
		{
			name:       "clear the report",
			state:      DefaultControlState(),
			event:      models.Event{Type: models.EventReportSelected, Report: ""},
			wantState:  models.ControlState{Report: "", Year: intPtr(1980)},
			wantPrompt: PromptSelectReport,
		},
		{
			name:         "recession without year still renders",
			state:        models.ControlState{Report: models.ReportYearly},
			event:        models.Event{Type: models.EventReportSelected, Report: models.ReportRecessionPeriod},
			wantState:    models.ControlState{Report: models.ReportRecessionPeriod},
			wantCharts:   4,
			wantDisabled: true,
		},
		{
			name:       "unknown event keeps state",
			state:      DefaultControlState(),
			event:      models.Event{Type: "resize"},
			wantState:  DefaultControlState(),
			wantCharts: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, out := Transition(ds, tt.state, tt.event)

			assert.Equal(t, tt.wantState, next)
			assert.Equal(t, tt.wantDisabled, out.YearDisabled)
			assert.Len(t, out.Charts, tt.wantCharts)
			assert.Equal(t, tt.wantPrompt, out.Prompt)
		})
	}
}

func TestTransition_DoesNotAliasEventYear(t *testing.T) {
	year := 1981
	next, _ := Transition(fixtureDataset(), DefaultControlState(), models.Event{Type: models.EventYearSelected, Year: &year})
	year = 1999

	require.NotNil(t, next.Year)
	assert.Equal(t, 1981, *next.Year)
}

func TestDashboard_TransitionAndStats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d := NewDashboard(fixtureDataset(), logger)

	next, out := d.Transition(context.Background(), DefaultControlState(),
		models.Event{Type: models.EventReportSelected, Report: models.ReportRecessionPeriod})
	assert.Equal(t, models.ReportRecessionPeriod, next.Report)
	assert.True(t, out.YearDisabled)
	assert.Contains(t, buf.String(), "dashboard.transition")

	_, err := d.Summaries(context.Background(), "bogus", nil)
	assert.ErrorIs(t, err, ErrUnknownReportKind)
	assert.Contains(t, buf.String(), "status=ERROR")

	stats := d.Stats()
	assert.Equal(t, 6, stats["record_count"])
	assert.Equal(t, 1980, stats["first_year"])
	assert.Equal(t, 1982, stats["last_year"])
	assert.Equal(t, "fixture", stats["source"])
}
