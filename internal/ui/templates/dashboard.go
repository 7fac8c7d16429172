package templates

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"autosales-dashboard/internal/models"
)

// PageSignals is the datastar signal set the page starts with. State mirrors
// the last control state the server applied. Charts is underscore-prefixed so
// datastar keeps it out of backend requests.
type PageSignals struct {
	Report       models.ReportKind   `json:"report"`
	Year         *int                `json:"year"`
	YearDisabled bool                `json:"yearDisabled"`
	Charts       []models.ChartSpec  `json:"_charts"`
	State        models.ControlState `json:"state"`
}

// NewPageSignals builds the signal payload for state and its rendered output.
func NewPageSignals(state models.ControlState, out models.RenderOutput) PageSignals {
	charts := out.Charts
	if charts == nil {
		charts = []models.ChartSpec{}
	}
	return PageSignals{
		Report:       state.Report,
		Year:         state.Year,
		YearDisabled: out.YearDisabled,
		Charts:       charts,
		State:        state,
	}
}

// Dashboard renders the whole page for state.
func Dashboard(state models.ControlState, out models.RenderOutput) (templ.Component, error) {
	signals, err := json.Marshal(NewPageSignals(state, out))
	if err != nil {
		return nil, fmt.Errorf("marshal page signals: %w", err)
	}
	return page(state, out, string(signals)), nil
}

func isSelectedYear(state models.ControlState, year int) bool {
	return state.Year != nil && *state.Year == year
}

func chartID(i int) string {
	return "chart-" + strconv.Itoa(i)
}
