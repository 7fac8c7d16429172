package handlers

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/services"
	"autosales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// dashboardSignals is what the page sends on every control change. Report and
// Year are the bound dropdown values; State is the last state the server
// applied.
type dashboardSignals struct {
	Report string               `json:"report"`
	Year   json.RawMessage      `json:"year"`
	State  *models.ControlState `json:"state"`
}

type signalPatch struct {
	YearDisabled bool                `json:"yearDisabled"`
	Charts       []models.ChartSpec  `json:"_charts"`
	State        models.ControlState `json:"state"`
}

func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Warn("read dashboard signals", "error", err)
		http.Error(w, "invalid signals", http.StatusBadRequest)
		return
	}

	prev := services.DefaultControlState()
	if signals.State != nil {
		prev = *signals.State
		// The state signal round-trips through the browser.
		if prev.Year != nil && !models.ValidYear(*prev.Year) {
			prev.Year = nil
		}
	}

	ev := models.Event{Type: models.EventType(r.URL.Query().Get("event"))}
	switch ev.Type {
	case models.EventReportSelected:
		ev.Report = models.ReportKind(signals.Report)
	case models.EventYearSelected:
		ev.Year = signalYear(signals.Year)
	}

	next, out := h.dashboard.Transition(r.Context(), prev, ev)

	var fragment strings.Builder
	if err := templates.Output(out).Render(r.Context(), &fragment); err != nil {
		h.logger.Error("render output container", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	charts := out.Charts
	if charts == nil {
		charts = []models.ChartSpec{}
	}
	patch, err := json.Marshal(signalPatch{
		YearDisabled: out.YearDisabled,
		Charts:       charts,
		State:        next,
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)

	// Elements first so the canvases exist when the _charts signal fires.
	if err := sse.PatchElements(fragment.String()); err != nil {
		h.logger.Warn("patch output container", "error", err)
		return
	}
	if err := sse.PatchSignals(patch); err != nil {
		h.logger.Warn("patch dashboard signals", "error", err)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// signalYear decodes the bound year dropdown value. The browser may send a
// number, a numeric string, or an empty value for "no selection".
func signalYear(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	var year int
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return nil
		}
		year = int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		year = n
	default:
		return nil
	}

	if !models.ValidYear(year) {
		return nil
	}
	return &year
}
