package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"autosales-dashboard/internal/errors"
	"autosales-dashboard/internal/models"
	"autosales-dashboard/internal/observability"
	"autosales-dashboard/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

type summariesResponse struct {
	State        models.ControlState   `json:"state"`
	YearDisabled bool                  `json:"year_disabled"`
	Summaries    []models.SummaryTable `json:"summaries"`
	Charts       []models.ChartSpec    `json:"charts"`
}

func (h *APIHandlers) HandleSummaries(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	year, err := parseYearParam(r.URL.Query().Get("year"))
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	state := models.ControlState{
		Report: models.ReportKind(r.URL.Query().Get("report")),
		Year:   year,
	}

	summaries, err := h.dashboard.Summaries(r.Context(), state.Report, state.Year)
	if err != nil {
		errors.WriteError(w, h.logger, summaryError(err), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, summariesResponse{
		State:        state,
		YearDisabled: services.YearSelectorDisabled(state.Report),
		Summaries:    summaries,
		Charts:       services.BuildCharts(state.Report, state.Year, summaries),
	}, map[string]string{"Cache-Control": cacheControl})
}

type controlsResponse struct {
	Report       models.ReportKind   `json:"report"`
	YearDisabled bool                `json:"year_disabled"`
	Reports      []models.ReportKind `json:"reports"`
	Years        []int               `json:"years"`
	Default      models.ControlState `json:"default"`
}

func (h *APIHandlers) HandleControls(w http.ResponseWriter, r *http.Request) {
	report := models.ReportKind(r.URL.Query().Get("report"))

	errors.WriteSuccessWithHeaders(w, controlsResponse{
		Report:       report,
		YearDisabled: services.YearSelectorDisabled(report),
		Reports:      models.ReportKinds,
		Years:        models.YearOptions(),
		Default:      services.DefaultControlState(),
	}, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"records":   h.dashboard.Dataset().Len(),
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}

// parseYearParam accepts an empty value as "no year". Anything else must be a
// selectable year.
func parseYearParam(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.ValidationWrap(err, "year must be an integer")
	}
	if !models.ValidYear(year) {
		return nil, errors.Validation("year must be between " +
			strconv.Itoa(models.MinYear) + " and " + strconv.Itoa(models.MaxYear))
	}
	return &year, nil
}

func summaryError(err error) error {
	switch {
	case stderrors.Is(err, services.ErrMissingSelection):
		return errors.Wrap(err, errors.CodeMissingSelection, services.PromptSelectYear)
	case stderrors.Is(err, services.ErrUnknownReportKind):
		return errors.Wrap(err, errors.CodeUnknownReportKind, services.PromptSelectReport)
	default:
		return errors.Wrap(err, errors.CodeInternal, "failed to compute summaries")
	}
}
