package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"autosales-dashboard/internal/services"
	"autosales-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewPageHandlers(dashboard *services.Dashboard, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleDashboard serves the page in its default control state.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	state := services.DefaultControlState()
	page, err := templates.Dashboard(state, h.dashboard.Render(state))
	if err != nil {
		h.logger.Error("build dashboard page", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := page.Render(ctx, w); err != nil {
		h.logger.Error("render dashboard page", "error", err)
	}
}
