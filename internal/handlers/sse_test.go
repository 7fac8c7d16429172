package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"autosales-dashboard/internal/services"
	"autosales-dashboard/internal/ui/templates"
)

func sseRequest(t *testing.T, event string, signals map[string]any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(signals)
	if err != nil {
		t.Fatal(err)
	}
	q := url.Values{}
	q.Set("event", event)
	q.Set("datastar", string(payload))
	return httptest.NewRequest(http.MethodGet, "/sse/dashboard?"+q.Encode(), nil)
}

func TestNewSSEHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	logger := testLogger()

	handlers := NewSSEHandlers(dashboard, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.dashboard != dashboard {
		t.Error("NewSSEHandlers() should set dashboard field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_HandleDashboard(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())
	yearly := map[string]any{"report": "Yearly Statistics", "year": 1980}

	tests := []struct {
		name         string
		event        string
		signals      map[string]any
		wantContains []string
		wantMissing  []string
	}{
		{
			name:  "switch to recession disables year",
			event: "report-selected",
			signals: map[string]any{
				"report": "Recession Period Statistics",
				"year":   1980,
				"state":  yearly,
			},
			wantContains: []string{
				`"yearDisabled":true`,
				`"report":"Recession Period Statistics"`,
				"Average Automobile Sales fluctuation over Recession Period",
				`id="chart-3"`,
			},
		},
		{
			name:  "pick a year",
			event: "year-selected",
			signals: map[string]any{
				"report": "Yearly Statistics",
				"year":   "1981",
				"state":  yearly,
			},
			wantContains: []string{
				`"yearDisabled":false`,
				`"year":1981`,
				"in the year 1981",
			},
		},
		{
			name:  "clearing the year prompts",
			event: "year-selected",
			signals: map[string]any{
				"report": "Yearly Statistics",
				"year":   "",
				"state":  yearly,
			},
			wantContains: []string{"Please select a year.", `"_charts":[]`, `"year":null`},
			wantMissing:  []string{"<canvas"},
		},
		{
			name:  "clearing the report prompts",
			event: "report-selected",
			signals: map[string]any{
				"report": "",
				"year":   1980,
				"state":  yearly,
			},
			wantContains: []string{"Please select a report type."},
			wantMissing:  []string{"<canvas"},
		},
		{
			name:  "out of range state year is dropped",
			event: "report-selected",
			signals: map[string]any{
				"report": "Yearly Statistics",
				"year":   1980,
				"state":  map[string]any{"report": "Recession Period Statistics", "year": 1850},
			},
			wantContains: []string{"Please select a year.", `"year":null`},
			wantMissing:  []string{"<canvas", "1850"},
		},
		{
			name:         "missing state falls back to defaults",
			event:        "",
			signals:      map[string]any{"report": "Yearly Statistics", "year": 1980},
			wantContains: []string{`"report":"Yearly Statistics"`, `id="chart-0"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handlers.HandleDashboard(w, sseRequest(t, tt.event, tt.signals))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			body := w.Body.String()
			if !strings.Contains(body, "datastar-patch-elements") || !strings.Contains(body, "datastar-patch-signals") {
				t.Errorf("expected element and signal patches, got:\n%s", body)
			}
			if !strings.Contains(body, `id="output-container"`) {
				t.Error("element patch should target the output container")
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(body, want) {
					t.Errorf("body should contain %q:\n%s", want, body)
				}
			}
			for _, unwanted := range tt.wantMissing {
				if strings.Contains(body, unwanted) {
					t.Errorf("body should not contain %q", unwanted)
				}
			}
		})
	}
}

// browserQuery encodes signals the way datastar does for a GET action:
// underscore-prefixed signals stay in the browser.
func browserQuery(t *testing.T, event string, signals []byte) string {
	t.Helper()
	var all map[string]json.RawMessage
	if err := json.Unmarshal(signals, &all); err != nil {
		t.Fatal(err)
	}
	for name := range all {
		if strings.HasPrefix(name, "_") {
			delete(all, name)
		}
	}
	sent, err := json.Marshal(all)
	if err != nil {
		t.Fatal(err)
	}
	q := url.Values{}
	q.Set("event", event)
	q.Set("datastar", string(sent))
	return q.Encode()
}

func TestSSEHandlers_ChartsStayInBrowser(t *testing.T) {
	dashboard := createTestDashboard()
	handlers := NewSSEHandlers(dashboard, testLogger())

	state := services.DefaultControlState()
	pageSignals, err := json.Marshal(templates.NewPageSignals(state, dashboard.Render(state)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(pageSignals), `"_charts":[{`) {
		t.Fatalf("page should seed chart data as a browser-only signal: %s", pageSignals)
	}

	query := browserQuery(t, "report-selected", pageSignals)
	for _, unwanted := range []string{"charts", "rows", "Yearly+Automobile+Sales", "key_columns"} {
		if strings.Contains(query, unwanted) {
			t.Errorf("request query should not carry chart data, found %q in %s", unwanted, query)
		}
	}

	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/sse/dashboard?"+query, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"_charts":[{`) {
		t.Errorf("signal patch should carry the charts back as _charts:\n%s", body)
	}
	if strings.Contains(body, `"charts":`) {
		t.Error("charts should only be patched under the browser-only name")
	}
}

func TestSSEHandlers_HandleDashboard_InvalidSignals(t *testing.T) {
	handlers := NewSSEHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/dashboard?datastar=%7Bnot-json", nil)
	w := httptest.NewRecorder()
	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSignalYear(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`1985`, 1985, true},
		{`"2001"`, 2001, true},
		{`""`, 0, false},
		{`null`, 0, false},
		{`1985.5`, 0, false},
		{`1979`, 0, false},
		{`"abc"`, 0, false},
		{``, 0, false},
	}

	for _, tt := range tests {
		got := signalYear(json.RawMessage(tt.raw))
		if (got != nil) != tt.ok {
			t.Errorf("signalYear(%s) = %v, want ok=%v", tt.raw, got, tt.ok)
			continue
		}
		if got != nil && *got != tt.want {
			t.Errorf("signalYear(%s) = %d, want %d", tt.raw, *got, tt.want)
		}
	}
}
