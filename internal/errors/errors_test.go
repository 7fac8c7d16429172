package errors

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeMissingSelection, http.StatusBadRequest},
		{CodeUnknownReportKind, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := New(tt.code, "x").StatusCode; got != tt.want {
			t.Errorf("status for %s = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWrap_Unwraps(t *testing.T) {
	cause := stderrors.New("no year selected")
	err := Wrap(cause, CodeMissingSelection, "Please select a year.")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if err.Details != "no year selected" {
		t.Errorf("details = %q", err.Details)
	}
}

func TestWrap_HidesServerCauses(t *testing.T) {
	tests := []struct {
		name        string
		code        ErrorCode
		wantDetails string
	}{
		{"validation keeps cause", CodeValidation, "strconv.Atoi: parsing \"abc\": invalid syntax"},
		{"unknown report keeps cause", CodeUnknownReportKind, "strconv.Atoi: parsing \"abc\": invalid syntax"},
		{"internal drops cause", CodeInternal, ""},
	}

	cause := stderrors.New(`strconv.Atoi: parsing "abc": invalid syntax`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap(cause, tt.code, "x")
			if err.Details != tt.wantDetails {
				t.Errorf("details = %q, want %q", err.Details, tt.wantDetails)
			}
			if !stderrors.Is(err, cause) {
				t.Error("cause should still be reachable through Unwrap")
			}
		})
	}
}

func TestWriteError_InternalCauseNotExposed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	w := httptest.NewRecorder()

	WriteError(w, logger, Wrap(stderrors.New("dial tcp 10.0.0.7:5432: refused"), CodeInternal, "failed to compute summaries"), "req-1")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if strings.Contains(w.Body.String(), "10.0.0.7") {
		t.Errorf("response leaked internal cause: %s", w.Body.String())
	}
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", Validation("bad year"), http.StatusBadRequest, string(CodeValidation)},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError, string(CodeInternal)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, logger, tt.err, "req-1")

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp struct {
				Success bool `json:"success"`
				Error   struct {
					Code      string `json:"code"`
					RequestID string `json:"request_id"`
				} `json:"error"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success {
				t.Error("success should be false")
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Error.Code, tt.wantCode)
			}
			if resp.Error.RequestID != "req-1" {
				t.Errorf("request id = %s", resp.Error.RequestID)
			}
		})
	}
}
