package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stagetrade/stagetrade-backend/internal/service"
)

type stubRunner struct {
	summary *service.FanoutSummary
	err     error
	calls   int
}

func (s *stubRunner) Run(ctx context.Context) (*service.FanoutSummary, error) {
	s.calls++
	return s.summary, s.err
}

func doCron(h *CronHandler, authz string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/cron/process", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h.ProcessPush(c)
	return rec
}

func TestProcessPushAuth(t *testing.T) {
	runner := &stubRunner{summary: &service.FanoutSummary{OK: true}}
	h := NewCronHandler(runner, "s3cret")

	tests := []struct {
		name  string
		authz string
		code  int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"wrong secret", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doCron(h, tt.authz)
			if rec.Code != tt.code {
				t.Fatalf("code=%d want %d", rec.Code, tt.code)
			}
		})
	}
	if runner.calls != 1 {
		t.Fatalf("runner ran %d times, want once", runner.calls)
	}
}

func TestProcessPushRejectsAllWhenSecretUnset(t *testing.T) {
	h := NewCronHandler(&stubRunner{}, "")
	rec := doCron(h, "Bearer ")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code=%d want 401", rec.Code)
	}
}

func TestProcessPushReportsSummary(t *testing.T) {
	runner := &stubRunner{summary: &service.FanoutSummary{
		OK:   true,
		Push: service.FanoutCounters{Sent: 3, Errors: 1},
	}}
	h := NewCronHandler(runner, "s3cret")
	rec := doCron(h, "Bearer s3cret")
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	var got service.FanoutSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.OK || got.Push.Sent != 3 || got.Push.Errors != 1 {
		t.Fatalf("summary = %+v", got)
	}
}

func TestProcessPushSkippedSummary(t *testing.T) {
	runner := &stubRunner{summary: &service.FanoutSummary{OK: true, Skipped: true, Reason: "no push channels configured"}}
	h := NewCronHandler(runner, "s3cret")
	rec := doCron(h, "Bearer s3cret")
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	var got service.FanoutSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Skipped || got.Reason == "" {
		t.Fatalf("summary = %+v", got)
	}
}

func TestProcessPushStoreFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("db down")}
	h := NewCronHandler(runner, "s3cret")
	rec := doCron(h, "Bearer s3cret")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code=%d want 500", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "fanout_failed" {
		t.Fatalf("error code = %q", resp.Error.Code)
	}
}
