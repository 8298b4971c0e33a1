package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/analyze"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/ingest"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/rules"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/store"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Handlers{
		Log:      logger,
		Parser:   ingest.New(logger),
		Analyzer: analyze.New(logger, rules.DefaultThresholds()),
		Store:    store.NewMemory(time.Minute),
	}
}

// usableCSV builds 30h of 5-minute readings plus one covered meal with a
// postprandial spike.
func usableCSV() string {
	var b strings.Builder
	b.WriteString("timestamp,glucose_value,insulin_bolus,carbs\n")
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 361; i++ {
		ts := base.Add(time.Duration(i) * 5 * time.Minute)
		val := 120.0
		if i == 100 {
			fmt.Fprintf(&b, "%s,%g,5,50\n", ts.Format("2006-01-02 15:04:05"), val)
			continue
		}
		if i == 106 { // 30 minutes after the meal
			val = 230
		}
		fmt.Fprintf(&b, "%s,%g,,\n", ts.Format("2006-01-02 15:04:05"), val)
	}
	return b.String()
}

func shortCSV() string {
	var b strings.Builder
	b.WriteString("timestamp,glucose_value\n")
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "%s,120\n", base.Add(time.Duration(i)*5*time.Minute).Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

func multipartUpload(t *testing.T, csv, device string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "export.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := io.WriteString(fw, csv); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if device != "" {
		if err := mw.WriteField("device", device); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadReportLifecycle(t *testing.T) {
	h := newTestHandlers(t)
	router := NewRouter(h)

	body, ctype := multipartUpload(t, usableCSV(), "dexcom")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var up uploadResponse
	if err := json.NewDecoder(rr.Body).Decode(&up); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if up.Report.ID == "" || !up.Report.Usable() {
		t.Fatalf("expected usable stored report, got %+v", up.Report.Quality)
	}
	if len(up.Report.Findings) == 0 {
		t.Fatalf("expected at least one finding from the spike fixture")
	}
	if loc := rr.Header().Get("Location"); loc != "/api/v1/reports/"+up.Report.ID {
		t.Fatalf("wrong Location header: %q", loc)
	}

	// Fetch it back.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+up.Report.ID, nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on fetch, got %d", rr.Code)
	}

	// Patient narrative.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+up.Report.ID+"/narrative?role=patient", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on narrative, got %d", rr.Code)
	}
	var n analyze.Narrative
	if err := json.NewDecoder(rr.Body).Decode(&n); err != nil {
		t.Fatalf("decode narrative: %v", err)
	}
	if len(n.KeyInsights) == 0 {
		t.Fatalf("expected narrative insights, got %+v", n)
	}

	// Delete, then the report is gone.
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/reports/"+up.Report.ID, nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rr.Code)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+up.Report.ID, nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rr.Code)
	}
}

func TestUploadRejectedByQualityGate(t *testing.T) {
	h := newTestHandlers(t)
	router := NewRouter(h)

	body, ctype := multipartUpload(t, shortCSV(), "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}
	var rej rejectedResponse
	if err := json.NewDecoder(rr.Body).Decode(&rej); err != nil {
		t.Fatalf("decode rejection: %v", err)
	}
	if len(rej.Quality.Warnings) == 0 {
		t.Fatalf("rejection must carry the gate warnings, got %+v", rej)
	}
}

func TestUploadRejectsUnparseableFile(t *testing.T) {
	h := newTestHandlers(t)
	router := NewRouter(h)

	body, ctype := multipartUpload(t, "timestamp,steps\n2024-03-01 08:00:00,4000\n", "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUploadRequiresFileField(t *testing.T) {
	h := newTestHandlers(t)
	router := NewRouter(h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("device", "dexcom")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestNarrativeRejectsUnknownRole(t *testing.T) {
	h := newTestHandlers(t)
	router := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/any/narrative?role=auditor", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandlers(t)
	router := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected health payload: %+v", payload)
	}
}
