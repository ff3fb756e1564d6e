// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"bias-scan/internal/config"
	"bias-scan/internal/core"
	"bias-scan/internal/detector"
	"bias-scan/internal/guardian"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate func(*config.WebConfig)) *WebServer {
	t.Helper()
	cfg := config.Default()
	cfg.Web.RateLimitPerSecond = 0
	if mutate != nil {
		mutate(&cfg.Web)
	}
	eng, err := core.BuildEngine(cfg.Defaults)
	require.NoError(t, err)
	ws, err := NewWebServer(cfg.Web, Dependencies{Scanner: core.NewScanner(eng, nil)})
	require.NoError(t, err)
	return ws
}

func do(t *testing.T, h http.Handler, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func uploadBody(t *testing.T, field, filename string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("user_id", "uploader"))
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestNewWebServerRequiresScanner(t *testing.T) {
	_, err := NewWebServer(config.Default().Web, Dependencies{})
	require.Error(t, err)
}

func TestHomeAndHealth(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.Handler()

	rec := do(t, h, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bias-scan")

	rec = do(t, h, http.MethodGet, "/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.NotEmpty(t, health["library_version"])
	assert.Contains(t, health, "uptime_seconds")
}

func TestAnalyze(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.Handler()

	body := []byte(`{"text":"Everyone agrees that this is absolutely stupid.","user_id":"u1","session_id":"s1"}`)
	rec := do(t, h, http.MethodPost, "/api/analyze", body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var analysis detector.TextAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.True(t, analysis.HasCategory(detector.Groupthink))
	assert.True(t, analysis.HasCategory(detector.ToxicLanguage))

	auditID := rec.Header().Get("X-Audit-ID")
	require.NotEmpty(t, auditID)
	entry, ok := ws.Audit().Get(auditID)
	require.True(t, ok)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "s1", entry.SessionID)
	assert.NotEqual(t, guardian.StatusAllowed, entry.Status)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.Handler()

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantType string
	}{
		{"non-string text", `{"text": 42}`, http.StatusBadRequest, "invalid_input"},
		{"missing text", `{"user_id": "u1"}`, http.StatusBadRequest, "invalid_input"},
		{"blank text", `{"text": "   "}`, http.StatusBadRequest, "invalid_input"},
		{"malformed json", `{"text": `, http.StatusBadRequest, "invalid_input"},
		{"empty body", ``, http.StatusBadRequest, "invalid_input"},
		{"too large", `{"text": "` + strings.Repeat("a", maxJSONBodyBytes+1) + `"}`, http.StatusRequestEntityTooLarge, "too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/analyze", []byte(tt.body), "application/json")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantType, decodeError(t, rec).Type)
		})
	}
	assert.Equal(t, 0, ws.Audit().Len())
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	ws := newTestServer(t, nil)
	rec := do(t, ws.Handler(), http.MethodGet, "/api/analyze", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUpload(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.Handler()

	body, ct := uploadBody(t, "file", "notes.txt", []byte("We all think this plan is perfect."))
	rec := do(t, h, http.MethodPost, "/api/upload", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report detector.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "notes.txt", report.Source)
	assert.Equal(t, "notes.txt", report.Metadata["filename"])
	assert.True(t, report.Analysis.HasCategory(detector.Groupthink))

	entry, ok := ws.Audit().Get(rec.Header().Get("X-Audit-ID"))
	require.True(t, ok)
	assert.Equal(t, "uploader", entry.UserID)
}

func TestGenerateBiasFree(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.Handler()

	tests := []struct {
		name         string
		query        string
		wantType     string
		wantFilename string
	}{
		{"default pdf", "", "application/pdf", "notes_bias-free.pdf"},
		{"docx", "?format=docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "notes_bias-free.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := uploadBody(t, "file", "notes.txt", []byte("All women are emotional. Everyone agrees with him."))
			rec := do(t, h, http.MethodPost, "/api/generate-bias-free"+tt.query, body, ct)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.wantFilename+`"`, rec.Header().Get("Content-Disposition"))
			assert.NotEmpty(t, rec.Header().Get("X-Audit-ID"))

			content := rec.Body.Bytes()
			assert.Equal(t, strconv.Itoa(len(content)), rec.Header().Get("Content-Length"))
			if strings.HasSuffix(tt.wantFilename, ".pdf") {
				require.NoError(t, api.Validate(bytes.NewReader(content), model.NewDefaultConfiguration()))
				return
			}
			zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
			require.NoError(t, err)
			var names []string
			for _, f := range zr.File {
				names = append(names, f.Name)
			}
			assert.Contains(t, names, "word/document.xml")
		})
	}

	body, ct := uploadBody(t, "file", "notes.txt", []byte("hello"))
	rec := do(t, h, http.MethodPost, "/api/generate-bias-free?format=csv", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeError(t, rec).Type)

	body, ct = uploadBody(t, "", "", nil)
	rec = do(t, h, http.MethodPost, "/api/generate-bias-free", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadErrors(t *testing.T) {
	ws := newTestServer(t, nil)
	ws.maxUpload = 64
	h := ws.Handler()

	binary := []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00, 0x00, 0x10}

	tests := []struct {
		name     string
		field    string
		filename string
		content  []byte
		wantCode int
		wantType string
	}{
		{"no file field", "", "", nil, http.StatusBadRequest, "invalid_input"},
		{"empty file", "file", "empty.txt", []byte{}, http.StatusBadRequest, "invalid_input"},
		{"over limit", "file", "big.txt", bytes.Repeat([]byte("a"), 65), http.StatusRequestEntityTooLarge, "too_large"},
		{"unsupported binary", "file", "blob.bin", binary, http.StatusUnsupportedMediaType, "unsupported"},
		{"corrupt docx", "file", "broken.docx", []byte("not a zip archive"), http.StatusUnprocessableEntity, "extraction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := uploadBody(t, tt.field, tt.filename, tt.content)
			rec := do(t, h, http.MethodPost, "/api/upload", body, ct)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantType, decodeError(t, rec).Type)
		})
	}
}

func TestExport(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.Handler()

	rec := do(t, h, http.MethodPost, "/api/export?format=csv", []byte(`{"text":"Everyone agrees with this."}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bias-scan-report.csv")
	assert.Contains(t, rec.Body.String(), "groupthink")

	analysis := ws.scanner.Engine().Analyze("Everyone agrees with this.")
	payload, err := json.Marshal(map[string]interface{}{"analysis": analysis, "source": "memo.txt"})
	require.NoError(t, err)
	rec = do(t, h, http.MethodPost, "/api/export", payload, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "memo.txt")

	rec = do(t, h, http.MethodPost, "/api/export?format=sarif", []byte(`{"text":"x"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeError(t, rec).Type)

	rec = do(t, h, http.MethodPost, "/api/export?format=json", []byte(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormats(t *testing.T) {
	ws := newTestServer(t, nil)
	rec := do(t, ws.Handler(), http.MethodGet, "/api/formats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Formats []struct {
			Name string `json:"name"`
		} `json:"formats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	var names []string
	for _, f := range resp.Formats {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"csv", "docx", "json", "pdf", "text", "yaml"}, names)
}

func TestGuardianRoutes(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.Handler()

	rec := do(t, h, http.MethodPost, "/api/guardian/logs",
		[]byte(`{"action":"send email","context":"draft","status":"flagged","reason":"groupthink","user_id":"u1","category":"groupthink"}`),
		"application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created guardian.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	do(t, h, http.MethodPost, "/api/guardian/logs",
		[]byte(`{"action":"post","context":"hello","status":"allowed","reason":"clean","user_id":"u2"}`), "application/json")

	rec = do(t, h, http.MethodGet, "/api/guardian/logs/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/guardian/logs/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Type)

	rec = do(t, h, http.MethodGet, "/api/guardian/logs?status=flagged&user_id=u1&limit=10", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page guardian.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, created.ID, page.Entries[0].ID)

	rec = do(t, h, http.MethodGet, "/api/guardian/logs?end_date=2000-01-01", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Total)

	rec = do(t, h, http.MethodGet, "/api/guardian/logs?page=9223372036854775807", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page = guardian.QueryResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Entries)
	assert.Equal(t, 2, page.Total)
	assert.False(t, page.HasNextPage)

	for _, bad := range []string{"status=denied", "page=0", "limit=abc", "start_date=yesterday"} {
		rec = do(t, h, http.MethodGet, "/api/guardian/logs?"+bad, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	rec = do(t, h, http.MethodPost, "/api/guardian/logs", []byte(`{"action":"x","status":"allowed"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "context, reason")

	rec = do(t, h, http.MethodDelete, "/api/guardian/logs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cleared":2}`, rec.Body.String())
	assert.Equal(t, 0, ws.Audit().Len())
}

func TestGuardianCheckActionAndStats(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.Handler()

	tests := []struct {
		name       string
		body       string
		wantStatus guardian.Status
		wantSafe   bool
	}{
		{"toxic message blocked", `{"action":"send email","context":"This is absolutely stupid and terrible.","user_id":"u1"}`, guardian.StatusBlocked, false},
		{"clean message allowed", `{"action":"post comment","context":"Thanks for the thorough review."}`, guardian.StatusAllowed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/guardian/check-action", []byte(tt.body), "application/json")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp checkActionResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.wantStatus), resp.Status)
			assert.Equal(t, tt.wantSafe, resp.Safe)
			assert.NotEmpty(t, resp.Suggestions)
			assert.Equal(t, rec.Header().Get("X-Audit-ID"), resp.AuditID)

			entry, ok := ws.Audit().Get(resp.AuditID)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, entry.Status)
		})
	}

	entry, _ := ws.Audit().Get(ws.Audit().Query(guardian.Filter{UserID: "u1"}, guardian.Page{}).Entries[0].ID)
	assert.Equal(t, "send email", entry.Action)

	for _, bad := range []string{`{"action":"send"}`, `{"context":"hello"}`, `{"action":" ","context":"hello"}`} {
		rec := do(t, h, http.MethodPost, "/api/guardian/check-action", []byte(bad), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
		assert.Equal(t, "invalid_input", decodeError(t, rec).Type)
	}

	rec := do(t, h, http.MethodGet, "/api/guardian/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats guardian.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Recent)
	assert.Equal(t, 1, stats.ByStatus[guardian.StatusBlocked])
	assert.Greater(t, stats.AverageToxicity, 0.0)
}

func TestStatsAndMetrics(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.Handler()

	do(t, h, http.MethodPost, "/api/analyze", []byte(`{"text":"Everyone agrees."}`), "application/json")

	rec := do(t, h, http.MethodGet, "/api/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Engine struct {
			Analyses int64 `json:"analyses"`
		} `json:"engine"`
		Audit guardian.Stats `json:"audit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Engine.Analyses)
	assert.Equal(t, 1, stats.Audit.Total)

	rec = do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bias_scan_analyses_total")
	assert.Contains(t, rec.Body.String(), `route="POST /api/analyze"`)
}

func TestRateLimit(t *testing.T) {
	ws := newTestServer(t, func(c *config.WebConfig) {
		c.RateLimitPerSecond = 0.001
		c.RateLimitBurst = 1
	})
	h := ws.Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/formats", nil, "").Code)

	rec := do(t, h, http.MethodGet, "/api/formats", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decodeError(t, rec).Type)

	// Non-API routes are not limited
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil, "").Code)

	other := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	other.RemoteAddr = "198.51.100.7:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoverPanics(t *testing.T) {
	ws := newTestServer(t, nil)
	h := ws.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeError(t, rec).Type)
}

func TestSanitizeHelpers(t *testing.T) {
	assert.Equal(t, "txt", getFileExtension("a.TXT"))
	assert.Equal(t, "tmp", getFileExtension("noext"))
	assert.Equal(t, "tmp", getFileExtension("a.t/x"))
	assert.Equal(t, "scriptalert(1)/script", sanitizeUserInput("<script>alert(1)</script>", 100))
	assert.Equal(t, "abc...", sanitizeUserInput("abcdef", 3))
}
