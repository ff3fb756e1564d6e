// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bias-scan/internal/config"
	"bias-scan/internal/detector"
	"bias-scan/internal/formatters"
	"bias-scan/internal/resilience"
	"bias-scan/internal/version"
)

// handleHealth runs the engine canaries and reports version information
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	check := ws.health.Check()
	build := version.Get()

	status, code := "healthy", http.StatusOK
	if !check.Healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":          status,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"service":         "bias-scan-web",
		"version":         build.Version,
		"library_version": ws.scanner.Engine().Library().Version(),
		"uptime_seconds":  time.Since(ws.startTime).Seconds(),
		"build_info":      build,
		"checks":          ws.health.Status(),
	})
}

type analyzeRequest struct {
	Text      *string `json:"text"`
	UserID    string  `json:"user_id"`
	SessionID string  `json:"session_id"`
}

// handleAnalyze analyses JSON text and records an audit entry. The entry
// ID is returned in the X-Audit-ID header.
func (ws *WebServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ws.sendError(w, r, err)
		return
	}
	if req.Text == nil {
		ws.sendError(w, r, resilience.NewInvalidInputError("analyze", "text is required"))
		return
	}
	if strings.TrimSpace(*req.Text) == "" {
		ws.sendError(w, r, resilience.NewInvalidInputError("analyze", "text must not be empty"))
		return
	}

	report := ws.scanner.ScanText("", *req.Text)
	entry := ws.audit.RecordAnalysis(report.Analysis, req.UserID, req.SessionID)

	w.Header().Set("X-Audit-ID", entry.ID)
	writeJSON(w, http.StatusOK, report.Analysis)
}

// handleUpload extracts and analyses one uploaded document
func (ws *WebServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	report, ok := ws.scanUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleGenerateBiasFree analyses an uploaded document and returns its
// rewritten text as <name>_bias-free.pdf, or .docx with ?format=docx
func (ws *WebServer) handleGenerateBiasFree(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "pdf"
	}
	if !config.IsDocumentFormat(format) {
		ws.sendError(w, r, resilience.NewInvalidInputError("generate bias-free document",
			fmt.Sprintf("unsupported document format '%s'. Available formats: %s", format, strings.Join(config.DocumentFormats, ", "))))
		return
	}

	report, ok := ws.scanUpload(w, r)
	if !ok {
		return
	}

	options := formatters.FormatterOptions{NoColor: true, ShowImproved: true}
	content, mimeType, _, err := formatters.ExportForWeb(format, []detector.Report{report}, options)
	if err != nil {
		ws.sendError(w, r, err)
		return
	}

	name := strings.TrimSuffix(report.Source, filepath.Ext(report.Source))
	if name == "" {
		name = "document"
	}
	filename := name + "_bias-free" + formatters.GetFormatInfo(format).Extension

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// scanUpload stores the multipart "file" field, analyses it and records an
// audit entry. On failure the error response has already been sent.
func (ws *WebServer) scanUpload(w http.ResponseWriter, r *http.Request) (detector.Report, bool) {
	// Allow for multipart framing on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, ws.maxUpload+(1<<20))
	if err := r.ParseMultipartForm(ws.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ws.sendError(w, r, resilience.NewTooLargeError("upload", r.ContentLength, ws.maxUpload))
			return detector.Report{}, false
		}
		ws.sendError(w, r, resilience.NewInvalidInputError("parse upload", err.Error()))
		return detector.Report{}, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		ws.sendError(w, r, resilience.NewInvalidInputError("parse upload", "no file uploaded in field 'file'"))
		return detector.Report{}, false
	}
	defer file.Close()

	if header.Size == 0 {
		ws.sendError(w, r, resilience.NewInvalidInputError("parse upload", "uploaded file is empty"))
		return detector.Report{}, false
	}
	if header.Size > ws.maxUpload {
		ws.sendError(w, r, resilience.NewTooLargeError("upload", header.Size, ws.maxUpload))
		return detector.Report{}, false
	}

	// Preprocessors are chosen by extension, so the temp file keeps it
	tmp, err := os.CreateTemp("", "bias-scan-upload-*."+getFileExtension(header.Filename))
	if err != nil {
		ws.sendError(w, r, fmt.Errorf("failed to create temp file: %w", err))
		return detector.Report{}, false
	}
	defer os.Remove(tmp.Name())

	_, copyErr := io.Copy(tmp, file)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		ws.sendError(w, r, fmt.Errorf("failed to store upload: %w", errors.Join(copyErr, closeErr)))
		return detector.Report{}, false
	}

	report, err := ws.scanner.ScanFile(tmp.Name())
	if err != nil {
		ws.sendError(w, r, err)
		return detector.Report{}, false
	}

	displayName := sanitizeUserInput(filepath.Base(header.Filename), 255)
	report.Source = displayName
	report.Metadata["filename"] = displayName

	entry := ws.audit.RecordAnalysis(report.Analysis, r.FormValue("user_id"), r.FormValue("session_id"))
	w.Header().Set("X-Audit-ID", entry.ID)
	return report, true
}

type exportRequest struct {
	Text     *string                `json:"text"`
	Analysis *detector.TextAnalysis `json:"analysis"`
	Source   string                 `json:"source"`
}

// handleExport renders text or a prior analysis as a downloadable report
func (ws *WebServer) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if _, ok := formatters.Get(format); !ok {
		ws.sendError(w, r, resilience.NewInvalidInputError("export",
			fmt.Sprintf("unsupported format '%s'. Available formats: %s", format, strings.Join(formatters.List(), ", "))))
		return
	}

	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ws.sendError(w, r, err)
		return
	}

	var report detector.Report
	switch {
	case req.Analysis != nil:
		report = detector.Report{Source: req.Source, SourceType: "text", Analysis: *req.Analysis}
		if report.Source == "" {
			report.Source = "<text>"
		}
	case req.Text != nil && strings.TrimSpace(*req.Text) != "":
		report = ws.scanner.ScanText(req.Source, *req.Text)
	default:
		ws.sendError(w, r, resilience.NewInvalidInputError("export", "either text or analysis is required"))
		return
	}

	options := formatters.FormatterOptions{
		Verbose:      true,
		NoColor:      true,
		ShowMatch:    true,
		ShowImproved: true,
	}
	content, mimeType, filename, err := formatters.ExportForWeb(format, []detector.Report{report}, options)
	if err != nil {
		ws.sendError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (ws *WebServer) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats": formatters.GetSupportedFormats(),
		"default": "json",
	})
}

// handleStats reports engine, library, router and audit statistics
func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"engine":         ws.stats.Snapshot(),
		"library":        ws.scanner.Engine().Library().Stats(),
		"router":         ws.scanner.Router().GetMetrics().GetSummary(),
		"audit":          ws.audit.Stats(),
		"uptime_seconds": time.Since(ws.startTime).Seconds(),
	})
}

// getFileExtension extracts file extension from filename with sanitization
func getFileExtension(filename string) string {
	if ext := filepath.Ext(filename); ext != "" {
		// Sanitize extension to prevent directory traversal or injection
		safeExt := sanitizeUserInput(strings.TrimPrefix(ext, "."), 10)
		// Only allow alphanumeric extensions
		if safeExt != "" && isAlphanumeric(safeExt) {
			return strings.ToLower(safeExt)
		}
	}
	return "tmp"
}

// isAlphanumeric checks if string contains only alphanumeric characters
func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// sanitizeUserInput removes dangerous characters from user input for safe output
func sanitizeUserInput(input string, maxLength int) string {
	sanitized := strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1
		}
		return r
	}, input)

	if runes := []rune(sanitized); len(runes) > maxLength {
		sanitized = string(runes[:maxLength]) + "..."
	}
	return sanitized
}
