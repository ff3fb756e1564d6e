// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"bias-scan/internal/guardian"
	"bias-scan/internal/resilience"
)

// handleGuardianList queries the audit log
func (ws *WebServer) handleGuardianList(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseAuditQuery(r.URL.Query())
	if err != nil {
		ws.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.audit.Query(filter, page))
}

func (ws *WebServer) handleGuardianGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, ok := ws.audit.Get(id)
	if !ok {
		ws.sendError(w, r, &resilience.ClassifiedError{
			Type:      resilience.ErrorTypeNotFound,
			Operation: "get audit entry",
			Message:   fmt.Sprintf("no entry with id %q", sanitizeUserInput(id, 64)),
		})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type auditEntryRequest struct {
	Action    string         `json:"action"`
	Context   string         `json:"context"`
	Status    string         `json:"status"`
	Reason    string         `json:"reason"`
	UserID    string         `json:"user_id"`
	SessionID string         `json:"session_id"`
	Category  string         `json:"category"`
	Metadata  map[string]any `json:"metadata"`
}

// handleGuardianCreate records an arbitrary entry. action, context, status
// and reason are required.
func (ws *WebServer) handleGuardianCreate(w http.ResponseWriter, r *http.Request) {
	var req auditEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ws.sendError(w, r, err)
		return
	}

	var missing []string
	for name, value := range map[string]string{
		"action":  req.Action,
		"context": req.Context,
		"status":  req.Status,
		"reason":  req.Reason,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		ws.sendError(w, r, resilience.NewInvalidInputError("record audit entry",
			"missing required fields: "+strings.Join(missing, ", ")))
		return
	}

	status, ok := guardian.ParseStatus(req.Status)
	if !ok {
		ws.sendError(w, r, resilience.NewInvalidInputError("record audit entry",
			"status must be one of allowed, blocked, flagged"))
		return
	}

	entry := ws.audit.Record(guardian.Entry{
		Action:    req.Action,
		Context:   req.Context,
		Status:    status,
		Reason:    req.Reason,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Category:  req.Category,
		Metadata:  req.Metadata,
	})
	writeJSON(w, http.StatusCreated, entry)
}

type checkActionRequest struct {
	Action    string `json:"action"`
	Context   string `json:"context"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

type checkActionResponse struct {
	AuditID       string   `json:"audit_id"`
	Status        string   `json:"status"`
	Safe          bool     `json:"safe"`
	Reason        string   `json:"reason"`
	RiskLevel     string   `json:"risk_level"`
	Category      string   `json:"category,omitempty"`
	ToxicityScore float64  `json:"toxicity_score"`
	Suggestions   []string `json:"suggestions"`
}

// handleGuardianCheckAction analyses the context of an action, records the
// decision and returns it. Only allowed actions are safe.
func (ws *WebServer) handleGuardianCheckAction(w http.ResponseWriter, r *http.Request) {
	var req checkActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ws.sendError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Action) == "" || strings.TrimSpace(req.Context) == "" {
		ws.sendError(w, r, resilience.NewInvalidInputError("check action", "both action and context are required"))
		return
	}

	report := ws.scanner.ScanText("", req.Context)
	entry := ws.audit.RecordAction(req.Action, report.Analysis, req.UserID, req.SessionID)

	w.Header().Set("X-Audit-ID", entry.ID)
	writeJSON(w, http.StatusOK, checkActionResponse{
		AuditID:       entry.ID,
		Status:        string(entry.Status),
		Safe:          entry.Status == guardian.StatusAllowed,
		Reason:        entry.Reason,
		RiskLevel:     report.Analysis.OverallRisk.String(),
		Category:      entry.Category,
		ToxicityScore: report.Analysis.ToxicityScore,
		Suggestions:   report.Analysis.Recommendations,
	})
}

func (ws *WebServer) handleGuardianStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ws.audit.Stats())
}

func (ws *WebServer) handleGuardianClear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"cleared": ws.audit.Clear()})
}

// parseAuditQuery maps query parameters onto a filter and page. Date-only
// end dates cover the whole day.
func parseAuditQuery(q url.Values) (guardian.Filter, guardian.Page, error) {
	filter := guardian.Filter{
		UserID:    q.Get("user_id"),
		SessionID: q.Get("session_id"),
		Category:  q.Get("category"),
		Text:      q.Get("q"),
	}
	var page guardian.Page

	if s := q.Get("status"); s != "" {
		status, ok := guardian.ParseStatus(s)
		if !ok {
			return filter, page, resilience.NewInvalidInputError("query audit log", fmt.Sprintf("unknown status %q", sanitizeUserInput(s, 32)))
		}
		filter.Status = status
	}

	var err error
	if s := q.Get("start_date"); s != "" {
		if filter.Start, _, err = parseQueryTime(s); err != nil {
			return filter, page, err
		}
	}
	if s := q.Get("end_date"); s != "" {
		end, dateOnly, err := parseQueryTime(s)
		if err != nil {
			return filter, page, err
		}
		if dateOnly {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		filter.End = end
	}

	if page.Page, err = parseQueryInt(q, "page"); err != nil {
		return filter, page, err
	}
	if page.Limit, err = parseQueryInt(q, "limit"); err != nil {
		return filter, page, err
	}
	return filter, page, nil
}

func parseQueryTime(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, resilience.NewInvalidInputError("query audit log",
		fmt.Sprintf("invalid date %q (want RFC3339 or YYYY-MM-DD)", sanitizeUserInput(s, 40)))
}

func parseQueryInt(q url.Values, name string) (int, error) {
	s := q.Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, resilience.NewInvalidInputError("query audit log", fmt.Sprintf("%s must be a positive integer", name))
	}
	return n, nil
}
