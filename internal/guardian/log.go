// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package guardian keeps an in-memory audit trail of analysis decisions.
package guardian

import (
	"sort"
	"strings"
	"sync"
	"time"

	"bias-scan/internal/detector"

	"github.com/google/uuid"
)

// Status is the decision recorded for an audited action
type Status string

const (
	StatusAllowed Status = "allowed"
	StatusBlocked Status = "blocked"
	StatusFlagged Status = "flagged"
)

// ParseStatus validates a status label
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusAllowed:
		return StatusAllowed, true
	case StatusBlocked:
		return StatusBlocked, true
	case StatusFlagged:
		return StatusFlagged, true
	}
	return "", false
}

const (
	DefaultCapacity = 10000
	DefaultPageSize = 50
	MaxPageSize     = 200

	// contextPreview bounds the analysed text copied into an entry
	contextPreview = 500
)

// Entry is one audit record
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Context   string         `json:"context"`
	Status    Status         `json:"status"`
	Reason    string         `json:"reason"`
	UserID    string         `json:"user_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Category  string         `json:"category,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Filter narrows a query. Zero values match everything.
type Filter struct {
	Status    Status
	UserID    string
	SessionID string
	Category  string
	Start     time.Time
	End       time.Time
	Text      string
}

func (f Filter) matches(e *Entry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.SessionID != "" && e.SessionID != f.SessionID {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if !f.Start.IsZero() && e.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && e.Timestamp.After(f.End) {
		return false
	}
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(e.Action), needle) &&
			!strings.Contains(strings.ToLower(e.Context), needle) &&
			!strings.Contains(strings.ToLower(e.Reason), needle) {
			return false
		}
	}
	return true
}

// Page selects a window of query results. Page numbers start at 1.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// QueryResult is one page of matching entries, newest first
type QueryResult struct {
	Entries     []Entry `json:"entries"`
	Total       int     `json:"total"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
	TotalPages  int     `json:"total_pages"`
	HasNextPage bool    `json:"has_next_page"`
	HasPrevPage bool    `json:"has_prev_page"`
}

// Stats summarises the log
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[Status]int `json:"by_status"`
	ByCategory map[string]int `json:"by_category"`
	Oldest     *time.Time     `json:"oldest,omitempty"`
	Newest     *time.Time     `json:"newest,omitempty"`

	// Recent counts entries from the last 24 hours
	Recent int `json:"recent_24h"`
	// AverageToxicity is the mean toxicity_score over entries that carry one
	AverageToxicity float64 `json:"average_toxicity"`
}

// Log is a capacity-bounded, mutex-guarded audit store. When full the
// oldest entry is evicted.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	now      func() time.Time
}

// NewLog creates a log holding at most capacity entries
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity, now: time.Now}
}

// Capacity returns the maximum number of retained entries
func (l *Log) Capacity() int {
	return l.capacity
}

// Len returns the number of retained entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Record stores an entry, filling ID and Timestamp when unset, and
// returns the stored copy.
func (l *Log) Record(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}
	if e.Status == "" {
		e.Status = StatusAllowed
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) >= l.capacity {
		drop := len(l.entries) - l.capacity + 1
		copy(l.entries, l.entries[drop:])
		l.entries = l.entries[:len(l.entries)-drop]
	}
	l.entries = append(l.entries, e)
	return e
}

// RecordAnalysis derives an entry from an analysis. High risk is blocked,
// medium risk flagged, anything else allowed. The top finding supplies
// the category and reason.
func (l *Log) RecordAnalysis(analysis detector.TextAnalysis, userID, sessionID string) Entry {
	return l.RecordAction("analyze", analysis, userID, sessionID)
}

// RecordAction is RecordAnalysis for a named action, such as a message
// about to be sent
func (l *Log) RecordAction(action string, analysis detector.TextAnalysis, userID, sessionID string) Entry {
	if strings.TrimSpace(action) == "" {
		action = "analyze"
	}
	status := StatusAllowed
	switch analysis.OverallRisk {
	case detector.SeverityHigh:
		status = StatusBlocked
	case detector.SeverityMedium:
		status = StatusFlagged
	}

	entry := Entry{
		Action:    truncate(action, contextPreview),
		Context:   truncate(analysis.InputText, contextPreview),
		Status:    status,
		Reason:    "no bias detected",
		UserID:    userID,
		SessionID: sessionID,
		Metadata: map[string]any{
			"overall_risk":   analysis.OverallRisk.String(),
			"toxicity_score": analysis.ToxicityScore,
			"finding_count":  len(analysis.Findings),
			"positive":       analysis.Positive,
		},
	}
	if top, ok := topFinding(analysis.Findings); ok {
		entry.Category = string(top.Category)
		entry.Reason = top.Explanation
	}
	return l.Record(entry)
}

// topFinding picks the most severe finding, breaking ties on confidence
func topFinding(findings []detector.BiasFinding) (detector.BiasFinding, bool) {
	if len(findings) == 0 {
		return detector.BiasFinding{}, false
	}
	top := findings[0]
	for _, f := range findings[1:] {
		if f.Severity > top.Severity || (f.Severity == top.Severity && f.Confidence > top.Confidence) {
			top = f
		}
	}
	return top, true
}

// Get returns the entry with the given ID
func (l *Log) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := range l.entries {
		if l.entries[i].ID == id {
			return l.entries[i], true
		}
	}
	return Entry{}, false
}

// Query returns matching entries newest first, one page at a time
func (l *Log) Query(filter Filter, page Page) QueryResult {
	page = page.normalize()

	l.mu.RLock()
	var matched []Entry
	for i := len(l.entries) - 1; i >= 0; i-- {
		if filter.matches(&l.entries[i]) {
			matched = append(matched, l.entries[i])
		}
	}
	l.mu.RUnlock()

	// Entries arrive roughly in order; caller-supplied timestamps may not
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := len(matched)
	totalPages := (total + page.Limit - 1) / page.Limit
	// Bounded before multiplying; pages past the end are empty
	start := total
	if page.Page-1 <= total/page.Limit {
		start = min((page.Page-1)*page.Limit, total)
	}
	end := min(start+page.Limit, total)

	return QueryResult{
		Entries:     append([]Entry{}, matched[start:end]...),
		Total:       total,
		Page:        page.Page,
		Limit:       page.Limit,
		TotalPages:  totalPages,
		HasNextPage: page.Page < totalPages,
		HasPrevPage: page.Page > 1,
	}
}

// Stats returns totals by status and category
func (l *Log) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		Total: len(l.entries),
		ByStatus: map[Status]int{
			StatusAllowed: 0,
			StatusBlocked: 0,
			StatusFlagged: 0,
		},
		ByCategory: make(map[string]int),
	}
	since := l.now().Add(-24 * time.Hour)
	var toxicitySum float64
	var toxicityCount int
	for i := range l.entries {
		e := &l.entries[i]
		stats.ByStatus[e.Status]++
		if !e.Timestamp.Before(since) {
			stats.Recent++
		}
		if score, ok := e.Metadata["toxicity_score"].(float64); ok {
			toxicitySum += score
			toxicityCount++
		}
		if e.Category != "" {
			stats.ByCategory[e.Category]++
		}
		if stats.Oldest == nil || e.Timestamp.Before(*stats.Oldest) {
			oldest := e.Timestamp
			stats.Oldest = &oldest
		}
		if stats.Newest == nil || e.Timestamp.After(*stats.Newest) {
			newest := e.Timestamp
			stats.Newest = &newest
		}
	}
	if toxicityCount > 0 {
		stats.AverageToxicity = toxicitySum / float64(toxicityCount)
	}
	return stats
}

// Clear drops every entry and returns how many were removed
func (l *Log) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	l.entries = nil
	return n
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
