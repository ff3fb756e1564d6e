// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package suppressions

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bias-scan/internal/detector"
	"bias-scan/internal/paths"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// normalizedPrefixRunes bounds how much of the text feeds a finding hash
const normalizedPrefixRunes = 200

// DefaultExpiry is applied to generated rules
const DefaultExpiry = 7 * 24 * time.Hour

// SuppressionRule represents a single suppression rule.
// Empty Category or SourceGlob match anything. A non-empty Hash pins the
// rule to one finding on one text.
type SuppressionRule struct {
	ID         string            `yaml:"id"`
	Hash       string            `yaml:"hash,omitempty"`
	Category   detector.Category `yaml:"category,omitempty"`
	SourceGlob string            `yaml:"source_glob,omitempty"`
	Reason     string            `yaml:"reason"`
	Enabled    bool              `yaml:"enabled"`
	CreatedBy  string            `yaml:"created_by,omitempty"`
	CreatedAt  time.Time         `yaml:"created_at"`
	LastSeenAt *time.Time        `yaml:"last_seen_at,omitempty"`
	ExpiresAt  *time.Time        `yaml:"expires_at,omitempty"`
	Metadata   map[string]string `yaml:"metadata,omitempty"`
}

// Expired reports whether the rule has passed its expiry time
func (r SuppressionRule) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// matches ignores the enabled flag and expiry
func (r SuppressionRule) matches(category detector.Category, source, hash string) bool {
	if r.Category != "" && r.Category != category {
		return false
	}
	if r.SourceGlob != "" && !matchSource(r.SourceGlob, source) {
		return false
	}
	if r.Hash != "" && r.Hash != hash {
		return false
	}
	return true
}

// matchSource tries the glob against the full source and its base name
func matchSource(glob, source string) bool {
	if ok, err := filepath.Match(glob, source); err == nil && ok {
		return true
	}
	ok, err := filepath.Match(glob, filepath.Base(source))
	return err == nil && ok
}

// SuppressionConfig represents the suppression configuration file
type SuppressionConfig struct {
	Version string            `yaml:"version"`
	Rules   []SuppressionRule `yaml:"rules"`
}

// SuppressionManager handles finding suppressions. It is safe for
// concurrent use by scan workers.
type SuppressionManager struct {
	mu         sync.RWMutex
	configPath string
	config     *SuppressionConfig
	enabled    bool
	loadErr    error
	now        func() time.Time
}

// NewSuppressionManager loads rules from configPath. A missing file is an
// empty rule set; a malformed one is reported by LoadError.
func NewSuppressionManager(configPath string) *SuppressionManager {
	if configPath == "" {
		configPath = paths.GetSuppressionsFile()
	}

	manager := &SuppressionManager{
		configPath: configPath,
		enabled:    true,
		now:        time.Now,
	}
	manager.loadConfig()
	return manager
}

func emptyConfig() *SuppressionConfig {
	return &SuppressionConfig{Version: "1.0", Rules: []SuppressionRule{}}
}

func (sm *SuppressionManager) loadConfig() {
	sm.config = emptyConfig()

	data, err := os.ReadFile(filepath.Clean(sm.configPath))
	if err != nil {
		if !os.IsNotExist(err) {
			sm.loadErr = fmt.Errorf("failed to read suppression file: %w", err)
		}
		return
	}

	var config SuppressionConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		sm.loadErr = fmt.Errorf("failed to parse suppression file %s: %w", sm.configPath, err)
		return
	}
	if config.Rules == nil {
		config.Rules = []SuppressionRule{}
	}
	sm.config = &config
}

// LoadError returns the error hit while reading the suppression file, if any
func (sm *SuppressionManager) LoadError() error {
	return sm.loadErr
}

// NormalizeText lowercases, collapses whitespace and keeps a bounded prefix
func NormalizeText(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	runes := []rune(normalized)
	if len(runes) > normalizedPrefixRunes {
		runes = runes[:normalizedPrefixRunes]
	}
	return string(runes)
}

// FindingHash identifies a category detected in a text from a source.
// The source is reduced to its base name so moved files keep their rules.
func FindingHash(category detector.Category, source, text string) string {
	composite := fmt.Sprintf("%s:%s:%s", category, filepath.Base(source), NormalizeText(text))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(composite)))
}

// IsSuppressed checks if a finding should be suppressed by an active rule
func (sm *SuppressionManager) IsSuppressed(finding detector.BiasFinding, source, text string) (bool, *SuppressionRule) {
	rule, expired := sm.lookup(finding.Category, source, text)
	if rule == nil || expired {
		return false, nil
	}
	return true, rule
}

// GetExpiredRule returns an enabled rule that would match the finding had it not expired
func (sm *SuppressionManager) GetExpiredRule(finding detector.BiasFinding, source, text string) *SuppressionRule {
	rule, expired := sm.lookup(finding.Category, source, text)
	if rule == nil || !expired {
		return nil
	}
	return rule
}

// lookup prefers an active rule over an expired one
func (sm *SuppressionManager) lookup(category detector.Category, source, text string) (*SuppressionRule, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.enabled {
		return nil, false
	}

	hash := FindingHash(category, source, text)
	now := sm.now()
	var expiredRule *SuppressionRule
	for i := range sm.config.Rules {
		rule := sm.config.Rules[i]
		if !rule.Enabled || !rule.matches(category, source, hash) {
			continue
		}
		if rule.Expired(now) {
			if expiredRule == nil {
				expiredRule = &rule
			}
			continue
		}
		return &rule, false
	}
	if expiredRule != nil {
		return expiredRule, true
	}
	return nil, false
}

// Apply moves suppressed findings out of the report's analysis. Findings
// hit only by expired rules stay active and are listed with Expired set.
func (sm *SuppressionManager) Apply(report *detector.Report) {
	if report == nil || len(report.Analysis.Findings) == 0 {
		return
	}

	text := report.Analysis.InputText
	active := make([]detector.BiasFinding, 0, len(report.Analysis.Findings))
	for _, finding := range report.Analysis.Findings {
		rule, expired := sm.lookup(finding.Category, report.Source, text)
		if rule == nil {
			active = append(active, finding)
			continue
		}
		report.SuppressedFindings = append(report.SuppressedFindings, detector.SuppressedFinding{
			Finding:      finding,
			SuppressedBy: rule.ID,
			RuleReason:   rule.Reason,
			ExpiresAt:    rule.ExpiresAt,
			Expired:      expired,
		})
		if expired {
			active = append(active, finding)
		}
	}
	report.Analysis.Findings = active
}

// AddOptions describes a rule created from the command line
type AddOptions struct {
	Category   detector.Category
	SourceGlob string
	Text       string // optional, pins the rule to one text
	Reason     string
	CreatedBy  string
	ExpiresAt  *time.Time
}

// AddSuppression adds an enabled rule and saves the file
func (sm *SuppressionManager) AddSuppression(opts AddOptions) (*SuppressionRule, error) {
	if opts.Reason == "" {
		return nil, fmt.Errorf("a reason is required")
	}
	if opts.Category != "" {
		opts.Category = detector.ParseCategory(string(opts.Category))
		if !opts.Category.IsBuiltin() {
			return nil, fmt.Errorf("unknown category %q", opts.Category)
		}
	}
	if opts.SourceGlob != "" {
		if _, err := filepath.Match(opts.SourceGlob, ""); err != nil {
			return nil, fmt.Errorf("invalid source glob %q: %w", opts.SourceGlob, err)
		}
	}

	rule := SuppressionRule{
		ID:         newRuleID(),
		Category:   opts.Category,
		SourceGlob: opts.SourceGlob,
		Reason:     opts.Reason,
		Enabled:    true,
		CreatedBy:  opts.CreatedBy,
		CreatedAt:  sm.now(),
		ExpiresAt:  opts.ExpiresAt,
	}
	if opts.Text != "" {
		if opts.Category == "" || opts.SourceGlob == "" {
			return nil, fmt.Errorf("a text-pinned rule needs both a category and a source")
		}
		rule.Hash = FindingHash(opts.Category, opts.SourceGlob, opts.Text)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, existing := range sm.config.Rules {
		if existing.Hash == rule.Hash && existing.Category == rule.Category && existing.SourceGlob == rule.SourceGlob {
			return nil, fmt.Errorf("suppression rule %s already covers this finding", existing.ID)
		}
	}
	sm.config.Rules = append(sm.config.Rules, rule)
	if err := sm.saveConfig(); err != nil {
		return nil, err
	}
	return &rule, nil
}

// GenerateSuppressionRules creates one rule per finding in the reports.
// Existing rules only get their last-seen time refreshed.
func (sm *SuppressionManager) GenerateSuppressionRules(reports []detector.Report, reason string, enabled bool) (added int, err error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	existing := make(map[string]int)
	for i := range sm.config.Rules {
		if sm.config.Rules[i].Hash != "" {
			existing[sm.config.Rules[i].Hash] = i
		}
	}

	now := sm.now()
	updated := 0
	for _, report := range reports {
		for _, finding := range report.Analysis.Findings {
			hash := FindingHash(finding.Category, report.Source, report.Analysis.InputText)
			if i, ok := existing[hash]; ok {
				seen := now
				sm.config.Rules[i].LastSeenAt = &seen
				updated++
				continue
			}

			expiry := now.Add(DefaultExpiry)
			seen := now
			sm.config.Rules = append(sm.config.Rules, SuppressionRule{
				ID:         newRuleID(),
				Hash:       hash,
				Category:   finding.Category,
				SourceGlob: filepath.Base(report.Source),
				Reason:     reason,
				Enabled:    enabled,
				CreatedBy:  "generate",
				CreatedAt:  now,
				LastSeenAt: &seen,
				ExpiresAt:  &expiry,
				Metadata: map[string]string{
					"severity":   finding.Severity.String(),
					"confidence": fmt.Sprintf("%.2f", finding.Confidence),
				},
			})
			existing[hash] = len(sm.config.Rules) - 1
			added++
		}
	}

	if added > 0 || updated > 0 {
		return added, sm.saveConfig()
	}
	return 0, nil
}

// RemoveSuppression removes a suppression rule by ID
func (sm *SuppressionManager) RemoveSuppression(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for i, rule := range sm.config.Rules {
		if rule.ID == id {
			sm.config.Rules = append(sm.config.Rules[:i], sm.config.Rules[i+1:]...)
			return sm.saveConfig()
		}
	}
	return fmt.Errorf("suppression rule with ID %s not found", id)
}

// DisableSuppressionByID disables a suppression rule by ID
func (sm *SuppressionManager) DisableSuppressionByID(id string) error {
	return sm.setRuleEnabled(id, false)
}

// EnableSuppressionByID enables a suppression rule by ID
func (sm *SuppressionManager) EnableSuppressionByID(id string) error {
	return sm.setRuleEnabled(id, true)
}

func (sm *SuppressionManager) setRuleEnabled(id string, enabled bool) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for i := range sm.config.Rules {
		if sm.config.Rules[i].ID == id {
			sm.config.Rules[i].Enabled = enabled
			return sm.saveConfig()
		}
	}
	return fmt.Errorf("suppression rule with ID %s not found", id)
}

// ListSuppressions returns a copy of all suppression rules
func (sm *SuppressionManager) ListSuppressions() []SuppressionRule {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	rules := make([]SuppressionRule, len(sm.config.Rules))
	copy(rules, sm.config.Rules)
	return rules
}

// CleanupExpired removes expired suppression rules
func (sm *SuppressionManager) CleanupExpired() (int, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.now()
	active := make([]SuppressionRule, 0, len(sm.config.Rules))
	for _, rule := range sm.config.Rules {
		if !rule.Expired(now) {
			active = append(active, rule)
		}
	}
	removed := len(sm.config.Rules) - len(active)
	sm.config.Rules = active
	if removed > 0 {
		return removed, sm.saveConfig()
	}
	return 0, nil
}

// SetEnabled enables or disables the suppression manager
func (sm *SuppressionManager) SetEnabled(enabled bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = enabled
}

// IsEnabled returns whether the suppression manager is enabled
func (sm *SuppressionManager) IsEnabled() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.enabled
}

// GetConfigPath returns the path to the suppression config file
func (sm *SuppressionManager) GetConfigPath() string {
	return sm.configPath
}

// saveConfig writes the rules with restrictive permissions. Callers hold mu.
func (sm *SuppressionManager) saveConfig() error {
	data, err := yaml.Marshal(sm.config)
	if err != nil {
		return fmt.Errorf("failed to marshal suppression config: %w", err)
	}

	dir := filepath.Dir(sm.configPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(sm.configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write suppression config: %w", err)
	}
	return nil
}

func newRuleID() string {
	return "SUP-" + strings.ToUpper(uuid.NewString()[:8])
}

// ParseExpiry accepts a duration such as "30d", "12h" or "2w", or an RFC 3339
// timestamp. An empty string means the rule never expires.
func ParseExpiry(value string, now time.Time) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "never" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}

	unit := value[len(value)-1]
	var n int
	if _, err := fmt.Sscanf(value[:len(value)-1], "%d", &n); err == nil && n > 0 {
		var t time.Time
		switch unit {
		case 'd':
			t = now.AddDate(0, 0, n)
		case 'w':
			t = now.AddDate(0, 0, 7*n)
		}
		if !t.IsZero() {
			return &t, nil
		}
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("invalid expiry %q: use e.g. 30d, 2w, 12h or 2025-12-31", value)
	}
	t := now.Add(d)
	return &t, nil
}
