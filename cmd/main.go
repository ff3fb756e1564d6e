// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"bias-scan/internal/config"
	"bias-scan/internal/core"
	"bias-scan/internal/detector"
	"bias-scan/internal/formatters"
	_ "bias-scan/internal/formatters/csv"
	_ "bias-scan/internal/formatters/docx"
	_ "bias-scan/internal/formatters/json"
	_ "bias-scan/internal/formatters/pdf"
	_ "bias-scan/internal/formatters/text"
	_ "bias-scan/internal/formatters/yaml"
	"bias-scan/internal/help"
	"bias-scan/internal/monitoring"
	"bias-scan/internal/observability"
	"bias-scan/internal/performance"
	"bias-scan/internal/preprocessors"
	"bias-scan/internal/resilience"
	"bias-scan/internal/router"
	"bias-scan/internal/suppressions"
	"bias-scan/internal/validators/rules"
	"bias-scan/internal/version"
	"bias-scan/internal/web"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// flagValues holds command line flag values after parsing
type flagValues struct {
	inputFile            string
	text                 string
	recursive            bool
	outputFormat         string
	outputFile           string
	configFile           string
	profileName          string
	listProfiles         bool
	severity             string
	categories           string
	failOn               string
	classificationMode   string
	patternsFile         string
	showImproved         bool
	showMatch            bool
	verbose              bool
	debug                bool
	quiet                bool
	noColor              bool
	suppressionFile      string
	showSuppressed       bool
	generateSuppressions bool
	webMode              bool
	webPort              int
	showVersion          bool
	showHelp             bool
}

func main() {
	var f flagValues
	flag.StringVar(&f.inputFile, "file", "", "Path to the input file, directory, or glob pattern (e.g., *.docx)")
	flag.StringVar(&f.text, "text", "", "Analyze the given text instead of a file")
	flag.BoolVar(&f.recursive, "recursive", false, "Recursively scan directories")
	flag.StringVar(&f.outputFormat, "format", "", "Output format: text, json, yaml, csv, pdf, docx (default: text)")
	flag.StringVar(&f.outputFile, "output", "", "Path to output file (if not specified, output to stdout)")
	flag.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&f.profileName, "profile", "", "Profile name to use from config file")
	flag.BoolVar(&f.listProfiles, "list-profiles", false, "List available profiles in config file")
	flag.StringVar(&f.severity, "severity", "", "Severities to display: low, medium, high, or combinations like 'medium,high' (default: all)")
	flag.StringVar(&f.categories, "categories", "", "Bias categories to display, comma separated (default: all)")
	flag.StringVar(&f.failOn, "fail-on", "", "Exit with status 1 when a finding reaches this severity: low, medium, high, none (default: high)")
	flag.StringVar(&f.classificationMode, "classification-mode", "", "Inclusive-context gate granularity: whole_text or sentence")
	flag.StringVar(&f.patternsFile, "patterns", "", "YAML file with additional categories and rules")
	flag.BoolVar(&f.showImproved, "show-improved", false, "Print the rewritten, more inclusive text")
	flag.BoolVar(&f.showMatch, "show-match", false, "Display the matched keywords for each finding")
	flag.BoolVar(&f.verbose, "verbose", false, "Display explanation, impact and context for each finding")
	flag.BoolVar(&f.debug, "debug", false, "Show extraction, gating and scoring steps")
	flag.BoolVar(&f.quiet, "quiet", false, "Suppress progress output (useful for scripts and CI/CD)")
	flag.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	flag.StringVar(&f.suppressionFile, "suppression-file", "", "Path to suppression file (default: .bias-scan-suppressions.yaml)")
	flag.BoolVar(&f.showSuppressed, "show-suppressed", false, "Include suppressed findings in output")
	flag.BoolVar(&f.generateSuppressions, "generate-suppressions", false, "Generate disabled suppression rules for all findings")
	flag.BoolVar(&f.webMode, "web", false, "Start web server mode instead of CLI scanning")
	flag.IntVar(&f.webPort, "port", 0, "Port for web server (default: 8080)")
	flag.BoolVar(&f.showVersion, "version", false, "Show version information")
	flag.BoolVar(&f.showHelp, "help", false, "Show help information")
	flag.Parse()

	os.Exit(run(f, flag.Args()))
}

func run(f flagValues, args []string) int {
	if f.showVersion {
		fmt.Println(version.Info())
		return core.ExitClean
	}

	// A missing .env is normal
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	cfg := loadConfiguration(f.configFile)
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return core.ExitError
	}

	if f.listProfiles {
		printProfiles(cfg, f.configFile)
		return core.ExitClean
	}

	settings, err := resolveConfiguration(cfg, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return core.ExitError
	}

	// Auto-detect non-interactive environment
	isInteractive := isTerminal(os.Stderr)
	if !isInteractive || f.quiet || os.Getenv("CI") != "" || f.outputFile != "" {
		settings.NoColor = true
	}

	observer := newObserver(settings)
	if debugObs := observability.Debug(observer); debugObs != nil {
		debugObs.LogDetail("main", fmt.Sprintf("Command line arguments: %v", os.Args))
		debugObs.LogDetail("config", fmt.Sprintf("Resolved settings: format=%s severity=%s categories=%s mode=%s fail_on=%s",
			settings.Format, settings.Severity, settings.Categories, settings.ClassificationMode, settings.FailOn))
	}

	eng, err := core.BuildEngine(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if resilience.IsType(err, resilience.ErrorTypePatternCompilation) {
			fmt.Fprintln(os.Stderr, "Fix or remove the offending rule in the patterns file and try again.")
		}
		return core.ExitError
	}

	if f.showHelp {
		showHelp(eng.HelpProviders(), settings.NoColor, args)
		return core.ExitClean
	}

	stats := performance.NewStats()
	suppressionManager := suppressions.NewSuppressionManager(settings.SuppressionFile)
	if err := suppressionManager.LoadError(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	fileRouter := router.NewFileRouter(preprocessors.NewDefaultManager(settings.MaxFileBytes, observer), observer)

	if f.webMode {
		if err := validateWebModeFlags(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return core.ExitError
		}
		metrics := monitoring.NewMetrics()
		scanner := core.NewScanner(eng, fileRouter,
			core.WithSuppressions(suppressionManager),
			core.WithObserver(observer),
			core.WithRecorders(stats, metrics),
		)
		if err := startWebServer(cfg.Web, f.webPort, scanner, stats, metrics, observer); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return core.ExitError
		}
		return core.ExitClean
	}

	scanner := core.NewScanner(eng, fileRouter,
		core.WithSuppressions(suppressionManager),
		core.WithObserver(observer),
		core.WithRecorders(stats),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	showProgress := isInteractive && !f.quiet && !settings.Debug
	reports, hadErrors, err := collectReports(ctx, scanner, f, settings, showProgress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return core.ExitError
	}
	if debugObs := observability.Debug(observer); debugObs != nil {
		logRuleHits(debugObs, eng.Matcher(), reports)
	}

	if f.generateSuppressions {
		added, err := suppressionManager.GenerateSuppressionRules(reports, "Generated by --generate-suppressions", false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to generate suppressions: %v\n", err)
			return core.ExitError
		}
		if !f.quiet {
			fmt.Fprintf(os.Stderr, "Generated %d disabled suppression rules in %s\n", added, suppressionManager.GetConfigPath())
		}
	}

	options, err := formatterOptions(settings, f.showSuppressed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return core.ExitError
	}
	warnUnknownCategories(eng.Library().AllCategories(), options.Categories)

	output, err := formatters.Export(settings.Format, reports, options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return core.ExitError
	}
	if err := writeOutput(f.outputFile, output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return core.ExitError
	}

	if settings.Debug {
		printStatsSummary(os.Stderr, stats.Snapshot())
	}

	if hadErrors {
		return core.ExitError
	}
	failOn, _ := parseFailOn(settings.FailOn)
	return core.ExitCode(filterForExit(reports, options.Categories), failOn)
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	// If config file is not specified, try to find one in standard locations
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg = config.Default()
	}
	return cfg
}

// resolveConfiguration applies defaults < config file < profile < explicit flags
func resolveConfiguration(cfg *config.Config, f flagValues) (config.Defaults, error) {
	settings, err := cfg.Resolve(f.profileName)
	if err != nil {
		return settings, err
	}

	overrideIfSet(&settings.Format, "format", f.outputFormat)
	overrideIfSet(&settings.Severity, "severity", f.severity)
	overrideIfSet(&settings.Categories, "categories", f.categories)
	overrideIfSet(&settings.FailOn, "fail-on", f.failOn)
	overrideIfSet(&settings.ClassificationMode, "classification-mode", f.classificationMode)
	overrideIfSet(&settings.PatternsFile, "patterns", f.patternsFile)
	overrideIfSet(&settings.SuppressionFile, "suppression-file", f.suppressionFile)
	if isFlagSet("recursive") {
		settings.Recursive = f.recursive
	}
	if isFlagSet("show-improved") {
		settings.ShowImproved = f.showImproved
	}
	if isFlagSet("show-match") {
		settings.ShowMatch = f.showMatch
	}
	if isFlagSet("verbose") {
		settings.Verbose = f.verbose
	}
	if isFlagSet("no-color") {
		settings.NoColor = f.noColor
	}
	if f.debug || os.Getenv("BIAS_SCAN_DEBUG") != "" {
		settings.Debug = true
	}

	settings.Format = strings.ToLower(settings.Format)
	if !config.IsFormat(settings.Format) {
		return settings, fmt.Errorf("unknown format %q (want %s)", settings.Format, strings.Join(config.Formats, ", "))
	}
	if config.IsDocumentFormat(settings.Format) && f.outputFile == "" {
		return settings, fmt.Errorf("format %q writes a binary document and requires --output", settings.Format)
	}
	if _, err := config.ParseSeverityList(settings.Severity); err != nil {
		return settings, err
	}
	if _, err := parseFailOn(settings.FailOn); err != nil {
		return settings, err
	}
	return settings, nil
}

func overrideIfSet(dst *string, name, value string) {
	if isFlagSet(name) {
		*dst = value
	}
}

// isFlagSet reports whether the flag was given explicitly
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// parseFailOn accepts a severity name or "none"
func parseFailOn(value string) (detector.Severity, error) {
	if strings.EqualFold(strings.TrimSpace(value), "none") {
		return detector.SeverityNone, nil
	}
	s, err := detector.ParseSeverity(value)
	if err != nil {
		return detector.SeverityNone, fmt.Errorf("fail-on: %w", err)
	}
	if s == detector.SeverityNone {
		return detector.SeverityHigh, nil
	}
	return s, nil
}

func newObserver(settings config.Defaults) *observability.StandardObserver {
	if settings.Debug {
		return observability.NewDebugObserver(os.Stderr).StandardObserver
	}
	return observability.NewStandardObserver(observability.ParseLevel(false, settings.Verbose), os.Stderr)
}

func formatterOptions(settings config.Defaults, showSuppressed bool) (formatters.FormatterOptions, error) {
	severities, err := config.ParseSeverityList(settings.Severity)
	if err != nil {
		return formatters.FormatterOptions{}, err
	}
	return formatters.FormatterOptions{
		Severities:     severities,
		Categories:     config.ParseCategoryList(settings.Categories),
		Verbose:        settings.Verbose,
		NoColor:        settings.NoColor,
		ShowMatch:      settings.ShowMatch,
		ShowImproved:   settings.ShowImproved,
		ShowSuppressed: showSuppressed,
	}, nil
}

// filterForExit limits exit-code evaluation to the requested categories
func filterForExit(reports []detector.Report, categories []detector.Category) []detector.Report {
	if len(categories) == 0 {
		return reports
	}
	opts := formatters.FormatterOptions{Categories: categories}
	filtered := make([]detector.Report, len(reports))
	for i, r := range reports {
		r.Analysis.Findings = opts.Filter(r.Analysis.Findings)
		filtered[i] = r
	}
	return filtered
}

func warnUnknownCategories(known []detector.Category, requested []detector.Category) {
	set := make(map[detector.Category]bool, len(known))
	for _, c := range known {
		set[c] = true
	}
	for _, c := range requested {
		if !set[c] {
			fmt.Fprintf(os.Stderr, "Warning: unknown category %q will never match\n", c)
		}
	}
}

func writeOutput(outputFile, output string) error {
	if outputFile == "" {
		_, err := io.WriteString(os.Stdout, output)
		return err
	}
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Clean(outputFile), []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func printProfiles(cfg *config.Config, configFile string) {
	names := cfg.ListProfiles()
	if len(names) == 0 {
		fmt.Println("No profiles found in configuration")
		return
	}
	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Printf("Available profiles (%s):\n", source)
	for _, name := range names {
		p := cfg.Profiles[name]
		fmt.Printf("  %-12s %s\n", name, p.Description)
	}
}

func showHelp(providers []help.Provider, noColor bool, args []string) {
	helpSystem := help.NewSystem(noColor)
	for _, p := range providers {
		helpSystem.RegisterProvider(p)
	}
	switch {
	case len(args) == 0:
		helpSystem.ShowGeneralHelp()
	case strings.EqualFold(args[0], "checks"):
		helpSystem.ShowChecksHelp()
	default:
		helpSystem.ShowCheckHelp(args[0])
	}
}

// logRuleHits reports each canonical rule that fired with its library weights
func logRuleHits(d *observability.DebugObserver, matcher *rules.Matcher, reports []detector.Report) {
	for _, report := range reports {
		for _, hit := range matcher.Hits(report.Analysis.InputText) {
			d.LogDetail("rules", fmt.Sprintf("%s: %s matched %q (base confidence %.2f, base severity %s, from %s)",
				report.Source, hit.Category, hit.Match, hit.BaseConfidence, hit.BaseSeverity, hit.Source))
		}
	}
}

func validateWebModeFlags(f flagValues) error {
	var conflicting []string
	if f.inputFile != "" {
		conflicting = append(conflicting, "--file")
	}
	if f.text != "" {
		conflicting = append(conflicting, "--text")
	}
	if f.outputFile != "" {
		conflicting = append(conflicting, "--output")
	}
	if f.generateSuppressions {
		conflicting = append(conflicting, "--generate-suppressions")
	}
	if len(conflicting) > 0 {
		return fmt.Errorf("--web cannot be combined with %s", strings.Join(conflicting, ", "))
	}
	if f.webPort < 0 || f.webPort > 65535 {
		return fmt.Errorf("invalid port %d", f.webPort)
	}
	return nil
}

func startWebServer(webCfg config.WebConfig, port int, scanner *core.Scanner, stats *performance.Stats, metrics *monitoring.Metrics, observer *observability.StandardObserver) error {
	if port > 0 {
		webCfg.Port = port
	}
	server, err := web.NewWebServer(webCfg, web.Dependencies{
		Scanner:  scanner,
		Stats:    stats,
		Metrics:  metrics,
		Observer: observer,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Start(ctx)
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
