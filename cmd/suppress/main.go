// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"
	"sort"
	"time"

	"bias-scan/internal/detector"
	"bias-scan/internal/paths"
	"bias-scan/internal/suppressions"
)

const usage = `Usage: bias-suppress [--suppression-file path] <command> [options]

Commands:
  list                       Show every suppression rule
  add --reason r [options]   Add a rule (--category, --source, --text, --expires, --created-by)
  disable <id>               Keep a rule but stop it from suppressing
  enable <id>                Re-enable a disabled rule
  remove <id>                Delete a rule
  cleanup                    Delete every expired rule
`

var errUsage = errors.New("invalid usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("bias-suppress", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	suppressionFile := global.String("suppression-file", paths.DefaultSuppressionsFile, "Path to suppression configuration file")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprintln(stderr, "Error: a command is required")
		fmt.Fprint(stderr, usage)
		return 2
	}

	manager := suppressions.NewSuppressionManager(paths.NormalizePath(*suppressionFile))
	if err := manager.LoadError(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	var err error
	switch command, cmdArgs := rest[0], rest[1:]; command {
	case "list":
		listSuppressions(stdout, manager)
	case "add":
		err = addSuppression(stdout, stderr, manager, cmdArgs)
	case "disable":
		err = withID(cmdArgs, func(id string) error {
			if err := manager.DisableSuppressionByID(id); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Disabled suppression rule: %s\n", id)
			return nil
		})
	case "enable":
		err = withID(cmdArgs, func(id string) error {
			if err := manager.EnableSuppressionByID(id); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Enabled suppression rule: %s\n", id)
			return nil
		})
	case "remove":
		err = withID(cmdArgs, func(id string) error {
			if err := manager.RemoveSuppression(id); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Removed suppression rule: %s\n", id)
			return nil
		})
	case "cleanup":
		var removed int
		if removed, err = manager.CleanupExpired(); err == nil {
			fmt.Fprintf(stdout, "Cleaned up %d expired suppression rules\n", removed)
		}
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n", command)
		fmt.Fprint(stderr, usage)
		return 2
	}

	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 2
	}
	return 0
}

func withID(args []string, fn func(id string) error) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("exactly one rule ID is required")
	}
	return fn(args[0])
}

func addSuppression(stdout, stderr io.Writer, manager *suppressions.SuppressionManager, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	category := fs.String("category", "", "Bias category to suppress (empty matches any)")
	source := fs.String("source", "", "Source glob, e.g. docs/*.md (empty matches any)")
	text := fs.String("text", "", "Pin the rule to this exact text (needs --category and --source)")
	reason := fs.String("reason", "", "Why the finding is acceptable (required)")
	expires := fs.String("expires", "", "Expiry: 30d, 2w, 12h, 2025-12-31 or never")
	createdBy := fs.String("created-by", currentUser(), "Author recorded on the rule")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	expiresAt, err := suppressions.ParseExpiry(*expires, time.Now())
	if err != nil {
		return err
	}

	opts := suppressions.AddOptions{
		SourceGlob: *source,
		Text:       *text,
		Reason:     *reason,
		CreatedBy:  *createdBy,
		ExpiresAt:  expiresAt,
	}
	if *category != "" {
		opts.Category = detector.ParseCategory(*category)
	}

	rule, err := manager.AddSuppression(opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Added suppression rule: %s\n", rule.ID)
	return nil
}

func listSuppressions(w io.Writer, manager *suppressions.SuppressionManager) {
	rules := manager.ListSuppressions()
	if len(rules) == 0 {
		fmt.Fprintln(w, "No suppression rules found.")
		return
	}

	now := time.Now()
	fmt.Fprintf(w, "Found %d suppression rules:\n\n", len(rules))
	for _, rule := range rules {
		fmt.Fprintf(w, "ID: %s\n", rule.ID)
		fmt.Fprintf(w, "Category: %s\n", orAny(string(rule.Category)))
		fmt.Fprintf(w, "Source: %s\n", orAny(rule.SourceGlob))
		if rule.Hash != "" {
			fmt.Fprintf(w, "Hash: %s\n", rule.Hash)
		}
		fmt.Fprintf(w, "Reason: %s\n", rule.Reason)
		fmt.Fprintf(w, "Enabled: %t\n", rule.Enabled)
		if rule.CreatedBy != "" {
			fmt.Fprintf(w, "Created By: %s\n", rule.CreatedBy)
		}
		fmt.Fprintf(w, "Created At: %s\n", rule.CreatedAt.Format("2006-01-02 15:04:05"))
		if rule.ExpiresAt != nil {
			status := ""
			if rule.Expired(now) {
				status = " (expired)"
			}
			fmt.Fprintf(w, "Expires At: %s%s\n", rule.ExpiresAt.Format("2006-01-02 15:04:05"), status)
		}
		if rule.LastSeenAt != nil {
			fmt.Fprintf(w, "Last Seen: %s\n", rule.LastSeenAt.Format("2006-01-02 15:04:05"))
		}
		if len(rule.Metadata) > 0 {
			fmt.Fprintln(w, "Metadata:")
			keys := make([]string, 0, len(rule.Metadata))
			for k := range rule.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "  %s: %s\n", k, rule.Metadata[k])
			}
		}
		fmt.Fprintln(w, "---")
	}
}

func orAny(s string) string {
	if s == "" {
		return "(any)"
	}
	return s
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}
