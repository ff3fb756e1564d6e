// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"strings"
	"testing"
)

type stubProvider struct{ info CheckInfo }

func (s stubProvider) GetCheckInfo() CheckInfo { return s.info }

func newTestSystem(buf *bytes.Buffer) *System {
	h := NewSystem(true)
	h.SetOutput(buf)
	h.RegisterProvider(stubProvider{CheckInfo{Name: "TOXIC_LANGUAGE", ShortDescription: "Hostile wording", Patterns: []string{"stupid"}}})
	h.RegisterProvider(stubProvider{CheckInfo{Name: "GROUPTHINK", ShortDescription: "Assumed consensus", PositiveKeywords: []string{"everyone", "agree"}}})
	return h
}

func TestNamesSorted(t *testing.T) {
	h := newTestSystem(&bytes.Buffer{})
	names := h.Names()
	if len(names) != 2 || names[0] != "GROUPTHINK" || names[1] != "TOXIC_LANGUAGE" {
		t.Errorf("Names() = %v", names)
	}
}

func TestShowCheckHelp(t *testing.T) {
	var buf bytes.Buffer
	h := newTestSystem(&buf)

	if !h.ShowCheckHelp("groupthink") {
		t.Fatal("lookup should be case-insensitive")
	}
	if !strings.Contains(buf.String(), "everyone, agree") {
		t.Errorf("keywords missing:\n%s", buf.String())
	}

	buf.Reset()
	if h.ShowCheckHelp("missing") {
		t.Error("unknown check should report false")
	}
	if !strings.Contains(buf.String(), "not found") {
		t.Errorf("missing error message:\n%s", buf.String())
	}
}

func TestShowChecksHelpListsAll(t *testing.T) {
	var buf bytes.Buffer
	h := newTestSystem(&buf)
	h.ShowChecksHelp()
	out := buf.String()
	if strings.Index(out, "GROUPTHINK") > strings.Index(out, "TOXIC_LANGUAGE") {
		t.Errorf("checks not listed alphabetically:\n%s", out)
	}
	if !strings.Contains(out, "bias-scan --help groupthink") {
		t.Errorf("example missing:\n%s", out)
	}
}

func TestShowGeneralHelpMentionsFlags(t *testing.T) {
	var buf bytes.Buffer
	newTestSystem(&buf).ShowGeneralHelp()
	for _, flag := range []string{"--classification-mode", "--show-improved", "--fail-on", "EXIT CODES"} {
		if !strings.Contains(buf.String(), flag) {
			t.Errorf("general help missing %q", flag)
		}
	}
}
