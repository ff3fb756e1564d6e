// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bias-scan/internal/detector"
	"bias-scan/internal/formatters"
	"bias-scan/internal/formatters/shared"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Page layout in points on A4 portrait, origin at the upper left corner
const (
	bodyFont     = "Helvetica"
	titleFont    = "Helvetica-Bold"
	bodySize     = 10
	titleSize    = 16
	marginLeft   = 50
	marginTop    = 50
	bodyTopFirst = 85
	linesPerPage = 56
	lineWidth    = 95
)

// Formatter renders the bias-free rewrite of each report as a PDF document
type Formatter struct {
	now func() time.Time
}

// NewFormatter creates a new PDF formatter
func NewFormatter() *Formatter {
	return &Formatter{now: time.Now}
}

func (f *Formatter) Name() string {
	return "pdf"
}

func (f *Formatter) Description() string {
	return "Bias-free PDF document with the rewritten text and a summary of detected biases"
}

func (f *Formatter) FileExtension() string {
	return ".pdf"
}

// Layout as understood by pdfcpu's JSON page description
type layout struct {
	Paper  string          `json:"paper"`
	Origin string          `json:"origin"`
	Pages  map[string]page `json:"pages"`
}

type page struct {
	Content content `json:"content"`
}

type content struct {
	Text []textBox `json:"text"`
}

type textBox struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  font       `json:"font"`
}

type font struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

func (f *Formatter) Format(reports []detector.Report, options formatters.FormatterOptions) (string, error) {
	doc := shared.BuildDocument(reports, options, f.now())

	var lines []string
	for _, section := range doc.Sections {
		for _, l := range section.SummaryLines(doc.Generated) {
			lines = append(lines, encodable(l))
		}
		lines = append(lines, "", "Improved Content:")
		for _, p := range section.Paragraphs {
			lines = append(lines, shared.Wrap(encodable(p), lineWidth)...)
		}
		lines = append(lines, "")
	}

	spec := layout{Paper: "A4P", Origin: "UpperLeft", Pages: make(map[string]page)}
	spec.Pages["1"] = page{Content: content{Text: []textBox{{
		Value: doc.Title,
		Pos:   [2]float64{marginLeft, marginTop},
		Font:  font{Name: titleFont, Size: titleSize},
	}}}}

	for n, start := 1, 0; start < len(lines); n++ {
		top, capacity := float64(marginTop), linesPerPage
		if n == 1 {
			top, capacity = bodyTopFirst, linesPerPage-3
		}
		end := min(start+capacity, len(lines))

		p := spec.Pages[strconv.Itoa(n)]
		p.Content.Text = append(p.Content.Text, textBox{
			Value: strings.Join(lines[start:end], "\n"),
			Pos:   [2]float64{marginLeft, top},
			Font:  font{Name: bodyFont, Size: bodySize},
		})
		spec.Pages[strconv.Itoa(n)] = p
		start = end
	}

	description, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("error describing PDF layout: %w", err)
	}

	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(description), &out, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("error rendering PDF: %w", err)
	}
	return out.String(), nil
}

// encodable replaces runes the standard PDF fonts cannot show
func encodable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r >= 0x20 && r <= 0x7e, r >= 0xa0 && r <= 0xff:
			return r
		default:
			return '?'
		}
	}, s)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
