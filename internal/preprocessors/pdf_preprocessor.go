// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"bias-scan/internal/observability"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// maxPDFPages limits extraction time on very large documents
const maxPDFPages = 200

// PDFPreprocessor validates a PDF with pdfcpu and extracts its text with ledongthuc/pdf
type PDFPreprocessor struct {
	observer  *observability.StandardObserver
	pdfConfig *model.Configuration
}

// NewPDFPreprocessor creates a new PDF preprocessor
func NewPDFPreprocessor() *PDFPreprocessor {
	return &PDFPreprocessor{pdfConfig: model.NewDefaultConfiguration()}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Text Extractor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".pdf"
}

// Process validates the document, records its page count and extracts page text
func (pp *PDFPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finish := startTiming(pp.observer, "pdf_preprocessor", filePath)

	if err := api.ValidateFile(filePath, pp.pdfConfig); err != nil {
		finish(false, err.Error())
		return nil, fmt.Errorf("invalid PDF file: %w", err)
	}

	metadata := make(map[string]interface{})
	pageCount := 0
	if ctx, err := api.ReadContextFile(filePath); err == nil {
		pageCount = ctx.PageCount
	}

	text, extracted, err := extractPDFText(filePath)
	if err != nil {
		finish(false, err.Error())
		return nil, err
	}
	if pageCount == 0 {
		pageCount = extracted
	}
	metadata["pages_extracted"] = extracted

	finish(true, fmt.Sprintf("%d pages", pageCount))
	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Format:        "PDF Document",
		PageCount:     pageCount,
		ProcessorType: "pdf",
		Metadata:      metadata,
	}, nil
}

// extractPDFText returns the text of every readable page, pages separated by blank lines
func extractPDFText(filePath string) (string, int, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	var texts []string
	extracted := 0
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := pageText(p)
		if err != nil {
			continue
		}
		extracted++
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n"), extracted, nil
}

// pageText rebuilds rows top to bottom, inserting spaces at visible gaps
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	// PDF Y grows upwards
	sort.SliceStable(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sorted {
		if line := strings.TrimSpace(rowText(row.Content)); line != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

func averageY(elements []pdf.Text) float64 {
	var total float64
	for _, e := range elements {
		total += e.Y
	}
	return total / float64(len(elements))
}

func rowText(elements []pdf.Text) string {
	sorted := make([]pdf.Text, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var buf bytes.Buffer
	for i, e := range sorted {
		buf.WriteString(e.S)
		if i == len(sorted)-1 {
			break
		}
		fontSize := e.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		// A gap wider than 20% of the font size is a space
		if sorted[i+1].X-(e.X+e.W) > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}
