// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"bias-scan/internal/detector"
	"bias-scan/internal/formatters"
	"bias-scan/internal/formatters/shared"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Formatter renders the bias-free rewrite of each report as a Word document
type Formatter struct {
	now func() time.Time
}

// NewFormatter creates a new DOCX formatter
func NewFormatter() *Formatter {
	return &Formatter{now: time.Now}
}

func (f *Formatter) Name() string {
	return "docx"
}

func (f *Formatter) Description() string {
	return "Bias-free Word document with the rewritten text and a summary of detected biases"
}

func (f *Formatter) FileExtension() string {
	return ".docx"
}

func (f *Formatter) Format(reports []detector.Report, options formatters.FormatterOptions) (string, error) {
	doc := shared.BuildDocument(reports, options, f.now())

	var body strings.Builder
	writeParagraph(&body, doc.Title, true, 32)
	for _, section := range doc.Sections {
		for _, line := range section.SummaryLines(doc.Generated) {
			writeParagraph(&body, line, false, 20)
		}
		writeParagraph(&body, "", false, 0)
		writeParagraph(&body, "Improved Content:", true, 24)
		for _, p := range section.Paragraphs {
			writeParagraph(&body, p, false, 0)
		}
	}

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", packageRels},
		{"word/document.xml", document},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return "", fmt.Errorf("error creating %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return "", fmt.Errorf("error writing %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("error finishing DOCX: %w", err)
	}
	return out.String(), nil
}

// writeParagraph appends one w:p; size is in half-points, 0 keeps the default
func writeParagraph(b *strings.Builder, text string, bold bool, size int) {
	b.WriteString("<w:p><w:r>")
	if bold || size > 0 {
		b.WriteString("<w:rPr>")
		if bold {
			b.WriteString("<w:b/>")
		}
		if size > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, size)
		}
		b.WriteString("</w:rPr>")
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(b, []byte(text))
	b.WriteString("</w:t></w:r></w:p>")
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
