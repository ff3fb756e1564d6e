// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"archive/zip"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"bias-scan/internal/observability"
)

var (
	docxCellBoundary = regexp.MustCompile(`</w:tc>\s*<w:tc[^>]*>`)
	docxParagraph    = regexp.MustCompile(`<w:p(?:\s[^>]*)?>|</w:p>|<w:br[^>]*/>`)
	docxTab          = regexp.MustCompile(`<w:tab[^>]*/?>`)
	odfParagraph     = regexp.MustCompile(`<text:(?:p|h)(?:\s[^>]*)?>|</text:(?:p|h)>|<text:line-break/>`)
	odfTab           = regexp.MustCompile(`<text:tab/>`)
	odfSpace         = regexp.MustCompile(`<text:s(?: text:c="\d+")?/>`)
	anyTag           = regexp.MustCompile(`<[^>]*>`)
	runsOfSpaces     = regexp.MustCompile(`[ \t]+`)
	blankLines       = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// maxZipEntryBytes caps a single decompressed XML part
const maxZipEntryBytes = 50 << 20

// OfficePreprocessor extracts text from Word and OpenDocument text files
type OfficePreprocessor struct {
	observer *observability.StandardObserver
}

// NewOfficePreprocessor creates a new office document preprocessor
func NewOfficePreprocessor() *OfficePreprocessor {
	return &OfficePreprocessor{}
}

// SetObserver sets the observability component
func (op *OfficePreprocessor) SetObserver(observer *observability.StandardObserver) {
	op.observer = observer
}

// GetName returns the name of this preprocessor
func (op *OfficePreprocessor) GetName() string {
	return "Office Text Extractor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (op *OfficePreprocessor) GetSupportedExtensions() []string {
	return []string{".docx", ".odt"}
}

// CanProcess checks if this preprocessor can handle the given file
func (op *OfficePreprocessor) CanProcess(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return ext == ".docx" || ext == ".odt"
}

// Process extracts the document body, headers and footers
func (op *OfficePreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finish := startTiming(op.observer, "office_preprocessor", filePath)

	reader, err := zip.OpenReader(filePath)
	if err != nil {
		finish(false, err.Error())
		return nil, fmt.Errorf("error opening document: %w", err)
	}
	defer reader.Close()

	var text, format string
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".docx":
		format = "Word Document"
		text, err = extractDocxText(&reader.Reader)
	default:
		format = "OpenDocument Text"
		text, err = extractOdtText(&reader.Reader)
	}
	if err != nil {
		finish(false, err.Error())
		return nil, err
	}

	finish(true, fmt.Sprintf("%d bytes of text", len(text)))
	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Format:        format,
		ProcessorType: "office",
	}, nil
}

// extractDocxText reads word/document.xml followed by headers and footers
func extractDocxText(r *zip.Reader) (string, error) {
	var document *zip.File
	var extras []*zip.File
	for _, file := range r.File {
		switch {
		case file.Name == "word/document.xml":
			document = file
		case strings.HasPrefix(file.Name, "word/header") && strings.HasSuffix(file.Name, ".xml"),
			strings.HasPrefix(file.Name, "word/footer") && strings.HasSuffix(file.Name, ".xml"):
			extras = append(extras, file)
		}
	}
	if document == nil {
		return "", fmt.Errorf("word/document.xml not found in the archive")
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].Name < extras[j].Name })

	parts := make([]string, 0, 1+len(extras))
	for _, file := range append([]*zip.File{document}, extras...) {
		raw, err := readZipEntry(file)
		if err != nil {
			return "", err
		}
		xml := docxCellBoundary.ReplaceAllString(raw, "\t")
		xml = docxParagraph.ReplaceAllString(xml, "\n")
		xml = docxTab.ReplaceAllString(xml, "\t")
		if part := cleanXMLText(xml); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// extractOdtText reads content.xml
func extractOdtText(r *zip.Reader) (string, error) {
	for _, file := range r.File {
		if file.Name != "content.xml" {
			continue
		}
		raw, err := readZipEntry(file)
		if err != nil {
			return "", err
		}
		xml := odfParagraph.ReplaceAllString(raw, "\n")
		xml = odfTab.ReplaceAllString(xml, "\t")
		xml = odfSpace.ReplaceAllString(xml, " ")
		return cleanXMLText(xml), nil
	}
	return "", fmt.Errorf("content.xml not found in the archive")
}

func readZipEntry(file *zip.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening %s: %w", file.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxZipEntryBytes+1))
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", file.Name, err)
	}
	if len(data) > maxZipEntryBytes {
		return "", fmt.Errorf("%s too large after decompression", file.Name)
	}
	return string(data), nil
}

// cleanXMLText strips the remaining tags, decodes entities and tidies whitespace
func cleanXMLText(xml string) string {
	text := anyTag.ReplaceAllString(xml, "")
	text = html.UnescapeString(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(runsOfSpaces.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
