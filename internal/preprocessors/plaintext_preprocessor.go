// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"bias-scan/internal/observability"
)

// PlainTextPreprocessor handles text files, and flattens CSV into text
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{
		".txt", ".text", ".log", ".md", ".markdown", ".rst",
		".html", ".htm", ".xml", ".json", ".yaml", ".yml",
		".csv", ".tsv", ".eml", ".rtf",
	}
}

// CanProcess checks if this preprocessor can handle the given file. Unknown
// extensions are accepted when the content sniffs as UTF-8 text.
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supportedExt := range ptp.GetSupportedExtensions() {
		if ext == supportedExt {
			return true
		}
	}
	return isTextFile(filePath)
}

// Process extracts text content from the file
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finish := startTiming(ptp.observer, "plaintext_preprocessor", filePath)

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		finish(false, err.Error())
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	content := string(data)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	format := getFileTypeDescription(ext)
	processorType := "plaintext"
	if ext == ".csv" || ext == ".tsv" {
		delimiter := ','
		if ext == ".tsv" {
			delimiter = '\t'
		}
		flattened, err := FlattenCSV(strings.NewReader(content), delimiter)
		if err != nil {
			finish(false, err.Error())
			return nil, err
		}
		content = flattened
		processorType = "csv"
	}

	finish(true, fmt.Sprintf("%d bytes", len(content)))
	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          content,
		Format:        format,
		ProcessorType: processorType,
	}, nil
}

// FlattenCSV joins the cells of each record with spaces and records with newlines.
// Ragged rows are accepted.
func FlattenCSV(r io.Reader, delimiter rune) (string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var lines []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse CSV: %w", err)
		}
		cells := make([]string, 0, len(record))
		for _, cell := range record {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " "))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// isTextFile performs a quick check to determine if a file contains text
func isTextFile(filePath string) bool {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return false
	}
	defer file.Close()

	// Read first 512 bytes to check for binary content
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && n == 0 {
		return false
	}
	buffer = buffer[:n]

	if bytes.IndexByte(buffer, 0) >= 0 {
		return false
	}
	// A multi-byte rune may be cut at the buffer end
	for i := 0; i < utf8.UTFMax && len(buffer) > 0 && !utf8.Valid(buffer); i++ {
		buffer = buffer[:len(buffer)-1]
	}
	if !utf8.Valid(buffer) {
		return false
	}

	printable := 0
	total := 0
	for _, r := range string(buffer) {
		total++
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			printable++
		}
	}
	// Consider it text if more than 95% of characters are printable
	return total > 0 && float64(printable)/float64(total) > 0.95
}

// getFileTypeDescription returns a human-readable description of the file type
func getFileTypeDescription(ext string) string {
	descriptions := map[string]string{
		".txt":      "Plain Text",
		".text":     "Plain Text",
		".log":      "Log File",
		".md":       "Markdown",
		".markdown": "Markdown",
		".rst":      "reStructuredText",
		".html":     "HTML Document",
		".htm":      "HTML Document",
		".xml":      "XML Document",
		".json":     "JSON Data",
		".yaml":     "YAML Document",
		".yml":      "YAML Document",
		".csv":      "CSV Data",
		".tsv":      "TSV Data",
		".eml":      "Email Message",
		".rtf":      "Rich Text",
	}

	if desc, exists := descriptions[ext]; exists {
		return desc
	}
	return "Text File"
}
