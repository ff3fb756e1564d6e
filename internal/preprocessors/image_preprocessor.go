// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"bias-scan/internal/observability"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// captionFields are the EXIF fields people write prose into
var captionFields = []exif.FieldName{
	exif.ImageDescription,
	exif.UserComment,
	exif.Artist,
	exif.Copyright,
	exif.XPComment,
	exif.XPTitle,
	exif.XPSubject,
}

// ImagePreprocessor extracts caption text from image EXIF data
type ImagePreprocessor struct {
	observer *observability.StandardObserver
}

// NewImagePreprocessor creates a new image caption preprocessor
func NewImagePreprocessor() *ImagePreprocessor {
	return &ImagePreprocessor{}
}

// SetObserver sets the observability component
func (ip *ImagePreprocessor) SetObserver(observer *observability.StandardObserver) {
	ip.observer = observer
}

// GetName returns the name of this preprocessor
func (ip *ImagePreprocessor) GetName() string {
	return "Image Caption Extractor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ip *ImagePreprocessor) GetSupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".tif", ".tiff"}
}

// CanProcess checks if this preprocessor can handle the given file
func (ip *ImagePreprocessor) CanProcess(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range ip.GetSupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// Process decodes EXIF data and joins the caption fields, one per line.
// An image without EXIF data yields empty text, not an error.
func (ip *ImagePreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finish := startTiming(ip.observer, "image_preprocessor", filePath)

	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		finish(false, err.Error())
		return nil, fmt.Errorf("error opening image: %w", err)
	}
	defer f.Close()

	result := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        "Image",
		ProcessorType: "image",
		Metadata:      make(map[string]interface{}),
	}

	x, err := exif.Decode(f)
	if err != nil {
		result.Metadata["exif"] = "none"
		finish(true, "no EXIF data")
		return result, nil
	}

	var lines []string
	for _, field := range captionFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		value := strings.TrimSpace(tagText(field, tag))
		if value == "" {
			continue
		}
		result.Metadata[string(field)] = value
		lines = append(lines, value)
	}
	result.Text = strings.Join(lines, "\n")

	finish(true, fmt.Sprintf("%d caption fields", len(lines)))
	return result, nil
}

// tagText decodes a caption tag. XP* fields are UTF-16LE byte arrays and
// UserComment carries an 8 byte character code prefix.
func tagText(field exif.FieldName, tag *tiff.Tag) string {
	switch {
	case strings.HasPrefix(string(field), "XP"):
		return decodeUTF16LE(tag.Val)
	case field == exif.UserComment:
		if len(tag.Val) > 8 {
			code := strings.TrimRight(string(tag.Val[:8]), "\x00 ")
			if code == "UNICODE" {
				return decodeUTF16LE(tag.Val[8:])
			}
			return strings.TrimRight(string(tag.Val[8:]), "\x00")
		}
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimRight(s, "\x00")
}

func decodeUTF16LE(b []byte) string {
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		v := uint16(b[i]) | uint16(b[i+1])<<8
		if v == 0 {
			break
		}
		u = append(u, v)
	}
	return string(utf16.Decode(u))
}
