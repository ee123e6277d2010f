package codec

import (
	"path/filepath"
	"strings"
)

// OutputFileName derives the file name for a processed payload:
// <base>_processed<ext>, where the extension follows the target format. A
// format without a dedicated extension keeps the original one.
func OutputFileName(fileName string, format Format) string {
	ext := formatExtension(format)
	if ext == "" {
		ext = filepath.Ext(fileName)
	}
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if base == "" {
		base = "attachment"
	}
	return base + "_processed" + ext
}

// OutputContentType derives the content type for a processed payload,
// leaving it unchanged for formats without a dedicated type.
func OutputContentType(contentType string, format Format) string {
	switch format {
	case FormatXML:
		return "application/xml"
	case FormatHTML:
		return "text/html"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return contentType
	}
}

func formatExtension(format Format) string {
	switch format {
	case FormatXML:
		return ".xml"
	case FormatHTML:
		return ".html"
	case FormatMarkdown:
		return ".md"
	default:
		return ""
	}
}
