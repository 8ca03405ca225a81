package codec

import (
	"fmt"
	"strings"

	"skill-ladder/internal/domain/framework"
	"skill-ladder/internal/domain/level"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q", raw)
	}
}

// DetectFormat treats anything starting with an object or list delimiter as the
// structured form. It does not validate the document.
func DetectFormat(text string) Format {
	trimmed := strings.TrimLeft(text, " \t\r\n\ufeff")
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}
	return FormatMarkdown
}

const byteOrderMark = "\ufeff"

// Parse detects the format and imports the document with it. A leading byte
// order mark is dropped first so both parsers see the detected text.
func Parse(text string, levels []level.Level) (Document, Format, error) {
	text = strings.TrimPrefix(text, byteOrderMark)
	format := DetectFormat(text)
	var (
		doc Document
		err error
	)
	switch format {
	case FormatJSON:
		doc, err = ImportJSON([]byte(text))
	default:
		doc, err = ImportMarkdown(text, levels)
	}
	if err != nil {
		return Document{}, format, err
	}
	return doc, format, nil
}

// Export renders competencies in the requested format.
func Export(competencies []framework.Competency, levels []level.Level, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportJSON(competencies)
	case FormatMarkdown:
		return []byte(ExportMarkdown(competencies, levels)), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", string(format))
	}
}
