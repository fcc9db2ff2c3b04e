//go:build !nopdf

package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func init() {
	optionalExtractors[".pdf"] = ExtractorFunc(extractPDF)
}

// extractPDF returns the plain text of every page, each followed by a newline.
func extractPDF(data []byte) (_ string, err error) {
	// The parser panics on malformed objects
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			builder.WriteString("\n")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}

		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
