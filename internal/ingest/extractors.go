package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// Extractor extracts the text of a file.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// ExtractorFunc adapts a function to an Extractor.
type ExtractorFunc func(data []byte) (string, error)

// Extract implements Extractor.
func (f ExtractorFunc) Extract(data []byte) (string, error) {
	return f(data)
}

// optionalExtractors holds extractors that depend on build tags, registered
// from init functions.
var optionalExtractors = map[string]Extractor{}

var capabilityHints = map[string]string{
	".pdf": "PDF support was disabled in this build. Build without the nopdf tag to enable it",
}

func defaultExtractors() map[string]Extractor {
	extractors := map[string]Extractor{
		".txt":  ExtractorFunc(extractText),
		".md":   ExtractorFunc(extractText),
		".csv":  ExtractorFunc(extractCSV),
		".docx": ExtractorFunc(extractDOCX),
	}
	for extension, extractor := range optionalExtractors {
		extractors[extension] = extractor
	}
	return extractors
}

func capabilityMessage(extension string) string {
	if hint, ok := capabilityHints[extension]; ok {
		return hint
	}
	return fmt.Sprintf("Support for %s files is not available in this build", extension)
}

var errEncoding = &Error{
	Kind:    KindEncoding,
	Message: "File encoding error. Please ensure the file is in UTF-8 format.",
}

// extractText returns the data as is, provided it's valid UTF-8.
func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errEncoding
	}
	return string(data), nil
}

const csvPadding = 2

// csvEscaper keeps multi-line and tabbed cells on one aligned row.
var csvEscaper = strings.NewReplacer("\t", `\t`, "\n", `\n`, "\r", `\r`)

// extractCSV renders the rows as right-aligned columns, prefixed by a row
// index. The first row is the header.
func extractCSV(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errEncoding
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", errors.New("no columns to parse from file")
	}

	header := records[0]
	rows := records[1:]

	columns := len(header)
	for _, row := range rows {
		columns = max(columns, len(row))
	}

	var buffer bytes.Buffer
	writer := tabwriter.NewWriter(&buffer, 0, 0, csvPadding, ' ', tabwriter.AlignRight)

	writeRow := func(index string, cells []string) {
		fmt.Fprint(writer, index, "\t")
		for i := 0; i < columns; i++ {
			cell := "NaN"
			if i < len(cells) {
				cell = csvEscaper.Replace(cells[i])
			}
			fmt.Fprint(writer, cell, "\t")
		}
		fmt.Fprint(writer, "\n")
	}

	writeRow("", header)
	for i, row := range rows {
		writeRow(strconv.Itoa(i), row)
	}

	if err := writer.Flush(); err != nil {
		return "", err
	}

	// Every line starts with the padding of the right-aligned index column
	lines := strings.Split(strings.TrimRight(buffer.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(strings.TrimPrefix(line, strings.Repeat(" ", csvPadding)), " ")
	}

	return strings.Join(lines, "\n"), nil
}
