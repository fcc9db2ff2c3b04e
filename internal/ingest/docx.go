package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// extractDOCX returns the text of every top-level paragraph of a Word
// document's body, one paragraph per line. Paragraphs inside tables are
// skipped.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var document *zip.File
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			document = file
			break
		}
	}
	if document == nil {
		return "", errors.New("missing word/document.xml")
	}

	reader, err := document.Open()
	if err != nil {
		return "", err
	}
	defer reader.Close()

	return readParagraphs(reader)
}

func readParagraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		paragraph  int
		table      int
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				table++
			case "p":
				paragraph++
				if paragraph == 1 {
					current.Reset()
				}
			case "t":
				inText = true
			case "tab":
				if paragraph > 0 && table == 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if paragraph > 0 && table == 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				table--
			case "p":
				paragraph--
				if paragraph == 0 && table == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && paragraph > 0 && table == 0 {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
