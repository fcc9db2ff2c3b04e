//go:build !nopdf

package ingest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF returns a minimal PDF with one page per text, each showing the
// text in Helvetica.
func buildPDF(texts ...string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // Pages, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var kids bytes.Buffer
	for _, text := range texts {
		pageID := len(objects) + 1
		contentID := pageID + 1
		fmt.Fprintf(&kids, "%d 0 R ", pageID)

		content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentID),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", bytes.TrimSpace(kids.Bytes()), len(texts))

	var buffer bytes.Buffer
	buffer.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, object := range objects {
		offsets[i] = buffer.Len()
		fmt.Fprintf(&buffer, "%d 0 obj\n%s\nendobj\n", i+1, object)
	}

	xref := buffer.Len()
	fmt.Fprintf(&buffer, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, offset := range offsets {
		fmt.Fprintf(&buffer, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buffer, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buffer.Bytes()
}

func TestPDFRegistered(t *testing.T) {
	_, ok := NewIngester().Extractors[".pdf"]
	assert.True(t, ok)
}

func TestPDF(t *testing.T) {
	data := buildPDF("page one", "page two")

	extracted, err := NewIngester().ReadContent(&File{Name: "paper.pdf", Size: int64(len(data)), Reader: bytes.NewReader(data)})
	require.NoError(t, err)

	assert.Equal(t, "page one\npage two\n", extracted)
}

func TestPDFUpload(t *testing.T) {
	data := buildPDF("Magna Carta")

	result, err := NewIngester().Upload(&File{Name: "charter.pdf", Size: int64(len(data)), Reader: bytes.NewReader(data)})
	require.NoError(t, err)

	assert.Equal(t, "Magna Carta\n", result.Content)
	assert.Equal(t, "charter.pdf", result.Filename)
}

func TestPDFInvalid(t *testing.T) {
	data := []byte("not a pdf")
	_, err := NewIngester().ReadContent(&File{Name: "paper.pdf", Size: int64(len(data)), Reader: bytes.NewReader(data)})

	var ingestErr *Error
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, KindRead, ingestErr.Kind)
	assert.Contains(t, ingestErr.Message, "Error reading file")
}
