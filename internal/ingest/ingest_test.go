package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFile(name string, content []byte) *File {
	return &File{Name: name, Size: int64(len(content)), Reader: bytes.NewReader(content)}
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var ingestErr *Error
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, kind, ingestErr.Kind)
	return ingestErr
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		Name    string
		File    *File
		Kind    Kind
		Message string
	}{
		{
			Name:    "missing",
			File:    nil,
			Kind:    KindMissing,
			Message: "No file uploaded",
		},
		{
			Name:    "extension checked before size",
			File:    &File{Name: "data.exe", Size: 20 << 20},
			Kind:    KindExtension,
			Message: "File type .exe not allowed. Allowed types: .txt, .md, .pdf, .docx, .csv",
		},
		{
			Name:    "no extension",
			File:    &File{Name: "README", Size: 1},
			Kind:    KindExtension,
			Message: "File type  not allowed. Allowed types: .txt, .md, .pdf, .docx, .csv",
		},
		{
			Name:    "too large",
			File:    &File{Name: "data.csv", Size: 20 << 20},
			Kind:    KindSize,
			Message: "File size (20.00 MB) exceeds maximum allowed size (10 MB)",
		},
		{
			Name:    "path traversal",
			File:    &File{Name: "../../etc/passwd.txt", Size: 10},
			Kind:    KindFilename,
			Message: "Filename contains invalid characters",
		},
		{
			Name:    "shell metacharacters",
			File:    &File{Name: "notes;rm -rf.md", Size: 10},
			Kind:    KindFilename,
			Message: "Filename contains invalid characters",
		},
	}

	ingester := NewIngester()
	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			err := ingester.Validate(testCase.File)
			ingestErr := requireKind(t, err, testCase.Kind)
			assert.Equal(t, testCase.Message, ingestErr.Message)
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	ingester := NewIngester()

	for _, name := range []string{"report final.txt", "NOTES.MD", "data_2024-01.csv", "Åke.docx", "paper.v2.pdf"} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, ingester.Validate(&File{Name: name, Size: 10 << 20}))
		})
	}
}

func TestExtension(t *testing.T) {
	testCases := []struct {
		Name     string
		Expected string
	}{
		{Name: "notes.txt", Expected: ".txt"},
		{Name: "NOTES.TXT", Expected: ".txt"},
		{Name: "paper.v2.pdf", Expected: ".pdf"},
		{Name: "README", Expected: ""},
		{Name: ".txt", Expected: ""},
		{Name: "notes.", Expected: ""},
		{Name: "..txt", Expected: ".txt"},
		{Name: "dir.d/README", Expected: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Expected, Extension(testCase.Name))
		})
	}
}

func TestValidateRejectsDotfile(t *testing.T) {
	err := NewIngester().Validate(&File{Name: ".txt", Size: 1})

	ingestErr := requireKind(t, err, KindExtension)
	assert.Equal(t, "File type  not allowed. Allowed types: .txt, .md, .pdf, .docx, .csv", ingestErr.Message)
}

func TestIsSafeFilename(t *testing.T) {
	assert.True(t, IsSafeFilename("report final.txt"))
	assert.False(t, IsSafeFilename("../../etc/passwd.txt"))
	assert.False(t, IsSafeFilename(`C:\Windows\win.ini.txt`))
	assert.False(t, IsSafeFilename(""))
}

func TestUploadText(t *testing.T) {
	result, err := NewIngester().Upload(newFile("hi.txt", []byte("hello")))
	require.NoError(t, err)

	assert.Equal(t, "hello", result.Content)
	assert.Equal(t, "hi.txt", result.Filename)
	assert.Equal(t, "File 'hi.txt' loaded successfully (0.00 KB)", result.Notice)
}

func TestUploadDisallowedExtension(t *testing.T) {
	result, err := NewIngester().Upload(newFile("hello.exe", []byte("hello")))
	assert.Nil(t, result)

	ingestErr := requireKind(t, err, KindExtension)
	assert.True(t, strings.HasPrefix(ingestErr.Message, "File type .exe not allowed"))
}

func TestTextRoundTrip(t *testing.T) {
	content := "  Leading whitespace\r\nUnicode: Ærø, 漢字, 🏛️\n\ttrailing\n\n"

	for _, name := range []string{"notes.txt", "notes.md", "NOTES.TXT"} {
		extracted, err := NewIngester().ReadContent(newFile(name, []byte(content)))
		require.NoError(t, err)
		assert.Equal(t, content, extracted)
	}
}

func TestTextInvalidUTF8(t *testing.T) {
	_, err := NewIngester().ReadContent(newFile("latin1.txt", []byte{'c', 'a', 'f', 0xe9}))

	ingestErr := requireKind(t, err, KindEncoding)
	assert.Equal(t, "File encoding error. Please ensure the file is in UTF-8 format.", ingestErr.Message)
}

func TestCSV(t *testing.T) {
	raw := "name,founded\nRome,753 BC\nConstantinople,330\n"

	extracted, err := NewIngester().ReadContent(newFile("cities.csv", []byte(raw)))
	require.NoError(t, err)

	assert.NotEmpty(t, extracted)
	assert.NotEqual(t, raw, extracted)
	assert.Equal(t, strings.Join([]string{
		"             name  founded",
		"0            Rome   753 BC",
		"1  Constantinople      330",
	}, "\n"), extracted)
}

func TestCSVRaggedRows(t *testing.T) {
	extracted, err := NewIngester().ReadContent(newFile("ragged.csv", []byte("a,b\n1\n")))
	require.NoError(t, err)

	assert.Equal(t, "   a    b\n0  1  NaN", extracted)
}

func TestCSVEscapesControlCharacters(t *testing.T) {
	raw := "name,note\nRome,\"a\tb\"\nAthens,\"line1\nline2\"\n"

	extracted, err := NewIngester().ReadContent(newFile("notes.csv", []byte(raw)))
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		`     name          note`,
		`0    Rome          a\tb`,
		`1  Athens  line1\nline2`,
	}, "\n"), extracted)
}

func TestCSVEmpty(t *testing.T) {
	_, err := NewIngester().ReadContent(newFile("empty.csv", nil))

	ingestErr := requireKind(t, err, KindRead)
	assert.Equal(t, "Error reading file: no columns to parse from file", ingestErr.Message)
}

func TestDOCX(t *testing.T) {
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>The Magna Carta</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Sealed in </w:t></w:r><w:r><w:t>1215.</w:t></w:r></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>table cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
    <w:p/>
    <w:p><w:r><w:t>King</w:t><w:tab/><w:t>John</w:t></w:r></w:p>
  </w:body>
</w:document>`

	var buffer bytes.Buffer
	archive := zip.NewWriter(&buffer)
	writer, err := archive.Create("word/document.xml")
	require.NoError(t, err)
	_, err = writer.Write([]byte(document))
	require.NoError(t, err)
	require.NoError(t, archive.Close())

	extracted, err := NewIngester().ReadContent(newFile("charter.docx", buffer.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "The Magna Carta\nSealed in 1215.\n\nKing\tJohn", extracted)
}

func TestDOCXInvalid(t *testing.T) {
	_, err := NewIngester().ReadContent(newFile("charter.docx", []byte("plain text")))

	ingestErr := requireKind(t, err, KindRead)
	assert.True(t, strings.HasPrefix(ingestErr.Message, "Error reading file: "))
}

func TestMissingCapability(t *testing.T) {
	ingester := NewIngester()
	delete(ingester.Extractors, ".docx")

	_, err := ingester.ReadContent(newFile("charter.docx", []byte("data")))

	ingestErr := requireKind(t, err, KindCapability)
	assert.Equal(t, "Support for .docx files is not available in this build", ingestErr.Message)
}

func TestUnsupportedType(t *testing.T) {
	_, err := NewIngester().ReadContent(newFile("archive.zip", []byte("data")))

	ingestErr := requireKind(t, err, KindUnsupported)
	assert.Equal(t, "Unsupported file type: .zip", ingestErr.Message)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestReadFailure(t *testing.T) {
	_, err := NewIngester().ReadContent(&File{Name: "notes.txt", Size: 10, Reader: failingReader{}})

	ingestErr := requireKind(t, err, KindRead)
	assert.Equal(t, "Error reading file: connection reset", ingestErr.Message)
}

func TestUnderstatedSize(t *testing.T) {
	ingester := NewIngester()
	ingester.MaxSize = 4

	_, err := ingester.Upload(&File{Name: "notes.txt", Size: 1, Reader: strings.NewReader("hello")})
	requireKind(t, err, KindSize)
}

func TestHelpText(t *testing.T) {
	assert.Equal(t, "Allowed types: .txt, .md, .pdf, .docx, .csv. Max size: 10 MB", NewIngester().HelpText())
}
