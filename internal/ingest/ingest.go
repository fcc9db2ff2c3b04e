// Package ingest validates uploaded files and extracts their text.
//
// Failures are reported as *Error values carrying a message suitable for
// display to the end user.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMaxSize is the largest accepted upload, in bytes.
const DefaultMaxSize = 10 << 20

// DefaultAllowedExtensions lists the extensions accepted by default, in the
// order they're presented to users.
var DefaultAllowedExtensions = []string{".txt", ".md", ".pdf", ".docx", ".csv"}

var safeFilenamePattern = regexp.MustCompile(`^[\p{L}\p{N}_\s.\-]+$`)

// File is an uploaded file.
type File struct {
	// Name is the name declared by the uploader.
	Name string
	// Size is the size declared by the uploader, in bytes.
	Size   int64
	Reader io.Reader
}

type Kind string

const (
	KindMissing     Kind = "missing"
	KindExtension   Kind = "extension"
	KindSize        Kind = "size"
	KindFilename    Kind = "filename"
	KindEncoding    Kind = "encoding"
	KindCapability  Kind = "capability"
	KindUnsupported Kind = "unsupported"
	KindRead        Kind = "read"
)

// Error describes why a file was rejected or could not be read.
type Error struct {
	Kind Kind
	// Message is a human-readable description.
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the outcome of a successful upload.
type Result struct {
	Content  string
	Filename string
	// Notice is a human-readable confirmation.
	Notice string
}

// Ingester validates uploads and extracts their content.
type Ingester struct {
	// AllowedExtensions holds lower-case extensions including the leading dot.
	AllowedExtensions []string
	// MaxSize in bytes.
	MaxSize int64
	// Extractors by lower-case extension. An allowed extension without an
	// extractor is reported as a missing capability.
	Extractors map[string]Extractor
}

// NewIngester returns an Ingester with the default allow-list, size cap and
// every extractor compiled into the binary.
func NewIngester() *Ingester {
	extractors := make(map[string]Extractor)
	for extension, extractor := range defaultExtractors() {
		extractors[extension] = extractor
	}

	return &Ingester{
		AllowedExtensions: append([]string(nil), DefaultAllowedExtensions...),
		MaxSize:           DefaultMaxSize,
		Extractors:        extractors,
	}
}

// Extension returns the lower-case extension of name, including the dot.
// Names whose only dot is the leading one, such as ".txt", and names ending
// with a dot have no extension.
func Extension(name string) string {
	base := filepath.Base(name)
	if strings.LastIndex(base, ".") <= 0 {
		return ""
	}

	extension := filepath.Ext(base)
	if extension == "." {
		return ""
	}
	return strings.ToLower(extension)
}

// IsSafeFilename reports whether name consists only of letters, digits,
// whitespace, hyphens, underscores and periods.
func IsSafeFilename(name string) bool {
	return safeFilenamePattern.MatchString(name)
}

// Validate checks the file against the allow-list, size cap and filename
// rules, in that order, reporting the first failure.
func (i *Ingester) Validate(file *File) error {
	if file == nil {
		return &Error{Kind: KindMissing, Message: "No file uploaded"}
	}

	extension := Extension(file.Name)
	if !i.allowed(extension) {
		return &Error{
			Kind:    KindExtension,
			Message: fmt.Sprintf("File type %s not allowed. Allowed types: %s", extension, strings.Join(i.AllowedExtensions, ", ")),
		}
	}

	if file.Size > i.MaxSize {
		return &Error{
			Kind:    KindSize,
			Message: fmt.Sprintf("File size (%.2f MB) exceeds maximum allowed size (%s)", float64(file.Size)/(1<<20), formatMegabytes(i.MaxSize)),
		}
	}

	if !IsSafeFilename(file.Name) {
		return &Error{Kind: KindFilename, Message: "Filename contains invalid characters"}
	}

	return nil
}

// ReadContent extracts the text of a validated file.
func (i *Ingester) ReadContent(file *File) (string, error) {
	if file == nil {
		return "", &Error{Kind: KindMissing, Message: "No file uploaded"}
	}

	extension := Extension(file.Name)
	if !i.allowed(extension) {
		return "", &Error{Kind: KindUnsupported, Message: fmt.Sprintf("Unsupported file type: %s", extension)}
	}

	extractor, ok := i.Extractors[extension]
	if !ok {
		return "", &Error{Kind: KindCapability, Message: capabilityMessage(extension)}
	}

	if file.Reader == nil {
		return "", &Error{Kind: KindRead, Message: "Error reading file: no content"}
	}

	// Read at most one byte past the cap to detect understated sizes
	data, err := io.ReadAll(io.LimitReader(file.Reader, i.MaxSize+1))
	if err != nil {
		return "", &Error{Kind: KindRead, Message: fmt.Sprintf("Error reading file: %v", err), Err: err}
	}
	if int64(len(data)) > i.MaxSize {
		return "", &Error{
			Kind:    KindSize,
			Message: fmt.Sprintf("File size exceeds maximum allowed size (%s)", formatMegabytes(i.MaxSize)),
		}
	}

	content, err := extractor.Extract(data)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return "", e
		}
		return "", &Error{Kind: KindRead, Message: fmt.Sprintf("Error reading file: %v", err), Err: err}
	}

	return content, nil
}

// Upload validates the file and extracts its content.
func (i *Ingester) Upload(file *File) (*Result, error) {
	if err := i.Validate(file); err != nil {
		slog.Debug("Rejected upload", slog.Any("error", err))
		return nil, err
	}

	content, err := i.ReadContent(file)
	if err != nil {
		slog.Debug("Failed to read upload", slog.String("name", file.Name), slog.Any("error", err))
		return nil, err
	}

	slog.Debug("Loaded upload", slog.String("name", file.Name), slog.Int64("size", file.Size))
	return &Result{
		Content:  content,
		Filename: file.Name,
		Notice:   fmt.Sprintf("File '%s' loaded successfully (%.2f KB)", file.Name, float64(file.Size)/1024),
	}, nil
}

// HelpText describes the accepted uploads.
func (i *Ingester) HelpText() string {
	return fmt.Sprintf("Allowed types: %s. Max size: %s", strings.Join(i.AllowedExtensions, ", "), formatMegabytes(i.MaxSize))
}

func (i *Ingester) allowed(extension string) bool {
	for _, allowed := range i.AllowedExtensions {
		if extension == allowed {
			return true
		}
	}
	return false
}

func formatMegabytes(size int64) string {
	return fmt.Sprintf("%g MB", float64(size)/(1<<20))
}
