package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsense/internal/doctree"
)

// Parser turns a document into positioned text lines in reading order.
type Parser interface {
	Parse(r io.Reader, filename string) ([]doctree.TextRun, error)
}

// ErrDocumentUnreadable is returned when a document cannot be opened or parsed.
var ErrDocumentUnreadable = errors.New("document unreadable")

// UnreadableError carries the file and cause of an unreadable document.
type UnreadableError struct {
	Filename string
	Err      error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("document %q unreadable: %v", e.Filename, e.Err)
}

func (e *UnreadableError) Is(target error) bool {
	return target == ErrDocumentUnreadable
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ParseFile opens path, picks a parser by extension and extracts its lines.
// The file is closed on every return path.
func ParseFile(path string) ([]doctree.TextRun, error) {
	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableError{Filename: name, Err: err}
	}
	defer f.Close()
	return p.Parse(f, name)
}

// sizedReaderAt is satisfied by *bytes.Reader and *strings.Reader.
type sizedReaderAt interface {
	io.ReaderAt
	Size() int64
}

// readerAt adapts r for libraries that need random access, buffering it in
// memory only when it cannot seek.
func readerAt(r io.Reader) (io.ReaderAt, int64, error) {
	switch v := r.(type) {
	case *os.File:
		st, err := v.Stat()
		if err == nil {
			return v, st.Size(), nil
		}
	case sizedReaderAt:
		return v, v.Size(), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}
