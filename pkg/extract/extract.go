package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"haskify-be/pkg/rag/chunker"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrUnextractable   = errors.New("no text could be extracted")
)

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeCode FileType = "code"
	FileTypeText FileType = "text"
)

var codeLanguages = map[string]string{
	".py":   "python",
	".hs":   "haskell",
	".js":   "javascript",
	".ts":   "typescript",
	".go":   "go",
	".java": "java",
	".c":    "c",
	".cpp":  "cpp",
	".rb":   "ruby",
}

var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// DetectFileType classifies an upload by MIME type (PDF only) and extension.
func DetectFileType(filename, mimeType string) (FileType, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if strings.HasPrefix(mimeType, "application/pdf") || ext == ".pdf" {
		return FileTypePDF, "", nil
	}
	if lang, ok := codeLanguages[ext]; ok {
		return FileTypeCode, lang, nil
	}
	if textExtensions[ext] {
		return FileTypeText, "", nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, filename)
}

// Document is the text pulled out of an uploaded file.
type Document struct {
	Type     FileType
	Language string
	Pages    []chunker.Page
}

// Text joins all pages with a blank line.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

type Extractor interface {
	Extract(ctx context.Context, filename, mimeType string, data []byte) (*Document, error)
}

// Service dispatches to the PDF extractor or reads text and source files
// directly.
type Service struct {
	pdf *PDFExtractor
}

func NewService(pdf *PDFExtractor) *Service {
	return &Service{pdf: pdf}
}

func (s *Service) Extract(ctx context.Context, filename, mimeType string, data []byte) (*Document, error) {
	fileType, lang, err := DetectFileType(filename, mimeType)
	if err != nil {
		return nil, err
	}

	switch fileType {
	case FileTypePDF:
		pages, err := s.pdf.ExtractPages(ctx, data)
		if err != nil {
			return nil, err
		}
		return &Document{Type: FileTypePDF, Pages: pages}, nil
	default:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrUnextractable, filename)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil, fmt.Errorf("%w: %s is empty", ErrUnextractable, filename)
		}
		return &Document{
			Type:     fileType,
			Language: lang,
			Pages:    []chunker.Page{{Number: 1, Text: string(data)}},
		}, nil
	}
}
