package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"haskify-be/pkg/rag/chunker"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var contentPageRe = regexp.MustCompile(`Content_page_(\d+)`)

// PDFExtractor pulls per-page text out of PDF uploads. pdfcpu dumps the raw
// page content streams; the text operators in them are decoded here.
type PDFExtractor struct {
	tempDir string
}

func NewPDFExtractor(tempDir string) *PDFExtractor {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &PDFExtractor{tempDir: tempDir}
}

func (e *PDFExtractor) ExtractPages(ctx context.Context, data []byte) ([]chunker.Page, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty pdf", ErrUnextractable)
	}

	workDir, err := os.MkdirTemp(e.tempDir, "haskify-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create pdf work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inFile := filepath.Join(workDir, "upload.pdf")
	if err := os.WriteFile(inFile, data, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(inFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnextractable, err)
	}
	if pdfCtx.Encrypt != nil {
		return nil, fmt.Errorf("%w: pdf is encrypted", ErrUnextractable)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outDir := filepath.Join(workDir, "content")
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("create pdf content dir: %w", err)
	}
	if err := api.ExtractContentFile(inFile, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnextractable, err)
	}

	pageTexts, err := readContentFiles(outDir)
	if err != nil {
		return nil, err
	}

	pages := make([]chunker.Page, 0, pdfCtx.PageCount)
	hasText := false
	for n := 1; n <= pdfCtx.PageCount; n++ {
		text := pageTexts[n]
		if strings.TrimSpace(text) != "" {
			hasText = true
		}
		pages = append(pages, chunker.Page{Number: n, Text: text})
	}
	if !hasText {
		return nil, fmt.Errorf("%w: pdf has no text layer", ErrUnextractable)
	}
	return pages, nil
}

func readContentFiles(dir string) (map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pdf content dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	texts := make(map[int]string)
	for _, name := range names {
		m := contentPageRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		pageNum, _ := strconv.Atoi(m[1])
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if prev := texts[pageNum]; prev != "" {
			texts[pageNum] = prev + "\n" + ContentStreamText(raw)
		} else {
			texts[pageNum] = ContentStreamText(raw)
		}
	}
	return texts, nil
}
