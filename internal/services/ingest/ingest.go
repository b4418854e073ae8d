package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotPDF is returned for uploads whose declared type does not indicate PDF
	ErrNotPDF = errors.New("file is not a PDF")
	// ErrExtract wraps any failure while parsing a PDF
	ErrExtract = errors.New("failed to extract PDF text")
)

const octetStream = "application/octet-stream"

// IsPDF reports whether a declared MIME type indicates a PDF
func IsPDF(declaredType string) bool {
	return strings.Contains(strings.ToLower(declaredType), "pdf")
}

// DeclaredType returns the type the client declared for an upload. When the
// client sent nothing useful the leading bytes are sniffed instead.
func DeclaredType(headerType string, head []byte) string {
	headerType = strings.TrimSpace(headerType)
	if headerType != "" && !strings.HasPrefix(headerType, octetStream) {
		return headerType
	}
	return mimetype.Detect(head).String()
}

// PageSource is an ordered collection of pages, numbered from 1
type PageSource interface {
	NumPage() int
	PageTokens(ctx context.Context, n int) ([]string, error)
}

// ExtractText joins each page's tokens with single spaces, appends a space
// after every page and trims the result. Pages are visited strictly in order.
func ExtractText(ctx context.Context, src PageSource) (string, error) {
	var full strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		tokens, err := src.PageTokens(ctx, i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}

		full.WriteString(strings.Join(tokens, " "))
		full.WriteString(" ")
	}
	return strings.TrimSpace(full.String()), nil
}

// Extractor turns raw PDF bytes into plain text
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses data as a PDF and returns its page-ordered text
func (e *Extractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExtract, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}

	src := &pdfPages{reader: reader}
	text, err = ExtractText(ctx, src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}

	log.Debug().
		Int("pages", src.NumPage()).
		Int("characters", len(text)).
		Msg("Extracted PDF text")

	return text, nil
}

type pdfPages struct {
	reader *pdf.Reader
}

func (p *pdfPages) NumPage() int {
	return p.reader.NumPage()
}

// PageTokens returns the page's text runs top to bottom, left to right
func (p *pdfPages) PageTokens(ctx context.Context, n int) ([]string, error) {
	page := p.reader.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}

	var tokens []string
	for _, row := range rows {
		for _, word := range row.Content {
			// positioning operators surface as empty runs
			if word.S == "" {
				continue
			}
			tokens = append(tokens, word.S)
		}
	}
	return tokens, nil
}
