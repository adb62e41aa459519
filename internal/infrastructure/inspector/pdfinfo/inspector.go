package pdfinfo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
	"github.com/kirillkom/sitedocs/internal/core/ports"
)

const (
	pdfMimeType = "application/pdf"
	// DefaultMaxBytes bounds how much of a drawing set is buffered for parsing.
	DefaultMaxBytes int64 = 64 << 20
)

// Inspector counts PDF pages. Other file types report an empty inspection
// without touching storage.
type Inspector struct {
	storage  ports.ObjectStorage
	maxBytes int64
}

func New(storage ports.ObjectStorage, maxBytes int64) *Inspector {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Inspector{storage: storage, maxBytes: maxBytes}
}

func (i *Inspector) Inspect(ctx context.Context, doc *domain.Document) (domain.Inspection, error) {
	if !isPDF(doc) {
		return domain.Inspection{}, nil
	}

	rc, err := i.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.Inspection{}, fmt.Errorf("open stored pdf: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, i.maxBytes+1))
	if err != nil {
		return domain.Inspection{}, fmt.Errorf("read stored pdf: %w", err)
	}
	if int64(len(raw)) > i.maxBytes {
		return domain.Inspection{}, domain.WrapError(domain.ErrInvalidInput, "inspect pdf",
			fmt.Errorf("file exceeds %d bytes", i.maxBytes))
	}

	pages, err := CountPages(raw)
	if err != nil {
		return domain.Inspection{}, domain.WrapError(domain.ErrInvalidInput, "inspect pdf", err)
	}
	return domain.Inspection{PageCount: pages}, nil
}

// CountPages parses raw PDF bytes and returns the page tree count.
func CountPages(raw []byte) (pages int, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return reader.NumPage(), nil
}

func isPDF(doc *domain.Document) bool {
	if strings.EqualFold(strings.TrimSpace(doc.MimeType), pdfMimeType) {
		return true
	}
	return doctype.MimeTypeFromExtension(doc.Filename) == pdfMimeType
}
